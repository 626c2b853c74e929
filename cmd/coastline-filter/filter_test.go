// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halftrail/osmpbf"
	"github.com/halftrail/osmpbf/model"
)

// buildSample writes a small file with a mix of coastline and
// non-coastline entities: two ways tagged natural=coastline sharing
// node 2, an unrelated way, a relation tagged natural=coastline (whose
// membership happens to reference one of those ways), and a plain
// multipolygon relation that does not carry the tag.
func buildSample(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := osmpbf.NewWriterVisitor(&buf)

	for id := model.ID(1); id <= 5; id++ {
		require.NoError(t, w.VisitNode(id, model.Degrees(id), model.Degrees(id)))
	}

	require.NoError(t, w.VisitWay(10, []model.ID{1, 2}, map[string]string{"natural": "coastline"}))
	require.NoError(t, w.VisitWay(11, []model.ID{2, 3}, map[string]string{"natural": "coastline"}))
	require.NoError(t, w.VisitWay(12, []model.ID{4, 5}, map[string]string{"highway": "track"}))

	require.NoError(t, w.VisitRelation(20, []model.Member{{ID: 10, Type: model.WAY, Role: "outer"}},
		map[string]string{"natural": "coastline", "type": "multipolygon"}))
	require.NoError(t, w.VisitRelation(21, []model.Member{{ID: 12, Type: model.WAY, Role: "outer"}},
		map[string]string{"type": "multipolygon"}))

	require.NoError(t, w.End())

	return buf.Bytes()
}

func TestCoastlineFilterTwoPass(t *testing.T) {
	data := buildSample(t)

	c, err := pass1(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, map[model.ID]struct{}{1: {}, 2: {}, 3: {}}, c.nodeIDs)
	assert.Equal(t, map[model.ID]struct{}{10: {}, 11: {}}, c.wayIDs)

	var out bytes.Buffer
	stats, err := pass2(bytes.NewReader(data), &out, c)
	require.NoError(t, err)

	assert.EqualValues(t, 5, stats.NodesIn)
	assert.EqualValues(t, 3, stats.NodesOut)
	assert.EqualValues(t, 3, stats.WaysIn)
	assert.EqualValues(t, 2, stats.WaysOut)
	assert.EqualValues(t, 2, stats.RelationsIn)
	assert.EqualValues(t, 1, stats.RelationsOut)

	// The re-emitted file parses back to exactly that subset.
	var gotNodes []model.ID
	var gotWays []model.ID
	var gotRelations []model.ID

	v := &capture{
		onNode:     func(id model.ID) { gotNodes = append(gotNodes, id) },
		onWay:      func(id model.ID) { gotWays = append(gotWays, id) },
		onRelation: func(id model.ID) { gotRelations = append(gotRelations, id) },
	}
	require.NoError(t, osmpbf.NewOsmReader(&out).Accept(v))

	assert.ElementsMatch(t, []model.ID{1, 2, 3}, gotNodes)
	assert.ElementsMatch(t, []model.ID{10, 11}, gotWays)
	assert.ElementsMatch(t, []model.ID{20}, gotRelations)
}

type capture struct {
	osmpbf.BaseVisitor

	onNode     func(model.ID)
	onWay      func(model.ID)
	onRelation func(model.ID)
}

func (c *capture) VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error {
	c.onNode(id)

	return nil
}

func (c *capture) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	c.onWay(id)

	return nil
}

func (c *capture) VisitRelation(id model.ID, members []model.Member, tags map[string]string) error {
	c.onRelation(id)

	return nil
}
