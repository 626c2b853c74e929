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

package osmpbf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halftrail/osmpbf/model"
)

func TestCollectingVisitor(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterVisitor(&buf)

	require.NoError(t, w.VisitHeader(&model.Header{WritingProgram: "test"}))
	require.NoError(t, w.VisitNode(1, 1.5, 2.5))
	require.NoError(t, w.VisitInfo(3, 1_000, 7, 42, "alice", true))
	require.NoError(t, w.VisitWay(2, []model.ID{1}, map[string]string{"highway": "track"}))
	require.NoError(t, w.VisitInfo(2, 123_000, 8, 42, "alice", true))
	require.NoError(t, w.VisitRelation(3, []model.Member{{ID: 2, Type: model.WAY, Role: "outer"}},
		map[string]string{"type": "multipolygon"}))
	require.NoError(t, w.End())

	c := NewCollectingVisitor()
	require.NoError(t, NewOsmReader(&buf).Accept(c))

	require.NotNil(t, c.Header)
	assert.Equal(t, "test", c.Header.WritingProgram)

	require.Len(t, c.Entities, 3)

	node, ok := c.Entities[0].(model.Node)
	require.True(t, ok)
	assert.Equal(t, model.ID(1), node.ID)
	assert.InDelta(t, float64(1.5), float64(node.Lat), 1e-7)
	require.NotNil(t, node.Info)
	assert.EqualValues(t, 3, node.Info.Version)
	assert.Equal(t, model.UID(42), node.Info.UID)
	assert.Equal(t, "alice", node.Info.User)
	assert.Equal(t, time.UnixMilli(1_000).UTC(), node.Info.Timestamp)

	way, ok := c.Entities[1].(model.Way)
	require.True(t, ok)
	assert.Equal(t, model.ID(2), way.ID)
	assert.Equal(t, []model.ID{1}, way.NodeIDs)
	assert.Equal(t, "track", way.Tags["highway"])
	require.NotNil(t, way.Info)
	assert.Equal(t, time.UnixMilli(123_000).UTC(), way.Info.Timestamp)

	rel, ok := c.Entities[2].(model.Relation)
	require.True(t, ok)
	assert.Equal(t, model.ID(3), rel.ID)
	assert.Equal(t, []model.Member{{ID: 2, Type: model.WAY, Role: "outer"}}, rel.Members)
}
