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

package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/halftrail/osmpbf/model"
)

// recordingSink is a minimal Sink capturing the callbacks a decode
// produces.
type recordingSink struct {
	strings []string
	ways    int
	tags    map[string]string
	blocks  int
}

func (s *recordingSink) VisitBlock(latOffset, lonOffset int64, granularity, dateGranularity int32) error {
	return nil
}

func (s *recordingSink) VisitStringTable(strings []string) error {
	s.strings = strings

	return nil
}

func (s *recordingSink) VisitGroup() error { return nil }
func (s *recordingSink) EndGroup() error   { return nil }

func (s *recordingSink) VisitNode(model.ID, model.Degrees, model.Degrees) error { return nil }

func (s *recordingSink) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	s.ways++
	s.tags = tags

	return nil
}

func (s *recordingSink) VisitRelation(model.ID, []model.Member, map[string]string) error {
	return nil
}

func (s *recordingSink) VisitInfo(int32, int64, int64, model.UID, string, bool) error { return nil }

func (s *recordingSink) EndBlock() error {
	s.blocks++

	return nil
}

// A block whose wire bytes omit the string table field decodes as if
// the table were empty instead of faulting.
func TestDecodeBlockMissingStringTable(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, DecodeBlock(nil, sink))

	assert.Empty(t, sink.strings)
	assert.Equal(t, 1, sink.blocks)
}

// String indices with no table behind them resolve to the empty
// string rather than faulting.
func TestDecodeBlockDanglingStringIndices(t *testing.T) {
	// Way{id: 7, keys: [1], vals: [2]} with no surrounding string table.
	var way []byte
	way = protowire.AppendTag(way, 1, protowire.VarintType)
	way = protowire.AppendVarint(way, 7)
	way = protowire.AppendTag(way, 2, protowire.BytesType)
	way = protowire.AppendBytes(way, protowire.AppendVarint(nil, 1))
	way = protowire.AppendTag(way, 3, protowire.BytesType)
	way = protowire.AppendBytes(way, protowire.AppendVarint(nil, 2))

	var group []byte
	group = protowire.AppendTag(group, 3, protowire.BytesType)
	group = protowire.AppendBytes(group, way)

	var block []byte
	block = protowire.AppendTag(block, 2, protowire.BytesType)
	block = protowire.AppendBytes(block, group)

	sink := &recordingSink{}
	require.NoError(t, DecodeBlock(block, sink))

	assert.Equal(t, 1, sink.ways)
	assert.Equal(t, map[string]string{"": ""}, sink.tags)
}
