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

package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringTableRoundTrip(t *testing.T) {
	st := &StringTable{S: [][]byte{[]byte(""), []byte("natural"), []byte("coastline")}}

	got, err := unmarshalStringTable(st.Marshal())
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestNodeRoundTrip(t *testing.T) {
	n := &Node{
		ID:   123456,
		Keys: []uint32{1, 3},
		Vals: []uint32{2, 4},
		Info: &Info{Version: 3, Timestamp: 1000, Changeset: 7, UID: 9, UserSID: 1, Visible: true, HasVisible: true},
		Lat:  -555,
		Lon:  9999999,
	}

	got, err := unmarshalNode(n.marshal())
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestNodeRoundTripNoInfo(t *testing.T) {
	n := &Node{ID: 1, Lat: 10, Lon: 20}

	got, err := unmarshalNode(n.marshal())
	require.NoError(t, err)
	assert.Nil(t, got.Info)
	assert.Equal(t, n.ID, got.ID)
}

func TestInfoDefaultVisible(t *testing.T) {
	// Absent Info.visible means "visible"; unmarshalInfo seeds
	// the zero value with Visible: true so callers that never see
	// field 6 still get the documented default.
	n := &Info{Version: 1, Timestamp: 0, Changeset: 0, UID: 0, UserSID: 0}
	n.HasVisible = false

	got, err := unmarshalInfo(n.marshal())
	require.NoError(t, err)
	assert.True(t, got.Visible)
	assert.False(t, got.HasVisible)
}

func TestWayRoundTrip(t *testing.T) {
	w := &Way{
		ID:   100,
		Keys: []uint32{1, 3},
		Vals: []uint32{2, 4},
		Refs: DeltaEncode([]int64{100, 105, 102}),
	}

	got, err := unmarshalWay(w.marshal())
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, w.Keys, got.Keys)
	assert.Equal(t, w.Vals, got.Vals)
	assert.Equal(t, w.Refs, got.Refs)
	assert.Equal(t, []int64{100, 105, 102}, DeltaDecode(got.Refs))
}

func TestRelationRoundTrip(t *testing.T) {
	r := &Relation{
		ID:       55,
		Keys:     []uint32{1},
		Vals:     []uint32{2},
		RolesSID: []int32{0, 3},
		MemIDs:   DeltaEncode([]int64{10, 20}),
		Types:    []MemberType{MemberNode, MemberWay},
	}

	got, err := unmarshalRelation(r.marshal())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestDenseNodesRoundTrip(t *testing.T) {
	dn := &DenseNodes{
		ID:  DeltaEncode([]int64{1, 2, 3}),
		Lat: DeltaEncode([]int64{10, 20, 30}),
		Lon: DeltaEncode([]int64{-10, -20, -30}),
		DenseInfo: &DenseInfo{
			Version:   []int32{1, 1, 2},
			Timestamp: DeltaEncode([]int64{100, 200, 300}),
			Changeset: DeltaEncode([]int64{1, 1, 2}),
			UID:       DeltaEncode([]int32{5, 5, 5}),
			UserSID:   DeltaEncode([]int32{1, 1, 1}),
			Visible:   []bool{true, true, false},
		},
	}

	got, err := unmarshalDenseNodes(dn.marshal())
	require.NoError(t, err)
	assert.Equal(t, dn, got)
	assert.Equal(t, []int64{1, 2, 3}, DeltaDecode(got.ID))
}

func TestDenseNodesVisibleShorterThanID(t *testing.T) {
	dn := &DenseNodes{
		ID:        DeltaEncode([]int64{1, 2, 3}),
		Lat:       DeltaEncode([]int64{1, 1, 1}),
		Lon:       DeltaEncode([]int64{1, 1, 1}),
		DenseInfo: &DenseInfo{Version: []int32{1, 1, 1}, Visible: []bool{false}},
	}

	got, err := unmarshalDenseNodes(dn.marshal())
	require.NoError(t, err)
	assert.Len(t, got.DenseInfo.Visible, 1)
}

func TestPrimitiveBlockRoundTrip(t *testing.T) {
	blk := &PrimitiveBlock{
		StringTable:     &StringTable{S: [][]byte{[]byte(""), []byte("a")}},
		Granularity:     100,
		LatOffset:       1000,
		LonOffset:       -2000,
		DateGranularity: 1000,
		PrimitiveGroup: []*PrimitiveGroup{
			{
				Dense: &DenseNodes{
					ID:  DeltaEncode([]int64{1, 2}),
					Lat: DeltaEncode([]int64{10, 10}),
					Lon: DeltaEncode([]int64{10, 10}),
				},
			},
		},
	}

	got, err := UnmarshalPrimitiveBlock(blk.Marshal())
	require.NoError(t, err)
	assert.Equal(t, blk.LatOffset, got.LatOffset)
	assert.Equal(t, blk.LonOffset, got.LonOffset)
	assert.Equal(t, blk.Granularity, got.Granularity)
	assert.Len(t, got.PrimitiveGroup, 1)
	assert.Equal(t, blk.StringTable, got.StringTable)
}

func TestPrimitiveBlockDefaultGranularity(t *testing.T) {
	blk := &PrimitiveBlock{StringTable: &StringTable{S: [][]byte{[]byte("")}}}

	got, err := UnmarshalPrimitiveBlock(blk.Marshal())
	require.NoError(t, err)
	assert.Equal(t, int32(100), got.Granularity)
	assert.Equal(t, int32(1000), got.DateGranularity)
}
