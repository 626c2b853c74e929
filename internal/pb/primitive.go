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

import "google.golang.org/protobuf/encoding/protowire"

// MemberType mirrors osmformat.proto's Relation.MemberType enum.
type MemberType int32

const (
	MemberNode MemberType = 0
	MemberWay  MemberType = 1
	MemberRel  MemberType = 2
)

// StringTable is osmformat.proto's StringTable message: a flat,
// index-addressed pool of byte strings shared by every entity in a
// PrimitiveBlock. Index 0 is conventionally the empty string.
type StringTable struct {
	S [][]byte
}

func (t *StringTable) Marshal() []byte {
	var b []byte
	for _, s := range t.S {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, s)
	}

	return b
}

func unmarshalStringTable(b []byte) (*StringTable, error) {
	t := &StringTable{}
	err := scan(b, func(f field) error {
		if f.num == 1 {
			cp := make([]byte, len(f.buf))
			copy(cp, f.buf)
			t.S = append(t.S, cp)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Info is osmformat.proto's Info message: per-entity metadata
// attached to a sparse Node, Way, or Relation.
type Info struct {
	Version   int32
	Timestamp int64
	Changeset int64
	UID       int32
	UserSID   int32
	Visible   bool

	HasVisible bool
}

func (i *Info) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(i.Version)))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(i.Timestamp))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(i.Changeset))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(i.UID)))
	b = protowire.AppendTag(b, 5, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(i.UserSID)))

	if i.HasVisible {
		b = protowire.AppendTag(b, 6, protowire.VarintType)

		v := uint64(0)
		if i.Visible {
			v = 1
		}

		b = protowire.AppendVarint(b, v)
	}

	return b
}

func unmarshalInfo(b []byte) (*Info, error) {
	i := &Info{Version: -1, Visible: true}
	err := scan(b, func(f field) error {
		switch f.num {
		case 1:
			i.Version = int32(f.u64)
		case 2:
			i.Timestamp = int64(f.u64)
		case 3:
			i.Changeset = int64(f.u64)
		case 4:
			i.UID = int32(f.u64)
		case 5:
			i.UserSID = int32(f.u64)
		case 6:
			i.Visible = f.u64 != 0
			i.HasVisible = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return i, nil
}

// DenseInfo is osmformat.proto's DenseInfo message: parallel,
// delta-encoded (except Version, which is absolute) metadata arrays
// for a DenseNodes group.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64 // delta-encoded
	Changeset []int64 // delta-encoded
	UID       []int32 // delta-encoded
	UserSID   []int32 // delta-encoded
	Visible   []bool
}

func (d *DenseInfo) marshal() []byte {
	var b []byte
	b = appendPackedVarints(b, 1, uint64SliceFromInt32Signed(d.Version))
	b = appendPackedSint64(b, 2, d.Timestamp)
	b = appendPackedSint64(b, 3, d.Changeset)
	b = appendPackedSint64(b, 4, int32ToInt64(d.UID))
	b = appendPackedSint64(b, 5, int32ToInt64(d.UserSID))
	b = appendPackedBools(b, 6, d.Visible)

	return b
}

func unmarshalDenseInfo(b []byte) (*DenseInfo, error) {
	d := &DenseInfo{}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			uvs, e := packedVarints(f.buf)
			err = e
			d.Version = int32Slice(uvs)
		case 2:
			d.Timestamp, err = packedSint64(f.buf)
		case 3:
			d.Changeset, err = packedSint64(f.buf)
		case 4:
			vs, e := packedSint64(f.buf)
			err = e
			d.UID = int64ToInt32(vs)
		case 5:
			vs, e := packedSint64(f.buf)
			err = e
			d.UserSID = int64ToInt32(vs)
		case 6:
			d.Visible, err = packedBools(f.buf)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func uint64SliceFromInt32Signed(vs []int32) []uint64 {
	uvs := make([]uint64, len(vs))
	for i, v := range vs {
		uvs[i] = uint64(uint32(v))
	}

	return uvs
}

func int32ToInt64(vs []int32) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}

	return out
}

func int64ToInt32(vs []int64) []int32 {
	out := make([]int32, len(vs))
	for i, v := range vs {
		out[i] = int32(v)
	}

	return out
}

// DenseNodes is osmformat.proto's DenseNodes message.
type DenseNodes struct {
	ID        []int64 // delta-encoded
	DenseInfo *DenseInfo
	Lat       []int64 // delta-encoded
	Lon       []int64 // delta-encoded
	KeysVals  []int32
}

func (d *DenseNodes) marshal() []byte {
	var b []byte
	b = appendPackedSint64(b, 1, d.ID)

	if d.DenseInfo != nil {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, d.DenseInfo.marshal())
	}

	b = appendPackedSint64(b, 8, d.Lat)
	b = appendPackedSint64(b, 9, d.Lon)
	b = appendPackedVarints(b, 10, uint64SliceFromInt32Signed(d.KeysVals))

	return b
}

func unmarshalDenseNodes(b []byte) (*DenseNodes, error) {
	d := &DenseNodes{}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			d.ID, err = packedSint64(f.buf)
		case 5:
			d.DenseInfo, err = unmarshalDenseInfo(f.buf)
		case 8:
			d.Lat, err = packedSint64(f.buf)
		case 9:
			d.Lon, err = packedSint64(f.buf)
		case 10:
			uvs, e := packedVarints(f.buf)
			err = e
			d.KeysVals = int32Slice(uvs)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Node is osmformat.proto's Node message (the sparse form).
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (n *Node) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(n.ID))
	b = appendPackedVarints(b, 2, uint64SliceFromUint32(n.Keys))
	b = appendPackedVarints(b, 3, uint64SliceFromUint32(n.Vals))

	if n.Info != nil {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, n.Info.marshal())
	}

	b = protowire.AppendTag(b, 8, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(n.Lat))
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(n.Lon))

	return b
}

func unmarshalNode(b []byte) (*Node, error) {
	n := &Node{}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			n.ID = protowire.DecodeZigZag(f.u64)
		case 2:
			uvs, e := packedVarints(f.buf)
			err = e
			n.Keys = uint32Slice(uvs)
		case 3:
			uvs, e := packedVarints(f.buf)
			err = e
			n.Vals = uint32Slice(uvs)
		case 4:
			n.Info, err = unmarshalInfo(f.buf)
		case 8:
			n.Lat = protowire.DecodeZigZag(f.u64)
		case 9:
			n.Lon = protowire.DecodeZigZag(f.u64)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}

// Way is osmformat.proto's Way message.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64 // delta-encoded
}

func (w *Way) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(w.ID))
	b = appendPackedVarints(b, 2, uint64SliceFromUint32(w.Keys))
	b = appendPackedVarints(b, 3, uint64SliceFromUint32(w.Vals))

	if w.Info != nil {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, w.Info.marshal())
	}

	b = appendPackedSint64(b, 8, w.Refs)

	return b
}

func unmarshalWay(b []byte) (*Way, error) {
	w := &Way{}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			w.ID = int64(f.u64)
		case 2:
			uvs, e := packedVarints(f.buf)
			err = e
			w.Keys = uint32Slice(uvs)
		case 3:
			uvs, e := packedVarints(f.buf)
			err = e
			w.Vals = uint32Slice(uvs)
		case 4:
			w.Info, err = unmarshalInfo(f.buf)
		case 8:
			w.Refs, err = packedSint64(f.buf)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Relation is osmformat.proto's Relation message.
type Relation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSID []int32
	MemIDs   []int64 // delta-encoded
	Types    []MemberType
}

func (r *Relation) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.ID))
	b = appendPackedVarints(b, 2, uint64SliceFromUint32(r.Keys))
	b = appendPackedVarints(b, 3, uint64SliceFromUint32(r.Vals))

	if r.Info != nil {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Info.marshal())
	}

	b = appendPackedVarints(b, 8, uint64SliceFromInt32Signed(r.RolesSID))
	b = appendPackedSint64(b, 9, r.MemIDs)

	types := make([]uint64, len(r.Types))
	for i, t := range r.Types {
		types[i] = uint64(t)
	}

	b = appendPackedVarints(b, 10, types)

	return b
}

func unmarshalRelation(b []byte) (*Relation, error) {
	r := &Relation{}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			r.ID = int64(f.u64)
		case 2:
			uvs, e := packedVarints(f.buf)
			err = e
			r.Keys = uint32Slice(uvs)
		case 3:
			uvs, e := packedVarints(f.buf)
			err = e
			r.Vals = uint32Slice(uvs)
		case 4:
			r.Info, err = unmarshalInfo(f.buf)
		case 8:
			uvs, e := packedVarints(f.buf)
			err = e
			r.RolesSID = int32Slice(uvs)
		case 9:
			r.MemIDs, err = packedSint64(f.buf)
		case 10:
			uvs, e := packedVarints(f.buf)
			err = e
			r.Types = make([]MemberType, len(uvs))
			for i, u := range uvs {
				r.Types[i] = MemberType(u)
			}
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// PrimitiveGroup is osmformat.proto's PrimitiveGroup message. Exactly
// one of its fields is populated per the format's own invariant, but
// this type does not enforce that; callers are expected to honor it.
type PrimitiveGroup struct {
	Nodes     []*Node
	Dense     *DenseNodes
	Ways      []*Way
	Relations []*Relation
}

func (g *PrimitiveGroup) marshal() []byte {
	var b []byte
	for _, n := range g.Nodes {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, n.marshal())
	}

	if g.Dense != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Dense.marshal())
	}

	for _, w := range g.Ways {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, w.marshal())
	}

	for _, r := range g.Relations {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, r.marshal())
	}

	return b
}

func unmarshalPrimitiveGroup(b []byte) (*PrimitiveGroup, error) {
	g := &PrimitiveGroup{}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			var n *Node
			n, err = unmarshalNode(f.buf)
			g.Nodes = append(g.Nodes, n)
		case 2:
			g.Dense, err = unmarshalDenseNodes(f.buf)
		case 3:
			var w *Way
			w, err = unmarshalWay(f.buf)
			g.Ways = append(g.Ways, w)
		case 4:
			var r *Relation
			r, err = unmarshalRelation(f.buf)
			g.Relations = append(g.Relations, r)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// PrimitiveBlock is osmformat.proto's PrimitiveBlock message.
type PrimitiveBlock struct {
	StringTable     *StringTable
	PrimitiveGroup  []*PrimitiveGroup
	Granularity     int32
	LatOffset       int64
	LonOffset       int64
	DateGranularity int32
}

func (p *PrimitiveBlock) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, p.StringTable.Marshal())

	for _, g := range p.PrimitiveGroup {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, g.marshal())
	}

	granularity := p.Granularity
	if granularity == 0 {
		granularity = 100
	}

	b = protowire.AppendTag(b, 17, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(granularity)))

	// lat_offset and lon_offset are plain int64 varints in the
	// published schema, unlike the sint64 coordinate deltas.
	b = protowire.AppendTag(b, 19, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.LatOffset))
	b = protowire.AppendTag(b, 20, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.LonOffset))

	dateGranularity := p.DateGranularity
	if dateGranularity == 0 {
		dateGranularity = 1000
	}

	b = protowire.AppendTag(b, 18, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(dateGranularity)))

	return b
}

func UnmarshalPrimitiveBlock(b []byte) (*PrimitiveBlock, error) {
	p := &PrimitiveBlock{Granularity: 100, DateGranularity: 1000}
	err := scan(b, func(f field) error {
		var err error

		switch f.num {
		case 1:
			p.StringTable, err = unmarshalStringTable(f.buf)
		case 2:
			var g *PrimitiveGroup
			g, err = unmarshalPrimitiveGroup(f.buf)
			p.PrimitiveGroup = append(p.PrimitiveGroup, g)
		case 17:
			p.Granularity = int32(f.u64)
		case 19:
			p.LatOffset = int64(f.u64)
		case 20:
			p.LonOffset = int64(f.u64)
		case 18:
			p.DateGranularity = int32(f.u64)
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}
