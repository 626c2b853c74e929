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
	"github.com/halftrail/osmpbf/internal/pb"
	"github.com/halftrail/osmpbf/model"
)

// Sink receives the entity-level callbacks produced while decoding a
// single PrimitiveBlock. It is satisfied structurally by any type
// exposing these methods — in particular osmpbf.Visitor — so this
// package never needs to import its caller.
type Sink interface {
	VisitBlock(latOffset, lonOffset int64, granularity, dateGranularity int32) error
	VisitStringTable(strings []string) error
	VisitGroup() error
	EndGroup() error
	VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error
	VisitWay(id model.ID, refs []model.ID, tags map[string]string) error
	VisitRelation(id model.ID, members []model.Member, tags map[string]string) error
	VisitInfo(version int32, timestampMs int64, changeset int64, uid model.UID, userSID string, visible bool) error
	EndBlock() error
}

// DecodeBlock unmarshals a PrimitiveBlock payload and drives sink
// through its string table, groups, and entities in storage order.
func DecodeBlock(data []byte, sink Sink) error {
	blk, err := pb.UnmarshalPrimitiveBlock(data)
	if err != nil {
		return err
	}

	c := newBlockContext(blk)

	if err := sink.VisitBlock(c.latOffset, c.lonOffset, c.granularity, c.dateGranularity); err != nil {
		return err
	}

	if err := sink.VisitStringTable(c.strings); err != nil {
		return err
	}

	for _, pg := range blk.PrimitiveGroup {
		if err := sink.VisitGroup(); err != nil {
			return err
		}

		if err := c.decodeNodes(pg.Nodes, sink); err != nil {
			return err
		}

		if err := c.decodeDenseNodes(pg.Dense, sink); err != nil {
			return err
		}

		if err := c.decodeWays(pg.Ways, sink); err != nil {
			return err
		}

		if err := c.decodeRelations(pg.Relations, sink); err != nil {
			return err
		}

		if err := sink.EndGroup(); err != nil {
			return err
		}
	}

	return sink.EndBlock()
}

type blockContext struct {
	strings         []string
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(blk *pb.PrimitiveBlock) *blockContext {
	// A block without a string table field decodes as an empty table;
	// every index lookup then resolves to "" via str's bounds check.
	var raw [][]byte
	if blk.StringTable != nil {
		raw = blk.StringTable.S
	}

	strings := make([]string, len(raw))
	for i, s := range raw {
		strings[i] = string(s)
	}

	granularity := blk.Granularity
	if granularity == 0 {
		granularity = 100
	}

	dateGranularity := blk.DateGranularity
	if dateGranularity == 0 {
		dateGranularity = 1000
	}

	return &blockContext{
		strings:         strings,
		granularity:     granularity,
		latOffset:       blk.LatOffset,
		lonOffset:       blk.LonOffset,
		dateGranularity: dateGranularity,
	}
}

func (c *blockContext) str(i uint32) string {
	if int(i) >= len(c.strings) {
		return ""
	}

	return c.strings[i]
}

func (c *blockContext) decodeNodes(nodes []*pb.Node, sink Sink) error {
	for _, n := range nodes {
		lat := model.ToDegrees(c.latOffset, c.granularity, n.Lat)
		lon := model.ToDegrees(c.lonOffset, c.granularity, n.Lon)

		if err := sink.VisitNode(model.ID(n.ID), lat, lon); err != nil {
			return err
		}

		if err := c.visitInfo(n.Info, sink); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeDenseNodes(dn *pb.DenseNodes, sink Sink) error {
	if dn == nil {
		return nil
	}

	ids := pb.DeltaDecode(dn.ID)
	lats := pb.DeltaDecode(dn.Lat)
	lons := pb.DeltaDecode(dn.Lon)

	tags := newDenseTagReader(dn.KeysVals)
	infos := newDenseInfoReader(dn.DenseInfo)

	for i := range ids {
		latDeg := model.ToDegrees(c.latOffset, c.granularity, lats[i])
		lonDeg := model.ToDegrees(c.lonOffset, c.granularity, lons[i])

		if err := sink.VisitNode(model.ID(ids[i]), latDeg, lonDeg); err != nil {
			return err
		}

		if info, ok := infos.next(i); ok {
			if err := sink.VisitInfo(info.version, toTimestampMs(c.dateGranularity, info.timestamp),
				info.changeset, model.UID(info.uid), c.str(uint32(info.userSID)), info.visible); err != nil {
				return err
			}
		}

		tags.skip()
	}

	return nil
}

func (c *blockContext) decodeWays(ways []*pb.Way, sink Sink) error {
	for _, w := range ways {
		absolute := pb.DeltaDecode(w.Refs)

		refs := make([]model.ID, len(absolute))
		for i, ref := range absolute {
			refs[i] = model.ID(ref)
		}

		tags := c.decodeTags(w.Keys, w.Vals)

		if err := sink.VisitWay(model.ID(w.ID), refs, tags); err != nil {
			return err
		}

		if err := c.visitInfo(w.Info, sink); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeRelations(relations []*pb.Relation, sink Sink) error {
	for _, r := range relations {
		memIDs := pb.DeltaDecode(r.MemIDs)
		members := make([]model.Member, len(memIDs))

		for i, memID := range memIDs {
			members[i] = model.Member{
				ID:   model.ID(memID),
				Type: decodeMemberType(r.Types[i]),
				Role: c.str(uint32(r.RolesSID[i])),
			}
		}

		tags := c.decodeTags(r.Keys, r.Vals)

		if err := sink.VisitRelation(model.ID(r.ID), members, tags); err != nil {
			return err
		}

		if err := c.visitInfo(r.Info, sink); err != nil {
			return err
		}
	}

	return nil
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) map[string]string {
	tags := make(map[string]string, len(keyIDs))
	for i, keyID := range keyIDs {
		tags[c.str(keyID)] = c.str(valIDs[i])
	}

	return tags
}

func (c *blockContext) visitInfo(info *pb.Info, sink Sink) error {
	if info == nil {
		return nil
	}

	visible := true
	if info.HasVisible {
		visible = info.Visible
	}

	return sink.VisitInfo(info.Version, toTimestampMs(c.dateGranularity, info.Timestamp),
		info.Changeset, model.UID(info.UID), c.str(uint32(info.UserSID)), visible)
}

// denseTagReader walks a DenseNodes.keys_vals stream, one node's tag
// run (terminated by a 0 sentinel) at a time.
type denseTagReader struct {
	keyVals []int32
	i       int
}

func newDenseTagReader(keyVals []int32) *denseTagReader {
	return &denseTagReader{keyVals: keyVals}
}

// skip advances past the current node's tag run. Node tags are part
// of the wire format but are not part of the Visitor contract (only
// way and relation tags are exposed), so the reader just tracks the
// cursor to keep the keys_vals stream aligned across nodes.
func (r *denseTagReader) skip() {
	if r.keyVals == nil {
		return
	}

	for r.i < len(r.keyVals) && r.keyVals[r.i] != 0 {
		r.i += 2
	}

	r.i++
}

type denseInfo struct {
	version   int32
	timestamp int64
	changeset int64
	uid       int64
	userSID   int64
	visible   bool
}

// denseInfoReader walks a DenseInfo's parallel delta-encoded arrays,
// pre-expanded into absolute running-sum values.
type denseInfoReader struct {
	di *pb.DenseInfo

	timestamp []int64
	changeset []int64
	uid       []int32
	userSID   []int32
}

func newDenseInfoReader(di *pb.DenseInfo) *denseInfoReader {
	if di == nil {
		return &denseInfoReader{}
	}

	return &denseInfoReader{
		di:        di,
		timestamp: pb.DeltaDecode(di.Timestamp),
		changeset: pb.DeltaDecode(di.Changeset),
		uid:       pb.DeltaDecode(di.UID),
		userSID:   pb.DeltaDecode(di.UserSID),
	}
}

func (r *denseInfoReader) next(i int) (denseInfo, bool) {
	if r.di == nil || i >= len(r.di.Version) {
		return denseInfo{}, false
	}

	visible := true
	if i < len(r.di.Visible) {
		visible = r.di.Visible[i]
	}

	return denseInfo{
		version:   r.di.Version[i],
		timestamp: valueAt(r.timestamp, i),
		changeset: valueAt(r.changeset, i),
		uid:       int64(valueAt32(r.uid, i)),
		userSID:   int64(valueAt32(r.userSID, i)),
		visible:   visible,
	}, true
}

func valueAt(s []int64, i int) int64 {
	if i >= len(s) {
		return 0
	}

	return s[i]
}

func valueAt32(s []int32, i int) int32 {
	if i >= len(s) {
		return 0
	}

	return s[i]
}

func decodeMemberType(t pb.MemberType) model.EntityType {
	switch t {
	case pb.MemberWay:
		return model.WAY
	case pb.MemberRel:
		return model.RELATION
	default:
		return model.NODE
	}
}

// toTimestampMs converts a raw timestamp count to Unix epoch
// milliseconds given the block's date_granularity.
func toTimestampMs(granularity int32, timestamp int64) int64 {
	return timestamp * int64(granularity)
}
