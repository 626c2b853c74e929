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

package encoder

import (
	"math"

	"github.com/halftrail/osmpbf/internal/pb"
	"github.com/halftrail/osmpbf/model"
)

// MaxEntityCount is the number of entities (nodes + ways + relations)
// a builder accumulates before it is considered full and must be
// sealed.
const MaxEntityCount = 8000

const (
	granularity     = 100
	dateGranularity = 1000
)

// EntityInfo is the per-entity metadata a caller attaches after
// adding a node, way, or relation — mirroring the order the Visitor
// contract uses (VisitInfo follows VisitNode/VisitWay/VisitRelation).
type EntityInfo struct {
	Version     int32
	TimestampMs int64
	Changeset   int64
	UID         model.UID
	UserSID     string
	Visible     bool
}

type nodeEntry struct {
	id       model.ID
	lat, lon model.Degrees
	info     *EntityInfo
}

type wayEntry struct {
	id   model.ID
	refs []model.ID
	tags map[string]string
	info *EntityInfo
}

type relationEntry struct {
	id      model.ID
	members []model.Member
	tags    map[string]string
	info    *EntityInfo
}

// Builder accumulates visited entities into a single in-progress
// primitive block.
type Builder struct {
	nodes     []nodeEntry
	ways      []wayEntry
	relations []relationEntry
	lastKind  entityKind

	maxEntityCount int
}

// Option configures a Builder at construction time, following the
// functional-options pattern the wider codebase uses for encoder/
// decoder construction.
type Option func(*Builder)

// WithMaxEntityCount overrides the default MaxEntityCount (8000)
// threshold at which a Builder considers itself Full and must be
// sealed. Most callers should leave it at the default, which keeps
// sealed blocks comfortably under the 32 MiB blob body limit for
// typical tag sizes.
func WithMaxEntityCount(n int) Option {
	return func(b *Builder) {
		b.maxEntityCount = n
	}
}

// NewBuilder returns an empty Builder, applying any Options over the
// MaxEntityCount default.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{maxEntityCount: MaxEntityCount}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// AddNode appends a node to the in-progress block.
func (b *Builder) AddNode(id model.ID, lat, lon model.Degrees) {
	b.nodes = append(b.nodes, nodeEntry{id: id, lat: lat, lon: lon})
	b.lastKind = kindNode
}

// AddWay appends a way to the in-progress block.
func (b *Builder) AddWay(id model.ID, refs []model.ID, tags map[string]string) {
	b.ways = append(b.ways, wayEntry{id: id, refs: refs, tags: tags})
	b.lastKind = kindWay
}

// AddRelation appends a relation to the in-progress block.
func (b *Builder) AddRelation(id model.ID, members []model.Member, tags map[string]string) {
	b.relations = append(b.relations, relationEntry{id: id, members: members, tags: tags})
	b.lastKind = kindRelation
}

// SetPendingInfo attaches info to the most recently added entity,
// mirroring the Visitor contract's VisitInfo-follows-VisitNode/
// VisitWay/VisitRelation ordering. It is a no-op if nothing has been
// added yet.
func (b *Builder) SetPendingInfo(info EntityInfo) {
	switch b.lastKind {
	case kindNode:
		b.nodes[len(b.nodes)-1].info = &info
	case kindWay:
		b.ways[len(b.ways)-1].info = &info
	case kindRelation:
		b.relations[len(b.relations)-1].info = &info
	}
}

type entityKind int

const (
	kindNone entityKind = iota
	kindNode
	kindWay
	kindRelation
)

// Count returns the number of entities accumulated so far.
func (b *Builder) Count() int {
	return len(b.nodes) + len(b.ways) + len(b.relations)
}

// Full reports whether the builder has reached its configured entity
// count threshold (MaxEntityCount unless overridden by WithMaxEntityCount).
func (b *Builder) Full() bool {
	return b.Count() >= b.maxEntityCount
}

// Empty reports whether the builder has no pending entities.
func (b *Builder) Empty() bool {
	return b.Count() == 0
}

// Seal builds a PrimitiveBlock from the accumulated entities and
// resets the builder for the next batch.
func (b *Builder) Seal() *pb.PrimitiveBlock {
	table := newStringTable()

	latOffset, lonOffset := b.computeOffsets()

	// One group per non-empty kind; a group never mixes kinds.
	var groups []*pb.PrimitiveGroup

	if dense := b.buildDenseNodes(table, latOffset, lonOffset); dense != nil {
		groups = append(groups, &pb.PrimitiveGroup{Dense: dense})
	}

	if ways := b.buildWays(table); ways != nil {
		groups = append(groups, &pb.PrimitiveGroup{Ways: ways})
	}

	if relations := b.buildRelations(table); relations != nil {
		groups = append(groups, &pb.PrimitiveGroup{Relations: relations})
	}

	blk := &pb.PrimitiveBlock{
		StringTable:     &pb.StringTable{S: encodeStrings(table.strings())},
		PrimitiveGroup:  groups,
		Granularity:     granularity,
		LatOffset:       latOffset,
		LonOffset:       lonOffset,
		DateGranularity: dateGranularity,
	}

	b.nodes = nil
	b.ways = nil
	b.relations = nil

	return blk
}

func encodeStrings(ss []string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}

	return out
}

// computeOffsets returns the minimum quantized lat/lon across the
// node buffer, or (0, 0) if there are none.
func (b *Builder) computeOffsets() (latOffset, lonOffset int64) {
	if len(b.nodes) == 0 {
		return 0, 0
	}

	minLat := quantize(b.nodes[0].lat)
	minLon := quantize(b.nodes[0].lon)

	for _, n := range b.nodes[1:] {
		if v := quantize(n.lat); v < minLat {
			minLat = v
		}

		if v := quantize(n.lon); v < minLon {
			minLon = v
		}
	}

	return minLat, minLon
}

// quantize converts Degrees to raw nanodegree integer units, flooring
// so the mapping is monotone across the sign boundary.
func quantize(d model.Degrees) int64 {
	return int64(math.Floor(float64(d) * 1e9))
}

func (b *Builder) buildDenseNodes(table *stringTable, latOffset, lonOffset int64) *pb.DenseNodes {
	if len(b.nodes) == 0 {
		return nil
	}

	ids := make([]int64, len(b.nodes))
	lats := make([]int64, len(b.nodes))
	lons := make([]int64, len(b.nodes))
	keysVals := make([]int32, len(b.nodes))

	hasInfo := false

	for i, n := range b.nodes {
		ids[i] = int64(n.id)
		// Round to the nearest granularity unit; truncating here would
		// let the quantization error reach a full granularity step.
		lats[i] = (quantize(n.lat) - latOffset + granularity/2) / granularity
		lons[i] = (quantize(n.lon) - lonOffset + granularity/2) / granularity
		keysVals[i] = 0 // nodes carry no tags through the visitor API

		if n.info != nil {
			hasInfo = true
		}
	}

	dn := &pb.DenseNodes{
		ID:       pb.DeltaEncode(ids),
		Lat:      pb.DeltaEncode(lats),
		Lon:      pb.DeltaEncode(lons),
		KeysVals: keysVals,
	}

	if hasInfo {
		dn.DenseInfo = buildDenseInfo(table, b.nodes)
	}

	return dn
}

func buildDenseInfo(table *stringTable, nodes []nodeEntry) *pb.DenseInfo {
	version := make([]int32, len(nodes))
	timestamp := make([]int64, len(nodes))
	changeset := make([]int64, len(nodes))
	uid := make([]int32, len(nodes))
	userSID := make([]int32, len(nodes))
	visible := make([]bool, len(nodes))

	for i, n := range nodes {
		info := n.info
		if info == nil {
			visible[i] = true

			continue
		}

		version[i] = info.Version
		timestamp[i] = info.TimestampMs / dateGranularity
		changeset[i] = info.Changeset
		uid[i] = int32(info.UID)
		userSID[i] = table.lookup(info.UserSID)
		visible[i] = info.Visible
	}

	return &pb.DenseInfo{
		Version:   version,
		Timestamp: pb.DeltaEncode(timestamp),
		Changeset: pb.DeltaEncode(changeset),
		UID:       pb.DeltaEncode(uid),
		UserSID:   pb.DeltaEncode(userSID),
		Visible:   visible,
	}
}

func (b *Builder) buildWays(table *stringTable) []*pb.Way {
	if len(b.ways) == 0 {
		return nil
	}

	out := make([]*pb.Way, len(b.ways))

	for i, w := range b.ways {
		keys, vals := encodeTags(table, w.tags)

		absolute := make([]int64, len(w.refs))
		for j, ref := range w.refs {
			absolute[j] = int64(ref)
		}

		out[i] = &pb.Way{
			ID:   int64(w.id),
			Keys: keys,
			Vals: vals,
			Info: encodeInfo(table, w.info),
			Refs: pb.DeltaEncode(absolute),
		}
	}

	return out
}

func (b *Builder) buildRelations(table *stringTable) []*pb.Relation {
	if len(b.relations) == 0 {
		return nil
	}

	out := make([]*pb.Relation, len(b.relations))

	for i, r := range b.relations {
		keys, vals := encodeTags(table, r.tags)

		absolute := make([]int64, len(r.members))
		roles := make([]int32, len(r.members))
		types := make([]pb.MemberType, len(r.members))

		for j, m := range r.members {
			absolute[j] = int64(m.ID)
			roles[j] = table.lookup(m.Role)
			types[j] = encodeMemberType(m.Type)
		}

		out[i] = &pb.Relation{
			ID:       int64(r.id),
			Keys:     keys,
			Vals:     vals,
			Info:     encodeInfo(table, r.info),
			RolesSID: roles,
			MemIDs:   pb.DeltaEncode(absolute),
			Types:    types,
		}
	}

	return out
}

func encodeTags(table *stringTable, tags map[string]string) (keys, vals []uint32) {
	keys = make([]uint32, 0, len(tags))
	vals = make([]uint32, 0, len(tags))

	for k, v := range tags {
		keys = append(keys, uint32(table.lookup(k)))
		vals = append(vals, uint32(table.lookup(v)))
	}

	return keys, vals
}

func encodeInfo(table *stringTable, info *EntityInfo) *pb.Info {
	if info == nil {
		return nil
	}

	return &pb.Info{
		Version:    info.Version,
		Timestamp:  info.TimestampMs / dateGranularity,
		Changeset:  info.Changeset,
		UID:        int32(info.UID),
		UserSID:    table.lookup(info.UserSID),
		Visible:    info.Visible,
		HasVisible: true,
	}
}

func encodeMemberType(t model.EntityType) pb.MemberType {
	switch t {
	case model.WAY:
		return pb.MemberWay
	case model.RELATION:
		return pb.MemberRel
	default:
		return pb.MemberNode
	}
}
