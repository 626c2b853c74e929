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
	"time"

	"github.com/halftrail/osmpbf/model"
)

// CollectingVisitor is a Visitor that materializes every entity it
// sees into a model.Entity (model.Node, model.Way, or model.Relation),
// in traversal order. It trades the streaming Visitor contract's
// constant memory footprint for a one-shot, in-memory representation
// callers can range over afterward — a convenience for short files and
// tests, not a replacement for the streaming API on anything that
// approaches the 32 MiB blob body limit.
type CollectingVisitor struct {
	BaseVisitor

	Header   *model.Header
	Entities []model.Entity

	last int // index into Entities the next VisitInfo applies to, or -1
}

// NewCollectingVisitor returns an empty CollectingVisitor.
func NewCollectingVisitor() *CollectingVisitor {
	return &CollectingVisitor{last: -1}
}

func (c *CollectingVisitor) VisitHeader(header *model.Header) error {
	c.Header = header

	return nil
}

func (c *CollectingVisitor) VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error {
	c.Entities = append(c.Entities, model.Node{ID: id, Lat: latDeg, Lon: lonDeg})
	c.last = len(c.Entities) - 1

	return nil
}

func (c *CollectingVisitor) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	c.Entities = append(c.Entities, model.Way{ID: id, Tags: tags, NodeIDs: refs})
	c.last = len(c.Entities) - 1

	return nil
}

func (c *CollectingVisitor) VisitRelation(id model.ID, members []model.Member, tags map[string]string) error {
	c.Entities = append(c.Entities, model.Relation{ID: id, Tags: tags, Members: members})
	c.last = len(c.Entities) - 1

	return nil
}

// VisitInfo attaches metadata to the entity most recently appended by
// VisitNode/VisitWay/VisitRelation, rebuilding each concrete entity
// with its Info populated since model.Entity's variants are values,
// not pointers.
func (c *CollectingVisitor) VisitInfo(version int32, timestampMs, changeset int64, uid model.UID, userSID string, visible bool) error {
	if c.last < 0 {
		return nil
	}

	info := &model.Info{
		Version:   version,
		UID:       uid,
		Timestamp: time.UnixMilli(timestampMs).UTC(),
		Changeset: changeset,
		User:      userSID,
		Visible:   visible,
	}

	switch e := c.Entities[c.last].(type) {
	case model.Node:
		e.Info = info
		c.Entities[c.last] = e
	case model.Way:
		e.Info = info
		c.Entities[c.last] = e
	case model.Relation:
		e.Info = info
		c.Entities[c.last] = e
	}

	return nil
}
