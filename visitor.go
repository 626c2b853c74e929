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

import "github.com/halftrail/osmpbf/model"

// BlobVisitor receives one callback per framed blob encountered by a
// BlobReader. It knows nothing about OSM semantics; OsmReader is built
// on top of it to decode blob payloads into entity callbacks.
type BlobVisitor interface {
	// VisitBlob is called once per successfully decoded blob. A
	// non-nil error is offered to HandleError, which decides whether
	// the read loop aborts.
	VisitBlob(blob Blob) error

	// HandleError is offered every decode error other than a clean
	// EOF. Returning true aborts the read loop; returning false lets
	// the reader attempt the next frame.
	HandleError(err error) bool
}

// Visitor receives one callback per OSM construct encountered while
// traversing a PBF file: the header, then each block's string table
// and per-group entities, in the order they are stored. All methods
// return an error so an implementation can abort a traversal; a nil
// embedded BaseVisitor answers every callback with (nil, true) for
// HandleError and nil otherwise, so embedders need only implement the
// callbacks they care about.
type Visitor interface {
	BlobVisitor

	// VisitHeader is called once, if the file has a header blob.
	VisitHeader(header *model.Header) error

	// VisitBlock is called once per primitive block, before its
	// groups are visited, with the block's coordinate and timestamp
	// quantization parameters.
	VisitBlock(latOffset, lonOffset int64, granularity, dateGranularity int32) error

	// VisitStringTable is called once per primitive block with the
	// block's resolved string table (index 0 is the empty string).
	VisitStringTable(strings []string) error

	// VisitGroup marks the start of one primitive group within the
	// current block.
	VisitGroup() error

	// EndGroup marks the end of the current primitive group.
	EndGroup() error

	// VisitNode is called once per node, sparse or dense, with its
	// dequantized coordinates.
	VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error

	// VisitWay is called once per way with its delta-decoded member
	// node ids and resolved tags.
	VisitWay(id model.ID, refs []model.ID, tags map[string]string) error

	// VisitRelation is called once per relation with its resolved
	// members and tags.
	VisitRelation(id model.ID, members []model.Member, tags map[string]string) error

	// VisitInfo follows the VisitNode/VisitWay/VisitRelation call for
	// an entity that carries metadata.
	VisitInfo(version int32, timestampMs int64, changeset int64, uid model.UID, userSID string, visible bool) error

	// EndBlock is called once per primitive block after all of its
	// groups have been visited.
	EndBlock() error

	// End is called once, after the blob stream has been exhausted.
	End() error
}

// BaseVisitor implements Visitor with no-op defaults for every
// callback, so concrete visitors can embed it and override only the
// methods relevant to them.
type BaseVisitor struct{}

var _ Visitor = BaseVisitor{}

func (BaseVisitor) VisitBlob(Blob) error            { return nil }
func (BaseVisitor) HandleError(error) bool          { return true }
func (BaseVisitor) VisitHeader(*model.Header) error { return nil }

func (BaseVisitor) VisitBlock(latOffset, lonOffset int64, granularity, dateGranularity int32) error {
	return nil
}

func (BaseVisitor) VisitStringTable([]string) error { return nil }
func (BaseVisitor) VisitGroup() error               { return nil }
func (BaseVisitor) EndGroup() error                 { return nil }

func (BaseVisitor) VisitNode(model.ID, model.Degrees, model.Degrees) error { return nil }

func (BaseVisitor) VisitWay(model.ID, []model.ID, map[string]string) error { return nil }

func (BaseVisitor) VisitRelation(model.ID, []model.Member, map[string]string) error {
	return nil
}

func (BaseVisitor) VisitInfo(int32, int64, int64, model.UID, string, bool) error { return nil }

func (BaseVisitor) EndBlock() error { return nil }
func (BaseVisitor) End() error      { return nil }
