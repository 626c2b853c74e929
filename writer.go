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
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/halftrail/osmpbf/internal/encoder"
	"github.com/halftrail/osmpbf/internal/pb"
	"github.com/halftrail/osmpbf/model"
)

// WriterVisitor is a Visitor that re-serializes every entity it is
// handed back out to an io.Writer as framed, zlib-compressed blobs.
// It is the counterpart to OsmReader/Visitor for building a
// filter or transformation pipeline: feed it the output of a reader's
// traversal (optionally dropping or rewriting entities along the way)
// and it reproduces a valid PBF file.
type WriterVisitor struct {
	BaseVisitor

	w              io.Writer
	builder        *encoder.Builder
	compressionLvl int
}

// WriterOption configures a WriterVisitor at construction time,
// mirroring the teacher's functional-options EncoderOption pattern.
type WriterOption func(*WriterVisitor)

// WithMaxEntityCount overrides the builder's default batching
// threshold (encoder.MaxEntityCount, 8000 entities per block).
func WithMaxEntityCount(n int) WriterOption {
	return func(wv *WriterVisitor) {
		wv.builder = encoder.NewBuilder(encoder.WithMaxEntityCount(n))
	}
}

// WithCompressionLevel overrides the zlib compression level used when
// framing blobs. The default is zlib.BestCompression; any level
// compress/zlib accepts works, including zlib.BestSpeed for faster,
// larger output.
func WithCompressionLevel(level int) WriterOption {
	return func(wv *WriterVisitor) {
		wv.compressionLvl = level
	}
}

// NewWriterVisitor returns a WriterVisitor writing framed blobs to w.
func NewWriterVisitor(w io.Writer, opts ...WriterOption) *WriterVisitor {
	wv := &WriterVisitor{w: w, builder: encoder.NewBuilder(), compressionLvl: zlib.BestCompression}
	for _, opt := range opts {
		opt(wv)
	}

	return wv
}

// VisitHeader writes header immediately as an "OSMHeader" blob;
// headers are not batched.
func (wv *WriterVisitor) VisitHeader(header *model.Header) error {
	hb := toHeaderBlock(header)

	return encodeBlob(wv.w, HeaderBlob, hb.Marshal(), wv.compressionLvl)
}

// VisitNode appends a node to the in-progress block, sealing and
// flushing it first if it is already full.
func (wv *WriterVisitor) VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error {
	if err := wv.sealIfFull(); err != nil {
		return err
	}

	wv.builder.AddNode(id, latDeg, lonDeg)

	return nil
}

// VisitWay appends a way to the in-progress block.
func (wv *WriterVisitor) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	if err := wv.sealIfFull(); err != nil {
		return err
	}

	wv.builder.AddWay(id, refs, tags)

	return nil
}

// VisitRelation appends a relation to the in-progress block.
func (wv *WriterVisitor) VisitRelation(id model.ID, members []model.Member, tags map[string]string) error {
	if err := wv.sealIfFull(); err != nil {
		return err
	}

	wv.builder.AddRelation(id, members, tags)

	return nil
}

// VisitInfo attaches metadata to the entity most recently passed to
// VisitNode/VisitWay/VisitRelation.
func (wv *WriterVisitor) VisitInfo(version int32, timestampMs, changeset int64, uid model.UID, userSID string, visible bool) error {
	wv.builder.SetPendingInfo(encoder.EntityInfo{
		Version:     version,
		TimestampMs: timestampMs,
		Changeset:   changeset,
		UID:         uid,
		UserSID:     userSID,
		Visible:     visible,
	})

	return nil
}

// End flushes any still-in-progress partial block.
func (wv *WriterVisitor) End() error {
	if wv.builder.Empty() {
		return nil
	}

	return wv.flush()
}

func (wv *WriterVisitor) sealIfFull() error {
	if !wv.builder.Full() {
		return nil
	}

	return wv.flush()
}

func (wv *WriterVisitor) flush() error {
	blk := wv.builder.Seal()

	return encodeBlob(wv.w, DataBlob, blk.Marshal(), wv.compressionLvl)
}

func toHeaderBlock(h *model.Header) *pb.HeaderBlock {
	hb := &pb.HeaderBlock{
		RequiredFeatures:                 h.RequiredFeatures,
		OptionalFeatures:                 h.OptionalFeatures,
		WritingProgram:                   h.WritingProgram,
		Source:                           h.Source,
		OsmosisReplicationSequenceNumber: h.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        h.OsmosisReplicationBaseURL,
	}

	if !h.OsmosisReplicationTimestamp.IsZero() {
		hb.OsmosisReplicationTimestamp = h.OsmosisReplicationTimestamp.Unix()
	}

	if h.BoundingBox != nil {
		hb.BBox = &pb.HeaderBBox{
			Left:   quantizeNano(h.BoundingBox.Left),
			Right:  quantizeNano(h.BoundingBox.Right),
			Top:    quantizeNano(h.BoundingBox.Top),
			Bottom: quantizeNano(h.BoundingBox.Bottom),
		}
	}

	return hb
}

func quantizeNano(d model.Degrees) int64 {
	return int64(float64(d) * 1e9)
}
