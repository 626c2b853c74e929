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
	"errors"
	"io"

	"github.com/halftrail/osmpbf/internal/decoder"
)

// BlobReader drives a sequence of blob frames from an io.Reader
// against a BlobVisitor. It is the synchronous blob-level counterpart
// to OsmReader.
type BlobReader struct {
	r io.Reader
}

// NewBlobReader returns a BlobReader reading frames from r.
func NewBlobReader(r io.Reader) *BlobReader {
	return &BlobReader{r: r}
}

// Accept repeatedly decodes blob frames and invokes visitor.VisitBlob
// for each, until a clean EOF is reached on the initial length read
// or the visitor's HandleError returns true for some other error. If
// the underlying reader supports seeking, Accept first rewinds it to
// offset 0 so a single BlobReader may be driven more than once.
func (br *BlobReader) Accept(visitor BlobVisitor) error {
	if s, ok := br.r.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return ioErr(err)
		}
	}

	for {
		blob, err := decodeBlob(br.r)
		if err != nil {
			if errors.Is(err, ErrEOF) {
				return nil
			}

			if visitor.HandleError(err) {
				return err
			}

			continue
		}

		if err := visitor.VisitBlob(blob); err != nil {
			if visitor.HandleError(err) {
				return err
			}
		}
	}
}

// OsmReader layers OSM block decoding on top of a BlobReader: each
// blob's payload is unmarshaled as a HeaderBlock or PrimitiveBlock and
// forwarded to a Visitor's entity callbacks.
type OsmReader struct {
	blobs *BlobReader
}

// NewOsmReader returns an OsmReader reading frames from r.
func NewOsmReader(r io.Reader) *OsmReader {
	return &OsmReader{blobs: NewBlobReader(r)}
}

// Accept drives visitor through every header and primitive block in
// the stream, then calls visitor.End once the stream is exhausted. An
// error from End is offered to visitor.HandleError exactly once,
// mirroring the treatment of any other non-EOF decode error.
func (or *OsmReader) Accept(visitor Visitor) error {
	bv := &osmBlobVisitor{delegate: visitor}

	if err := or.blobs.Accept(bv); err != nil {
		return err
	}

	if err := visitor.End(); err != nil {
		visitor.HandleError(err)

		return err
	}

	return nil
}

// osmBlobVisitor adapts a Visitor into a BlobVisitor by decoding each
// blob's payload before forwarding to the entity-level callbacks.
type osmBlobVisitor struct {
	delegate Visitor
}

func (v *osmBlobVisitor) VisitBlob(blob Blob) error {
	switch blob.Type {
	case DataBlob:
		if err := decoder.DecodeBlock(blob.Data, v.delegate); err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return err
			}

			return invalidMessage(err)
		}

		return nil
	case HeaderBlob:
		h, err := decoder.DecodeHeader(blob.Data)
		if err != nil {
			return invalidMessage(err)
		}

		return v.delegate.VisitHeader(h)
	default:
		return nil
	}
}

func (v *osmBlobVisitor) HandleError(err error) bool {
	return v.delegate.HandleError(err)
}
