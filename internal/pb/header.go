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

// HeaderBBox is osmformat.proto's HeaderBBox message. Units are
// nanodegrees, as for node coordinates.
type HeaderBBox struct {
	Left, Right, Top, Bottom int64
}

// HeaderBlock is osmformat.proto's HeaderBlock message.
type HeaderBlock struct {
	BBox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	WritingProgram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseURL        string
}

func (h *HeaderBlock) Marshal() []byte {
	var b []byte
	if h.BBox != nil {
		var bbox []byte
		bbox = protowire.AppendTag(bbox, 1, protowire.VarintType)
		bbox = protowire.AppendVarint(bbox, protowire.EncodeZigZag(h.BBox.Left))
		bbox = protowire.AppendTag(bbox, 2, protowire.VarintType)
		bbox = protowire.AppendVarint(bbox, protowire.EncodeZigZag(h.BBox.Right))
		bbox = protowire.AppendTag(bbox, 3, protowire.VarintType)
		bbox = protowire.AppendVarint(bbox, protowire.EncodeZigZag(h.BBox.Top))
		bbox = protowire.AppendTag(bbox, 4, protowire.VarintType)
		bbox = protowire.AppendVarint(bbox, protowire.EncodeZigZag(h.BBox.Bottom))

		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, bbox)
	}

	for _, s := range h.RequiredFeatures {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}

	for _, s := range h.OptionalFeatures {
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}

	if h.WritingProgram != "" {
		b = protowire.AppendTag(b, 16, protowire.BytesType)
		b = protowire.AppendString(b, h.WritingProgram)
	}

	if h.Source != "" {
		b = protowire.AppendTag(b, 17, protowire.BytesType)
		b = protowire.AppendString(b, h.Source)
	}

	if h.OsmosisReplicationTimestamp != 0 {
		b = protowire.AppendTag(b, 32, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.OsmosisReplicationTimestamp))
	}

	if h.OsmosisReplicationSequenceNumber != 0 {
		b = protowire.AppendTag(b, 33, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.OsmosisReplicationSequenceNumber))
	}

	if h.OsmosisReplicationBaseURL != "" {
		b = protowire.AppendTag(b, 34, protowire.BytesType)
		b = protowire.AppendString(b, h.OsmosisReplicationBaseURL)
	}

	return b
}

func UnmarshalHeaderBlock(b []byte) (*HeaderBlock, error) {
	h := &HeaderBlock{}
	err := scan(b, func(f field) error {
		switch f.num {
		case 1:
			bbox := &HeaderBBox{}

			return scan(f.buf, func(bf field) error {
				switch bf.num {
				case 1:
					bbox.Left = protowire.DecodeZigZag(bf.u64)
				case 2:
					bbox.Right = protowire.DecodeZigZag(bf.u64)
				case 3:
					bbox.Top = protowire.DecodeZigZag(bf.u64)
				case 4:
					bbox.Bottom = protowire.DecodeZigZag(bf.u64)
				}

				h.BBox = bbox

				return nil
			})
		case 4:
			h.RequiredFeatures = append(h.RequiredFeatures, string(f.buf))
		case 5:
			h.OptionalFeatures = append(h.OptionalFeatures, string(f.buf))
		case 16:
			h.WritingProgram = string(f.buf)
		case 17:
			h.Source = string(f.buf)
		case 32:
			h.OsmosisReplicationTimestamp = int64(f.u64)
		case 33:
			h.OsmosisReplicationSequenceNumber = int64(f.u64)
		case 34:
			h.OsmosisReplicationBaseURL = string(f.buf)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return h, nil
}
