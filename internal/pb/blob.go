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

// BlobHeader is fileformat.proto's BlobHeader message.
type BlobHeader struct {
	Type     string
	DataSize int32
}

func (h *BlobHeader) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, h.Type)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(h.DataSize)))

	return b
}

func UnmarshalBlobHeader(b []byte) (*BlobHeader, error) {
	h := &BlobHeader{}
	err := scan(b, func(f field) error {
		switch f.num {
		case 1:
			h.Type = string(f.buf)
		case 3:
			h.DataSize = int32(f.u64)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Blob is fileformat.proto's Blob message, restricted to the raw and
// zlib_data variants this implementation reads and writes.
type Blob struct {
	Raw      []byte
	RawSize  int32
	ZlibData []byte

	// HasOtherCompression is set when decoding encounters lzma_data,
	// OBSOLETE_bzip2_data, lz4_data, or zstd_data, none of which this
	// implementation supports reading.
	HasOtherCompression bool
}

func (b *Blob) Marshal() []byte {
	var out []byte
	if b.Raw != nil {
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, b.Raw)
	}

	out = protowire.AppendTag(out, 2, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(uint32(b.RawSize)))

	if b.ZlibData != nil {
		out = protowire.AppendTag(out, 3, protowire.BytesType)
		out = protowire.AppendBytes(out, b.ZlibData)
	}

	return out
}

func UnmarshalBlob(b []byte) (*Blob, error) {
	out := &Blob{}
	err := scan(b, func(f field) error {
		switch f.num {
		case 1:
			out.Raw = f.buf
		case 2:
			out.RawSize = int32(f.u64)
		case 3:
			out.ZlibData = f.buf
		case 4, 5, 6, 7:
			out.HasOtherCompression = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
