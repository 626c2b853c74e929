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

// Package osmpbf implements a streaming codec for the OpenStreetMap
// PBF exchange format: framed, zlib-compressed blobs carrying header
// and primitive blocks, exposed through a visitor-style traversal API.
package osmpbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/halftrail/osmpbf/internal/core"
	"github.com/halftrail/osmpbf/internal/pb"
)

// BlobType is the decoded form of a BlobHeader's type tag.
type BlobType int

const (
	// HeaderBlob identifies a blob carrying a HeaderBlock message.
	HeaderBlob BlobType = iota

	// DataBlob identifies a blob carrying a PrimitiveBlock message.
	DataBlob
)

func (t BlobType) String() string {
	switch t {
	case HeaderBlob:
		return headerTypeHeader
	case DataBlob:
		return headerTypeData
	default:
		return "unknown"
	}
}

const (
	headerTypeHeader = "OSMHeader"
	headerTypeData   = "OSMData"

	// maxHeaderLength is the safety bound on a BlobHeader's declared
	// length: 64 KiB.
	maxHeaderLength = 64 * 1024

	// maxBodyLength is the safety bound on a Blob's declared length:
	// 32 MiB.
	maxBodyLength = 32 * 1024 * 1024
)

// Blob is a decoded frame: a type tag plus its decompressed payload
// bytes (a serialized HeaderBlock or PrimitiveBlock message).
type Blob struct {
	Type BlobType
	Data []byte
}

// decodeBlob reads one length-prefixed (BlobHeader, Blob) frame from
// r and returns its type and decompressed payload.
func decodeBlob(r io.Reader) (Blob, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Blob{}, ErrEOF
		}

		return Blob{}, ioErr(err)
	}

	headerLen := int64(binary.BigEndian.Uint32(lenBuf[:]))
	if headerLen >= maxHeaderLength {
		return Blob{}, invalidHeaderLength(headerLen)
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return Blob{}, ioErr(err)
	}

	bh, err := pb.UnmarshalBlobHeader(headerBuf)
	if err != nil {
		return Blob{}, invalidMessage(err)
	}

	bodyLen := int64(bh.DataSize)
	if bodyLen > maxBodyLength {
		return Blob{}, invalidBodyLength(bodyLen)
	}

	bodyBuf := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, bodyBuf); err != nil {
		return Blob{}, ioErr(err)
	}

	body, err := pb.UnmarshalBlob(bodyBuf)
	if err != nil {
		return Blob{}, invalidMessage(err)
	}

	data, err := inflatePayload(body)
	if err != nil {
		return Blob{}, err
	}

	typ, err := blobType(bh.Type)
	if err != nil {
		return Blob{}, err
	}

	return Blob{Type: typ, Data: data}, nil
}

func inflatePayload(blob *pb.Blob) ([]byte, error) {
	switch {
	case blob.ZlibData != nil:
		zr, err := zlib.NewReader(bytes.NewReader(blob.ZlibData))
		if err != nil {
			return nil, invalidBlobFormat("malformed zlib stream: " + err.Error())
		}
		defer zr.Close()

		out := core.NewPooledBuffer()
		defer out.Close()

		if _, err := io.Copy(out, zr); err != nil {
			return nil, invalidBlobFormat("zlib inflate failed: " + err.Error())
		}

		data := make([]byte, out.Len())
		copy(data, out.Bytes())

		return data, nil
	case blob.Raw != nil:
		data := make([]byte, len(blob.Raw))
		copy(data, blob.Raw)

		return data, nil
	case blob.HasOtherCompression:
		return nil, invalidBlobFormat("unsupported compression variant (only zlib_data and raw are supported)")
	default:
		return nil, invalidBlobFormat("blob has no payload")
	}
}

func blobType(t string) (BlobType, error) {
	switch t {
	case headerTypeHeader:
		return HeaderBlob, nil
	case headerTypeData:
		return DataBlob, nil
	default:
		return 0, invalidBlobType(t)
	}
}

// encodeBlob deflates payload at the given zlib compression level and
// writes the framed (BlobHeader, Blob) pair to w.
func encodeBlob(w io.Writer, typ BlobType, payload []byte, level int) error {
	zbuf := core.NewPooledBuffer()
	defer zbuf.Close()

	zw, err := zlib.NewWriterLevel(zbuf, level)
	if err != nil {
		return ioErr(err)
	}

	if _, err := zw.Write(payload); err != nil {
		return ioErr(err)
	}

	if err := zw.Close(); err != nil {
		return ioErr(err)
	}

	zlibData := make([]byte, zbuf.Len())
	copy(zlibData, zbuf.Bytes())

	blob := &pb.Blob{
		RawSize:  int32(len(payload)),
		ZlibData: zlibData,
	}
	body := blob.Marshal()

	bh := &pb.BlobHeader{Type: typ.String(), DataSize: int32(len(body))}
	head := bh.Marshal()

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(head)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return ioErr(err)
	}

	if _, err := w.Write(head); err != nil {
		return ioErr(err)
	}

	if _, err := w.Write(body); err != nil {
		return ioErr(err)
	}

	return nil
}
