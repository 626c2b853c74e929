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

// Package pb is a minimal, hand-written protobuf wire codec for the
// messages defined by the OpenStreetMap PBF format (fileformat.proto
// and osmformat.proto). It exists because those messages arrive here
// as an external schema definition rather than as generated Go code;
// it encodes and decodes exactly the field set this repository needs,
// using google.golang.org/protobuf/encoding/protowire for the
// underlying varint/zigzag/tag primitives.
package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// field is one raw (number, wire type, bytes consumed, value) tuple
// produced while scanning a message's wire bytes.
type field struct {
	num protowire.Number
	typ protowire.Type
	buf []byte // for BytesType: the delimited payload; otherwise unused
	u64 uint64 // for VarintType/Fixed32Type/Fixed64Type
}

// scan walks b and invokes fn for every top-level field. It stops at
// the first malformed tag/value and returns that error.
func scan(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("pb: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var f field
		f.num, f.typ = num, typ

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("pb: invalid varint: %w", protowire.ParseError(n))
			}
			f.u64 = v
			b = b[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return fmt.Errorf("pb: invalid fixed32: %w", protowire.ParseError(n))
			}
			f.u64 = uint64(v)
			b = b[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("pb: invalid fixed64: %w", protowire.ParseError(n))
			}
			f.u64 = v
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("pb: invalid length-delimited field: %w", protowire.ParseError(n))
			}
			f.buf = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("pb: invalid field: %w", protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		if err := fn(f); err != nil {
			return err
		}
	}

	return nil
}

// packedVarints decodes a length-delimited run of varints (used for
// `repeated ... [packed = true]` fields of integer type).
func packedVarints(b []byte) ([]uint64, error) {
	var out []uint64
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid packed varint: %w", protowire.ParseError(n))
		}
		out = append(out, v)
		b = b[n:]
	}

	return out, nil
}

func appendPackedVarints(b []byte, num protowire.Number, vs []uint64) []byte {
	if len(vs) == 0 {
		return b
	}

	var inner []byte
	for _, v := range vs {
		inner = protowire.AppendVarint(inner, v)
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, inner)

	return b
}

func appendPackedSint64(b []byte, num protowire.Number, vs []int64) []byte {
	if len(vs) == 0 {
		return b
	}

	uvs := make([]uint64, len(vs))
	for i, v := range vs {
		uvs[i] = protowire.EncodeZigZag(v)
	}

	return appendPackedVarints(b, num, uvs)
}

func packedSint64(b []byte) ([]int64, error) {
	uvs, err := packedVarints(b)
	if err != nil {
		return nil, err
	}

	vs := make([]int64, len(uvs))
	for i, u := range uvs {
		vs[i] = protowire.DecodeZigZag(u)
	}

	return vs, nil
}

func appendPackedBools(b []byte, num protowire.Number, vs []bool) []byte {
	if len(vs) == 0 {
		return b
	}

	uvs := make([]uint64, len(vs))
	for i, v := range vs {
		if v {
			uvs[i] = 1
		}
	}

	return appendPackedVarints(b, num, uvs)
}

func packedBools(b []byte) ([]bool, error) {
	uvs, err := packedVarints(b)
	if err != nil {
		return nil, err
	}

	vs := make([]bool, len(uvs))
	for i, u := range uvs {
		vs[i] = u != 0
	}

	return vs, nil
}

func int32Slice(uvs []uint64) []int32 {
	vs := make([]int32, len(uvs))
	for i, u := range uvs {
		vs[i] = int32(u)
	}

	return vs
}

func uint32Slice(uvs []uint64) []uint32 {
	vs := make([]uint32, len(uvs))
	for i, u := range uvs {
		vs[i] = uint32(u)
	}

	return vs
}

func uint64SliceFromUint32(vs []uint32) []uint64 {
	uvs := make([]uint64, len(vs))
	for i, v := range vs {
		uvs[i] = uint64(v)
	}

	return uvs
}
