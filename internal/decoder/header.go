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

// Package decoder implements the OSM block codec (read side): turning
// a decompressed HeaderBlock or PrimitiveBlock payload into the typed
// model and the sequence of callbacks a Visitor expects.
package decoder

import (
	"time"

	"github.com/halftrail/osmpbf/internal/pb"
	"github.com/halftrail/osmpbf/model"
)

const coordinatesPerDegree = 1e-9

// DecodeHeader unmarshals a HeaderBlock payload into a model.Header.
func DecodeHeader(data []byte) (*model.Header, error) {
	hb, err := pb.UnmarshalHeaderBlock(data)
	if err != nil {
		return nil, err
	}

	h := &model.Header{
		RequiredFeatures:                 hb.RequiredFeatures,
		OptionalFeatures:                 hb.OptionalFeatures,
		WritingProgram:                   hb.WritingProgram,
		Source:                           hb.Source,
		OsmosisReplicationSequenceNumber: hb.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        hb.OsmosisReplicationBaseURL,
	}

	if hb.BBox != nil {
		h.BoundingBox = &model.BoundingBox{
			Left:   toDegrees(hb.BBox.Left),
			Right:  toDegrees(hb.BBox.Right),
			Top:    toDegrees(hb.BBox.Top),
			Bottom: toDegrees(hb.BBox.Bottom),
		}
	}

	if hb.OsmosisReplicationTimestamp != 0 {
		h.OsmosisReplicationTimestamp = time.Unix(hb.OsmosisReplicationTimestamp, 0).UTC()
	}

	return h, nil
}

// toDegrees converts a HeaderBBox coordinate (already in nanodegree
// units, no block offset/granularity applies to it) to Degrees.
func toDegrees(v int64) model.Degrees {
	return model.Degrees(float64(v) * coordinatesPerDegree)
}
