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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaEncodeMonotone(t *testing.T) {
	values := []int64{1, 2, 3, 5, 8, 12}
	assert.Equal(t, []int64{1, 1, 1, 2, 3, 4}, DeltaEncode(values))
}

func TestDeltaEncodeNonMonotone(t *testing.T) {
	values := []int64{100, 5, -3, -3, 1000}
	assert.Equal(t, []int64{100, -95, -8, 0, 1003}, DeltaEncode(values))
}

func TestDeltaEncodeEmpty(t *testing.T) {
	assert.Equal(t, []int64{}, DeltaEncode[int64](nil))
}

func TestDeltaIdempotence(t *testing.T) {
	cases := [][]int64{
		{},
		{0},
		{1, 2, 3, 5, 8, 12},
		{100, 5, -3, -3, 1000},
		{-1, -2, -3},
	}

	for _, values := range cases {
		deltas := DeltaEncode(values)
		assert.Equal(t, values, DeltaDecode(deltas))
	}
}
