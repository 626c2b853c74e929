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

import "golang.org/x/exp/constraints"

// DeltaEncode returns the running differences between consecutive
// elements of values (values[i] - values[i-1], with an implicit
// values[-1] of 0). This is the representation OSM PBF uses for ids,
// lat/lon, timestamps, changesets, and the other monotonic-ish
// sequences packed into dense nodes, ways, and relations.
func DeltaEncode[T constraints.Signed](values []T) []T {
	out := make([]T, len(values))

	var prev T

	for i, v := range values {
		out[i] = v - prev
		prev = v
	}

	return out
}

// DeltaDecode reverses DeltaEncode: it turns a sequence of deltas back
// into absolute running-sum values.
func DeltaDecode[T constraints.Signed](deltas []T) []T {
	out := make([]T, len(deltas))

	var sum T

	for i, d := range deltas {
		sum += d
		out[i] = sum
	}

	return out
}
