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

// Package encoder implements the encoding block builder: it
// accumulates visited entities, builds a block-local reverse string
// table and delta/offset-packed member arrays, and seals a
// PrimitiveBlock once the batch threshold is reached.
package encoder

// stringTable is a reverse (string -> index) lookup used while
// building a block: index 0 is reserved for the empty string, and
// every other string is assigned the next free index on first use.
type stringTable struct {
	index map[string]int32
	order []string
}

func newStringTable() *stringTable {
	t := &stringTable{index: make(map[string]int32), order: []string{""}}
	t.index[""] = 0

	return t
}

// lookup returns s's index, assigning it the next free index if this
// is the first time s has been seen by this table.
func (t *stringTable) lookup(s string) int32 {
	if i, ok := t.index[s]; ok {
		return i
	}

	i := int32(len(t.order))
	t.index[s] = i
	t.order = append(t.order, s)

	return i
}

func (t *stringTable) strings() []string {
	return t.order
}
