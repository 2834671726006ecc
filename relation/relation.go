// Copyright 2025 achetronic
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

// Package relation holds the data model shared by every join driver: an
// opaque text row, an ordered relation of rows, and the contiguous block
// partitioning used by the block-nested-loops executor.
package relation

// Row is a single tuple of a relation: an opaque text payload plus
// per-relation metadata the join engine carries but never interprets.
type Row struct {
	Text string
	Meta map[string]any
}

// Relation is an ordered, finite sequence of rows. 1-based indexing is
// used only inside prompts sent to the oracle; every API in this module
// is 0-based.
type Relation []Row

// Texts returns the Text column of every row, in order.
func (r Relation) Texts() []string {
	texts := make([]string, len(r))
	for i, row := range r {
		texts[i] = row.Text
	}
	return texts
}

// Partition splits a relation into contiguous blocks of at most size rows,
// preserving input order. The final block may be shorter than size. A
// non-positive size yields a single block containing the whole relation.
func Partition(r Relation, size int) []Relation {
	if size <= 0 {
		if len(r) == 0 {
			return nil
		}
		return []Relation{r}
	}

	var blocks []Relation
	for start := 0; start < len(r); start += size {
		end := start + size
		if end > len(r) {
			end = len(r)
		}
		blocks = append(blocks, r[start:end])
	}
	return blocks
}
