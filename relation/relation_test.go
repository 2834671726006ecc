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

package relation

import (
	"reflect"
	"testing"
)

func TestPartition(t *testing.T) {
	r := Relation{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}, {Text: "e"}}

	tests := []struct {
		name string
		size int
		want []int // lengths of expected blocks
	}{
		{"even split", 2, []int{2, 2, 1}},
		{"exact split", 5, []int{5}},
		{"oversized block", 10, []int{5}},
		{"size one", 1, []int{1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Partition(r, tt.size)
			if len(blocks) != len(tt.want) {
				t.Fatalf("got %d blocks, want %d", len(blocks), len(tt.want))
			}
			for i, b := range blocks {
				if len(b) != tt.want[i] {
					t.Errorf("block %d: got len %d, want %d", i, len(b), tt.want[i])
				}
			}
		})
	}

	// Order is preserved across blocks.
	blocks := Partition(r, 2)
	got := append(append([]Row{}, blocks[0]...), blocks[1]...)
	got = append(got, blocks[2]...)
	if !reflect.DeepEqual(Relation(got), r) {
		t.Errorf("partition did not preserve order: got %+v, want %+v", got, r)
	}
}

func TestPartitionEmpty(t *testing.T) {
	if blocks := Partition(nil, 4); blocks != nil {
		t.Errorf("expected nil blocks for empty relation, got %+v", blocks)
	}
}

func TestTexts(t *testing.T) {
	r := Relation{{Text: "x"}, {Text: "y"}}
	got := r.Texts()
	want := []string{"x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
