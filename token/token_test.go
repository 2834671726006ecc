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

package token

import "testing"

func TestHeuristicTokenizerSize(t *testing.T) {
	tok := HeuristicTokenizer{}
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
	}
	for _, tt := range tests {
		if got := tok.Size(tt.text); got != tt.want {
			t.Errorf("Size(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestCountingTokenizer(t *testing.T) {
	c := CountingTokenizer{Count: func(text string) int { return len(text) }}
	if got := c.Size("hello"); got != 5 {
		t.Errorf("Size() = %d, want 5", got)
	}
}

func TestAvgSize(t *testing.T) {
	tok := HeuristicTokenizer{}
	if got := AvgSize(tok, nil); got != 0 {
		t.Errorf("AvgSize(nil) = %f, want 0", got)
	}

	texts := []string{"abcd", "abcdefgh"} // sizes 1, 2
	if got := AvgSize(tok, texts); got != 1.5 {
		t.Errorf("AvgSize() = %f, want 1.5", got)
	}
}
