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

// Package token maps text to a token count under the oracle's tokenization
// scheme. The block-size optimizer's math only holds if this estimate
// agrees with the oracle's server-side accounting within a couple of
// tokens, so callers with access to a real tokenizer should wrap it with
// CountingTokenizer rather than rely on the heuristic.
package token

import "math"

// Tokenizer maps a string to a token count.
type Tokenizer interface {
	Size(text string) int
}

// HeuristicTokenizer approximates token count as ceil(len(text)/4), the
// fallback this package uses when no real tokenizer is available. It
// trades overflow margin for zero setup cost.
type HeuristicTokenizer struct{}

// Size implements Tokenizer.
func (HeuristicTokenizer) Size(text string) int {
	return int(math.Ceil(float64(len(text)) / 4))
}

// CountingFunc is a real tokenizer's counting routine, e.g. a BPE encoder's
// token-count function.
type CountingFunc func(text string) int

// CountingTokenizer adapts a CountingFunc to the Tokenizer interface.
type CountingTokenizer struct {
	Count CountingFunc
}

// Size implements Tokenizer.
func (c CountingTokenizer) Size(text string) int {
	return c.Count(text)
}

// AvgSize returns the mean token size across texts, under tok. Returns 0
// for an empty slice.
func AvgSize(tok Tokenizer, texts []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	total := 0
	for _, t := range texts {
		total += tok.Size(t)
	}
	return float64(total) / float64(len(texts))
}
