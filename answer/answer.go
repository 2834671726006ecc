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

// Package answer extracts index pairs from an oracle's block-prompt reply.
// The parser is total: it never fails, it only discards fragments that
// don't parse cleanly, so commentary, stray text, or off-by-one fantasies
// from the LLM never crash the pipeline.
package answer

import (
	"strconv"
	"strings"
)

// Pair is a parsed, 0-based, bounds-checked index pair into the two
// blocks a reply was parsed against.
type Pair struct {
	I int
	J int
}

// Parse splits reply on ';' and then each fragment on ',', keeping only
// fragments that yield exactly two pure-digit-string parts whose 1-based
// values fall within [1, len1] and [1, len2]. Everything else — the
// trailing "Finished" token, stray commentary, malformed fragments,
// out-of-bounds indices — is silently dropped.
func Parse(reply string, len1, len2 int) []Pair {
	var pairs []Pair

	for _, fragment := range strings.Split(reply, ";") {
		parts := strings.Split(fragment, ",")
		if len(parts) != 2 {
			continue
		}

		xStr := strings.TrimSpace(parts[0])
		yStr := strings.TrimSpace(parts[1])
		if !isDigits(xStr) || !isDigits(yStr) {
			continue
		}

		x, err := strconv.Atoi(xStr)
		if err != nil {
			continue
		}
		y, err := strconv.Atoi(yStr)
		if err != nil {
			continue
		}

		if x < 1 || x > len1 || y < 1 || y > len2 {
			continue
		}

		pairs = append(pairs, Pair{I: x - 1, J: y - 1})
	}

	return pairs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
