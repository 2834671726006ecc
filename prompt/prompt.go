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

// Package prompt assembles the two prompt shapes the join engine sends to
// the oracle: the block prompt (many pairs, index-pair reply) and the
// tuple prompt (one pair, Yes/No reply).
package prompt

import (
	"fmt"
	"strings"

	"github.com/achetronic/semjoin/relation"
	"github.com/achetronic/semjoin/token"
)

// FinishToken is the literal the oracle is instructed to emit after the
// last index pair, and the stop sequence the oracle client registers for
// block calls. Overflow is not detected from the reply text: a call
// overflows when its finish reason is anything other than "stop".
const FinishToken = "Finished"

// BuildBlockPrompt assembles the block-join instruction: the predicate
// verbatim with a "catch all pairs" directive, the semicolon/Finished
// rules, a 1-indexed listing of block1 then block2, and a trailing
// "Index pairs:" label.
func BuildBlockPrompt(predicate string, block1, block2 relation.Relation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "For each pair (x, y) with x from the first list and y from the second list, "+
		"decide whether the following holds: %s (catch all pairs that satisfy this). "+
		"Separate index pairs by semicolons. Write `%s` after the last pair.\n\n", predicate, FinishToken)

	sb.WriteString("First list:\n")
	for i, row := range block1 {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, row.Text)
	}

	sb.WriteString("\nSecond list:\n")
	for i, row := range block2 {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, row.Text)
	}

	sb.WriteString("\nIndex pairs:")

	return sb.String()
}

// BuildTuplePrompt assembles the tuple Yes/No probe for a single pair.
func BuildTuplePrompt(predicate, left, right string) string {
	return fmt.Sprintf("Does the following hold: %s\n\nFirst: %s\nSecond: %s\n\nAnswer with a single word, Yes or No.",
		predicate, left, right)
}

// StaticBlockSize measures the static (block-content-independent) portion
// of the block prompt, p, by building a prompt with empty blocks and
// measuring it under tok. This isolates the per-call fixed overhead from
// the per-row contributions the block-size optimizer reasons about.
func StaticBlockSize(tok token.Tokenizer, predicate string) int {
	return tok.Size(BuildBlockPrompt(predicate, nil, nil))
}
