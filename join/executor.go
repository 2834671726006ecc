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

package join

import (
	"context"
	"log/slog"
	"time"

	"github.com/achetronic/semjoin/answer"
	"github.com/achetronic/semjoin/oracle"
	"github.com/achetronic/semjoin/prompt"
	"github.com/achetronic/semjoin/relation"
)

// executeBlock runs one (block1, block2) oracle invocation: build the
// block prompt, measure it, abort before contacting the oracle if the
// remaining budget can't fit a reply, otherwise call, record usage and
// finish reason, and parse the pairs out of the reply. It never returns
// an error: transport failures are folded into an overflow-equivalent
// stat, matching spec.md §7's "timeout is reported as an overflow
// equivalent stat."
func executeBlock(ctx context.Context, client oracle.Client, cfg Config, predicate, model string, block1, block2 relation.Relation) (Stat, []Pair) {
	start := time.Now()

	p := prompt.BuildBlockPrompt(predicate, block1, block2)
	size := cfg.Tokenizer.Size(p)
	maxTokens := cfg.TokenBudget - size

	if maxTokens < 1 {
		slog.Debug("semjoin: block call skipped, budget exhausted by prompt", "prompt_tokens", size, "budget", cfg.TokenBudget)
		return overflowStat(true, time.Since(start).Seconds(), 0, 0), nil
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := client.Complete(callCtx, oracle.CompleteRequest{
		Model:       model,
		Messages:    []oracle.Message{{Role: "user", Content: p}},
		MaxTokens:   maxTokens,
		Temperature: 0,
		Stop:        []string{prompt.FinishToken},
	})
	if err != nil {
		slog.Warn("semjoin: oracle call failed, treating as overflow", "error", err)
		return overflowStat(true, time.Since(start).Seconds(), 0, 0), nil
	}

	overflow := resp.FinishReason != "stop"
	if overflow {
		slog.Debug("semjoin: block call overflowed", "finish_reason", resp.FinishReason)
	}

	stat := overflowStat(overflow, time.Since(start).Seconds(), resp.PromptTokens, resp.CompletionTokens)

	parsed := answer.Parse(resp.Content, len(block1), len(block2))
	if len(parsed) == 0 {
		return stat, nil
	}

	pairs := make([]Pair, len(parsed))
	for i, pr := range parsed {
		pairs[i] = Pair{Tuple1: block1[pr.I].Text, Tuple2: block2[pr.J].Text}
	}
	return stat, pairs
}
