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
	"strings"
	"time"

	"github.com/achetronic/semjoin/oracle"
	"github.com/achetronic/semjoin/prompt"
	"github.com/achetronic/semjoin/relation"
)

// TupleJoin is the degenerate 1x1 block variant: it probes every pair of
// R1 x R2 with a Yes/No prompt and keeps the pair iff the oracle answers
// exactly "Yes" (after trimming whitespace). Unlike BlockJoin/AdaptiveJoin,
// there's no block-size math and no overflow concept worth tracking, since
// a one-token reply can't be truncated in any way that matters here — so
// the returned Stat.Overflow is left nil.
func TupleJoin(ctx context.Context, client oracle.Client, r1, r2 relation.Relation, predicate, model string, opts ...Option) ([]Stat, []Pair) {
	cfg := newConfig(opts)

	var stats []Stat
	var pairs []Pair

	for _, left := range r1 {
		for _, right := range r2 {
			stat, accepted := tupleProbe(ctx, client, cfg, predicate, model, left.Text, right.Text)
			stats = append(stats, stat)
			if accepted {
				pairs = append(pairs, Pair{Tuple1: left.Text, Tuple2: right.Text})
			}
		}
	}
	return stats, pairs
}

func tupleProbe(ctx context.Context, client oracle.Client, cfg Config, predicate, model, left, right string) (Stat, bool) {
	start := time.Now()

	callCtx := ctx
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := client.Complete(callCtx, oracle.CompleteRequest{
		Model:       model,
		Messages:    []oracle.Message{{Role: "user", Content: prompt.BuildTuplePrompt(predicate, left, right)}},
		MaxTokens:   1,
		Temperature: 0,
	})
	if err != nil {
		return Stat{Seconds: time.Since(start).Seconds()}, false
	}

	stat := Stat{
		TokensRead:    resp.PromptTokens,
		TokensWritten: resp.CompletionTokens,
		Seconds:       time.Since(start).Seconds(),
	}
	return stat, strings.TrimSpace(resp.Content) == "Yes"
}
