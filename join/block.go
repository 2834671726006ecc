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
	"sync"

	"github.com/achetronic/semjoin/oracle"
	"github.com/achetronic/semjoin/optimize"
	"github.com/achetronic/semjoin/prompt"
	"github.com/achetronic/semjoin/relation"
	"github.com/achetronic/semjoin/token"
)

// BlockJoin drives the block-nested-loops double loop: it sizes blocks for
// the given selectivity estimate, partitions both relations, and runs
// executeBlock over every block pair in row-major order. In the normal
// (feasible) case it stops as soon as one invocation overflows — the
// signal AdaptiveJoin uses to retry with a larger estimate. When Fanout >
// 1, up to that many block pairs run concurrently; statistics are still
// returned in call-issue order, and pairs from calls issued after the
// first overflow are discarded from the result even if they finish
// (spec.md §5's ordering and commit rules).
//
// infeasible reports whether optimize.BlockSize itself found no feasible
// (b1, b2) at this selectivity: the run was forced down to the 1x1 floor
// and, per spec.md §4.3 and testable property 7, early-exit is suppressed
// so every one of the |R1|*|R2| 1x1 calls is attempted rather than
// stopping at the first abort — an aborted call never reached the oracle,
// so it carries no selectivity signal worth cutting the run short for.
// The caller is expected to treat infeasible as terminal rather than a
// signal to retry at a larger estimate, since the 1x1 floor can't shrink
// any further and re-escalating reproduces the exact same infeasible run.
func BlockJoin(ctx context.Context, client oracle.Client, r1, r2 relation.Relation, predicate, model string, selectivity float64, opts ...Option) (stats []Stat, pairs []Pair, infeasible bool) {
	cfg := newConfig(opts)

	if len(r1) == 0 || len(r2) == 0 {
		return nil, nil, false
	}

	s1 := token.AvgSize(cfg.Tokenizer, r1.Texts())
	s2 := token.AvgSize(cfg.Tokenizer, r2.Texts())
	p := prompt.StaticBlockSize(cfg.Tokenizer, predicate)

	b1, b2 := optimize.BlockSize(s1, s2, cfg.PairSize, cfg.TokenBudget, p, selectivity)
	infeasible = b1 < 1 || b2 < 1
	if b1 < 1 {
		b1 = 1
	}
	if b2 < 1 {
		b2 = 1
	}
	if infeasible {
		slog.Info("semjoin: block size optimizer reports infeasible configuration, running every 1x1 pair without early exit", "selectivity", selectivity, "static_prompt_tokens", p)
	}
	slog.Debug("semjoin: block size chosen", "b1", b1, "b2", b2, "selectivity", selectivity, "static_prompt_tokens", p)

	blocks1 := relation.Partition(r1, b1)
	blocks2 := relation.Partition(r2, b2)
	stopOnOverflow := !infeasible

	if cfg.Fanout <= 1 {
		stats, pairs = blockJoinSequential(ctx, client, cfg, predicate, model, blocks1, blocks2, stopOnOverflow)
	} else {
		stats, pairs = blockJoinConcurrent(ctx, client, cfg, predicate, model, blocks1, blocks2, stopOnOverflow)
	}
	return stats, pairs, infeasible
}

// blockJoinSequential runs every (block1, block2) pair in row-major order.
// With stopOnOverflow, it breaks out and returns as soon as one call
// overflows (C8's early exit); without it, every pair runs to completion
// and any call that didn't overflow still contributes its pairs.
func blockJoinSequential(ctx context.Context, client oracle.Client, cfg Config, predicate, model string, blocks1, blocks2 []relation.Relation, stopOnOverflow bool) ([]Stat, []Pair) {
	var stats []Stat
	var pairs []Pair

	for _, block1 := range blocks1 {
		for _, block2 := range blocks2 {
			stat, blockPairs := executeBlock(ctx, client, cfg, predicate, model, block1, block2)
			stats = append(stats, stat)
			if stat.IsOverflow() {
				if stopOnOverflow {
					slog.Info("semjoin: block join overflowed, stopping early")
					return stats, pairs
				}
				continue
			}
			pairs = append(pairs, blockPairs...)
		}
	}
	return stats, pairs
}

type blockCallResult struct {
	stat  Stat
	pairs []Pair
}

// blockJoinConcurrent dispatches up to cfg.Fanout block pairs at once.
// Every call is issued and its result collected. With stopOnOverflow, the
// commit rule is applied afterward by walking results in call-issue order
// and discarding pairs from the first overflow onward, so the visible
// behavior exactly matches the sequential path except for wall-clock time;
// without it (the infeasible 1x1 run), every non-overflowing call's pairs
// are committed regardless of position.
func blockJoinConcurrent(ctx context.Context, client oracle.Client, cfg Config, predicate, model string, blocks1, blocks2 []relation.Relation, stopOnOverflow bool) ([]Stat, []Pair) {
	type job struct {
		index          int
		block1, block2 relation.Relation
	}

	var jobs []job
	for _, block1 := range blocks1 {
		for _, block2 := range blocks2 {
			jobs = append(jobs, job{index: len(jobs), block1: block1, block2: block2})
		}
	}

	results := make([]blockCallResult, len(jobs))
	sem := make(chan struct{}, cfg.Fanout)
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			stat, pairs := executeBlock(ctx, client, cfg, predicate, model, j.block1, j.block2)
			results[j.index] = blockCallResult{stat: stat, pairs: pairs}
		}(j)
	}
	wg.Wait()

	var stats []Stat
	var pairs []Pair
	overflowed := false
	for _, r := range results {
		stats = append(stats, r.stat)
		if r.stat.IsOverflow() {
			if stopOnOverflow {
				slog.Info("semjoin: block join overflowed (concurrent), discarding later pairs")
				overflowed = true
			}
			continue
		}
		if stopOnOverflow && overflowed {
			continue
		}
		pairs = append(pairs, r.pairs...)
	}
	return stats, pairs
}
