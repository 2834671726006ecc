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

	"github.com/achetronic/semjoin/oracle"
	"github.com/achetronic/semjoin/relation"
)

// escalationRatio is the geometric factor the adaptive controller
// multiplies its selectivity estimate by on every overflow, per spec.md
// §4.9's state machine.
const escalationRatio = 4

// AdaptiveJoin wraps BlockJoin in a fixed-point loop: it starts from
// cfg.InitialSelectivity (default 1e-3, override with WithInitialSelectivity),
// and if any stat in the most recent BlockJoin run overflowed, multiplies
// the estimate by 4 and retries. It terminates once a run comes back with
// no overflowing stat at all, or once BlockJoin reports the configuration
// is infeasible even at the 1x1 floor — re-escalating can't shrink a block
// size that's already at its minimum, so that run's all-overflow result is
// final (spec.md §4.9, testable property §8.7).
func AdaptiveJoin(ctx context.Context, client oracle.Client, r1, r2 relation.Relation, predicate, model string, opts ...Option) ([]Stat, []Pair) {
	cfg := newConfig(opts)

	if len(r1) == 0 || len(r2) == 0 {
		return nil, nil
	}

	selectivity := cfg.InitialSelectivity
	var allStats []Stat
	var allPairs []Pair

	for {
		stats, pairs, infeasible := BlockJoin(ctx, client, r1, r2, predicate, model, selectivity, opts...)
		allStats = append(allStats, stats...)
		allPairs = append(allPairs, pairs...)

		if !anyOverflow(stats) {
			return allStats, allPairs
		}
		if infeasible {
			slog.Info("semjoin: adaptive controller stopping, 1x1 block is already infeasible")
			return allStats, allPairs
		}

		selectivity *= escalationRatio
		slog.Info("semjoin: adaptive controller escalating selectivity", "selectivity", selectivity)
	}
}

func anyOverflow(stats []Stat) bool {
	for _, s := range stats {
		if s.IsOverflow() {
			return true
		}
	}
	return false
}
