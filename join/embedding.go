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
	"math"
	"time"

	"github.com/achetronic/semjoin/oracle"
	"github.com/achetronic/semjoin/relation"
)

// EmbeddingCache lets EmbeddingJoin skip a round trip to the oracle for
// text it has already embedded under the same model. Implementations
// must be safe for sequential reuse across an EmbeddingJoin call; they
// need not be safe for concurrent use since EmbeddingJoin never embeds
// concurrently. cache/redis.Cache implements this interface.
type EmbeddingCache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Set(ctx context.Context, model, text string, vector []float32) error
}

type embeddedRow struct {
	text   string
	vector []float32
}

// EmbeddingJoin is the vector-similarity top-1 match: every right row is
// embedded once and held in memory; every left row is then embedded and
// paired with whichever right row has the highest cosine similarity. This
// ignores the predicate entirely and emits one pair per left row. Embed
// errors are not returned: a failed call yields a Stat with zero tokens,
// and a left row whose vector cannot be compared with any right row's
// (its Embed call failed, or every right row's did) gets no pair.
func EmbeddingJoin(ctx context.Context, client oracle.Client, r1, r2 relation.Relation, model string, opts ...Option) ([]Stat, []Pair) {
	cfg := newConfig(opts)
	if model == "" {
		model = cfg.EmbeddingModel
	}

	if len(r1) == 0 || len(r2) == 0 {
		return nil, nil
	}

	var stats []Stat

	right := make([]embeddedRow, 0, len(r2))
	for _, row := range r2 {
		vector, stat := embedCached(ctx, client, cfg, model, row.Text)
		stats = append(stats, stat)
		right = append(right, embeddedRow{text: row.Text, vector: vector})
	}

	var pairs []Pair
	for _, row := range r1 {
		vector, stat := embedCached(ctx, client, cfg, model, row.Text)
		stats = append(stats, stat)

		bestIdx := -1
		bestSim := math.Inf(-1)
		for i, candidate := range right {
			sim := cosineSimilarity(vector, candidate.vector)
			if sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}

		if bestIdx >= 0 {
			pairs = append(pairs, Pair{Tuple1: row.Text, Tuple2: right[bestIdx].text})
		}
	}

	return stats, pairs
}

func embedCached(ctx context.Context, client oracle.Client, cfg Config, model, text string) ([]float32, Stat) {
	start := time.Now()

	if cfg.EmbeddingCache != nil {
		if vector, ok, err := cfg.EmbeddingCache.Get(ctx, model, text); err == nil && ok {
			return vector, Stat{Seconds: time.Since(start).Seconds()}
		}
	}

	resp, err := client.Embed(ctx, text, model)
	if err != nil {
		return nil, Stat{Seconds: time.Since(start).Seconds()}
	}

	if cfg.EmbeddingCache != nil {
		_ = cfg.EmbeddingCache.Set(ctx, model, text, resp.Vector)
	}

	return resp.Vector, Stat{TokensRead: resp.PromptTokens, Seconds: time.Since(start).Seconds()}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return math.Inf(-1)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
