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

// Package join implements the semantic-join execution engine: the block
// executor, the block-nested-loops driver, the adaptive controller that
// wraps it, and two simpler execution paths (tuple-at-a-time and
// embedding top-1) that share the same Stat/Pair vocabulary.
package join

import (
	"time"

	"github.com/achetronic/semjoin/token"
)

// Pair is one accepted join result. The engine does not deduplicate:
// the same pair may appear more than once across block invocations, by
// design (spec's documented property, not a bug).
type Pair struct {
	Tuple1 string
	Tuple2 string
}

// Stat is the cost/latency record of a single oracle invocation, or of an
// invocation aborted before it reached the oracle. Overflow is nil when
// the distinction isn't meaningful for the driver that produced it (tuple
// and embedding paths don't classify their calls as overflow/not), and
// non-nil for the block and adaptive paths, per spec.md's Design Notes.
type Stat struct {
	TokensRead    int
	TokensWritten int
	Seconds       float64
	Overflow      *bool
}

// IsOverflow reports whether this stat is a block/adaptive overflow. A
// Stat with a nil Overflow (tuple/embedding paths) is never overflow.
func (s Stat) IsOverflow() bool {
	return s.Overflow != nil && *s.Overflow
}

func overflowStat(overflow bool, seconds float64, tokensRead, tokensWritten int) Stat {
	v := overflow
	return Stat{TokensRead: tokensRead, TokensWritten: tokensWritten, Seconds: seconds, Overflow: &v}
}

// Config holds the tunables every join driver reads. Build one with
// default values via the zero value of Option application inside each
// driver's entry point — callers never construct Config directly.
type Config struct {
	// TokenBudget is t, the hard per-call prompt+completion token limit.
	TokenBudget int
	// InitialSelectivity is AdaptiveJoin's starting estimate, sigma0.
	InitialSelectivity float64
	// Fanout is the number of block pairs BlockJoin may have in flight at
	// once. 1 (the default) means strictly sequential, spec.md §5's
	// canonical form.
	Fanout int
	// Timeout bounds a single oracle call.
	Timeout time.Duration
	// PairSize is s3, the mean token size of one emitted pair encoding.
	// spec.md keeps this a fixed constant (4); SPEC_FULL makes it
	// configurable per the Open Question in spec.md §9, default unchanged.
	PairSize float64
	// Tokenizer measures prompt and row sizes. Defaults to
	// token.HeuristicTokenizer.
	Tokenizer token.Tokenizer
	// EmbeddingCache, if set, lets EmbeddingJoin skip re-embedding text it
	// has already embedded under the same model. Nil disables caching.
	EmbeddingCache EmbeddingCache
	// EmbeddingModel names the model EmbeddingJoin passes to Client.Embed
	// when its own model argument is empty.
	EmbeddingModel string
}

// Option configures a join driver's Config.
type Option func(*Config)

// WithTokenBudget overrides the default 2000-token budget t.
func WithTokenBudget(t int) Option {
	return func(c *Config) { c.TokenBudget = t }
}

// WithInitialSelectivity overrides AdaptiveJoin's starting estimate
// (default 1e-3).
func WithInitialSelectivity(sigma float64) Option {
	return func(c *Config) { c.InitialSelectivity = sigma }
}

// WithFanout sets the number of block pairs BlockJoin dispatches
// concurrently. n <= 1 is treated as strictly sequential.
func WithFanout(n int) Option {
	return func(c *Config) { c.Fanout = n }
}

// WithTimeout bounds a single oracle call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithPairSize overrides s3, the mean emitted-pair encoding size (default 4).
func WithPairSize(s3 float64) Option {
	return func(c *Config) { c.PairSize = s3 }
}

// WithTokenizer overrides the default HeuristicTokenizer.
func WithTokenizer(tok token.Tokenizer) Option {
	return func(c *Config) { c.Tokenizer = tok }
}

// WithEmbeddingCache enables EmbeddingJoin's optional cache.
func WithEmbeddingCache(cache EmbeddingCache) Option {
	return func(c *Config) { c.EmbeddingCache = cache }
}

// WithEmbeddingModel sets the model EmbeddingJoin requests vectors under
// when it is called with an empty model argument.
func WithEmbeddingModel(model string) Option {
	return func(c *Config) { c.EmbeddingModel = model }
}

func newConfig(opts []Option) Config {
	cfg := Config{
		TokenBudget:        2000,
		InitialSelectivity: 1e-3,
		Fanout:             1,
		Timeout:            60 * time.Second,
		PairSize:           4,
		Tokenizer:          token.HeuristicTokenizer{},
		EmbeddingModel:     "text-embedding-3-small",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
