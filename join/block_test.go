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
	"testing"

	"github.com/achetronic/semjoin/oracle"
	"github.com/achetronic/semjoin/relation"
)

func TestBlockJoinEmptyRelationNoCalls(t *testing.T) {
	mock := &mockOracle{}

	stats, pairs, infeasible := BlockJoin(context.Background(), mock, nil, relOf("x"), "p", "m", 0.1)
	if stats != nil || pairs != nil {
		t.Errorf("expected (nil, nil) for an empty relation, got (%+v, %+v)", stats, pairs)
	}
	if infeasible {
		t.Error("expected infeasible=false for an empty relation")
	}
	if len(mock.completeCalls) != 0 {
		t.Error("expected zero oracle calls for an empty relation")
	}
}

func TestBlockJoinSequentialStopsAtFirstOverflow(t *testing.T) {
	blocks1 := []relation.Relation{relOf("a"), relOf("b")}
	blocks2 := []relation.Relation{relOf("x"), relOf("y")}

	callIndex := 0
	mock := &mockOracle{
		completeFn: func(req oracle.CompleteRequest) (oracle.CompleteResponse, error) {
			defer func() { callIndex++ }()
			if callIndex == 1 {
				return oracle.CompleteResponse{Content: "1,1", FinishReason: "length"}, nil
			}
			return oracle.CompleteResponse{Content: "1,1", FinishReason: "stop"}, nil
		},
	}
	cfg := newConfig(nil)

	stats, pairs := blockJoinSequential(context.Background(), mock, cfg, "p", "m", blocks1, blocks2, true)

	if len(stats) != 2 {
		t.Fatalf("expected exactly 2 stats (stop at the 2nd overflowing call), got %d", len(stats))
	}
	if !stats[1].IsOverflow() {
		t.Error("expected the 2nd stat to report overflow")
	}
	if len(pairs) != 1 {
		t.Fatalf("expected only the 1st call's pair to be committed, got %+v", pairs)
	}
}

func TestBlockJoinConcurrentDiscardsPairsAfterOverflow(t *testing.T) {
	blocks1 := []relation.Relation{relOf("a"), relOf("b"), relOf("c")}
	blocks2 := []relation.Relation{relOf("x")}

	mock := &mockOracle{
		completeFn: func(req oracle.CompleteRequest) (oracle.CompleteResponse, error) {
			// The 2nd block (by first-list row "b") overflows; the others succeed.
			for _, row := range req.Messages {
				if containsSubstring(row.Content, "1. b\n") {
					return oracle.CompleteResponse{Content: "1,1", FinishReason: "length"}, nil
				}
			}
			return oracle.CompleteResponse{Content: "1,1", FinishReason: "stop"}, nil
		},
	}
	cfg := newConfig([]Option{WithFanout(3)})

	stats, pairs := blockJoinConcurrent(context.Background(), mock, cfg, "p", "m", blocks1, blocks2, true)

	if len(stats) != 3 {
		t.Fatalf("expected a stat for every issued call, got %d", len(stats))
	}
	for _, p := range pairs {
		if p.Tuple1 == "b" {
			t.Errorf("pair from the overflowing call must not be committed: %+v", p)
		}
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestBlockJoinSmokeRunsToCompletion(t *testing.T) {
	mock := &mockOracle{
		completeFn: func(req oracle.CompleteRequest) (oracle.CompleteResponse, error) {
			return oracle.CompleteResponse{Content: "1,1", FinishReason: "stop", PromptTokens: 10, CompletionTokens: 2}, nil
		},
	}

	r1 := relOf("alpha", "beta")
	r2 := relOf("gamma", "delta")

	stats, _, infeasible := BlockJoin(context.Background(), mock, r1, r2, "same topic", "m", 0.1)
	if infeasible {
		t.Error("expected a feasible configuration for this smoke test's small relations")
	}
	if len(stats) == 0 {
		t.Fatal("expected at least one oracle invocation")
	}
	for _, s := range stats {
		if s.IsOverflow() {
			t.Errorf("did not expect overflow in the smoke test, got %+v", s)
		}
	}
}
