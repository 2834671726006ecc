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
	"fmt"
	"sync"

	"github.com/achetronic/semjoin/oracle"
)

// mockOracle is a hand-written stand-in for oracle.Client. completeFn and
// embedFn let each test supply exactly the behavior it needs; calls are
// recorded for assertions about call count and content. blockJoinConcurrent
// may call Complete from several goroutines at once, so recording is
// guarded by mu.
type mockOracle struct {
	completeFn func(req oracle.CompleteRequest) (oracle.CompleteResponse, error)
	embedFn    func(text, model string) (oracle.EmbedResponse, error)

	mu            sync.Mutex
	completeCalls []oracle.CompleteRequest
	embedCalls    []string
}

func (m *mockOracle) Complete(ctx context.Context, req oracle.CompleteRequest) (oracle.CompleteResponse, error) {
	m.mu.Lock()
	m.completeCalls = append(m.completeCalls, req)
	m.mu.Unlock()
	if m.completeFn == nil {
		return oracle.CompleteResponse{}, fmt.Errorf("mockOracle: no completeFn configured")
	}
	return m.completeFn(req)
}

func (m *mockOracle) Embed(ctx context.Context, text string, model string) (oracle.EmbedResponse, error) {
	m.mu.Lock()
	m.embedCalls = append(m.embedCalls, text)
	m.mu.Unlock()
	if m.embedFn == nil {
		return oracle.EmbedResponse{}, fmt.Errorf("mockOracle: no embedFn configured")
	}
	return m.embedFn(text, model)
}

var _ oracle.Client = (*mockOracle)(nil)

// constTokenizer reports every text as the same fixed size, so a test can
// pin down the optimizer's block-size arithmetic exactly instead of
// depending on HeuristicTokenizer's len/4 over whatever row text it uses.
type constTokenizer struct{ size int }

func (c constTokenizer) Size(string) int { return c.size }
