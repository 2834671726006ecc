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

package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/achetronic/semjoin/oracle"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test", BaseURL: srv.URL, Model: "text-embedding-3-small"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestEmbedReturnsVectorAndUsage(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object":"embedding","embedding":[0.1,0.2,0.3],"index":0}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 7, "total_tokens": 7}
		}`))
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	cli := newTestClient(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := cli.Embed(ctx, "hello world", "")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(resp.Vector) != 3 {
		t.Fatalf("expected 3-dim vector, got %d", len(resp.Vector))
	}
	if resp.Vector[1] != float32(0.2) {
		t.Errorf("Vector[1] = %v, want 0.2", resp.Vector[1])
	}
	if resp.PromptTokens != 7 {
		t.Errorf("PromptTokens = %d, want 7", resp.PromptTokens)
	}
}

func TestEmbedEmptyDataIsError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[],"model":"m","usage":{"prompt_tokens":0,"total_tokens":0}}`))
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	cli := newTestClient(t, srv)
	_, err := cli.Embed(context.Background(), "x", "")
	if err == nil {
		t.Fatal("expected error for empty embedding data, got nil")
	}
}

func TestCompleteNotSupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Complete must not hit the network")
	}))
	defer srv.Close()

	cli := newTestClient(t, srv)
	_, err := cli.Complete(context.Background(), oracle.CompleteRequest{})
	if err != oracle.ErrNotSupported {
		t.Errorf("Complete error = %v, want oracle.ErrNotSupported", err)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing APIKey")
	}
}
