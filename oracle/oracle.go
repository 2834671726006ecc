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

// Package oracle defines the small interface the join engine treats its
// remote LLM as: a blocking chat-completion call and a blocking embedding
// call. Concrete backends live in oracle/anthropic (chat) and
// oracle/openai (embeddings); Compose lets a caller mix a chat backend
// from one provider with an embedding backend from another, which is the
// common case since not every chat provider also serves embeddings.
package oracle

import (
	"context"
	"errors"
)

// Message is one turn of a chat-completion request.
type Message struct {
	Role    string
	Content string
}

// CompleteRequest is a chat-completion call. Temperature is expected to be
// 0 for determinism (as best provided by the oracle); Stop is the set of
// sequences that truncate the reply cleanly without counting as overflow.
type CompleteRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// CompleteResponse is the oracle's chat-completion reply. FinishReason of
// "stop" means natural termination (including a configured Stop sequence
// being hit); anything else — notably "length" — means the reply was
// truncated by MaxTokens and is overflow.
type CompleteResponse struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// EmbedResponse is the oracle's embedding reply.
type EmbedResponse struct {
	Vector       []float32
	PromptTokens int
}

// Client is the oracle contract: a blocking chat call and a blocking
// embedding call. Implementations are expected to be safe for concurrent
// use by multiple goroutines, matching spec.md's resource model where the
// client handle may be shared.
type Client interface {
	Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error)
	Embed(ctx context.Context, text string, model string) (EmbedResponse, error)
}

// ErrNotSupported is returned by a backend that implements only one half
// of the Client interface (e.g. a chat-only provider's Embed method).
var ErrNotSupported = errors.New("oracle: operation not supported by this backend")

// composed routes Complete to one backend and Embed to another, for the
// common case of pairing a chat provider with a separate embeddings
// provider.
type composed struct {
	chat  Client
	embed Client
}

// Compose returns a Client that delegates Complete to chat and Embed to
// embed. Either may be nil, in which case the corresponding call returns
// ErrNotSupported.
func Compose(chat, embed Client) Client {
	return &composed{chat: chat, embed: embed}
}

func (c *composed) Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error) {
	if c.chat == nil {
		return CompleteResponse{}, ErrNotSupported
	}
	return c.chat.Complete(ctx, req)
}

func (c *composed) Embed(ctx context.Context, text string, model string) (EmbedResponse, error) {
	if c.embed == nil {
		return EmbedResponse{}, ErrNotSupported
	}
	return c.embed.Embed(ctx, text, model)
}
