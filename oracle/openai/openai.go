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

// Package openai implements oracle.Client's embedding half over the OpenAI
// Embeddings API. It does not implement chat completion — pair it with
// oracle/anthropic and oracle.Compose for a Client that serves both the
// chat-based join drivers and EmbeddingJoin, which calls only Embed.
package openai

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/achetronic/semjoin/oracle"
)

// Config configures a Client.
type Config struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string
	// BaseURL overrides the API endpoint, useful for proxies or
	// OpenAI-compatible self-hosted servers. Optional.
	BaseURL string
	// Model is the default embedding model used when Embed is called with
	// an empty model string.
	Model string
}

// Client implements oracle.Client's Embed method over the OpenAI
// Embeddings API.
type Client struct {
	sdk          sdk.Client
	defaultModel string
}

// New creates a Client. Returns an error if cfg.APIKey is empty.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: APIKey is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")))
	}

	return &Client{
		sdk:          sdk.NewClient(opts...),
		defaultModel: cfg.Model,
	}, nil
}

// Complete implements oracle.Client but always fails: this backend serves
// embeddings only.
func (c *Client) Complete(ctx context.Context, req oracle.CompleteRequest) (oracle.CompleteResponse, error) {
	return oracle.CompleteResponse{}, oracle.ErrNotSupported
}

// Embed implements oracle.Client. It requests a single float-encoded
// embedding vector for text and reports the prompt tokens the call
// consumed, for the cost accounting EmbeddingJoin folds into Stat.
func (c *Client) Embed(ctx context.Context, text string, model string) (oracle.EmbedResponse, error) {
	if model == "" {
		model = c.defaultModel
	}

	resp, err := c.sdk.Embeddings.New(ctx, sdk.EmbeddingNewParams{
		Input:          sdk.EmbeddingNewParamsInputUnion{OfString: sdk.String(text)},
		Model:          sdk.EmbeddingModel(model),
		EncodingFormat: sdk.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return oracle.EmbedResponse{}, fmt.Errorf("openai: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return oracle.EmbedResponse{}, fmt.Errorf("openai: embed: empty response for model %q", model)
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float32(v)
	}

	return oracle.EmbedResponse{
		Vector:       vector,
		PromptTokens: int(resp.Usage.PromptTokens),
	}, nil
}

var _ oracle.Client = (*Client)(nil)
