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

// Package anthropic implements oracle.Client's chat-completion half over
// the Anthropic Messages API. It does not implement embeddings — Anthropic
// doesn't serve them — so Embed always returns oracle.ErrNotSupported;
// pair it with oracle/openai and oracle.Compose for the embedding join
// driver.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/achetronic/semjoin/oracle"
)

// Config configures a Client.
type Config struct {
	// APIKey is the Anthropic API key. Required.
	APIKey string
	// BaseURL overrides the API endpoint, useful for proxies. Optional.
	BaseURL string
	// Model is the default model used when a CompleteRequest doesn't name
	// one. Required if CompleteRequest.Model is ever left blank.
	Model string
}

// Client implements oracle.Client's Complete method over the Anthropic
// Messages API.
type Client struct {
	sdk          sdk.Client
	defaultModel string
}

// New creates a Client. Returns an error if cfg.APIKey is empty.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("anthropic: APIKey is required")
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

// Complete implements oracle.Client. Temperature and Stop map directly
// onto the Messages API's temperature and stop_sequences fields; the
// returned FinishReason is "stop" for sdk.StopReasonEndTurn or
// sdk.StopReasonStopSequence, and "length" for everything else
// (notably sdk.StopReasonMaxTokens), matching oracle's overflow contract.
func (c *Client) Complete(ctx context.Context, req oracle.CompleteRequest) (oracle.CompleteResponse, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]sdk.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "assistant":
			messages = append(messages, sdk.NewAssistantMessage(block))
		default:
			messages = append(messages, sdk.NewUserMessage(block))
		}
	}

	params := sdk.MessageNewParams{
		Model:         sdk.Model(model),
		Messages:      messages,
		MaxTokens:     int64(req.MaxTokens),
		Temperature:   param.NewOpt(req.Temperature),
		StopSequences: req.Stop,
	}

	resp, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return oracle.CompleteResponse{}, fmt.Errorf("anthropic: complete: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(sdk.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}

	finishReason := "length"
	if resp.StopReason == sdk.StopReasonEndTurn || resp.StopReason == sdk.StopReasonStopSequence {
		finishReason = "stop"
	}

	return oracle.CompleteResponse{
		Content:          sb.String(),
		FinishReason:     finishReason,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// Embed implements oracle.Client but always fails: Anthropic doesn't
// serve an embeddings endpoint.
func (c *Client) Embed(ctx context.Context, text string, model string) (oracle.EmbedResponse, error) {
	return oracle.EmbedResponse{}, oracle.ErrNotSupported
}

var _ oracle.Client = (*Client)(nil)
