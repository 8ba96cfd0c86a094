package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mirokim/Onion-ring/internal/session"
	"github.com/mirokim/Onion-ring/internal/window"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 2048
)

// AnthropicClient speaks the Anthropic messages API.
type AnthropicClient struct {
	HTTPClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Result, error) {
	base := req.Credentials.BaseURL
	if base == "" {
		base = anthropicDefaultBaseURL
	}
	payload := anthropicRequest{
		Model:     req.Credentials.Model,
		MaxTokens: anthropicMaxTokens,
		System:    req.Instructions,
		Messages:  anthropicMessages(req.Messages),
	}
	headers := map[string]string{
		"x-api-key":         req.Credentials.APIKey,
		"anthropic-version": anthropicVersion,
	}
	data, err := postJSON(ctx, c.HTTPClient, base+"/v1/messages", headers, payload)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return failed(err), nil
	}
	var parsed anthropicResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failed(fmt.Errorf("provider: decode anthropic response: %w", err)), nil
	}
	if parsed.Error != nil {
		return failed(fmt.Errorf("provider: anthropic: %s", parsed.Error.Message)), nil
	}
	text := ""
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return Result{Content: text, StopReason: StopOK}, nil
}

func anthropicMessages(msgs []window.CallMessage) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(msgs))
	for _, msg := range msgs {
		blocks := make([]anthropicBlock, 0, 1+len(msg.Files))
		for _, file := range msg.Files {
			blocks = append(blocks, anthropicFileBlock(file))
		}
		if msg.Content != "" {
			blocks = append(blocks, anthropicBlock{Type: "text", Text: msg.Content})
		}
		out = append(out, anthropicMessage{Role: string(msg.Role), Content: blocks})
	}
	return out
}

func anthropicFileBlock(file session.FileRef) anthropicBlock {
	blockType := "document"
	if file.Kind() == session.FileImage {
		blockType = "image"
	}
	return anthropicBlock{
		Type: blockType,
		Source: &anthropicSource{
			Type:      "base64",
			MediaType: file.MediaType,
			Data:      base64.StdEncoding.EncodeToString(file.Data),
		},
	}
}
