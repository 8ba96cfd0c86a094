package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mirokim/Onion-ring/internal/session"
)

const ollamaDefaultBaseURL = "http://127.0.0.1:11434"

// OllamaClient drives a local Ollama server, which needs no API key.
type OllamaClient struct {
	HTTPClient *http.Client
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

// Complete implements Client.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (Result, error) {
	base := req.Credentials.BaseURL
	if base == "" {
		base = ollamaDefaultBaseURL
	}
	messages := make([]ollamaMessage, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.Instructions})
	}
	for _, msg := range req.Messages {
		entry := ollamaMessage{Role: string(msg.Role), Content: msg.Content}
		for _, file := range msg.Files {
			if file.Kind() == session.FileImage {
				entry.Images = append(entry.Images, base64.StdEncoding.EncodeToString(file.Data))
			}
		}
		messages = append(messages, entry)
	}
	payload := ollamaRequest{Model: req.Credentials.Model, Messages: messages}
	data, err := postJSON(ctx, c.HTTPClient, base+"/api/chat", nil, payload)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return failed(err), nil
	}
	var parsed ollamaResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failed(fmt.Errorf("provider: decode ollama response: %w", err)), nil
	}
	if parsed.Error != "" {
		return failed(fmt.Errorf("provider: ollama: %s", parsed.Error)), nil
	}
	return Result{Content: parsed.Message.Content, StopReason: StopOK}, nil
}
