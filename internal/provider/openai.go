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

const openaiDefaultBaseURL = "https://api.openai.com"

// OpenAIClient speaks the chat completions API, which a number of vendors
// expose compatibly; BaseURL points it at any of them.
type OpenAIClient struct {
	HTTPClient *http.Client
}

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Result, error) {
	base := req.Credentials.BaseURL
	if base == "" {
		base = openaiDefaultBaseURL
	}
	messages := make([]openaiMessage, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.Instructions})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openaiChatMessage(msg))
	}
	payload := openaiRequest{Model: req.Credentials.Model, Messages: messages}
	headers := map[string]string{"Authorization": "Bearer " + req.Credentials.APIKey}
	data, err := postJSON(ctx, c.HTTPClient, base+"/v1/chat/completions", headers, payload)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return failed(err), nil
	}
	var parsed openaiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return failed(fmt.Errorf("provider: decode openai response: %w", err)), nil
	}
	if parsed.Error != nil {
		return failed(fmt.Errorf("provider: openai: %s", parsed.Error.Message)), nil
	}
	if len(parsed.Choices) == 0 {
		return failed(fmt.Errorf("provider: openai returned no choices")), nil
	}
	return Result{Content: parsed.Choices[0].Message.Content, StopReason: StopOK}, nil
}

func openaiChatMessage(msg window.CallMessage) openaiMessage {
	if len(msg.Files) == 0 {
		return openaiMessage{Role: string(msg.Role), Content: msg.Content}
	}
	parts := make([]openaiPart, 0, 1+len(msg.Files))
	for _, file := range msg.Files {
		if file.Kind() == session.FileImage {
			url := fmt.Sprintf("data:%s;base64,%s", file.MediaType, base64.StdEncoding.EncodeToString(file.Data))
			parts = append(parts, openaiPart{Type: "image_url", ImageURL: &openaiImageURL{URL: url}})
			continue
		}
		// The chat completions API has no document block; describe the file
		// instead of inlining bytes.
		parts = append(parts, openaiPart{Type: "text", Text: fmt.Sprintf("(attached document: %s)", file.Name)})
	}
	if msg.Content != "" {
		parts = append(parts, openaiPart{Type: "text", Text: msg.Content})
	}
	return openaiMessage{Role: string(msg.Role), Content: parts}
}
