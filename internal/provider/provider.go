// Package provider holds the HTTP clients the engine calls one turn at a
// time. The engine treats every client uniformly: a Result with a non-ok
// stop reason is a failed turn, a returned error is an internal fault that
// ends the run.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mirokim/Onion-ring/internal/window"
)

// StopReason classifies how a call ended.
type StopReason string

const (
	StopOK    StopReason = "ok"
	StopError StopReason = "error"
)

// Credentials identify the vendor endpoint and model for one participant.
// They are owned by the host; the engine only reads them.
type Credentials struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// Empty reports whether the credentials are unusable. The engine skips a
// participant with empty credentials instead of calling anything.
func (c Credentials) Empty() bool {
	if strings.TrimSpace(c.Provider) == "" || strings.TrimSpace(c.Model) == "" {
		return true
	}
	// Local providers need no key; hosted ones do.
	if c.Provider != ProviderOllama && strings.TrimSpace(c.APIKey) == "" {
		return true
	}
	return false
}

// Request carries one turn's call.
type Request struct {
	Participant  string
	Credentials  Credentials
	Instructions string
	Messages     []window.CallMessage
}

// Result is a finished call. A StopError result carries the failure text in
// Err and an empty Content.
type Result struct {
	Content    string
	StopReason StopReason
	Err        string
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.StopReason == StopOK
}

// Client is the provider collaborator contract. Implementations apply their
// own retry/backoff for transient failures, honor ctx cancellation, and
// report call failures through the Result rather than the error return.
type Client interface {
	Complete(ctx context.Context, req Request) (Result, error)
}

// Known provider identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

const defaultRequestTimeout = 120 * time.Second

// New builds a client for the credential's provider.
func New(creds Credentials, httpClient *http.Client) (Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	switch creds.Provider {
	case ProviderAnthropic:
		return &AnthropicClient{HTTPClient: httpClient}, nil
	case ProviderOpenAI:
		return &OpenAIClient{HTTPClient: httpClient}, nil
	case ProviderOllama:
		return &OllamaClient{HTTPClient: httpClient}, nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", creds.Provider)
	}
}

// Router dispatches each request to the client matching its credentials,
// so one engine can drive participants on different vendors.
type Router struct {
	HTTPClient *http.Client
}

// Complete implements Client.
func (r *Router) Complete(ctx context.Context, req Request) (Result, error) {
	client, err := New(req.Credentials, r.HTTPClient)
	if err != nil {
		return Result{}, err
	}
	return client.Complete(ctx, req)
}

// failed wraps a failure text into an error-stop result.
func failed(err error) Result {
	return Result{StopReason: StopError, Err: err.Error()}
}
