// Package openai provides a search provider backed by any OpenAI-compatible
// chat completion API with built-in web access, such as Perplexity. The query
// is sent as a single user message and the assistant reply is used verbatim
// as the spoken answer.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/ariabot/aria/pkg/provider/search"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "sonar"
	defaultTimeout = 60 * time.Second

	// systemPrompt keeps answers short enough to speak aloud.
	systemPrompt = "Answer the question concisely in a few spoken sentences. " +
		"Do not use markdown, lists or citations."
)

// Compile-time check that *Provider satisfies [search.Provider].
var _ search.Provider = (*Provider)(nil)

// Option is a functional option for configuring the Provider.
type Option func(*settings)

type settings struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithBaseURL points the provider at a different OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithModel overrides the search model.
func WithModel(model string) Option {
	return func(s *settings) {
		s.model = model
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// Provider implements search.Provider over an OpenAI-compatible API.
type Provider struct {
	client oai.Client
	model  string
}

// New creates a new search Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, search.ErrMissingCredentials
	}
	s := settings{
		baseURL: defaultBaseURL,
		model:   defaultModel,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(&s)
	}
	client := oai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(s.baseURL),
		option.WithRequestTimeout(s.timeout),
	)
	return &Provider{client: client, model: s.model}, nil
}

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(query),
		},
		MaxCompletionTokens: param.NewOpt(int64(512)),
	})
	if err != nil {
		return "", fmt.Errorf("search: query: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("search: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
