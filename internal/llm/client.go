// Package llm implements the Narrate-stage collaborator: a single
// structured-JSON completion call per analysis, per spec.md §4.5/§6.
//
// Transport is github.com/anthropics/anthropic-sdk-go rather than the
// gRPC+protobuf bridge the teacher's pkg/llm/client.go wraps — that stub
// depends on a generated proto package absent from this codebase's
// dependency pack (see DESIGN.md). The request/response shape below is
// modeled directly on intelligencedev-manifold's
// internal/llm/anthropic.Client.Chat.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/matchmind/matchmind/internal/core"
)

// GenerateInput carries everything the Client needs to produce one
// structured completion. It mirrors the shape of the teacher's
// pkg/agent/llm_client.go GenerateInput (messages + config), simplified to
// a single system+user pair with no tools/streaming, matching spec.md
// §4.5's literal contract.
type GenerateInput struct {
	System     string
	User       string
	SchemaName string
}

// Metadata is attached to the call's observability record, per spec.md
// §4.5's "Attaches token counts and model id".
type Metadata struct {
	ModelID          string
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// Client performs one structured-JSON completion per analysis.
type Client struct {
	sdk         anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// Config configures a Client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
	HTTPClient  *http.Client
}

// NewClient constructs an llm.Client, grounded on
// intelligencedev-manifold/internal/llm/anthropic.New.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{sdk: anthropic.NewClient(opts...), model: model, maxTokens: maxTokens, temperature: cfg.Temperature}
}

// Generate performs one non-streaming, JSON-object completion call and
// returns the raw JSON payload plus call metadata. Enforces JSON mode at
// the prompt level (the Anthropic Messages API has no native
// response_format=json_object flag, so the system prompt's directive is
// load-bearing, same as the degraded-retry directive below).
func (c *Client) Generate(ctx context.Context, in GenerateInput) (json.RawMessage, Metadata, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: in.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(in.User)),
		},
	}

	start := time.Now()
	resp, err := c.sdk.Messages.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %v", core.NewPipelineError("narrate", core.KindTransientVendor, err), err)
	}

	text := extractText(resp)
	meta := Metadata{
		ModelID:          string(params.Model),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		Latency:          latency,
	}
	return json.RawMessage(text), meta, nil
}

// GenerateStrict re-issues the completion with a "STRICT JSON" directive
// appended, per spec.md §4.2's single schema-validation retry.
func (c *Client) GenerateStrict(ctx context.Context, in GenerateInput) (json.RawMessage, Metadata, error) {
	in.System = in.System + "\n\nSTRICT JSON: your entire response MUST be exactly one valid JSON object with no " +
		"surrounding prose, markdown fences, or commentary."
	return c.Generate(ctx, in)
}

func extractText(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
