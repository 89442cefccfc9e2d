package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opencouncil/crux/internal/model"
)

// Typed call failures. The orchestrator checks these with errors.Is to
// keep per-item errors recoverable rather than fatal.
var (
	// ErrAPICall means the provider request itself failed.
	ErrAPICall = errors.New("llm api call failed")

	// ErrEmptyResponse means the provider answered with no content.
	ErrEmptyResponse = errors.New("empty response from model")
)

// AnonymizedClaim is a claim as the model sees it: anonymous speaker ID
// plus text, never the display name.
type AnonymizedClaim struct {
	SpeakerID string
	Text      string
}

// CruxRequest is one subtopic's worth of input for a crux extraction call.
type CruxRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Subtopic     string // identifier label, e.g. "Transit → Buses"
	Description  string
	Claims       []AnonymizedClaim
	MaxTokens    int
	ReportID     string // passed through for telemetry, never sent to the model
}

// CruxResponse carries the raw model output plus its token bill. The raw
// text is handed straight to the response validator and then discarded.
type CruxResponse struct {
	Raw   string
	Model string
	Usage model.TokenUsage
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractCrux asks the model for the statement that best splits the
	// subtopic's speakers into agreeing and disagreeing camps.
	ExtractCrux(ctx context.Context, req CruxRequest) (*CruxResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// SystemPrompt overrides the default extraction instructions
	SystemPrompt string

	// UserPrompt is prepended to the claims block when set
	UserPrompt string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// DefaultSystemPrompt is used when the caller supplies no system prompt.
const DefaultSystemPrompt = `You identify the crux of disagreement within a group discussion.
Given participant claims about one subtopic, propose the single statement that best
splits participants into an agreeing camp and a disagreeing camp. Respond with JSON only:
{"crux":{"cruxClaim":"...","agree":["<speaker id>",...],"disagree":["<speaker id>",...],"no_clear_position":["<speaker id>",...],"explanation":"..."}}
Refer to participants strictly by their numeric speaker IDs.`

// BuildUserPrompt renders the subtopic and its anonymized claims as the
// user message. Claims keep their insertion order; some downstream call
// sites read agree/disagree ordinals against it.
func BuildUserPrompt(req CruxRequest) string {
	var b strings.Builder

	if req.UserPrompt != "" {
		b.WriteString(req.UserPrompt)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Subtopic: %s\n", req.Subtopic)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	b.WriteString("\nClaims:\n")
	for _, claim := range req.Claims {
		fmt.Fprintf(&b, "- [speaker %s] %s\n", claim.SpeakerID, claim.Text)
	}

	return b.String()
}
