package aiclassifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lead-server/internal/leads"
	"lead-server/internal/observability"

	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
)

const systemPrompt = `You translate a salesperson's free-text lead request into structured search filters.
Respond with a single JSON object and nothing else, using this shape:
{"job_titles":[],"locations":[],"industries":[],"company_sizes":[],"companies":[],"email_statuses":[],"confidence":0.0,"explanation":""}
confidence is between 0 and 1. email_statuses entries must be "verified" or "unverified".
Locations should be "City, Region" or just "Region". Leave fields you are unsure about empty.`

// Result is the classifier's structured interpretation of a free-text query.
type Result struct {
	Filters     leads.ActiveFilters
	Confidence  float64
	Explanation string
}

// Client calls the AI classifier that turns free text into ActiveFilters.
type Client struct {
	options []openaiOption.RequestOption
	model   string
	logger  *observability.Logger
}

func New(apiKey string, logger *observability.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &Client{
		options: []openaiOption.RequestOption{
			openaiOption.WithAPIKey(apiKey),
		},
		model:  openai.ChatModelGPT4oMini,
		logger: logger,
	}, nil
}

type classifierResponse struct {
	JobTitles     []string `json:"job_titles"`
	Locations     []string `json:"locations"`
	Industries    []string `json:"industries"`
	CompanySizes  []string `json:"company_sizes"`
	Companies     []string `json:"companies"`
	EmailStatuses []string `json:"email_statuses"`
	Confidence    float64  `json:"confidence"`
	Explanation   string   `json:"explanation"`
}

// InterpretQuery asks the classifier to translate a free-text query into
// structured filters. Any transport or parse failure is returned as an error;
// the caller is responsible for degrading gracefully.
func (c *Client) InterpretQuery(ctx context.Context, query string) (Result, error) {
	client := openai.NewClient(c.options...)
	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(query),
		},
		Model: c.model,
	})
	if err != nil {
		c.logger.Error(ctx, "classifier request failed", err)
		return Result{}, fmt.Errorf("classifier request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{}, fmt.Errorf("classifier returned no choices")
	}

	var parsed classifierResponse
	content := stripCodeFence(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		c.logger.Error(ctx, "classifier returned malformed JSON", err)
		return Result{}, fmt.Errorf("classifier returned malformed response: %w", err)
	}

	confidence := parsed.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Filters: leads.ActiveFilters{
			JobTitles:     parsed.JobTitles,
			Locations:     parsed.Locations,
			Industries:    parsed.Industries,
			CompanySizes:  parsed.CompanySizes,
			Companies:     parsed.Companies,
			EmailStatuses: parsed.EmailStatuses,
		}.Normalize(),
		Confidence:  confidence,
		Explanation: parsed.Explanation,
	}, nil
}

// Models occasionally wrap JSON in a markdown fence despite instructions.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
