package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bonzainsights/WorldInsights/internal/logger"
	"github.com/bonzainsights/WorldInsights/internal/models"
)

// NarrativeClient generates a prose summary of an aggregated dataset.
// When no API key is configured it falls back to a deterministic
// template so reports always carry a narrative section.
type NarrativeClient struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewNarrativeClient creates a narrative client. An empty apiKey
// disables the OpenAI call and the client only produces the fallback.
func NewNarrativeClient(apiKey, model string) *NarrativeClient {
	c := &NarrativeClient{
		model: model,
		log:   logger.WithComponent("llm"),
	}
	if apiKey != "" {
		c.client = openai.NewClient(apiKey)
	}
	return c
}

// Enabled reports whether the OpenAI backend is configured.
func (c *NarrativeClient) Enabled() bool {
	return c.client != nil
}

// Summarize produces a markdown narrative for the dataset and its
// correlation matrix. Falls back to the template on any API failure.
func (c *NarrativeClient) Summarize(ctx context.Context, dataset *models.Dataset, correlations map[string]map[string]*float64) (string, error) {
	if c.client == nil {
		return c.templateSummary(dataset, correlations), nil
	}

	prompt := c.buildPrompt(dataset, correlations)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   4000,
			Temperature: 0.3,
		},
	)
	if err != nil {
		c.log.Warn("OpenAI request failed, using template narrative", map[string]interface{}{
			"error": err.Error(),
		})
		return c.templateSummary(dataset, correlations), nil
	}
	if len(resp.Choices) == 0 {
		c.log.Warn("OpenAI returned no choices, using template narrative")
		return c.templateSummary(dataset, correlations), nil
	}

	narrative := resp.Choices[0].Message.Content
	c.log.Debug("Generated narrative", map[string]interface{}{"chars": len(narrative)})
	return narrative, nil
}

const systemPrompt = "You are a data analyst specializing in socio-economic and environmental indicators. " +
	"Write a concise markdown summary of the provided dataset: notable trends per indicator, " +
	"differences between countries, and any strong correlations. Stick to what the numbers show."

// buildPrompt embeds the dataset summary and correlation matrix as JSON.
func (c *NarrativeClient) buildPrompt(dataset *models.Dataset, correlations map[string]map[string]*float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Aggregated Indicator Data (%d-%d, fetched %s)\n\n",
		dataset.StartYear, dataset.EndYear, dataset.FetchedAt.Format("2006-01-02"))

	b.WriteString("### Indicators:\n")
	for _, ind := range dataset.Indicators {
		fmt.Fprintf(&b, "- %s (%s, source: %s)\n", ind.Code, ind.Name, ind.Source)
	}

	b.WriteString("\n### Countries:\n")
	for _, country := range dataset.Countries {
		fmt.Fprintf(&b, "- %s (%s)\n", country.Code, country.Name)
	}

	b.WriteString("\n### Observations:\n```json\n")
	if jsonData, err := json.MarshalIndent(dataset.Records, "", "  "); err == nil {
		b.Write(jsonData)
	} else {
		b.WriteString("Error marshaling records")
	}
	b.WriteString("\n```\n")

	if len(correlations) > 0 {
		b.WriteString("\n### Pearson Correlation Matrix:\n```json\n")
		if jsonData, err := json.MarshalIndent(correlations, "", "  "); err == nil {
			b.Write(jsonData)
		} else {
			b.WriteString("Error marshaling correlations")
		}
		b.WriteString("\n```\n")
	}

	b.WriteString("\n### Instructions:\nSummarize the dataset in markdown: per-indicator trends, " +
		"country comparisons, and the strongest correlations with their coefficients.")
	return b.String()
}

// templateSummary is the deterministic fallback narrative.
func (c *NarrativeClient) templateSummary(dataset *models.Dataset, correlations map[string]map[string]*float64) string {
	var b strings.Builder

	b.WriteString("## Data Summary\n\n")
	fmt.Fprintf(&b, "This report covers %d indicator(s) across %d countr(y/ies) for %d-%d, with %d observations in total.\n\n",
		len(dataset.Indicators), len(dataset.Countries), dataset.StartYear, dataset.EndYear, len(dataset.Records))

	for _, ind := range dataset.Indicators {
		min, max, count := indicatorRange(dataset.Records, ind.Code)
		if count == 0 {
			fmt.Fprintf(&b, "- **%s**: no observations available.\n", ind.Code)
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %d observations, values between %.2f and %.2f.\n", ind.Code, count, min, max)
	}

	if pair, coeff, ok := strongestCorrelation(correlations); ok {
		fmt.Fprintf(&b, "\nThe strongest correlation is between %s (r = %.2f).\n", pair, coeff)
	}
	return b.String()
}

func indicatorRange(records []models.Record, code string) (min, max float64, count int) {
	for _, r := range records {
		if r.Indicator != code || r.Value == nil {
			continue
		}
		v := *r.Value
		if count == 0 || v < min {
			min = v
		}
		if count == 0 || v > max {
			max = v
		}
		count++
	}
	return min, max, count
}

func strongestCorrelation(correlations map[string]map[string]*float64) (string, float64, bool) {
	var (
		bestPair  string
		bestCoeff float64
		found     bool
	)

	codes := make([]string, 0, len(correlations))
	for code := range correlations {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for i, a := range codes {
		for _, b := range codes[i+1:] {
			coeff := correlations[a][b]
			if coeff == nil {
				continue
			}
			if !found || abs(*coeff) > abs(bestCoeff) {
				bestPair = a + " and " + b
				bestCoeff = *coeff
				found = true
			}
		}
	}
	return bestPair, bestCoeff, found
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
