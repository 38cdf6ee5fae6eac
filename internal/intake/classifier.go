package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/core/common"
	"github.com/agenthands/automationvault/internal/core/model"
	"github.com/agenthands/automationvault/internal/llm"
	"github.com/agenthands/automationvault/internal/metrics"
)

const (
	classifyMaxTokens = 1000
	maxTitle          = 60
	maxDescription    = 200
	maxTags           = 5
	fallbackCategory  = "Operations"
)

var Categories = []string{
	"Customer Service", "Marketing", "Sales", "Analytics", "Operations", "E-commerce",
	"Content Creation", "Data Processing", "Communication", "Finance", "HR",
}

type Classifier struct {
	llm llm.LLMClient
	log *zap.Logger
}

func NewClassifier(client llm.LLMClient, log *zap.Logger) *Classifier {
	return &Classifier{llm: client, log: log}
}

// Classify asks the model for catalog metadata. An answer that does not
// parse degrades to Fallback. A failed model call (missing key, upstream
// error, cancelled context) is returned as is.
func (c *Classifier) Classify(ctx context.Context, doc map[string]any) (model.Analysis, error) {
	if err := Validate(doc); err != nil {
		return model.Analysis{}, err
	}
	summary := Summarize(doc)

	prompt, err := buildClassifyPrompt(doc, summary)
	if err != nil {
		return model.Analysis{}, err
	}

	text, err := c.llm.Generate(ctx, prompt, llm.WithMaxTokens(classifyMaxTokens))
	if err != nil {
		if ctx.Err() != nil {
			return model.Analysis{}, ctx.Err()
		}
		if errors.Is(err, common.ErrMisconfigured) {
			c.log.Error("LLM API key not configured, workflow cannot be classified")
		}
		return model.Analysis{}, err
	}

	analysis, err := common.ParseJSON[model.Analysis](text)
	if err != nil {
		return c.fallback(summary, err), nil
	}
	return normalize(analysis, summary), nil
}

func (c *Classifier) fallback(s Summary, cause error) model.Analysis {
	metrics.ClassificationFallbacksTotal.Inc()
	c.log.Warn("workflow classification failed, using fallback",
		zap.String("workflow", s.Name),
		zap.Error(cause),
	)
	return Fallback(s)
}

// Fallback derives catalog metadata from the workflow itself.
func Fallback(s Summary) model.Analysis {
	return model.Analysis{
		Title:       common.Truncate(s.Name, maxTitle),
		Description: fmt.Sprintf("Automated workflow with %d nodes for business process automation", s.NodeCount),
		Category:    fallbackCategory,
		Difficulty:  model.DifficultyIntermediate,
		Tags:        []string{"automation", "n8n", "workflow"},
	}
}

func normalize(a model.Analysis, s Summary) model.Analysis {
	fb := Fallback(s)

	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		a.Title = fb.Title
	}
	a.Title = common.Truncate(a.Title, maxTitle)

	a.Description = strings.TrimSpace(a.Description)
	if a.Description == "" {
		a.Description = fb.Description
	}
	a.Description = common.Truncate(a.Description, maxDescription)

	a.Category = strings.TrimSpace(a.Category)
	if a.Category == "" {
		a.Category = fb.Category
	}

	a.Difficulty = model.Difficulty(strings.ToLower(strings.TrimSpace(string(a.Difficulty))))
	if !a.Difficulty.Valid() {
		a.Difficulty = model.DifficultyIntermediate
	}

	tags := make([]string, 0, maxTags)
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" && len(tags) < maxTags {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = fb.Tags
	}
	a.Tags = tags
	return a
}

func buildClassifyPrompt(doc map[string]any, s Summary) (string, error) {
	full, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode workflow: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Analyze this n8n workflow and generate:\n")
	fmt.Fprintf(&sb, "1. A concise, professional title (max %d characters)\n", maxTitle)
	fmt.Fprintf(&sb, "2. A clear description (max %d characters)\n", maxDescription)
	fmt.Fprintf(&sb, "3. The most appropriate category from: %s\n", strings.Join(Categories, ", "))
	sb.WriteString("4. Difficulty level: beginner, intermediate, advanced\n")
	fmt.Fprintf(&sb, "5. Up to %d relevant tags\n\n", maxTags)

	sb.WriteString("Workflow to analyze:\n")
	fmt.Fprintf(&sb, "Workflow Name: %s\n", s.Name)
	fmt.Fprintf(&sb, "Number of Nodes: %d\n", s.NodeCount)
	fmt.Fprintf(&sb, "Node Types: %s\n", strings.Join(s.NodeTypes, ", "))
	fmt.Fprintf(&sb, "Node Names: %s\n", strings.Join(s.NodeNames, ", "))
	fmt.Fprintf(&sb, "Full Workflow: %s\n\n", full)

	sb.WriteString(`Respond in this exact JSON format:
{
  "title": "Generated title here",
  "description": "Generated description here",
  "category": "Most appropriate category",
  "difficulty": "beginner|intermediate|advanced",
  "tags": ["tag1", "tag2", "tag3"]
}`)
	return sb.String(), nil
}
