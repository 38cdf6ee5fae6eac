// Package intake validates uploaded n8n workflows, classifies them with the
// LLM and adds them to the catalog.
package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agenthands/automationvault/internal/core/common"
)

const untitled = "Untitled Workflow"

// workflowSchema is the minimal shape accepted for an n8n export.
const workflowSchema = `{
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "name": {"type": "string"},
    "nodes": {"type": "array"},
    "connections": {"type": "object"}
  }
}`

var schema = mustCompile(workflowSchema)

func mustCompile(s string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("intake: invalid workflow schema: %v", err))
	}
	return compiled
}

var ErrInvalidWorkflow = fmt.Errorf("invalid n8n workflow format: missing nodes array: %w", common.ErrDataShape)

// Summary holds the statistics sent to the classifier next to the document.
type Summary struct {
	Name      string
	NodeCount int
	NodeTypes []string
	NodeNames []string
}

// ParseDocument decodes an uploaded file and validates it.
func ParseDocument(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &doc); err != nil {
		return nil, fmt.Errorf("workflow file is not valid JSON: %w", common.ErrDataShape)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate requires a "nodes" array. "name" and "connections" are checked
// for type when present.
func Validate(doc map[string]any) error {
	if doc == nil {
		return ErrInvalidWorkflow
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidWorkflow, strings.Join(problems, "; "))
	}
	return nil
}

func Summarize(doc map[string]any) Summary {
	s := Summary{Name: untitled, NodeTypes: []string{}, NodeNames: []string{}}
	if name, ok := doc["name"].(string); ok && name != "" {
		s.Name = name
	}

	nodes, _ := doc["nodes"].([]any)
	s.NodeCount = len(nodes)
	for _, n := range nodes {
		node, _ := n.(map[string]any)
		s.NodeTypes = append(s.NodeTypes, stringOr(node["type"], "unknown"))
		s.NodeNames = append(s.NodeNames, stringOr(node["name"], "Unnamed"))
	}
	return s
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}
