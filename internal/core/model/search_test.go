package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogQueryMatches(t *testing.T) {
	bot := Automation{Title: "AI Customer Support Bot", Category: "Customer Service"}
	leads := Automation{Title: "Lead Generation System", Category: "Marketing"}

	cases := []struct {
		name  string
		query CatalogQuery
		a     Automation
		want  bool
	}{
		{"empty query matches", CatalogQuery{}, bot, true},
		{"substring", CatalogQuery{Search: "bot", Category: "all"}, bot, true},
		{"case insensitive", CatalogQuery{Search: "SUPPORT"}, bot, true},
		{"no substring", CatalogQuery{Search: "bot"}, leads, false},
		{"description not searched", CatalogQuery{Search: "Generation"}, Automation{Title: "X", Description: "Generation"}, false},
		{"exact category", CatalogQuery{Category: "Marketing"}, leads, true},
		{"category is case sensitive", CatalogQuery{Category: "marketing"}, leads, false},
		{"category is not partial", CatalogQuery{Category: "Market"}, leads, false},
		{"All sentinel", CatalogQuery{Category: "All"}, leads, true},
		{"conjunction", CatalogQuery{Search: "lead", Category: "Customer Service"}, leads, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.query.Matches(tc.a))
		})
	}
}

func TestDifficultyValid(t *testing.T) {
	assert.True(t, DifficultyAdvanced.Valid())
	assert.False(t, Difficulty("expert").Valid())
}

func TestNewGeneratedWorkflow(t *testing.T) {
	doc := map[string]any{
		"name":        "Slack alerts",
		"nodes":       []any{map[string]any{"type": "n8n-nodes-base.webhook"}},
		"connections": map[string]any{"Webhook": map[string]any{}},
	}
	w := NewGeneratedWorkflow(doc, "{}")
	assert.Equal(t, "Slack alerts", w.Name)
	assert.Len(t, w.Nodes, 1)
	assert.Contains(t, w.Connections, "Webhook")
	assert.Equal(t, "{}", w.Raw)
}
