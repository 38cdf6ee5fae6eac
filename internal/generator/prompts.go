package generator

import (
	"fmt"
	"strings"

	"github.com/agenthands/automationvault/internal/core/model"
)

// PromptVersion identifies the template set below. Bump it whenever the
// wording changes so logged generations can be traced to their template.
const PromptVersion = "2024-10.1"

// HistoryLimit is the number of most recent chat turns embedded in a chat
// prompt.
const HistoryLimit = 6

var exampleCategories = []string{
	"Lead Generation", "Customer Support", "Marketing", "Sales", "E-commerce",
	"Finance", "HR & Recruiting", "Operations", "Data Processing", "Social Media",
}

var exampleIntegrations = []string{
	"Webhook", "Schedule Trigger", "HTTP Request", "Set", "IF", "Switch", "Code",
	"Gmail", "Slack", "Google Sheets", "Airtable", "HubSpot", "Stripe", "OpenAI",
}

// BuildWorkflowPrompt asks for a single importable n8n workflow document and
// nothing else.
func BuildWorkflowPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("Generate a complete n8n workflow JSON that solves the following business problem:\n\n")
	fmt.Fprintf(&sb, "Problem: %s\n", strings.TrimSpace(req.ProblemDescription))
	fmt.Fprintf(&sb, "Business Type: %s\n", orDefault(req.BusinessType, "General"))
	fmt.Fprintf(&sb, "Complexity Level: %s\n", orDefault(req.Complexity, "intermediate"))
	if c := strings.TrimSpace(req.Context); c != "" {
		fmt.Fprintf(&sb, "Additional Context: %s\n", c)
	}

	sb.WriteString(`
Requirements:
1. Create a practical, working n8n workflow that addresses this specific problem
2. Include all necessary nodes, connections, and configurations
3. Use realistic node types that exist in n8n
4. Include proper error handling and data validation
5. Add helpful notes on the nodes
6. Reference credentials by name, never inline secrets
7. Structure it as a complete n8n workflow JSON that can be imported directly

The workflow should include:
- Trigger nodes (webhook, schedule, manual, etc.)
- Processing nodes (data transformation, conditionals, loops)
- Action nodes (API calls, database operations, notifications)
- Error handling and logging
`)
	fmt.Fprintf(&sb, "\nExample categories: %s\n", strings.Join(exampleCategories, ", "))
	fmt.Fprintf(&sb, "Example integrations: %s\n", strings.Join(exampleIntegrations, ", "))

	sb.WriteString(`
The document must have a "name" string, a "nodes" array and a "connections" object.
Return ONLY the n8n workflow JSON. Do not wrap it in markdown and do not add any text before or after it.`)

	return sb.String()
}

// BuildChatPrompt renders a conversational prompt with the most recent
// history turns, oldest first.
func BuildChatPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are the AutomationVault assistant. You help people understand, choose and implement n8n automations.\n")
	sb.WriteString("Answer in plain language, keep replies focused, and suggest concrete next steps.\n")

	if c := strings.TrimSpace(req.Context); c != "" {
		sb.WriteString("\nAutomation being discussed:\n")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	if bt := strings.TrimSpace(req.BusinessType); bt != "" {
		fmt.Fprintf(&sb, "\nUser business type: %s\n", bt)
	}

	if turns := RecentHistory(req.History, HistoryLimit); len(turns) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, m := range turns {
			fmt.Fprintf(&sb, "%s: %s\n", speaker(m.Sender), strings.TrimSpace(m.Content))
		}
	}

	fmt.Fprintf(&sb, "\nUser: %s\nAssistant:", strings.TrimSpace(req.ProblemDescription))
	return sb.String()
}

// RecentHistory returns the last n messages in their original order.
func RecentHistory(history []model.ChatMessage, n int) []model.ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}

// FormatAutomationContext renders an automation into the context string of
// a chat prompt.
func FormatAutomationContext(a *model.Automation) string {
	if a == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", a.Title)
	fmt.Fprintf(&sb, "Category: %s\n", a.Category)
	fmt.Fprintf(&sb, "Difficulty: %s\n", a.Difficulty)
	if len(a.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(a.Tags, ", "))
	}
	fmt.Fprintf(&sb, "Rating: %.1f/5, downloaded %d times\n", a.Rating, a.Downloads)
	fmt.Fprintf(&sb, "Description: %s", a.Description)
	return sb.String()
}

func speaker(s model.Sender) string {
	if s == model.SenderAssistant {
		return "Assistant"
	}
	return "User"
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
