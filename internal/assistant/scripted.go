package assistant

import (
	"fmt"
	"strings"

	"github.com/agenthands/automationvault/internal/core/model"
)

// scriptedReply answers by keyword when no LLM is configured.
func scriptedReply(message string, a *model.Automation) string {
	msg := strings.ToLower(message)

	if a != nil {
		if containsAny(msg, "how", "setup", "implement") {
			return fmt.Sprintf("To implement the %q automation, you'll need to follow these general steps:\n\n"+
				"1. Download the automation files\n"+
				"2. Review the documentation included\n"+
				"3. Configure the settings for your specific use case\n"+
				"4. Test the automation in a safe environment\n"+
				"5. Deploy to production\n\n"+
				"This automation is rated %s level, so %s.\n\n"+
				"Would you like more specific guidance on any of these steps?",
				a.Title, a.Difficulty, difficultyAdvice(a.Difficulty))
		}

		if containsAny(msg, "what", "does", "purpose") {
			return fmt.Sprintf("The %q is designed for %s purposes. Here's what it does:\n\n%s\n\n"+
				"Key features include:\n"+
				"• Automated workflow processing\n"+
				"• Integration capabilities\n"+
				"• Customizable settings\n"+
				"• Performance monitoring\n\n"+
				"This automation has been downloaded %d times and has a %.1f/5 rating from users.\n\n"+
				"Would you like to know more about specific features or implementation details?",
				a.Title, strings.ToLower(a.Category), a.Description, a.Downloads, a.Rating)
		}
	}

	if containsAny(msg, "recommend", "suggest", "best") {
		return "I'd be happy to recommend automations! To give you the best suggestions, could you tell me:\n\n" +
			"• What type of business or use case you have?\n" +
			"• What processes you'd like to automate?\n" +
			"• Your technical experience level?\n" +
			"• Any specific tools or platforms you're using?\n\n" +
			"With this information, I can recommend the most suitable automations from our library."
	}

	if containsAny(msg, "help", "guide", "tutorial") {
		return "I'm here to help! I can assist you with:\n\n" +
			"🔧 **Implementation guidance** - Step-by-step setup instructions\n" +
			"📊 **Automation selection** - Finding the right tools for your needs\n" +
			"🛠️ **Troubleshooting** - Solving common issues\n" +
			"💡 **Best practices** - Tips for optimal performance\n" +
			"🔗 **Integration help** - Connecting with your existing tools\n\n" +
			"What specific area would you like help with?"
	}

	return "That's a great question! Live AI answers are not enabled on this server yet, but I can still point you in the right direction. " +
		"With live answers enabled I can help with:\n\n" +
		"• How to set up specific automations\n" +
		"• Troubleshooting common issues\n" +
		"• Recommending the best automations for your needs\n" +
		"• Integration guidance\n\n" +
		"For now, you can explore our automation library and download the ones that interest you. " +
		"Is there anything specific about automations you'd like to discuss?"
}

func difficultyAdvice(d model.Difficulty) string {
	switch d {
	case model.DifficultyBeginner:
		return "it should be straightforward to set up"
	case model.DifficultyIntermediate:
		return "you may need some technical knowledge"
	}
	return "advanced technical skills are recommended"
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
