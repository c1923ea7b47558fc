package rag

import (
	"fmt"
	"strings"
)

// Turn is one role-tagged conversation line used for prompt serialization.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const maxPromptDocs = 3

// classifyPromptIntent annotates the prompt with a coarse intent. This is a
// looser cascade than the router's classifier and only changes prompt text,
// never control flow.
func classifyPromptIntent(query string) string {
	q := strings.ToLower(query)
	for _, w := range []string{"compatible", "fit", "works with"} {
		if strings.Contains(q, w) {
			return "compatibility"
		}
	}
	for _, w := range []string{"how to", "replace", "install", "fix", "repair", "broken"} {
		if strings.Contains(q, w) {
			return "repair_guide"
		}
	}
	for _, w := range []string{"rack", "filter", "pump", "hose", "basket", "drawer", "bin", "ice maker"} {
		if strings.Contains(q, w) {
			return "part_lookup"
		}
	}
	for _, w := range []string{"clean", "maintain", "how often", "smell"} {
		if strings.Contains(q, w) {
			return "maintenance"
		}
	}
	return "general_help"
}

// BuildPrompt assembles the structured text block sent to the generative
// collaborator: role framing, behavioural rules, detected intent, the first
// retrieved documents, role-tagged history and the literal user query.
// Pure string assembly; no I/O.
func BuildPrompt(userQuery string, docs []string, history []Turn, applianceContext string) string {
	intent := classifyPromptIntent(userQuery)

	context := "(No context found)"
	if len(docs) > 0 {
		context = strings.Join(docs[:min(maxPromptDocs, len(docs))], "\n\n")
	}

	var hist strings.Builder
	for i, msg := range history {
		if i > 0 {
			hist.WriteByte('\n')
		}
		hist.WriteString(msg.Role)
		hist.WriteString(": ")
		hist.WriteString(msg.Content)
	}

	upper := strings.ToUpper(applianceContext)
	return fmt.Sprintf(`# Role
You are Instalilly AI — a friendly and expert AI repair assistant for PartSelect.
You are currently helping a customer with their **%[1]s**.

# Objective
Help users find correct replacement parts, confirm part compatibility,
and get repair/installation guides for their appliance.

# Rules
- **STAY ON TOPIC:** Only answer about the user's **%[1]s**.
- **BE CONCISE:** Give clear, actionable answers. Do not overwhelm the user.
- **USE CONTEXT:** Base your answer *only* on the provided "Context" from the parts database.
- **PART NUMBERS:** When listing parts, always include the Part Number (e.g., PS11752778).
- **SAFETY FIRST:** For any installation or repair, *always* include a safety warning (e.g., "Before you begin, make sure to unplug your appliance and shut off the water supply.").

# Detected Intent: %[2]s

# Conversation History
%[3]s

# Context (retrieved from parts database)
%[4]s

# User Query
%[5]s

# Expected Output
- **For 'part_lookup':** "Here are some parts that match your description: \n 1. [Part Name] (Part: [Part Number]) \n 2. ..."
- **For 'repair_guide':** "I can help with that! Here are the steps: \n [SAFETY WARNING] \n 1. [Step] \n 2. [Step]..."
- **For 'compatibility':** "Please provide both the Part Number and your appliance's Model Number so I can check for you." (Unless you can infer it from history).
- **If out of scope (e.g., user asks about a car):** Politely state that you can only help with **%[6]s** parts.
`, upper, intent, hist.String(), context, userQuery, applianceContext)
}
