package guard

import "strings"

// Intent labels assigned by the classifier and the router.
const (
	IntentCompatibility    = "compatibility"
	IntentInstallation     = "installation"
	IntentSymptom          = "symptom"
	IntentPartLookup       = "part_lookup"
	IntentGeneralHelp      = "general_help"
	IntentPartSearch       = "part_search"
	IntentSwitchSuggestion = "switch_suggestion"
	IntentAckRefuse        = "ack_refuse"
)

// IntentResult carries one coarse intent label and its confidence.
type IntentResult struct {
	Type       string
	Confidence float64
}

// partNameVocabulary lists common part names; a whole-token hit counts as a
// lookup cue.
var partNameVocabulary = map[string]struct{}{
	"rack": {}, "basket": {}, "wheel": {}, "roller": {}, "gasket": {}, "seal": {},
	"pump": {}, "motor": {}, "hose": {}, "tube": {}, "inlet": {}, "valve": {},
	"filter": {}, "water": {}, "drain": {}, "panel": {}, "handle": {}, "latch": {},
	"door": {}, "shelf": {}, "bin": {}, "drawer": {}, "crisper": {}, "light": {},
	"bulb": {}, "heating": {}, "element": {}, "thermostat": {}, "sensor": {},
	"board": {}, "control": {},
}

type intentRule struct {
	intent     string
	confidence float64
	phrases    []string
	// tokenVocab, when set, also matches any whole query token in the set
	tokenVocab map[string]struct{}
}

// intentCascade is evaluated top to bottom; first match wins. The order is
// a precedence policy — reordering changes behaviour.
var intentCascade = []intentRule{
	{intent: IntentCompatibility, confidence: 0.95, phrases: []string{"compatible", "fit", "work with"}},
	{intent: IntentInstallation, confidence: 0.9, phrases: []string{"how to", "install", "replace", "remove"}},
	{intent: IntentSymptom, confidence: 0.9, phrases: []string{"leaking", "not cooling", "not draining", "loud noise", "won't start", "ice maker not working"}},
	{intent: IntentPartLookup, confidence: 0.8, phrases: []string{"find", "need", "buy", "part for", "looking for"}, tokenVocab: partNameVocabulary},
}

// ClassifyIntent assigns one coarse intent to the message. Total order:
// always terminates with the general-help default.
func ClassifyIntent(query string) IntentResult {
	q := strings.ToLower(query)
	toks := strings.Fields(q)

	for _, rule := range intentCascade {
		for _, p := range rule.phrases {
			if strings.Contains(q, p) {
				return IntentResult{Type: rule.intent, Confidence: rule.confidence}
			}
		}
		if rule.tokenVocab != nil {
			for _, t := range toks {
				if _, ok := rule.tokenVocab[t]; ok {
					return IntentResult{Type: rule.intent, Confidence: rule.confidence}
				}
			}
		}
	}
	return IntentResult{Type: IntentGeneralHelp, Confidence: 0.7}
}

// clarifiers hold a follow-up question per intent, used when confidence is
// too low to act.
var clarifiers = map[string]string{
	IntentCompatibility: "To check compatibility, I'll need the part number and your appliance's model number. Do you have those?",
	IntentInstallation:  "It sounds like you're looking for installation steps. Could you tell me the part you're working with?",
	IntentSymptom:       "It sounds like you're diagnosing a problem. Can you tell me a bit more about what's happening?",
	IntentPartLookup:    "I can help you find that. What part are you looking for?",
	IntentGeneralHelp:   "I'm not quite sure what you mean. Could you rephrase that? You can ask me to find parts, check compatibility, or get repair guides.",
}

// Clarifier returns a clarification question for the intent type.
func Clarifier(intentType string) string {
	if c, ok := clarifiers[intentType]; ok {
		return c
	}
	return clarifiers[IntentGeneralHelp]
}
