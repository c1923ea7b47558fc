package guard

import "strings"

// Appliance kinds form a small closed set.
const (
	ApplianceDishwasher   = "dishwasher"
	ApplianceRefrigerator = "refrigerator"
)

// RefusalMarker is the fixed control phrase the front-end sends when the
// user declines a context switch.
const RefusalMarker = "user refused switch"

var applianceVocabulary = map[string][]string{
	ApplianceRefrigerator: {"fridge", "refrigerator", "freezer"},
	ApplianceDishwasher:   {"dishwasher", "dish washer"},
}

// IsRefusalMarker reports whether the raw text carries the refusal control
// phrase. Checked before all other turn logic.
func IsRefusalMarker(text string) bool {
	return strings.Contains(strings.ToLower(text), RefusalMarker)
}

// OtherApplianceHint returns the appliance kind the text names when it
// differs from the current context, or "" when the text stays on topic.
// Refrigerator vocabulary is checked first, matching the fixed scan order.
func OtherApplianceHint(text, current string) string {
	s := strings.ToLower(text)
	for _, kind := range []string{ApplianceRefrigerator, ApplianceDishwasher} {
		for _, kw := range applianceVocabulary[kind] {
			if strings.Contains(s, kw) {
				if kind != current {
					return kind
				}
				return ""
			}
		}
	}
	return ""
}

// SwitchOutcome is the appliance guard's per-turn decision.
type SwitchOutcome int

const (
	// SwitchNone: the message stays in the current context.
	SwitchNone SwitchOutcome = iota
	// SwitchSuggest: propose switching; terminal for the turn.
	SwitchSuggest
	// SwitchProceedSilently: the user already refused switching to the
	// hinted kind; continue in the current context with a retrieval bias.
	SwitchProceedSilently
)

// DecideSwitch fuses the appliance hint with the session's recorded refusal.
func DecideSwitch(text, current, refusedFor string) (SwitchOutcome, string) {
	other := OtherApplianceHint(text, current)
	if other == "" {
		return SwitchNone, ""
	}
	if refusedFor == other {
		return SwitchProceedSilently, other
	}
	return SwitchSuggest, other
}
