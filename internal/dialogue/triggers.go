package dialogue

import "strings"

// Triggers holds the phrase lists that steer routing.
type Triggers struct {
	// Keywords send a message with an embedded URL to page summarization.
	Keywords []string `json:"keywords" toml:"keywords"`
	// Uncertainty tokens in a completion mean the model did not really answer.
	Uncertainty []string `json:"uncertainty" toml:"uncertainty"`
}

func DefaultTriggers() Triggers {
	return Triggers{
		Keywords: []string{"scrape", "summarize", "what's on", "get info", "what is on"},
		Uncertainty: []string{
			"can't", "not available", "unable", "sorry", "hasn't",
			"wasn't", "as of", "has not", "clarify",
		},
	}
}

// Normalized lower-cases and de-duplicates both lists, dropping empty entries.
func (t Triggers) Normalized() Triggers {
	return Triggers{
		Keywords:    normalizeList(t.Keywords),
		Uncertainty: normalizeList(t.Uncertainty),
	}
}

// WantsPageSummary reports whether lowered contains a keyword.
func (t Triggers) WantsPageSummary(lowered string) bool {
	return containsAny(lowered, t.Keywords)
}

// SoundsUncertain reports whether a completion contains an uncertainty token.
func (t Triggers) SoundsUncertain(completion string) bool {
	return containsAny(strings.ToLower(completion), t.Uncertainty)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func normalizeList(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
