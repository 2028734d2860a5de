package companion

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Candidate is one fact derived from a user message, not yet persisted.
type Candidate struct {
	Key   string
	Value string
}

// auxiliaries guard first-person phrases that also appear verbatim inside
// questions: "why do i struggle with X" must not assert struggle_x.
const auxiliaries = `do|does|did|would|should|can|could|will`

// factRule is one fact family: trigger patterns in priority order and a
// derivation from the first match. Families are evaluated independently and
// only the first matching pattern within a family is taken per message.
type factRule struct {
	family   string
	patterns []*regexp.Regexp
	derive   func(m []string) []Candidate
}

var factRules = []factRule{
	{
		family: "name",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bmy name is\s+([a-z][a-z '-]{1,50})`),
			regexp.MustCompile(`(?i)\b(?:i am|i'm)\s+([a-z][a-z '-]{1,50})`),
		},
		derive: func(m []string) []Candidate {
			name := strings.TrimSpace(m[1])
			if len(name) < 2 {
				return nil
			}
			return []Candidate{{Key: "name", Value: name}}
		},
	},
	{
		family: "age",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:i am|i'm)\s+(\d{1,3})\b`),
			regexp.MustCompile(`(?i)\b(\d{1,3})\s*years?\s*old\b`),
		},
		derive: func(m []string) []Candidate {
			return []Candidate{{Key: "age", Value: m[1]}}
		},
	},
	{
		family: "favorite",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bmy favorite\s+([a-z][a-z ]*?)\s+is\s+([^.!?,\n]+)`),
		},
		derive: func(m []string) []Candidate {
			category := normalizeTopic(m[1])
			value := strings.TrimSpace(m[2])
			if category == "" || value == "" {
				return nil
			}
			return []Candidate{{Key: "favorite_" + category, Value: value}}
		},
	},
	{
		family: "likes",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:\b(` + auxiliaries + `)\s+)?\bi like\s+([^.!?\n]+)`),
		},
		derive: func(m []string) []Candidate {
			if m[1] != "" {
				// An auxiliary right before the phrase means a question
				// ("what do i like ..."), not an assertion.
				return nil
			}
			value := strings.TrimSpace(m[2])
			if value == "" {
				return nil
			}
			return []Candidate{{Key: "likes", Value: value}}
		},
	},
	{
		family: "struggle",
		patterns: []*regexp.Regexp{
			// with a reason
			regexp.MustCompile(`(?i)(?:\b(` + auxiliaries + `)\s+)?\b(?:i struggle with|i'm struggling with|i am struggling with|i have trouble with|i have issues with)\s+([a-z][a-z ]*?)\s+because\s+([^.!?\n]+)`),
			// topic only
			regexp.MustCompile(`(?i)(?:\b(` + auxiliaries + `)\s+)?\b(?:i struggle with|i'm struggling with|i am struggling with|i have trouble with|i have issues with)\s+([^.!?,\n]+)`),
		},
		derive: func(m []string) []Candidate {
			if m[1] != "" {
				// Question form, e.g. "why do i struggle with mornings?".
				return nil
			}
			topic := normalizeTopic(m[2])
			if topic == "" {
				return nil
			}
			out := []Candidate{{Key: "struggle_" + topic, Value: "true"}}
			if len(m) > 3 && strings.TrimSpace(m[3]) != "" {
				out = append(out, Candidate{Key: "struggle_reason_" + topic, Value: strings.TrimSpace(m[3])})
			}
			return out
		},
	},
}

// normalizeTopic folds a free-text category or topic into a stable key
// segment: trimmed, lowercased, spaces replaced with underscores.
func normalizeTopic(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// denormalizeTopic is the inverse used when topics are shown back to the
// user.
func denormalizeTopic(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// Extractor matches fact patterns against free-form user text. Extract is
// pure and total: malformed input yields no candidates, and a failure in one
// family never aborts the others.
type Extractor struct {
	log *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

func (e *Extractor) Extract(text string) []Candidate {
	var out []Candidate
	for _, rule := range factRules {
		out = append(out, e.extractFamily(rule, text)...)
	}
	return out
}

func (e *Extractor) extractFamily(rule factRule, text string) (cands []Candidate) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("fact extraction failed",
				zap.String("family", rule.family),
				zap.Any("panic", r),
			)
			cands = nil
		}
	}()

	for _, p := range rule.patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return rule.derive(m)
		}
	}
	return nil
}
