package companion

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/syanytska/ai-friend/storage"
)

// personaPrefix gives rule-answered replies the same voice as the model
// persona.
const personaPrefix = "Of course! "

// answerRule is one deterministic Q&A rule: a trigger over the lowercased
// message and an answer derived from stored facts. A rule whose fact is
// missing falls through to the next rule, not straight to delegation.
type answerRule struct {
	name    string
	pattern *regexp.Regexp
	answer  func(m []string, facts map[string]string) (string, bool)
}

var answerRules = []answerRule{
	{
		name:    "name",
		pattern: regexp.MustCompile(`\b(?:what(?:'s| is) my name|who am i)\b`),
		answer: func(_ []string, facts map[string]string) (string, bool) {
			name, ok := facts["name"]
			if !ok {
				return "", false
			}
			return fmt.Sprintf("Your name is %s.", name), true
		},
	},
	{
		name:    "age",
		pattern: regexp.MustCompile(`\b(?:how old am i|what(?:'s| is) my age)\b`),
		answer: func(_ []string, facts map[string]string) (string, bool) {
			age, ok := facts["age"]
			if !ok {
				return "", false
			}
			return fmt.Sprintf("You are %s years old.", age), true
		},
	},
	{
		name:    "favorite",
		pattern: regexp.MustCompile(`\bwhat(?:'s| is) my favorite\s+([a-z][a-z ]*?)[?.!]*\s*$`),
		answer: func(m []string, facts map[string]string) (string, bool) {
			category := normalizeTopic(m[1])
			value, ok := facts["favorite_"+category]
			if !ok {
				return "", false
			}
			return fmt.Sprintf("Your favorite %s is %s.", denormalizeTopic(category), value), true
		},
	},
	{
		name:    "likes",
		pattern: regexp.MustCompile(`\bwhat do i like\b`),
		answer: func(_ []string, facts map[string]string) (string, bool) {
			likes, ok := facts["likes"]
			if !ok {
				return "", false
			}
			return fmt.Sprintf("You like %s.", likes), true
		},
	},
	{
		name:    "struggles",
		pattern: regexp.MustCompile(`\b(?:what do i struggle with|what are my struggles)\b`),
		answer: func(_ []string, facts map[string]string) (string, bool) {
			topics := struggleTopics(facts)
			if len(topics) == 0 {
				return "", false
			}
			return fmt.Sprintf("You struggle with %s.", strings.Join(topics, ", ")), true
		},
	},
	{
		name:    "struggle reason",
		pattern: regexp.MustCompile(`\bwhy do i struggle with\s+([a-z][a-z ]*?)[?.!]*\s*$`),
		answer: func(m []string, facts map[string]string) (string, bool) {
			topic := normalizeTopic(m[1])
			reason, ok := facts["struggle_reason_"+topic]
			if !ok {
				return "", false
			}
			return fmt.Sprintf("You struggle with %s because %s.", denormalizeTopic(topic), reason), true
		},
	},
}

// struggleTopics collects every struggle_<topic> fact set to "true",
// de-normalized and sorted so the aggregate reply is deterministic.
func struggleTopics(facts map[string]string) []string {
	var topics []string
	for key, value := range facts {
		if !strings.HasPrefix(key, "struggle_") || strings.HasPrefix(key, "struggle_reason_") {
			continue
		}
		if value != "true" {
			continue
		}
		topics = append(topics, denormalizeTopic(strings.TrimPrefix(key, "struggle_")))
	}
	sort.Strings(topics)
	return topics
}

// TryAnswer runs the deterministic rules over an already lowercased message.
// Rules are checked in fixed priority and the first rule whose trigger and
// fact both hit wins; no match means the turn delegates to the model.
func TryAnswer(lowercased string, facts []storage.Fact) (string, bool) {
	byKey := make(map[string]string, len(facts))
	for _, f := range facts {
		byKey[f.Key] = f.Value
	}

	for _, rule := range answerRules {
		m := rule.pattern.FindStringSubmatch(lowercased)
		if m == nil {
			continue
		}
		if reply, ok := rule.answer(m, byKey); ok {
			return personaPrefix + reply, true
		}
	}
	return "", false
}
