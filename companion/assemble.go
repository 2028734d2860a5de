package companion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syanytska/ai-friend/storage"
)

// Prompt is one entry of the context window handed to the model.
type Prompt struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	personaPrompt = "You are a friendly, concise AI companion. Use chat history and provided facts."

	tieBreakPrompt = "If history conflicts, prefer the most recent user statement; if stored facts exist, prefer those."

	guestPrompt = "You are a helpful assistant answering a single-turn question for a guest user."

	noFactsLine = "No stored user facts."
)

// AssembleContext builds the ordered context window: persona, tie-break
// instruction, one serialized facts line, at most window prior messages
// oldest to newest, and the current user turn as the final element. History
// must be captured before the current turn is persisted, so the current turn
// appears exactly once.
func AssembleContext(facts []storage.Fact, history []storage.Message, current string, window int) []Prompt {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	out := make([]Prompt, 0, len(history)+4)
	out = append(out,
		Prompt{Role: RoleSystem, Content: personaPrompt},
		Prompt{Role: RoleSystem, Content: tieBreakPrompt},
		Prompt{Role: RoleSystem, Content: factsLine(facts)},
	)
	for _, m := range history {
		out = append(out, Prompt{Role: m.Role, Content: m.Content})
	}
	out = append(out, Prompt{Role: RoleUser, Content: current})
	return out
}

// factsLine serializes stored facts as "key=value" pairs in sorted key order
// so the same fact set always produces the same line.
func factsLine(facts []storage.Fact) string {
	if len(facts) == 0 {
		return noFactsLine
	}

	sorted := make([]storage.Fact, len(facts))
	copy(sorted, facts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	pairs := make([]string, 0, len(sorted))
	for _, f := range sorted {
		pairs = append(pairs, f.Key+"="+f.Value)
	}
	return fmt.Sprintf("Known user facts (prefer stored facts when present): %s.", strings.Join(pairs, ", "))
}
