package companion_test

import (
	"testing"

	"github.com/syanytska/ai-friend/companion"
)

func extractMap(t *testing.T, text string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, c := range companion.NewExtractor(nil).Extract(text) {
		out[c.Key] = c.Value
	}
	return out
}

func TestExtract_Name(t *testing.T) {
	got := extractMap(t, "Hello, my name is Alice")
	if got["name"] != "Alice" {
		t.Fatalf("name = %q, want Alice", got["name"])
	}
}

func TestExtract_NameFallbackPattern(t *testing.T) {
	got := extractMap(t, "i'm Bob")
	if got["name"] != "Bob" {
		t.Fatalf("name = %q, want Bob", got["name"])
	}
}

func TestExtract_NamePrimaryPatternWinsOverFallback(t *testing.T) {
	// Both alternatives could fire; only the first one in the family may.
	got := extractMap(t, "I am someone else but my name is Carol")
	if got["name"] != "Carol" {
		t.Fatalf("name = %q, want Carol", got["name"])
	}
}

func TestExtract_Age(t *testing.T) {
	for _, text := range []string{"I am 29", "i'm 29 and happy", "I turned 29 years old"} {
		got := extractMap(t, text)
		if got["age"] != "29" {
			t.Fatalf("age from %q = %q, want 29", text, got["age"])
		}
	}
}

func TestExtract_AgeDoesNotCaptureName(t *testing.T) {
	got := extractMap(t, "I am 29")
	if _, ok := got["name"]; ok {
		t.Fatalf("unexpected name fact from numeric message: %q", got["name"])
	}
}

func TestExtract_FavoriteNormalizesCategory(t *testing.T) {
	got := extractMap(t, "My favorite ice cream flavor is pistachio")
	if got["favorite_ice_cream_flavor"] != "pistachio" {
		t.Fatalf("favorite = %v", got)
	}
}

func TestExtract_Likes(t *testing.T) {
	got := extractMap(t, "I like long walks on the beach. Also naps.")
	if got["likes"] != "long walks on the beach" {
		t.Fatalf("likes = %q", got["likes"])
	}
}

func TestExtract_StruggleTopicOnly(t *testing.T) {
	for _, text := range []string{
		"I struggle with math",
		"I'm struggling with math",
		"I have trouble with math",
		"I have issues with math",
	} {
		got := extractMap(t, text)
		if got["struggle_math"] != "true" {
			t.Fatalf("struggle from %q = %v", text, got)
		}
		if _, ok := got["struggle_reason_math"]; ok {
			t.Fatalf("unexpected reason from %q", text)
		}
	}
}

func TestExtract_StruggleWithReason(t *testing.T) {
	got := extractMap(t, "I struggle with public speaking because crowds scare me")
	if got["struggle_public_speaking"] != "true" {
		t.Fatalf("topic missing: %v", got)
	}
	if got["struggle_reason_public_speaking"] != "crowds scare me" {
		t.Fatalf("reason = %q", got["struggle_reason_public_speaking"])
	}
}

func TestExtract_MultipleFamiliesInOneMessage(t *testing.T) {
	got := extractMap(t, "My name is Dana. My favorite color is green")
	if got["name"] != "Dana" {
		t.Fatalf("name = %q, want Dana", got["name"])
	}
	if got["favorite_color"] != "green" {
		t.Fatalf("favorite_color = %q", got["favorite_color"])
	}
}

func TestExtract_QuestionsAssertNothing(t *testing.T) {
	// Every deterministic-answer trigger must be extraction-neutral: asking
	// about a fact can never create or overwrite one.
	for _, q := range []string{
		"what's my name?",
		"who am i?",
		"how old am i?",
		"what's my favorite color?",
		"what do i like?",
		"What do I like about hiking?",
		"what do i struggle with?",
		"what are my struggles?",
		"Why do I struggle with mornings?",
	} {
		if got := companion.NewExtractor(nil).Extract(q); len(got) != 0 {
			t.Fatalf("question %q asserted facts: %v", q, got)
		}
	}
}

func TestExtract_AuxiliaryGuardKeepsStatements(t *testing.T) {
	got := extractMap(t, "yes, I like hiking")
	if got["likes"] != "hiking" {
		t.Fatalf("likes = %q, want hiking", got["likes"])
	}
	got = extractMap(t, "honestly I struggle with mornings")
	if got["struggle_mornings"] != "true" {
		t.Fatalf("struggle from statement missing: %v", got)
	}
}

func TestExtract_NoMatchIsEmpty(t *testing.T) {
	if got := companion.NewExtractor(nil).Extract("how is the weather today?"); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func TestExtract_EmptyInputIsTotal(t *testing.T) {
	if got := companion.NewExtractor(nil).Extract(""); len(got) != 0 {
		t.Fatalf("expected no candidates for empty input, got %v", got)
	}
}
