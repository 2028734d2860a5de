package companion_test

import (
	"strings"
	"testing"

	"github.com/syanytska/ai-friend/companion"
	"github.com/syanytska/ai-friend/storage"
)

func facts(pairs ...string) []storage.Fact {
	var out []storage.Fact
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, storage.Fact{Key: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func TestTryAnswer_Name(t *testing.T) {
	for _, q := range []string{"what's my name?", "what is my name", "who am i?"} {
		reply, ok := companion.TryAnswer(q, facts("name", "Alice"))
		if !ok {
			t.Fatalf("no rule hit for %q", q)
		}
		if !strings.Contains(reply, "Your name is Alice.") {
			t.Fatalf("reply = %q", reply)
		}
	}
}

func TestTryAnswer_NameMissingFactFallsThrough(t *testing.T) {
	if reply, ok := companion.TryAnswer("what's my name?", nil); ok {
		t.Fatalf("expected delegation, got %q", reply)
	}
}

func TestTryAnswer_Age(t *testing.T) {
	for _, q := range []string{"how old am i?", "what's my age?"} {
		reply, ok := companion.TryAnswer(q, facts("age", "29"))
		if !ok {
			t.Fatalf("no rule hit for %q", q)
		}
		if !strings.Contains(reply, "You are 29 years old.") {
			t.Fatalf("reply = %q", reply)
		}
	}
}

func TestTryAnswer_FavoriteRoundTrip(t *testing.T) {
	// Extraction normalizes the category; the question side must normalize
	// identically for the round trip to close.
	cands := companion.NewExtractor(nil).Extract("my favorite color is blue")
	var stored []storage.Fact
	for _, c := range cands {
		stored = append(stored, storage.Fact{Key: c.Key, Value: c.Value})
	}

	reply, ok := companion.TryAnswer("what's my favorite color?", stored)
	if !ok {
		t.Fatal("no rule hit")
	}
	if !strings.Contains(reply, "Your favorite color is blue.") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestTryAnswer_FavoriteMultiWordCategory(t *testing.T) {
	reply, ok := companion.TryAnswer("what is my favorite ice cream flavor?", facts("favorite_ice_cream_flavor", "pistachio"))
	if !ok {
		t.Fatal("no rule hit")
	}
	if !strings.Contains(reply, "Your favorite ice cream flavor is pistachio.") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestTryAnswer_Likes(t *testing.T) {
	reply, ok := companion.TryAnswer("what do i like?", facts("likes", "naps"))
	if !ok {
		t.Fatal("no rule hit")
	}
	if !strings.Contains(reply, "You like naps.") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestTryAnswer_StruggleAggregationSorted(t *testing.T) {
	stored := facts(
		"struggle_writing", "true",
		"struggle_math", "true",
		"struggle_reason_math", "numbers move around",
	)
	reply, ok := companion.TryAnswer("what do i struggle with?", stored)
	if !ok {
		t.Fatal("no rule hit")
	}
	// Topics come back de-normalized, sorted, comma joined; reason keys are
	// excluded from the aggregate.
	if !strings.Contains(reply, "You struggle with math, writing.") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestTryAnswer_StruggleEmptyAggregateFallsThrough(t *testing.T) {
	if reply, ok := companion.TryAnswer("what are my struggles?", facts("name", "Alice")); ok {
		t.Fatalf("expected delegation, got %q", reply)
	}
}

func TestTryAnswer_StruggleReason(t *testing.T) {
	stored := facts(
		"struggle_public_speaking", "true",
		"struggle_reason_public_speaking", "crowds scare me",
	)
	reply, ok := companion.TryAnswer("why do i struggle with public speaking?", stored)
	if !ok {
		t.Fatal("no rule hit")
	}
	if !strings.Contains(reply, "You struggle with public speaking because crowds scare me.") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestTryAnswer_PersonaPrefixApplied(t *testing.T) {
	reply, ok := companion.TryAnswer("what's my name?", facts("name", "Alice"))
	if !ok {
		t.Fatal("no rule hit")
	}
	if reply == "Your name is Alice." {
		t.Fatal("expected a persona wrap around the bare template")
	}
	if !strings.HasSuffix(reply, "Your name is Alice.") {
		t.Fatalf("reply = %q", reply)
	}
}

func TestTryAnswer_NoTriggerNoMatch(t *testing.T) {
	if reply, ok := companion.TryAnswer("tell me a story", facts("name", "Alice")); ok {
		t.Fatalf("expected delegation, got %q", reply)
	}
}
