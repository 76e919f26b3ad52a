package learning

import (
	"math/rand"
	"strings"
	"testing"
)

func testPool() []Item {
	return []Item{
		{ID: 1, Prompt: "Apple", Answer: "Manzana"},
		{ID: 2, Prompt: "Banana", Answer: "Plátano"},
		{ID: 3, Prompt: "Cherry", Answer: "Cereza"},
		{ID: 4, Prompt: "Date", Answer: "Dátil"},
		{ID: 5, Prompt: "Fig", Answer: "Higo"},
	}
}

func TestRecognitionChallengeShape(t *testing.T) {
	pool := testPool()
	rng := rand.New(rand.NewSource(1))

	for run := 0; run < 50; run++ {
		ch, err := newRecognitionChallenge(pool, 0, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ch.Options) != 4 {
			t.Fatalf("expected 4 options, got %d", len(ch.Options))
		}
		correct := 0
		seen := map[uint]bool{}
		for _, opt := range ch.Options {
			if seen[opt.ItemID] {
				t.Fatalf("duplicate option for item %d", opt.ItemID)
			}
			seen[opt.ItemID] = true
			if opt.Correct {
				correct++
				if opt.ItemID != 1 || opt.Text != "Manzana" {
					t.Fatalf("correct option is %d/%q, want 1/Manzana", opt.ItemID, opt.Text)
				}
			}
		}
		if correct != 1 {
			t.Fatalf("expected exactly one correct option, got %d", correct)
		}
	}
}

func TestRecognitionChallengeRejectsSmallPool(t *testing.T) {
	pool := testPool()[:3]
	rng := rand.New(rand.NewSource(1))
	if _, err := newRecognitionChallenge(pool, 0, rng); err != ErrGenerationPrecondition {
		t.Fatalf("expected ErrGenerationPrecondition, got %v", err)
	}
}

func TestProductionChallengeMasksHalfTheAnswer(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	item := Item{ID: 1, Prompt: "Apple", Answer: "Manzana"}

	for run := 0; run < 50; run++ {
		ch := newProductionChallenge(item, rng)
		if ch.Prompt != "Apple" {
			t.Fatalf("prompt must stay visible, got %q", ch.Prompt)
		}
		masked := []rune(ch.MaskedAnswer)
		if len(masked) != 7 {
			t.Fatalf("masked answer length %d, want 7", len(masked))
		}
		hidden := strings.Count(ch.MaskedAnswer, string(maskGlyph))
		if hidden != 4 {
			t.Fatalf("expected 4 hidden positions for a 7-rune answer, got %d (%q)", hidden, ch.MaskedAnswer)
		}
		// Visible positions must match the original answer.
		for i, r := range masked {
			if r != maskGlyph && r != []rune(item.Answer)[i] {
				t.Fatalf("visible rune %d is %q, want %q", i, r, []rune(item.Answer)[i])
			}
		}
	}
}

func TestMaskAnswerEdgeLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := maskAnswer("", rng); got != "" {
		t.Errorf("empty answer: got %q", got)
	}
	if got := maskAnswer("a", rng); got != "_" {
		t.Errorf("single rune answer: got %q, want _", got)
	}
	got := maskAnswer("ab", rng)
	if strings.Count(got, "_") != 1 {
		t.Errorf("two rune answer: got %q, want one masked position", got)
	}
}
