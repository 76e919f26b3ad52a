package learning

import (
	"math/rand"
)

// maskGlyph replaces hidden characters in a production challenge.
const maskGlyph = '_'

// newRecognitionChallenge builds a four-option multiple-choice challenge for
// pool[idx]: the item's own answer plus three distractors drawn without
// replacement from the other items' answers, shuffled uniformly. Every call
// produces a fresh draw.
func newRecognitionChallenge(pool []Item, idx int, rng *rand.Rand) (*Challenge, error) {
	if len(pool) < MinPoolSize {
		return nil, ErrGenerationPrecondition
	}
	item := pool[idx]

	others := make([]int, 0, len(pool)-1)
	for i := range pool {
		if i != idx {
			others = append(others, i)
		}
	}
	rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	options := make([]Option, 0, MinPoolSize)
	options = append(options, Option{ItemID: item.ID, Text: item.Answer, Correct: true})
	for _, i := range others[:MinPoolSize-1] {
		options = append(options, Option{ItemID: pool[i].ID, Text: pool[i].Answer})
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &Challenge{
		ItemID:  item.ID,
		Prompt:  item.Prompt,
		Kind:    Recognition,
		Options: options,
	}, nil
}

// newProductionChallenge builds a typed-answer challenge with a partially
// masked copy of the answer as a retrieval hint. The prompt stays fully
// visible. Regenerating (a retry, or a later revisit) draws a fresh mask.
func newProductionChallenge(item Item, rng *rand.Rand) *Challenge {
	return &Challenge{
		ItemID:       item.ID,
		Prompt:       item.Prompt,
		Kind:         Production,
		MaskedAnswer: maskAnswer(item.Answer, rng),
	}
}

// maskAnswer hides ceil(n/2) distinct rune positions, chosen uniformly
// without replacement.
func maskAnswer(answer string, rng *rand.Rand) string {
	runes := []rune(answer)
	n := len(runes)
	if n == 0 {
		return ""
	}
	hide := (n + 1) / 2
	for _, p := range rng.Perm(n)[:hide] {
		runes[p] = maskGlyph
	}
	return string(runes)
}
