package backend

import (
	"context"
	"strings"
	"unicode"
)

// Scorer rates the tone of a message in [-1, 1].
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// LexiconScorer is a word-list scorer good enough for local development.
type LexiconScorer struct {
	positive map[string]bool
	negative map[string]bool
}

var (
	positiveWords = []string{
		"amazing", "awesome", "beautiful", "best", "brilliant", "cool", "enjoy", "enjoyed",
		"excellent", "fantastic", "fun", "good", "great", "happy", "helpful", "impressive",
		"like", "love", "loved", "nice", "perfect", "thanks", "wonderful",
	}
	negativeWords = []string{
		"angry", "annoying", "awful", "bad", "boring", "broken", "disappointing", "dislike",
		"hate", "hated", "horrible", "poor", "sad", "stupid", "terrible", "ugly", "useless",
		"worst", "wrong",
	}
	negators = map[string]bool{"not": true, "no": true, "never": true, "don't": true, "isn't": true}
)

// NewLexiconScorer creates a scorer with the built-in word lists.
func NewLexiconScorer() *LexiconScorer {
	s := &LexiconScorer{
		positive: make(map[string]bool, len(positiveWords)),
		negative: make(map[string]bool, len(negativeWords)),
	}
	for _, w := range positiveWords {
		s.positive[w] = true
	}
	for _, w := range negativeWords {
		s.negative[w] = true
	}
	return s
}

// Score returns (positive - negative) / (positive + negative) over matched
// words, 0 when nothing matches. A negator flips the next word.
func (s *LexiconScorer) Score(_ context.Context, text string) (float64, error) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var pos, neg int
	negate := false
	for _, w := range words {
		if negators[w] {
			negate = true
			continue
		}
		sign := 0
		switch {
		case s.positive[w]:
			sign = 1
		case s.negative[w]:
			sign = -1
		}
		if negate {
			sign = -sign
			negate = false
		}
		switch sign {
		case 1:
			pos++
		case -1:
			neg++
		}
	}

	if pos+neg == 0 {
		return 0, nil
	}
	return float64(pos-neg) / float64(pos+neg), nil
}
