package command

import (
	"strings"

	"github.com/antzucaro/matchr"
)

type phoneticEntry struct {
	tokens []string
	full   string
	codes  map[string]struct{}
}

// phoneticMatcher compares utterances to phrases by Double Metaphone codes,
// scoring candidates with Jaro-Winkler.
type phoneticMatcher struct {
	threshold float64
	entries   []phoneticEntry
}

func newPhoneticMatcher(threshold float64) *phoneticMatcher {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85
	}
	return &phoneticMatcher{threshold: threshold}
}

func (m *phoneticMatcher) index(entries []Entry) {
	m.entries = make([]phoneticEntry, len(entries))
	for i, e := range entries {
		tokens := strings.Fields(e.Phrase)
		m.entries[i] = phoneticEntry{tokens: tokens, full: e.Phrase, codes: codesForTokens(tokens)}
	}
}

// match returns the index of the best entry. Ties keep the earlier entry.
func (m *phoneticMatcher) match(text string) (int, bool) {
	tokens := strings.Fields(text)
	codes := codesForTokens(tokens)
	best, bestScore := -1, 0.0
	for i, e := range m.entries {
		if !codesOverlap(codes, e.codes) {
			continue
		}
		score := bestJWScore(tokens, e.tokens, text, e.full)
		if score >= m.threshold && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, best >= 0
}

func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore takes the highest of the full-string, space-stripped and
// best token-pair similarities.
func bestJWScore(inputTokens, phraseTokens []string, inputFull, phraseFull string) float64 {
	score := matchr.JaroWinkler(inputFull, phraseFull, false)
	if len(inputTokens) > 1 || len(phraseTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(inputTokens, ""), strings.Join(phraseTokens, ""), false); s > score {
			score = s
		}
	}
	for _, it := range inputTokens {
		for _, pt := range phraseTokens {
			if s := matchr.JaroWinkler(it, pt, false); s > score {
				score = s
			}
		}
	}
	return score
}
