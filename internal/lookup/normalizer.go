package lookup

import (
	"regexp"
	"sort"
	"strings"
)

// Normalizer strips question phrasing from a card-name candidate.
// It never tries to restore punctuation; the catalog's fuzzy search owns that.
type Normalizer struct {
	fillers  []*regexp.Regexp
	trailing *regexp.Regexp
}

func NewNormalizer(p Policy) *Normalizer {
	phrases := append([]string(nil), p.FillerPhrases...)
	// Longest first so "can you explain" goes before "explain".
	sort.SliceStable(phrases, func(i, j int) bool {
		return len(phrases[i]) > len(phrases[j])
	})

	n := &Normalizer{}
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		n.fillers = append(n.fillers, regexp.MustCompile(`(?i)\b`+wordPattern(phrase)+`\b`))
	}

	var tails []string
	for _, t := range p.TrailingFillers {
		if t = strings.TrimSpace(t); t != "" {
			tails = append(tails, wordPattern(t))
		}
	}
	if len(tails) > 0 {
		n.trailing = regexp.MustCompile(`(?i)(?:^|\s)(?:` + strings.Join(tails, "|") + `)$`)
	}
	return n
}

// Normalize returns the cleaned lookup key. Applying it twice yields the
// same string as applying it once.
func (n *Normalizer) Normalize(s string) string {
	out := collapse(s)
	for {
		next := n.step(out)
		if next == out {
			return out
		}
		out = next
	}
}

func (n *Normalizer) step(s string) string {
	for _, re := range n.fillers {
		s = re.ReplaceAllString(s, " ")
	}
	s = strings.TrimRight(collapse(s), "?")
	if n.trailing != nil {
		s = n.trailing.ReplaceAllString(collapse(s), "")
	}
	return collapse(s)
}

// wordPattern quotes a phrase and lets any run of whitespace separate its words.
func wordPattern(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
