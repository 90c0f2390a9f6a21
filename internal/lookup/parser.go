package lookup

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// parseRule splits text into a card name and a set identifier. Rules are
// tried in order and the first one that reports ok wins.
type parseRule struct {
	name    string
	extract func(p *Parser, text string) (name, set string, ok bool)
}

var (
	fromSeparator = regexp.MustCompile(`(?i)\s+from\s+`)
	setSyntax     = regexp.MustCompile(`(?i)^(.*\S)\s+(?:set|e|s):([a-z0-9]{2,6})$`)
	bracketedCode = regexp.MustCompile(`^(.*\S)\s*[\[(]\s*([A-Za-z0-9]{2,5})\s*[\])]$`)
	trailingToken = regexp.MustCompile(`^(.*\S)\s+([A-Za-z0-9]{2,4})$`)
)

var parseRules = []parseRule{
	{name: "from-separator", extract: extractFromSeparator},
	{name: "set-syntax", extract: suffixRule(setSyntax)},
	{name: "bracketed-code", extract: suffixRule(bracketedCode)},
	{name: "trailing-code", extract: extractTrailingCode},
}

// Parser turns raw command text into a LookupRequest. It never fails: text
// without a recognizable set fragment becomes a request with no set.
type Parser struct {
	knownCodes map[string]bool
	protected  []*regexp.Regexp
	normalizer *Normalizer
}

func NewParser(p Policy) *Parser {
	parser := &Parser{
		knownCodes: make(map[string]bool, len(p.KnownSetCodes)),
		normalizer: NewNormalizer(p),
	}
	for _, code := range p.KnownSetCodes {
		parser.knownCodes[strings.ToLower(strings.TrimSpace(code))] = true
	}
	for _, name := range p.ProtectedNames {
		if name = strings.TrimSpace(name); name != "" {
			parser.protected = append(parser.protected, regexp.MustCompile(`(?i)\b`+wordPattern(name)+`\b`))
		}
	}
	return parser
}

var defaultParser = NewParser(DefaultPolicy())

// ParseCommand parses raw text with the default policy.
func ParseCommand(raw string) LookupRequest {
	return defaultParser.Parse(raw)
}

func (p *Parser) Parse(raw string) LookupRequest {
	req := LookupRequest{RawText: raw}
	text := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(raw), "?"))
	if text == "" {
		return req
	}

	// A trailing "!" can belong to the card name ("Ach! Hans, Run!"), so it
	// is only dropped when a rule splits off a set.
	bare := strings.TrimSpace(strings.TrimRight(text, "!?"))
	for _, rule := range parseRules {
		if name, set, ok := rule.extract(p, bare); ok {
			req.CardName = name
			req.SetIdentifier = set
			return req
		}
	}

	req.CardName = text
	return req
}

// extractFromSeparator splits on the last "from" that is not part of a
// protected card name.
func extractFromSeparator(p *Parser, text string) (string, string, bool) {
	seps := fromSeparator.FindAllStringIndex(text, -1)
	spans := p.protectedSpans(text)
	for i := len(seps) - 1; i >= 0; i-- {
		start, end := seps[i][0], seps[i][1]
		if insideAny(spans, start, end) {
			continue
		}
		name := strings.TrimSpace(text[:start])
		set := strings.TrimSpace(text[end:])
		if name != "" && set != "" {
			return name, set, true
		}
	}
	return "", "", false
}

// suffixRule accepts any match of an explicit set-code suffix pattern.
func suffixRule(re *regexp.Regexp) func(*Parser, string) (string, string, bool) {
	return func(_ *Parser, text string) (string, string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", "", false
		}
		return m[1], m[2], true
	}
}

func extractTrailingCode(p *Parser, text string) (string, string, bool) {
	m := trailingToken.FindStringSubmatchIndex(text)
	if m == nil {
		return "", "", false
	}
	name, token := text[m[2]:m[3]], text[m[4]:m[5]]
	if insideAny(p.protectedSpans(text), m[4], m[5]) {
		return "", "", false
	}
	if !p.looksLikeSetCode(token, name) || !p.plausibleName(name) {
		return "", "", false
	}
	return name, token, true
}

// looksLikeSetCode accepts tokens that mix letters and digits ("m21", "2xm"),
// tokens typed in capitals after a name that is not ("Sol Ring NEO"), and
// configured codes.
func (p *Parser) looksLikeSetCode(token, name string) bool {
	if p.knownCodes[strings.ToLower(token)] {
		return true
	}
	var letters, digits bool
	for _, r := range token {
		switch {
		case unicode.IsDigit(r):
			digits = true
		case unicode.IsLetter(r):
			letters = true
		}
	}
	if letters && digits {
		return true
	}
	return letters && !digits && strings.ToUpper(token) == token && strings.ToUpper(name) != name
}

func (p *Parser) plausibleName(name string) bool {
	if !strings.ContainsFunc(name, unicode.IsLetter) {
		return false
	}
	return p.normalizer.Normalize(name) != ""
}

func (p *Parser) protectedSpans(text string) [][]int {
	var spans [][]int
	for _, re := range p.protected {
		spans = append(spans, re.FindAllStringIndex(text, -1)...)
	}
	return spans
}

func insideAny(spans [][]int, start, end int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}

// ProtectedNameCandidates returns the names, or faces of multi-face names,
// that the from-separator rule would split. The result is sorted and has no
// duplicates.
func ProtectedNameCandidates(names []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, full := range names {
		for _, face := range strings.Split(full, " // ") {
			face = strings.TrimSpace(face)
			if face == "" || seen[face] || !fromSeparator.MatchString(face) {
				continue
			}
			seen[face] = true
			out = append(out, face)
		}
	}
	sort.Strings(out)
	return out
}
