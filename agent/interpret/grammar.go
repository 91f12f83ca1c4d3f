package interpret

import (
	"strings"
	"unicode"
)

// Token is one parsed model reply in the command grammar: a bare KEYWORD or a
// KEY:VALUE pair (e.g. "CREDITO", "VALOR:250000").
type Token struct {
	Keyword string
	Value   string
}

// ParseToken applies the token grammar to raw model output. It accepts a
// single word of letters, digits and underscores, optionally followed by
// ":value". Anything else is not a command and falls through to the
// heuristic tier.
func ParseToken(raw string) (Token, bool) {
	normalized := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")
	if normalized == "" {
		return Token{}, false
	}

	keyword := normalized
	value := ""
	if idx := strings.Index(normalized, ":"); idx >= 0 {
		keyword = strings.TrimSpace(normalized[:idx])
		value = strings.TrimSpace(normalized[idx+1:])
	}

	keyword = strings.ToUpper(keyword)
	if keyword == "" || strings.ContainsRune(keyword, ' ') {
		return Token{}, false
	}
	for _, r := range keyword {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return Token{}, false
		}
	}
	return Token{Keyword: deaccent(keyword), Value: value}, true
}

// deaccent folds the few accented characters the model emits in keywords
// (NÃO → NAO, CRÉDITO → CREDITO) so keyword matching stays byte-wise.
func deaccent(s string) string {
	replacer := strings.NewReplacer(
		"Á", "A", "Â", "A", "Ã", "A", "À", "A",
		"É", "E", "Ê", "E",
		"Í", "I",
		"Ó", "O", "Ô", "O", "Õ", "O",
		"Ú", "U",
		"Ç", "C",
	)
	return replacer.Replace(s)
}
