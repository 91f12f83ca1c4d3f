// Package greeting detects salutations and closure requests without touching
// the inference layer; both checks run on every turn, so they stay
// deterministic and cheap.
package greeting

import (
	"strings"
	"time"
)

type Kind int

const (
	None Kind = iota
	GoodMorning
	GoodAfternoon
	GoodEvening
	Hello
)

var greetingSets = []struct {
	kind  Kind
	forms []string
}{
	{GoodMorning, []string{"bom dia", "bomdia", "bom-dia"}},
	{GoodAfternoon, []string{"boa tarde", "boatarde", "boa-tarde"}},
	{GoodEvening, []string{"boa noite", "boanoite", "boa-noite"}},
	{Hello, []string{"olá", "ola", "oi", "hey", "hello"}},
}

// Detect reports whether the message opens with (or is) a salutation.
func Detect(msg string) Kind {
	lower := strings.ToLower(strings.TrimSpace(msg))
	short := len(strings.Fields(lower)) <= 3
	for _, set := range greetingSets {
		for _, form := range set.forms {
			if strings.HasPrefix(lower, form) {
				return set.kind
			}
			if short && strings.Contains(lower, form) {
				return set.kind
			}
		}
	}
	return None
}

// Reply answers a salutation matching the actual time of day when the user's
// greeting does not.
func Reply(kind Kind, now time.Time) string {
	byHour := func() string {
		switch h := now.Hour(); {
		case h < 12:
			return "Bom dia!"
		case h < 18:
			return "Boa tarde!"
		default:
			return "Boa noite!"
		}
	}
	switch kind {
	case GoodMorning:
		if now.Hour() < 12 {
			return "Bom dia!"
		}
		return byHour()
	case GoodAfternoon:
		if h := now.Hour(); h >= 12 && h < 18 {
			return "Boa tarde!"
		}
		return byHour()
	case GoodEvening:
		if now.Hour() >= 18 {
			return "Boa noite!"
		}
		return byHour()
	default:
		return "Olá!"
	}
}

// Strip removes a leading salutation so the remainder can be interpreted.
func Strip(msg string) string {
	lower := strings.ToLower(strings.TrimSpace(msg))
	trimmed := strings.TrimSpace(msg)
	for _, set := range greetingSets {
		for _, form := range set.forms {
			if strings.HasPrefix(lower, form) {
				rest := trimmed[len(form):]
				return strings.TrimLeft(rest, " ,.!")
			}
		}
	}
	return trimmed
}

var closingForms = []string{
	"encerrar", "sair", "tchau", "até logo", "ate logo", "até mais", "ate mais",
	"fim da conversa", "terminar", "finalizar",
}

// IsClosing reports whether the user asked to end the conversation. A bare
// "não" is a negation, never a closure.
func IsClosing(msg string) bool {
	lower := strings.ToLower(strings.TrimSpace(msg))
	if lower == "não" || lower == "nao" || lower == "n" {
		return false
	}
	for _, form := range closingForms {
		if !strings.Contains(lower, form) {
			continue
		}
		if strings.HasPrefix(lower, form) || strings.HasSuffix(lower, form) {
			return true
		}
		if len(strings.Fields(lower)) <= 3 {
			return true
		}
	}
	return false
}
