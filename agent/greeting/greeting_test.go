package greeting

import (
	"testing"
	"time"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want Kind
	}{
		{"bom dia", GoodMorning},
		{"Boa tarde!", GoodAfternoon},
		{"boa noite, tudo bem?", GoodEvening},
		{"olá", Hello},
		{"Oi", Hello},
		{"quero consultar meu limite", None},
		{"12345678900", None},
	}

	for _, tc := range tests {
		if got := Detect(tc.msg); got != tc.want {
			t.Fatalf("Detect(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestReplyMatchesTimeOfDay(t *testing.T) {
	t.Parallel()

	morning := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	if got := Reply(GoodMorning, morning); got != "Bom dia!" {
		t.Fatalf("Reply(GoodMorning, 9h) = %q", got)
	}
	// A mismatched salutation is answered with the actual period.
	if got := Reply(GoodMorning, evening); got != "Boa noite!" {
		t.Fatalf("Reply(GoodMorning, 20h) = %q", got)
	}
	if got := Reply(Hello, evening); got != "Olá!" {
		t.Fatalf("Reply(Hello) = %q", got)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want string
	}{
		{"bom dia", ""},
		{"olá, quero ver meu limite", "quero ver meu limite"},
		{"quero ver meu limite", "quero ver meu limite"},
	}

	for _, tc := range tests {
		if got := Strip(tc.msg); got != tc.want {
			t.Fatalf("Strip(%q) = %q, want %q", tc.msg, got, tc.want)
		}
	}
}

func TestIsClosing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want bool
	}{
		{"encerrar", true},
		{"quero sair", true},
		{"tchau!", true},
		{"até logo", true},
		{"não", false},
		{"nao", false},
		{"quero aumentar meu limite", false},
	}

	for _, tc := range tests {
		if got := IsClosing(tc.msg); got != tc.want {
			t.Fatalf("IsClosing(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}
