package interpret

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/agent/session"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	digitsRe   = regexp.MustCompile(`\d+`)
	brDateRe   = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	isoDateRe  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// ExtractCPF pulls an 11-digit CPF out of free text, tolerating dots, dashes
// and spaces.
func ExtractCPF(text string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(text, "")
	if len(digits) != 11 {
		return "", false
	}
	return digits, true
}

// ExtractBirthDate normalizes DD/MM/AAAA or AAAA-MM-DD to AAAA-MM-DD,
// validating that the date exists.
func ExtractBirthDate(text string) (string, bool) {
	if m := brDateRe.FindStringSubmatch(text); m != nil {
		iso := m[3] + "-" + m[2] + "-" + m[1]
		if validDate(iso) {
			return iso, true
		}
	}
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		if validDate(m[0]) {
			return m[0], true
		}
	}
	return "", false
}

func validDate(iso string) bool {
	_, err := time.Parse("2006-01-02", iso)
	return err == nil
}

var currencyNames = map[string]string{
	"dólar": "USD", "dolar": "USD", "dólares": "USD", "dolares": "USD", "usd": "USD",
	"euro": "EUR", "euros": "EUR", "eur": "EUR",
	"libra": "GBP", "libras": "GBP", "gbp": "GBP",
	"iene": "JPY", "ienes": "JPY", "jpy": "JPY",
	"franco": "CHF", "francos": "CHF", "chf": "CHF",
	"cad": "CAD", "aud": "AUD", "yuan": "CNY", "cny": "CNY",
	"peso argentino": "ARS", "ars": "ARS", "peso chileno": "CLP", "clp": "CLP",
	"peso mexicano": "MXN", "mxn": "MXN",
}

// ExtractCurrency scans free text for a known currency name or ISO code.
func ExtractCurrency(text string) (string, bool) {
	lower := strings.ToLower(text)
	// multi-word names first so "peso argentino" wins over nothing
	for name, code := range currencyNames {
		if strings.Contains(name, " ") && strings.Contains(lower, name) {
			return code, true
		}
	}
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!'
	}) {
		if code, ok := currencyNames[word]; ok {
			return code, true
		}
	}
	return "", false
}

var (
	creditWords    = []string{"limite", "crédito", "credito", "cartão", "cartao", "aumento", "aumentar"}
	exchangeWords  = []string{"cotação", "cotacao", "câmbio", "cambio", "dólar", "dolar", "euro", "moeda", "libra", "iene"}
	interviewWords = []string{"entrevista", "score", "avaliação", "avaliacao"}
)

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// ExtractRoute keyword-classifies the stated need. Credit wins ties: it is
// the documented default on ambiguity.
func ExtractRoute(text string) (session.AgentType, bool) {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, creditWords):
		return session.AgentCredit, true
	case containsAny(lower, interviewWords):
		return session.AgentInterview, true
	case containsAny(lower, exchangeWords):
		return session.AgentExchange, true
	}
	return "", false
}

var (
	affirmForms = []string{"sim", "quero", "ok", "claro", "pode ser", "vamos", "aceito", "com certeza", "bora"}
	denyForms   = []string{"não", "nao", "não quero", "nao quero", "agora não", "agora nao", "prefiro não", "prefiro nao"}
)

// ExtractYesNo classifies a short direct reply to a pending offer. Messages
// carrying an amount are neither: "quero aumentar para 100 mil" is a new
// request, not an acceptance.
func ExtractYesNo(text string) (affirm bool, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	lower = strings.Trim(lower, " .!,")
	if _, hasAmount := ParseAmount(lower); hasAmount {
		return false, false
	}
	if len(strings.Fields(lower)) > 4 {
		return false, false
	}
	for _, f := range denyForms {
		if lower == f || strings.HasPrefix(lower, f+" ") {
			return false, true
		}
	}
	for _, f := range affirmForms {
		if lower == f || strings.HasPrefix(lower, f+" ") {
			return true, true
		}
	}
	return false, false
}

var employmentForms = map[string]domain.EmploymentType{
	"formal": domain.EmploymentFormal, "clt": domain.EmploymentFormal,
	"carteira assinada": domain.EmploymentFormal, "carteira": domain.EmploymentFormal,
	"autônomo": domain.EmploymentSelfEmployed, "autonomo": domain.EmploymentSelfEmployed,
	"pj": domain.EmploymentSelfEmployed, "mei": domain.EmploymentSelfEmployed,
	"freelancer": domain.EmploymentSelfEmployed,
	"desempregado": domain.EmploymentUnemployed, "sem emprego": domain.EmploymentUnemployed,
}

// ExtractEmployment maps common phrasings onto the employment enum.
func ExtractEmployment(text string) (domain.EmploymentType, bool) {
	lower := strings.ToLower(text)
	for form, t := range employmentForms {
		if strings.Contains(lower, form) {
			return t, true
		}
	}
	return "", false
}

var zeroForms = []string{"zero", "nenhum", "nenhuma", "não tenho", "nao tenho", "não possuo", "nao possuo"}

// extractInterviewAnswer is the deterministic tier for one interview field.
func extractInterviewAnswer(field session.InterviewField, text string) (contract.InterviewAnswer, bool) {
	lower := strings.ToLower(text)
	switch field {
	case session.FieldIncome, session.FieldExpenses:
		if v, ok := ParseAmount(text); ok {
			return contract.InterviewAnswer{Field: field, Value: v}, true
		}
		if field == session.FieldExpenses && containsAny(lower, zeroForms) {
			return contract.InterviewAnswer{Field: field, Value: 0.0}, true
		}
	case session.FieldEmployment:
		if t, ok := ExtractEmployment(text); ok {
			return contract.InterviewAnswer{Field: field, Value: t}, true
		}
	case session.FieldDependents:
		if m := digitsRe.FindString(text); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return contract.InterviewAnswer{Field: field, Value: n}, true
			}
		}
		if containsAny(lower, zeroForms) {
			return contract.InterviewAnswer{Field: field, Value: 0}, true
		}
	case session.FieldHasDebt:
		if affirm, ok := ExtractYesNo(text); ok {
			return contract.InterviewAnswer{Field: field, Value: affirm}, true
		}
	}
	return contract.InterviewAnswer{}, false
}
