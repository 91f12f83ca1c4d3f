package exchange

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/agent/session"
)

type fakeInterpreter struct {
	cmd contract.Command
	err error
}

func (f *fakeInterpreter) Interpret(_ context.Context, _ *session.Session, _ string, _ contract.Shape) (contract.Command, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cmd, nil
}

type fakeQuotes struct {
	quote domain.Quote
	err   error
	codes []string
}

func (f *fakeQuotes) GetRate(_ context.Context, code string) (domain.Quote, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	return f.quote, nil
}

func TestQuoteReplyCarriesBidAndAsk(t *testing.T) {
	t.Parallel()

	quotes := &fakeQuotes{quote: domain.Quote{Code: "USD", Bid: 5.1234, Ask: 5.1567, AsOf: time.Now()}}
	h, err := New(&fakeInterpreter{cmd: contract.QuoteRequest{Currency: "USD"}}, quotes)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := h.Handle(context.Background(), session.New("s1"), "cotação do dólar")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !strings.Contains(reply.Text, "5.1234") || !strings.Contains(reply.Text, "5.1567") {
		t.Fatalf("quote reply missing bid/ask: %q", reply.Text)
	}
	if len(quotes.codes) != 1 || quotes.codes[0] != "USD" {
		t.Fatalf("provider called with %v, want [USD]", quotes.codes)
	}
}

func TestProviderFailureDegradesWithoutTerminating(t *testing.T) {
	t.Parallel()

	quotes := &fakeQuotes{err: contract.ErrProvider}
	h, err := New(&fakeInterpreter{cmd: contract.QuoteRequest{Currency: "EUR"}}, quotes)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := h.Handle(context.Background(), session.New("s1"), "cotação do euro")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Handoff != "" {
		t.Fatalf("provider failure must not hand off, got %q", reply.Handoff)
	}
	if reply.Text == "" {
		t.Fatal("degraded reply must explain the unavailability")
	}
}

func TestRouteIntentHandsOff(t *testing.T) {
	t.Parallel()

	h, err := New(&fakeInterpreter{cmd: contract.RouteIntent{Target: session.AgentCredit}}, &fakeQuotes{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := h.Handle(context.Background(), session.New("s1"), "quero ver meu limite")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Handoff != session.AgentCredit {
		t.Fatalf("handoff = %q, want credit", reply.Handoff)
	}
}

func TestUnrecognizedCurrencyListsOptions(t *testing.T) {
	t.Parallel()

	h, err := New(&fakeInterpreter{cmd: contract.FreeText{}}, &fakeQuotes{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := h.Handle(context.Background(), session.New("s1"), "quanto custa o pão?")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !strings.Contains(reply.Text, "dólar") {
		t.Fatalf("fallback reply does not list currencies: %q", reply.Text)
	}
}

func TestGatewayFailureDegradesPolitely(t *testing.T) {
	t.Parallel()

	h, err := New(&fakeInterpreter{err: errors.New("all backends down")}, &fakeQuotes{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := h.Handle(context.Background(), session.New("s1"), "dólar?")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Text == "" || reply.Handoff != "" {
		t.Fatalf("degraded reply wrong: %#v", reply)
	}
}

func TestClosingTerminates(t *testing.T) {
	t.Parallel()

	h, err := New(&fakeInterpreter{}, &fakeQuotes{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	reply, err := h.Handle(context.Background(), session.New("s1"), "até logo")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Handoff != session.AgentTerminated {
		t.Fatalf("handoff = %q, want terminated", reply.Handoff)
	}
}
