package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/session"
)

type fakeHandler struct {
	replies []contract.Reply
	err     error
	calls   []string
}

func (f *fakeHandler) Handle(_ context.Context, _ *session.Session, utterance string) (contract.Reply, error) {
	f.calls = append(f.calls, utterance)
	if f.err != nil {
		return contract.Reply{}, f.err
	}
	i := len(f.calls) - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

func handlers(triage, credit, interview, exchange contract.Handler) map[session.AgentType]contract.Handler {
	return map[session.AgentType]contract.Handler{
		session.AgentTriage:    triage,
		session.AgentCredit:    credit,
		session.AgentInterview: interview,
		session.AgentExchange:  exchange,
	}
}

func idle() *fakeHandler {
	return &fakeHandler{replies: []contract.Reply{{Text: "ok"}}}
}

func TestDispatchRoutesToActiveHandler(t *testing.T) {
	t.Parallel()

	triage := &fakeHandler{replies: []contract.Reply{{Text: "oi do triagem"}}}
	credit := idle()
	orch, err := New(handlers(triage, credit, idle(), idle()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sess := session.New("s1")
	text, err := orch.Dispatch(context.Background(), sess, "olá")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if text != "oi do triagem" {
		t.Fatalf("reply = %q", text)
	}
	if len(credit.calls) != 0 {
		t.Fatal("inactive handler must not be called")
	}
	if len(sess.History) != 2 {
		t.Fatalf("history has %d turns, want 2", len(sess.History))
	}
}

func TestHandoffWithTextSwitchesWithoutRedispatch(t *testing.T) {
	t.Parallel()

	triage := &fakeHandler{replies: []contract.Reply{{Text: "vou te transferir", Handoff: session.AgentExchange}}}
	exchange := idle()
	orch, err := New(handlers(triage, idle(), idle(), exchange))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sess := session.New("s1")
	text, err := orch.Dispatch(context.Background(), sess, "dólar")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if text != "vou te transferir" {
		t.Fatalf("reply = %q", text)
	}
	if sess.Active != session.AgentExchange {
		t.Fatalf("Active = %q, want exchange", sess.Active)
	}
	if len(exchange.calls) != 0 {
		t.Fatal("handoff with text must not re-dispatch")
	}
}

func TestSilentHandoffRedispatchesSameUtterance(t *testing.T) {
	t.Parallel()

	triage := &fakeHandler{replies: []contract.Reply{{Handoff: session.AgentCredit}}}
	credit := &fakeHandler{replies: []contract.Reply{{Text: "seu limite é R$ 5000.00"}}}
	orch, err := New(handlers(triage, credit, idle(), idle()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sess := session.New("s1")
	text, err := orch.Dispatch(context.Background(), sess, "qual meu limite?")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if text != "seu limite é R$ 5000.00" {
		t.Fatalf("reply = %q, want the credit answer", text)
	}
	if len(credit.calls) != 1 || credit.calls[0] != "qual meu limite?" {
		t.Fatalf("credit calls = %v, want the original utterance", credit.calls)
	}
	if sess.Active != session.AgentCredit {
		t.Fatalf("Active = %q, want credit", sess.Active)
	}
}

func TestTerminatedSessionIsAbsorbing(t *testing.T) {
	t.Parallel()

	triage := &fakeHandler{replies: []contract.Reply{{Text: "até logo", Handoff: session.AgentTerminated}}}
	orch, err := New(handlers(triage, idle(), idle(), idle()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sess := session.New("s1")
	if _, err := orch.Dispatch(context.Background(), sess, "encerrar"); err != nil {
		t.Fatalf("closing turn: %v", err)
	}
	if sess.Active != session.AgentTerminated {
		t.Fatalf("Active = %q, want terminated", sess.Active)
	}

	text, err := orch.Dispatch(context.Background(), sess, "olá?")
	if err != nil {
		t.Fatalf("post-closure turn: %v", err)
	}
	if text != closed {
		t.Fatalf("post-closure reply = %q, want the closed notice", text)
	}
	if len(triage.calls) != 1 {
		t.Fatalf("triage called %d times, want 1", len(triage.calls))
	}
}

func TestDispatchResetsTracePerTurn(t *testing.T) {
	t.Parallel()

	orch, err := New(handlers(idle(), idle(), idle(), idle()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sess := session.New("s1")
	sess.Record(session.GatewayCall{Backend: "stale"})
	if _, err := orch.Dispatch(context.Background(), sess, "oi"); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(sess.DebugTrace) != 0 {
		t.Fatalf("stale trace survived dispatch: %#v", sess.DebugTrace)
	}
}

func TestHandlerErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	triage := &fakeHandler{err: boom}
	orch, err := New(handlers(triage, idle(), idle(), idle()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := orch.Dispatch(context.Background(), session.New("s1"), "oi"); !errors.Is(err, boom) {
		t.Fatalf("Dispatch error = %v, want wrapped handler error", err)
	}
}

func TestNewRequiresAllHandlers(t *testing.T) {
	t.Parallel()

	m := handlers(idle(), idle(), idle(), idle())
	delete(m, session.AgentExchange)
	if _, err := New(m); err == nil {
		t.Fatal("New must reject an incomplete handler map")
	}
}
