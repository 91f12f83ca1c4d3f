package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
	"github.com/bancoagil/atende/agent/session"
	"github.com/bancoagil/atende/agent/store"
)

type fakeInterpreter struct {
	commands []contract.Command
	errs     []error
	shapes   []contract.Shape
}

func (f *fakeInterpreter) Interpret(_ context.Context, _ *session.Session, _ string, shape contract.Shape) (contract.Command, error) {
	i := len(f.shapes)
	f.shapes = append(f.shapes, shape)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.commands) {
		return f.commands[i], nil
	}
	return contract.FreeText{}, nil
}

func newFixture(t *testing.T, interp contract.Interpreter) (*Handler, *store.Memory) {
	t.Helper()
	mem := store.NewSeededMemory()
	h, err := New(interp, mem, mem)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return h, mem
}

func authenticated() *session.Session {
	sess := session.New("s1")
	rec := store.SeedCustomers()[0] // João Silva, score 650
	sess.Customer = &rec
	sess.AuthStage = session.StageAuthenticated
	sess.Active = session.AgentInterview
	return sess
}

func TestFirstTurnOpensWithoutConsumingUtterance(t *testing.T) {
	t.Parallel()

	interp := &fakeInterpreter{}
	h, _ := newFixture(t, interp)
	sess := authenticated()

	reply, err := h.Handle(context.Background(), sess, "quero fazer a entrevista")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !sess.Interview.Started {
		t.Fatal("interview must be marked started")
	}
	if !strings.Contains(reply.Text, "renda") {
		t.Fatalf("opening does not ask for income: %q", reply.Text)
	}
	if len(interp.shapes) != 0 {
		t.Fatalf("opening turn must not interpret, got shapes %#v", interp.shapes)
	}
}

func TestFullInterviewUpdatesScoreAndHandsBackToCredit(t *testing.T) {
	t.Parallel()

	interp := &fakeInterpreter{commands: []contract.Command{
		contract.InterviewAnswer{Field: session.FieldIncome, Value: 5000.0},
		contract.InterviewAnswer{Field: session.FieldEmployment, Value: domain.EmploymentFormal},
		contract.InterviewAnswer{Field: session.FieldExpenses, Value: 2000.0},
		contract.InterviewAnswer{Field: session.FieldDependents, Value: 1},
		contract.InterviewAnswer{Field: session.FieldHasDebt, Value: false},
	}}
	h, mem := newFixture(t, interp)
	sess := authenticated()
	ctx := context.Background()

	if _, err := h.Handle(ctx, sess, "quero fazer a entrevista"); err != nil {
		t.Fatalf("opening turn: %v", err)
	}

	answers := []string{"5000", "formal", "2000", "1 filho", "não tenho"}
	var last contract.Reply
	for i, a := range answers {
		reply, err := h.Handle(ctx, sess, a)
		if err != nil {
			t.Fatalf("answer turn %d: %v", i, err)
		}
		last = reply
	}

	// (5000/2001)*30 + 300 + 80 + 100 rounds to 555.
	if sess.Customer.Score != 555 {
		t.Fatalf("score = %d, want 555", sess.Customer.Score)
	}
	if last.Handoff != session.AgentCredit {
		t.Fatalf("final handoff = %q, want credit", last.Handoff)
	}
	if !strings.Contains(last.Text, "555") {
		t.Fatalf("final reply does not state the new score: %q", last.Text)
	}
	if sess.Interview.Started {
		t.Fatal("form must be reset after conclusion")
	}

	saved, err := mem.Lookup(ctx, sess.Customer.CPF)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if saved.Score != 555 {
		t.Fatalf("persisted score = %d, want 555", saved.Score)
	}

	for i, shape := range interp.shapes {
		if shape.Kind != contract.ShapeInterviewField {
			t.Fatalf("shape %d = %v, want interview field", i, shape.Kind)
		}
	}
	if interp.shapes[0].Field != session.FieldIncome || interp.shapes[4].Field != session.FieldHasDebt {
		t.Fatalf("field order wrong: %#v", interp.shapes)
	}
}

func TestUnparsedAnswerRepromptsSameField(t *testing.T) {
	t.Parallel()

	interp := &fakeInterpreter{commands: []contract.Command{
		contract.FreeText{Raw: "hmm"},
		contract.InterviewAnswer{Field: session.FieldIncome, Value: 4000.0},
	}}
	h, _ := newFixture(t, interp)
	sess := authenticated()
	ctx := context.Background()

	if _, err := h.Handle(ctx, sess, "bora"); err != nil {
		t.Fatalf("opening turn: %v", err)
	}

	reply, err := h.Handle(ctx, sess, "depende do mês")
	if err != nil {
		t.Fatalf("unparsed turn: %v", err)
	}
	if !strings.Contains(reply.Text, "renda") {
		t.Fatalf("re-prompt does not repeat the income question: %q", reply.Text)
	}
	if sess.Interview.Income != nil {
		t.Fatal("unparsed answer must not fill the field")
	}

	if _, err := h.Handle(ctx, sess, "uns 4 mil"); err != nil {
		t.Fatalf("retry turn: %v", err)
	}
	if sess.Interview.Income == nil || *sess.Interview.Income != 4000 {
		t.Fatalf("income = %v, want 4000", sess.Interview.Income)
	}
}

type flakyDirectory struct {
	*store.Memory
	failures int
}

func (f *flakyDirectory) Save(ctx context.Context, rec domain.CustomerRecord) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("database unavailable")
	}
	return f.Memory.Save(ctx, rec)
}

func TestFailedConclusionKeepsAnswersAndRetries(t *testing.T) {
	t.Parallel()

	mem := store.NewSeededMemory()
	dir := &flakyDirectory{Memory: mem, failures: 1}
	h, err := New(&fakeInterpreter{commands: []contract.Command{
		contract.InterviewAnswer{Field: session.FieldHasDebt, Value: false},
	}}, dir, mem)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sess := authenticated()
	sess.Interview.Started = true
	income, expenses := 5000.0, 2000.0
	employment := domain.EmploymentFormal
	dependents := 1
	sess.Interview.Income = &income
	sess.Interview.Employment = &employment
	sess.Interview.Expenses = &expenses
	sess.Interview.Dependents = &dependents
	ctx := context.Background()

	reply, err := h.Handle(ctx, sess, "não tenho")
	if err != nil {
		t.Fatalf("final answer turn: %v", err)
	}
	if reply.Handoff != "" {
		t.Fatalf("failed persistence must not hand off, got %q", reply.Handoff)
	}
	if sess.Interview.Income == nil || sess.Interview.HasDebt == nil {
		t.Fatal("collected answers must survive a failed persistence")
	}
	if sess.Customer.Score != 650 {
		t.Fatalf("score = %d, want unchanged 650", sess.Customer.Score)
	}

	retry, err := h.Handle(ctx, sess, "ok")
	if err != nil {
		t.Fatalf("retry turn: %v", err)
	}
	if retry.Handoff != session.AgentCredit {
		t.Fatalf("retry handoff = %q, want credit", retry.Handoff)
	}
	if sess.Customer.Score != 555 {
		t.Fatalf("score after retry = %d, want 555", sess.Customer.Score)
	}
	if sess.Interview.Started {
		t.Fatal("form must be reset after a successful conclusion")
	}
}

func TestClosingResetsFormAndTerminates(t *testing.T) {
	t.Parallel()

	h, _ := newFixture(t, &fakeInterpreter{})
	sess := authenticated()
	sess.Interview.Started = true
	income := 5000.0
	sess.Interview.Income = &income

	reply, err := h.Handle(context.Background(), sess, "quero sair")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Handoff != session.AgentTerminated {
		t.Fatalf("handoff = %q, want terminated", reply.Handoff)
	}
	if sess.Interview.Started || sess.Interview.Income != nil {
		t.Fatal("form must be reset on closure")
	}
}

func TestUnauthenticatedHandsBackToTriage(t *testing.T) {
	t.Parallel()

	h, _ := newFixture(t, &fakeInterpreter{})
	reply, err := h.Handle(context.Background(), session.New("s1"), "entrevista")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Handoff != session.AgentTriage {
		t.Fatalf("handoff = %q, want triage", reply.Handoff)
	}
}

func TestGatewayFailureDegradesPolitely(t *testing.T) {
	t.Parallel()

	h, _ := newFixture(t, &fakeInterpreter{errs: []error{contract.ErrAllBackendsExhausted}})
	sess := authenticated()
	sess.Interview.Started = true

	reply, err := h.Handle(context.Background(), sess, "5000")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if reply.Text == "" || reply.Handoff != "" {
		t.Fatalf("degraded reply wrong: %#v", reply)
	}
}
