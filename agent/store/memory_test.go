package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
)

func TestLookupAndSave(t *testing.T) {
	t.Parallel()

	mem := NewSeededMemory()
	ctx := context.Background()

	rec, err := mem.Lookup(ctx, "12345678900")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if rec.Name != "João Silva" || rec.BirthDate != "1990-05-15" {
		t.Fatalf("seed record wrong: %#v", rec)
	}

	rec.CreditLimit = 9000
	if err := mem.Save(ctx, rec); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	saved, err := mem.Lookup(ctx, rec.CPF)
	if err != nil {
		t.Fatalf("Lookup after save: %v", err)
	}
	if saved.CreditLimit != 9000 {
		t.Fatalf("limit = %v, want 9000", saved.CreditLimit)
	}
}

func TestLookupUnknownCPF(t *testing.T) {
	t.Parallel()

	mem := NewSeededMemory()
	if _, err := mem.Lookup(context.Background(), "00000000000"); !errors.Is(err, contract.ErrNotFound) {
		t.Fatalf("Lookup error = %v, want ErrNotFound", err)
	}
}

func TestSaveRejectsEmptyCPF(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	if err := mem.Save(context.Background(), domain.CustomerRecord{}); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("Save error = %v, want ErrValidation", err)
	}
}

func TestRequestLogIsAppendOnly(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()

	reqs := []domain.IncreaseRequest{
		{ID: "r1", CustomerCPF: "12345678900", RequestedAt: time.Now(), RequestedLimit: 10000, Status: domain.RequestApproved},
		{ID: "r2", CustomerCPF: "12345678900", RequestedAt: time.Now(), RequestedLimit: 300000, Status: domain.RequestRejected},
	}
	for _, r := range reqs {
		if err := mem.Append(ctx, r); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	got := mem.Requests()
	if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r2" {
		t.Fatalf("request log = %#v", got)
	}

	// Mutating the returned slice must not affect the log.
	got[0].Status = domain.RequestApproved
	got = got[:0]
	if again := mem.Requests(); len(again) != 2 {
		t.Fatalf("log mutated through copy: %#v", again)
	}
}

func TestTiersAreValid(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	table, err := mem.Tiers(context.Background())
	if err != nil {
		t.Fatalf("Tiers returned error: %v", err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("tier table invalid: %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	mem := NewSeededMemory()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := mem.Lookup(ctx, "12345678900")
			if err != nil {
				t.Errorf("Lookup: %v", err)
				return
			}
			if err := mem.Save(ctx, rec); err != nil {
				t.Errorf("Save: %v", err)
			}
			if err := mem.Append(ctx, domain.IncreaseRequest{ID: "r", CustomerCPF: rec.CPF}); err != nil {
				t.Errorf("Append: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(mem.Requests()); got != 8 {
		t.Fatalf("request log has %d entries, want 8", got)
	}
}
