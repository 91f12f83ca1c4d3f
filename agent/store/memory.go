// Package store provides the customer directory, the increase-request log
// and the score bracket table, backed either by memory or by Postgres.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
)

// Memory keeps all records in process. It is the default backing when no
// database is configured and the fixture for handler tests.
type Memory struct {
	mu        sync.RWMutex
	customers map[string]domain.CustomerRecord
	requests  []domain.IncreaseRequest
	tiers     domain.TierTable
}

var (
	_ contract.CustomerDirectory = (*Memory)(nil)
	_ contract.RequestLog        = (*Memory)(nil)
	_ contract.TierSource        = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		customers: make(map[string]domain.CustomerRecord),
		tiers:     domain.DefaultTiers(),
	}
}

// NewSeededMemory returns a memory store preloaded with demo customers.
func NewSeededMemory() *Memory {
	m := NewMemory()
	for _, c := range SeedCustomers() {
		m.customers[c.CPF] = c
	}
	return m
}

// SeedCustomers is the demo customer base loaded when no database is
// configured and by the seed command.
func SeedCustomers() []domain.CustomerRecord {
	return []domain.CustomerRecord{
		{CPF: "12345678900", Name: "João Silva", BirthDate: "1990-05-15", CreditLimit: 5000, Score: 650},
		{CPF: "98765432100", Name: "Maria Oliveira", BirthDate: "1985-10-20", CreditLimit: 12000, Score: 720},
		{CPF: "45678912300", Name: "Carlos Pereira", BirthDate: "1978-03-02", CreditLimit: 3000, Score: 380},
		{CPF: "32165498700", Name: "Ana Costa", BirthDate: "1995-12-08", CreditLimit: 800, Score: 150},
	}
}

func (m *Memory) Lookup(_ context.Context, cpf string) (domain.CustomerRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[cpf]
	if !ok {
		return domain.CustomerRecord{}, fmt.Errorf("%w: customer %s", contract.ErrNotFound, cpf)
	}
	return c, nil
}

func (m *Memory) Save(_ context.Context, c domain.CustomerRecord) error {
	if c.CPF == "" {
		return fmt.Errorf("%w: customer cpf is empty", contract.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.CPF] = c
	return nil
}

func (m *Memory) Append(_ context.Context, req domain.IncreaseRequest) error {
	if req.ID == "" {
		return fmt.Errorf("%w: request id is empty", contract.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

// Requests returns a copy of the appended increase requests.
func (m *Memory) Requests() []domain.IncreaseRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.IncreaseRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *Memory) Tiers(_ context.Context) (domain.TierTable, error) {
	return m.tiers, nil
}
