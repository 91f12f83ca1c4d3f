package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/domain"
)

type DBConfig struct {
	DSN string `envconfig:"DSN"`
}

type customerRow struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	CPF         string  `bun:"cpf,pk"`
	Name        string  `bun:"name,notnull"`
	BirthDate   string  `bun:"birth_date,notnull"`
	CreditLimit float64 `bun:"credit_limit,notnull"`
	Score       int     `bun:"score,notnull"`
}

type increaseRequestRow struct {
	bun.BaseModel `bun:"table:increase_requests,alias:ir"`

	ID             string    `bun:"id,pk"`
	CustomerCPF    string    `bun:"customer_cpf,notnull"`
	RequestedAt    time.Time `bun:"requested_at,notnull"`
	CurrentLimit   float64   `bun:"current_limit,notnull"`
	RequestedLimit float64   `bun:"requested_limit,notnull"`
	Status         string    `bun:"status,notnull"`
}

type scoreTierRow struct {
	bun.BaseModel `bun:"table:score_tiers,alias:st"`

	MinScore int     `bun:"min_score,pk"`
	MaxScore int     `bun:"max_score,notnull"`
	MaxLimit float64 `bun:"max_limit,notnull"`
}

// Postgres backs the directory, request log and tier table with bun.
type Postgres struct {
	db *bun.DB
}

var (
	_ contract.CustomerDirectory = (*Postgres)(nil)
	_ contract.RequestLog        = (*Postgres)(nil)
	_ contract.TierSource        = (*Postgres)(nil)
)

func MustNewDBConfig(prefix string) DBConfig {
	var cfg DBConfig
	envconfig.MustProcess(prefix, &cfg)
	return cfg
}

func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is empty")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &Postgres{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// Init creates the tables if missing and loads the tier table when empty.
func (p *Postgres) Init(ctx context.Context) error {
	models := []any{(*customerRow)(nil), (*increaseRequestRow)(nil), (*scoreTierRow)(nil)}
	for _, m := range models {
		if _, err := p.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	count, err := p.db.NewSelect().Model((*scoreTierRow)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count tiers: %w", err)
	}
	if count > 0 {
		return nil
	}
	rows := make([]scoreTierRow, 0, len(domain.DefaultTiers()))
	for _, t := range domain.DefaultTiers() {
		rows = append(rows, scoreTierRow{MinScore: t.MinScore, MaxScore: t.MaxScore, MaxLimit: t.MaxLimit})
	}
	if _, err := p.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("seed tiers: %w", err)
	}
	return nil
}

// Seed upserts the given customers.
func (p *Postgres) Seed(ctx context.Context, customers []domain.CustomerRecord) error {
	for _, c := range customers {
		if err := p.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Lookup(ctx context.Context, cpf string) (domain.CustomerRecord, error) {
	var row customerRow
	err := p.db.NewSelect().Model(&row).Where("cpf = ?", cpf).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CustomerRecord{}, fmt.Errorf("%w: customer %s", contract.ErrNotFound, cpf)
	}
	if err != nil {
		return domain.CustomerRecord{}, fmt.Errorf("lookup customer: %w", err)
	}
	return domain.CustomerRecord{
		CPF:         row.CPF,
		Name:        row.Name,
		BirthDate:   row.BirthDate,
		CreditLimit: row.CreditLimit,
		Score:       row.Score,
	}, nil
}

func (p *Postgres) Save(ctx context.Context, c domain.CustomerRecord) error {
	if c.CPF == "" {
		return fmt.Errorf("%w: customer cpf is empty", contract.ErrValidation)
	}
	row := customerRow{
		CPF:         c.CPF,
		Name:        c.Name,
		BirthDate:   c.BirthDate,
		CreditLimit: c.CreditLimit,
		Score:       c.Score,
	}
	_, err := p.db.NewInsert().Model(&row).
		On("CONFLICT (cpf) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("birth_date = EXCLUDED.birth_date").
		Set("credit_limit = EXCLUDED.credit_limit").
		Set("score = EXCLUDED.score").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

func (p *Postgres) Append(ctx context.Context, req domain.IncreaseRequest) error {
	if req.ID == "" {
		return fmt.Errorf("%w: request id is empty", contract.ErrValidation)
	}
	row := increaseRequestRow{
		ID:             req.ID,
		CustomerCPF:    req.CustomerCPF,
		RequestedAt:    req.RequestedAt,
		CurrentLimit:   req.CurrentLimit,
		RequestedLimit: req.RequestedLimit,
		Status:         string(req.Status),
	}
	if _, err := p.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("append increase request: %w", err)
	}
	return nil
}

func (p *Postgres) Tiers(ctx context.Context) (domain.TierTable, error) {
	var rows []scoreTierRow
	if err := p.db.NewSelect().Model(&rows).Order("min_score ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load tiers: %w", err)
	}
	table := make(domain.TierTable, 0, len(rows))
	for _, r := range rows {
		table = append(table, domain.ScoreTier{MinScore: r.MinScore, MaxScore: r.MaxScore, MaxLimit: r.MaxLimit})
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("tier table in database: %w", err)
	}
	return table, nil
}
