package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	applogger "ChartPull/pkg/logger"
	pkgpg "ChartPull/pkg/postgres"
)

// PGMetadataStore implements MetadataStore backed by Postgres. Read-only.
type PGMetadataStore struct {
	client *pkgpg.Client
	l      *applogger.Logger
}

func NewPGMetadataStore(pg *pkgpg.Client, l *applogger.Logger) *PGMetadataStore {
	return &PGMetadataStore{client: pg, l: l}
}

func (s *PGMetadataStore) ResolveSymbol(ctx context.Context, symbol string) (*models.Entity, error) {
	const q = `
        SELECT id, symbol, display_name
        FROM entities
        WHERE upper(symbol) = upper($1)
        LIMIT 1
    `
	var e models.Entity
	err := s.client.Pool().QueryRow(ctx, q, symbol).Scan(&e.ID, &e.Symbol, &e.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		s.l.Error("metadata resolve_symbol query error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("resolve symbol: %w", err)
	}
	return &e, nil
}

func (s *PGMetadataStore) GetEntity(ctx context.Context, id string) (*models.Entity, error) {
	const q = `
        SELECT id, symbol, display_name
        FROM entities
        WHERE id = $1
    `
	var e models.Entity
	err := s.client.Pool().QueryRow(ctx, q, id).Scan(&e.ID, &e.Symbol, &e.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		s.l.Error("metadata get_entity query error",
			applogger.String("id", id),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get entity: %w", err)
	}
	return &e, nil
}

// Health pings the Postgres pool.
func (s *PGMetadataStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}
