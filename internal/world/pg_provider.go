package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"adventure-server/internal/models"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx alike.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGProvider serves worlds from the worlds table, where each definition is
// stored as a JSONB document. Worlds are validated on the way in (Save) and
// again on the way out, so a row edited by hand cannot reach the engine.
type PGProvider struct {
	db     DBTX
	logger *zap.Logger
}

var _ Provider = (*PGProvider)(nil)

func NewPGProvider(db DBTX, logger *zap.Logger) *PGProvider {
	return &PGProvider{
		db:     db,
		logger: logger.Named("PgWorldProvider"),
	}
}

// EnsureSchema creates the worlds table if it does not exist yet.
func (p *PGProvider) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS worlds (
            id         TEXT PRIMARY KEY,
            title      TEXT NOT NULL,
            data       JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )
    `
	if _, err := p.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("creating worlds table: %w", err)
	}
	return nil
}

func (p *PGProvider) GetWorld(ctx context.Context, worldID string) (*models.WorldData, error) {
	query := `SELECT data FROM worlds WHERE id = $1`
	logFields := []zap.Field{zap.String("worldID", worldID)}
	p.logger.Debug("Getting world", logFields...)

	var raw []byte
	if err := p.db.QueryRow(ctx, query, worldID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("World not found", logFields...)
			return nil, models.ErrWorldNotFound
		}
		p.logger.Error("Failed to get world", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("getting world %s: %w", worldID, err)
	}

	var w models.WorldData
	if err := json.Unmarshal(raw, &w); err != nil {
		p.logger.Error("Failed to decode stored world", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("%w: decoding world %s: %v", models.ErrWorldInvalid, worldID, err)
	}
	warnings, err := Validate(&w)
	for _, warning := range warnings {
		p.logger.Warn("World definition warning", append(logFields, zap.String("warning", warning))...)
	}
	if err != nil {
		p.logger.Error("Stored world failed validation", append(logFields, zap.Error(err))...)
		return nil, err
	}
	return &w, nil
}

// SaveWorld validates and upserts a world definition.
func (p *PGProvider) SaveWorld(ctx context.Context, w *models.WorldData) error {
	logFields := []zap.Field{zap.String("worldID", w.ID)}
	if _, err := Validate(w); err != nil {
		p.logger.Warn("Rejected invalid world on save", append(logFields, zap.Error(err))...)
		return err
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding world %s: %w", w.ID, err)
	}

	query := `
        INSERT INTO worlds (id, title, data, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET title = $2, data = $3, updated_at = $4
    `
	if _, err := p.db.Exec(ctx, query, w.ID, w.Title, raw, time.Now().UTC()); err != nil {
		p.logger.Error("Failed to save world", append(logFields, zap.Error(err))...)
		return fmt.Errorf("saving world %s: %w", w.ID, err)
	}
	p.logger.Info("World saved", logFields...)
	return nil
}

func (p *PGProvider) ListWorlds(ctx context.Context) ([]Summary, error) {
	query := `SELECT id, title FROM worlds ORDER BY id`
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		p.logger.Error("Failed to list worlds", zap.Error(err))
		return nil, fmt.Errorf("listing worlds: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Title); err != nil {
			return nil, fmt.Errorf("scanning world row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating world rows: %w", err)
	}
	return summaries, nil
}
