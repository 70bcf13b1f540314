package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openbornes/bornes-server-go/internal/config"
	"github.com/openbornes/bornes-server-go/internal/game"
	"go.uber.org/zap"
)

// DB wraps the connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to the configured database and ensures the results
// schema exists.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool, logger: logger}
	if err := db.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Stats returns pool statistics.
func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

func (db *DB) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS game_results (
    game_id     TEXT PRIMARY KEY,
    winner_id   TEXT NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS player_results (
    game_id   TEXT NOT NULL REFERENCES game_results(game_id),
    player_id TEXT NOT NULL,
    name      TEXT NOT NULL,
    mileage   INT NOT NULL,
    score     INT NOT NULL,
    PRIMARY KEY (game_id, player_id)
);`
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// ResultRepository stores finished-game results.
type ResultRepository struct {
	db *DB
}

// NewResultRepository creates a result repository.
func NewResultRepository(db *DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveResult persists a finished game's winner and per-player scores in
// one transaction.
func (r *ResultRepository) SaveResult(ctx context.Context, state *game.GameState) error {
	if state.Status != game.StatusEnded {
		return fmt.Errorf("game %s has not ended", state.GameID)
	}

	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO game_results (game_id, winner_id) VALUES ($1, $2)
         ON CONFLICT (game_id) DO NOTHING`,
		state.GameID, state.Winner,
	); err != nil {
		return fmt.Errorf("failed to insert game result: %w", err)
	}

	for i := range state.Players {
		p := &state.Players[i]
		if _, err := tx.Exec(ctx,
			`INSERT INTO player_results (game_id, player_id, name, mileage, score)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (game_id, player_id) DO UPDATE SET mileage = $4, score = $5`,
			state.GameID, p.ID, p.Name, p.Mileage, p.Score,
		); err != nil {
			return fmt.Errorf("failed to insert player result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	if r.db.logger != nil {
		r.db.logger.Debug("saved game result",
			zap.String("game_id", state.GameID),
			zap.String("winner", state.Winner),
			zap.Int("players", len(state.Players)),
		)
	}
	return nil
}
