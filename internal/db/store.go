package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Store persists session documents and sparse chunk overlays in Postgres.
// It implements the game.Gateway contract; failures surface to the caller,
// which treats them as transient and keeps the in-memory state.
type Store struct {
	db *DB
}

// NewStore creates the Postgres-backed persistence gateway.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// SaveSession upserts the session metadata document.
func (s *Store) SaveSession(ctx context.Context, snap model.SessionSnapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", snap.GameID, err)
	}
	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO sessions (game_id, document, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (game_id)
		 DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		snap.GameID, doc, snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", snap.GameID, err)
	}
	return nil
}

// LoadSession returns the stored snapshot, or nil when none exists.
func (s *Store) LoadSession(ctx context.Context, gameID string) (*model.SessionSnapshot, error) {
	var doc []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT document FROM sessions WHERE game_id = $1`, gameID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying session %s: %w", gameID, err)
	}
	var snap model.SessionSnapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", gameID, err)
	}
	return &snap, nil
}

// SaveChunk upserts one chunk's sparse overlay. An empty overlay deletes
// the row: absent cells are implied, so an untouched chunk needs no row.
func (s *Store) SaveChunk(ctx context.Context, gameID string, id model.ChunkID, overlay []model.OverlayPoint) error {
	if len(overlay) == 0 {
		_, err := s.db.pool.Exec(ctx,
			`DELETE FROM chunks WHERE game_id = $1 AND cx = $2 AND cy = $3`,
			gameID, id.CX, id.CY,
		)
		if err != nil {
			return fmt.Errorf("deleting empty chunk (%d,%d) of %s: %w", id.CX, id.CY, gameID, err)
		}
		return nil
	}

	doc, err := json.Marshal(overlay)
	if err != nil {
		return fmt.Errorf("encoding chunk (%d,%d) of %s: %w", id.CX, id.CY, gameID, err)
	}
	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO chunks (game_id, cx, cy, overlay, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (game_id, cx, cy)
		 DO UPDATE SET overlay = EXCLUDED.overlay, updated_at = now()`,
		gameID, id.CX, id.CY, doc,
	)
	if err != nil {
		return fmt.Errorf("saving chunk (%d,%d) of %s: %w", id.CX, id.CY, gameID, err)
	}
	return nil
}

// LoadChunk returns the stored overlay, or nil when none exists.
func (s *Store) LoadChunk(ctx context.Context, gameID string, id model.ChunkID) ([]model.OverlayPoint, error) {
	var doc []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT overlay FROM chunks WHERE game_id = $1 AND cx = $2 AND cy = $3`,
		gameID, id.CX, id.CY,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying chunk (%d,%d) of %s: %w", id.CX, id.CY, gameID, err)
	}
	var overlay []model.OverlayPoint
	if err := json.Unmarshal(doc, &overlay); err != nil {
		return nil, fmt.Errorf("decoding chunk (%d,%d) of %s: %w", id.CX, id.CY, gameID, err)
	}
	return overlay, nil
}
