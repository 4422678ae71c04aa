package game

import (
	"context"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Gateway is the persistence contract the core depends on. The Postgres
// driver in internal/db implements it; tests use the memory gateway.
//
// The core treats persistence as best-effort: failures are logged and the
// in-memory state stays authoritative. Calls may block on I/O, so they are
// issued outside the session lease, on snapshots taken under it.
type Gateway interface {
	// SaveSession durably writes the session metadata document.
	SaveSession(ctx context.Context, snap model.SessionSnapshot) error
	// LoadSession returns the stored snapshot, or nil when none exists.
	LoadSession(ctx context.Context, gameID string) (*model.SessionSnapshot, error)
	// SaveChunk writes one chunk's sparse overlay; absent cells implied.
	SaveChunk(ctx context.Context, gameID string, id model.ChunkID, overlay []model.OverlayPoint) error
	// LoadChunk returns the stored overlay, or nil when none exists.
	LoadChunk(ctx context.Context, gameID string, id model.ChunkID) ([]model.OverlayPoint, error)
}
