// internal/artifacts/store.go
package artifacts

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"connectorgen/internal/common/logger"
)

// Record is one generated artifact as persisted for audit and reuse.
type Record struct {
	SessionID   string
	ObjectClass string
	Operation   string
	Protocol    string
	Code        string
}

// Store persists generated artifacts. Persistence is best-effort: the
// artifact has already been delivered through the job output, so a failed
// insert is logged and never fails the job.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

const insertArtifact = `
	INSERT INTO generated_artifacts (id, session_id, object_class, operation, protocol, code, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Save writes one artifact record.
func (s *Store) Save(ctx context.Context, rec Record) {
	if s.db == nil {
		return
	}

	_, err := s.db.ExecContext(ctx, insertArtifact,
		uuid.NewString(),
		rec.SessionID,
		rec.ObjectClass,
		rec.Operation,
		rec.Protocol,
		rec.Code,
		time.Now().UTC(),
	)
	if err != nil {
		s.log.WithError(err).Warn("Artifact persistence failed", map[string]interface{}{
			"sessionId":   rec.SessionID,
			"objectClass": rec.ObjectClass,
			"operation":   rec.Operation,
		})
	}
}
