package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	DB        *sql.DB
	Templates func() int
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db *sql.DB, templates func() int) *Service {
	return &Service{DB: db, Templates: templates}
}

// Status reports whether the service can serve document requests.
// It is not ok when no template is loaded or the database does not answer.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true}

	count := 0
	if s.Templates != nil {
		count = s.Templates()
	}
	out["templates"] = count
	if count == 0 {
		out["ok"] = false
	}

	if s.DB == nil {
		out["database"] = "memory"
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out["database"] = "unreachable"
		out["ok"] = false
		return out
	}
	out["database"] = "ok"
	return out
}
