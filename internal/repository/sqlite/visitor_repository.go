package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

type visitorRepository struct {
	db *sql.DB
}

// NewVisitorRepository creates a new VisitorRepository implementation
func NewVisitorRepository(db *sql.DB) repository.VisitorRepository {
	return &visitorRepository{db: db}
}

// Touch inserts the visitor or refreshes its last_seen time.
func (r *visitorRepository) Touch(ctx context.Context, id string) (*models.Visitor, error) {
	log := logger.FromContext(ctx).WithPrefix("visitor_repo")

	now := time.Now().UTC()
	var v models.Visitor
	err := r.db.QueryRowContext(ctx, `
INSERT INTO visitors (id, created_at, last_seen)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen
RETURNING id, created_at, last_seen
`, id, now, now).Scan(&v.ID, &v.CreatedAt, &v.LastSeen)
	if err != nil {
		log.Error("failed to touch visitor %s: %v", id, err)
		return nil, err
	}
	return &v, nil
}

func (r *visitorRepository) Get(ctx context.Context, id string) (*models.Visitor, error) {
	var v models.Visitor
	err := r.db.QueryRowContext(ctx, `
SELECT id, created_at, last_seen
FROM visitors
WHERE id = ?
`, id).Scan(&v.ID, &v.CreatedAt, &v.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("visitor_repo").Error("failed to get visitor %s: %v", id, err)
		return nil, err
	}
	return &v, nil
}
