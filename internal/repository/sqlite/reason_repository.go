package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

type reasonRepository struct {
	db *sql.DB
}

// NewReasonRepository creates a new ReasonRepository implementation
func NewReasonRepository(db *sql.DB) repository.ReasonRepository {
	return &reasonRepository{db: db}
}

func (r *reasonRepository) Count(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("reason_repo")

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reasons`).Scan(&count); err != nil {
		log.Error("failed to count reasons: %v", err)
		return 0, err
	}
	log.Debug("reason count: %d", count)
	return count, nil
}

func (r *reasonRepository) Get(ctx context.Context, id int) (*models.Reason, error) {
	log := logger.FromContext(ctx).WithPrefix("reason_repo")
	log.Debug("getting reason: id=%d", id)

	var reason models.Reason
	err := r.db.QueryRowContext(ctx, `
SELECT id, text, image_url
FROM reasons
WHERE id = ?
`, id).Scan(&reason.ID, &reason.Text, &reason.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("reason not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get reason: %v", err)
		return nil, err
	}
	return &reason, nil
}
