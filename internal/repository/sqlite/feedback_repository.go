package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

type feedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new FeedbackRepository implementation
func NewFeedbackRepository(db *sql.DB) repository.FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Insert(ctx context.Context, f models.Feedback) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("feedback_repo")
	log.Debug("recording feedback: visitor=%s, answer=%s", f.VisitorID, f.Answer)

	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	sqlStr, args, err := sqlBuilder.Insert("feedback").
		Columns("visitor_id", "answer", "created_at").
		Values(f.VisitorID, f.Answer, f.CreatedAt).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to insert feedback: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *feedbackRepository) Tally(ctx context.Context) (map[string]int, error) {
	log := logger.FromContext(ctx).WithPrefix("feedback_repo")

	rows, err := r.db.QueryContext(ctx, `SELECT answer, COUNT(*) FROM feedback GROUP BY answer`)
	if err != nil {
		log.Error("failed to tally feedback: %v", err)
		return nil, err
	}
	defer rows.Close()

	tally := map[string]int{}
	for rows.Next() {
		var answer string
		var n int
		if err := rows.Scan(&answer, &n); err != nil {
			return nil, err
		}
		tally[answer] = n
	}
	return tally, rows.Err()
}
