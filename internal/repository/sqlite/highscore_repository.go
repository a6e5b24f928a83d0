package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

// DefaultHighscoreLimit applies when the filter leaves Limit unset.
const DefaultHighscoreLimit = 10

type highscoreRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewHighscoreRepository creates a new HighscoreRepository implementation
func NewHighscoreRepository(db *sql.DB) repository.HighscoreRepository {
	return &highscoreRepository{db: db, now: time.Now}
}

func (r *highscoreRepository) List(ctx context.Context, filter models.HighscoreFilter) ([]models.Highscore, error) {
	log := logger.FromContext(ctx).WithPrefix("highscore_repo")

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHighscoreLimit
	}
	log.Debug("listing highscores: limit=%d", limit)

	sqlStr, args, err := sqlBuilder.Select("id", "player_name", "moves", "created_at").
		From("highscores").
		OrderBy("moves ASC", "created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list highscores: %v", err)
		return nil, err
	}
	defer rows.Close()

	scores := []models.Highscore{}
	for rows.Next() {
		var h models.Highscore
		if err := rows.Scan(&h.ID, &h.PlayerName, &h.Moves, &h.CreatedAt); err != nil {
			log.Error("failed to scan highscore row: %v", err)
			return nil, err
		}
		scores = append(scores, h)
	}
	return scores, rows.Err()
}

func (r *highscoreRepository) Insert(ctx context.Context, score models.Highscore) (models.Highscore, error) {
	log := logger.FromContext(ctx).WithPrefix("highscore_repo")
	log.Debug("inserting highscore: player=%s, moves=%d", score.PlayerName, score.Moves)

	if score.CreatedAt.IsZero() {
		score.CreatedAt = r.now().UTC()
	}

	sqlStr, args, err := sqlBuilder.Insert("highscores").
		Columns("player_name", "moves", "created_at").
		Values(score.PlayerName, score.Moves, score.CreatedAt).
		ToSql()
	if err != nil {
		log.Error("failed to build insert: %v", err)
		return models.Highscore{}, err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to insert highscore: %v", err)
		return models.Highscore{}, err
	}
	score.ID, err = res.LastInsertId()
	if err != nil {
		return models.Highscore{}, err
	}
	log.Debug("highscore inserted: id=%d", score.ID)
	return score, nil
}
