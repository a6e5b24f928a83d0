package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/valentine/internal/kvstore"
	"github.com/vytor/valentine/internal/logger"
)

type kvRepository struct {
	db *sql.DB
}

// NewKVRepository returns a kvstore.Backend persisted in the kv_entries table.
func NewKVRepository(db *sql.DB) kvstore.Backend {
	return &kvRepository{db: db}
}

func (r *kvRepository) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	sqlStr, args, err := sqlBuilder.Select("value").
		From("kv_entries").
		Where(squirrel.Eq{"namespace": namespace, "key": key}).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_repo").Error("failed to read %s/%s: %v", namespace, key, err)
		return "", false, err
	}
	return value, true, nil
}

func (r *kvRepository) Set(ctx context.Context, namespace, key, value string) error {
	sqlStr, args, err := sqlBuilder.Insert("kv_entries").
		Columns("namespace", "key", "value", "updated_at").
		Values(namespace, key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		logger.FromContext(ctx).WithPrefix("kv_repo").Error("failed to write %s/%s: %v", namespace, key, err)
		return err
	}
	return nil
}

func (r *kvRepository) Delete(ctx context.Context, namespace, key string) error {
	sqlStr, args, err := sqlBuilder.Delete("kv_entries").
		Where(squirrel.Eq{"namespace": namespace, "key": key}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
