package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/valentine/internal/logger"
	"github.com/vytor/valentine/internal/models"
	"github.com/vytor/valentine/internal/repository"
)

type galleryRepository struct {
	db *sql.DB
}

// NewGalleryRepository creates a new GalleryRepository implementation
func NewGalleryRepository(db *sql.DB) repository.GalleryRepository {
	return &galleryRepository{db: db}
}

func (r *galleryRepository) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryItem, error) {
	log := logger.FromContext(ctx).WithPrefix("gallery_repo")
	log.Debug("listing gallery items: type=%s", filter.Type)

	query := sqlBuilder.Select("id", "url", "alt", "type", "thumbnail", "position").
		From("gallery_items")
	if filter.Type != "" {
		query = query.Where(squirrel.Eq{"type": filter.Type})
	}
	query = query.OrderBy("position ASC", "id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list gallery items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.GalleryItem
	for rows.Next() {
		var it models.GalleryItem
		if err := rows.Scan(&it.ID, &it.URL, &it.Alt, &it.Type, &it.Thumbnail, &it.Position); err != nil {
			log.Error("failed to scan gallery row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}

	log.Debug("found %d gallery items", len(items))
	return items, rows.Err()
}
