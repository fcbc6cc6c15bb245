package repository

import (
	"context"

	"agora/internal/models"
	"agora/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository reads tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error; err != nil {
		return nil, lookupError(err, "Tag", slug)
	}
	return &tag, nil
}

// upsertTags creates any missing tags by slug and returns all of them.
// It runs on the caller's transaction.
func upsertTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	names = validation.NormalizeTags(names)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	rows := make([]models.Tag, 0, len(names))
	slugs := make([]string, 0, len(names))
	for _, n := range names {
		slug := validation.Slugify(n)
		rows = append(rows, models.Tag{Name: n, Slug: slug})
		slugs = append(slugs, slug)
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := tx.Where("slug IN ?", slugs).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// replaceTags sets the tag set of owner, a post or a comment, to names and
// returns the stored tags. An empty names clears it.
func replaceTags(tx *gorm.DB, owner any, names []string) ([]models.Tag, error) {
	tags, err := upsertTags(tx, names)
	if err != nil {
		return nil, err
	}
	assoc := tx.Model(owner).Association("Tags")
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return nil, err
	}
	return tags, nil
}
