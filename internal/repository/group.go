package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository resolves permission groups and their members.
type GroupRepository interface {
	// Permissions returns the distinct codenames granted to userID by its groups.
	Permissions(ctx context.Context, userID uint) ([]string, error)
	// Sync makes the named groups carry exactly the given codenames.
	Sync(ctx context.Context, groups map[string][]string) error
	AddMember(ctx context.Context, groupName string, userID uint) error
	List(ctx context.Context) ([]models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a GroupRepository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Permissions(ctx context.Context, userID uint) ([]string, error) {
	codes := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.GroupPermission{}).
		Distinct("group_permissions.codename").
		Joins("JOIN user_groups ug ON ug.group_id = group_permissions.group_id").
		Where("ug.user_id = ?", userID).
		Order("group_permissions.codename").
		Pluck("group_permissions.codename", &codes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return codes, nil
}

func (r *groupRepository) Sync(ctx context.Context, groups map[string][]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, codes := range groups {
			group := models.Group{Name: name}
			if err := tx.Where(models.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", group.ID).Delete(&models.GroupPermission{}).Error; err != nil {
				return err
			}
			if len(codes) == 0 {
				continue
			}
			perms := make([]models.GroupPermission, 0, len(codes))
			for _, code := range codes {
				perms = append(perms, models.GroupPermission{GroupID: group.ID, Codename: code})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perms).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *groupRepository) AddMember(ctx context.Context, groupName string, userID uint) error {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("name = ?", groupName).First(&group).Error; err != nil {
		return lookupError(err, "Group", groupName)
	}
	user := models.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).Omit("Groups.*").Association("Groups").Append(&group); err != nil {
		if isForeignKeyViolation(err) {
			return models.NewNotFoundError("User", userID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	if err := r.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}
