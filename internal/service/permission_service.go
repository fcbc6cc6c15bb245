package service

import (
	"context"
	_ "embed"
	"fmt"
	"slices"

	"agora/internal/models"
	"agora/internal/repository"

	"gopkg.in/yaml.v3"
)

//go:embed groups.yml
var defaultGroupsYAML []byte

// GroupDefinitions maps a group name to its permission codenames.
type GroupDefinitions map[string][]string

// ParseGroupDefinitions decodes a groups document and rejects unknown codenames.
func ParseGroupDefinitions(data []byte) (GroupDefinitions, error) {
	var doc struct {
		Groups GroupDefinitions `yaml:"groups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse groups: %w", err)
	}
	known := []string{models.PermView, models.PermCreate, models.PermEdit, models.PermDelete}
	for name, codes := range doc.Groups {
		for _, code := range codes {
			if !slices.Contains(known, code) {
				return nil, fmt.Errorf("group %q: unknown permission %q", name, code)
			}
		}
	}
	return doc.Groups, nil
}

// DefaultGroups returns the built-in group definitions.
func DefaultGroups() GroupDefinitions {
	groups, err := ParseGroupDefinitions(defaultGroupsYAML)
	if err != nil {
		panic(err)
	}
	return groups
}

// PermissionService answers permission and role questions for the library endpoints.
type PermissionService struct {
	users  repository.UserRepository
	groups repository.GroupRepository
}

func NewPermissionService(users repository.UserRepository, groups repository.GroupRepository) *PermissionService {
	return &PermissionService{users: users, groups: groups}
}

// Allowed reports whether userID holds codename through any of its groups.
// Admins hold every permission.
func (s *PermissionService) Allowed(ctx context.Context, userID uint, codename string) (bool, error) {
	if err := requireActor(userID); err != nil {
		return false, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.IsAdmin {
		return true, nil
	}
	codes, err := s.groups.Permissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(codes, codename), nil
}

// HasRole reports whether the user carries role. The admin flag also satisfies
// the admin role.
func (s *PermissionService) HasRole(ctx context.Context, userID uint, role models.UserRole) (bool, error) {
	if err := requireActor(userID); err != nil {
		return false, err
	}
	if !role.Valid() {
		return false, models.NewNotFoundError("Role", role)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.Role == role {
		return true, nil
	}
	return role == models.RoleAdmin && user.IsAdmin, nil
}

// SyncGroups makes the stored groups match defs.
func (s *PermissionService) SyncGroups(ctx context.Context, defs GroupDefinitions) error {
	return s.groups.Sync(ctx, defs)
}

// AddMember puts userID into the named group.
func (s *PermissionService) AddMember(ctx context.Context, group string, userID uint) error {
	return s.groups.AddMember(ctx, group, userID)
}

func (s *PermissionService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}
