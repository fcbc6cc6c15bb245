package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"agora/internal/listquery"
	"agora/internal/models"

	"github.com/stretchr/testify/require"
)

// Stubs for the repository interfaces. A nil fn returns zero values.

type postRepoStub struct {
	createFn   func(context.Context, *models.Post, []string) error
	getByIDFn  func(context.Context, uint) (*models.Post, error)
	authorIDFn func(context.Context, uint) (uint, error)
	listFn     func(context.Context, url.Values) ([]models.Post, error)
	byTagFn    func(context.Context, string, listquery.Page) ([]models.Post, error)
	searchFn   func(context.Context, string, listquery.Page) ([]models.Post, error)
	feedFn     func(context.Context, uint, listquery.Page) ([]models.Post, error)
	updateFn   func(context.Context, *models.Post, []string) error
	deleteFn   func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post, tags []string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, p, tags)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn == nil {
		return &models.Post{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) AuthorID(ctx context.Context, id uint) (uint, error) {
	if s.authorIDFn == nil {
		return 1, nil
	}
	return s.authorIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, q url.Values) ([]models.Post, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, q)
}
func (s *postRepoStub) ListByTag(ctx context.Context, slug string, page listquery.Page) ([]models.Post, error) {
	if s.byTagFn == nil {
		return nil, nil
	}
	return s.byTagFn(ctx, slug, page)
}
func (s *postRepoStub) Search(ctx context.Context, term string, page listquery.Page) ([]models.Post, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, term, page)
}
func (s *postRepoStub) Feed(ctx context.Context, userID uint, page listquery.Page) ([]models.Post, error) {
	if s.feedFn == nil {
		return nil, nil
	}
	return s.feedFn(ctx, userID, page)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post, tags []string) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, p, tags)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

type tagRepoStub struct {
	bySlugFn func(context.Context, string) (*models.Tag, error)
}

func (s *tagRepoStub) List(context.Context) ([]models.Tag, error) { return nil, nil }
func (s *tagRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	if s.bySlugFn == nil {
		return &models.Tag{Slug: slug}, nil
	}
	return s.bySlugFn(ctx, slug)
}

type commentRepoStub struct {
	createFn  func(context.Context, *models.Comment) error
	getByIDFn func(context.Context, uint) (*models.Comment, error)
	updateFn  func(context.Context, *models.Comment) error
	tags      []string
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment, tags []string) error {
	s.tags = tags
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	if s.getByIDFn == nil {
		return &models.Comment{ID: id}, nil
	}
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) AuthorID(context.Context, uint) (uint, error) { return 1, nil }
func (s *commentRepoStub) List(context.Context, url.Values) ([]models.Comment, error) {
	return nil, nil
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment, tags []string) error {
	s.tags = tags
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(context.Context, uint) error { return nil }

// userRepoStub keeps users in a map keyed by id.
type userRepoStub struct {
	users    map[uint]*models.User
	nextID   uint
	createFn func(context.Context, *models.User) error
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[uint]*models.User{}, nextID: 100}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}
func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}
func (s *userRepoStub) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := s.users[id]
	return ok, nil
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	if s.createFn != nil {
		if err := s.createFn(ctx, u); err != nil {
			return err
		}
	}
	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return nil
}
func (s *userRepoStub) Update(_ context.Context, u *models.User) error {
	s.users[u.ID] = u
	return nil
}
func (s *userRepoStub) List(context.Context, listquery.Page) ([]models.User, error) {
	return nil, nil
}
func (s *userRepoStub) SetAdmin(_ context.Context, id uint, isAdmin bool) error {
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	u.IsAdmin = isAdmin
	return nil
}
func (s *userRepoStub) ListAdmins(context.Context) ([]models.User, error) { return nil, nil }

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppCode(t, err, models.CodeValidation)
}
