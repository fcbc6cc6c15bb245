package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"agora/internal/listquery"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_RequiresIdentity(t *testing.T) {
	svc := NewPostService(&postRepoStub{}, &tagRepoStub{})
	_, err := svc.CreatePost(context.Background(), CreatePostInput{Title: "t", Content: "c"})
	assertAppCode(t, err, models.CodeAuthenticationRequired)
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"blank title", CreatePostInput{UserID: 1, Title: "  ", Content: "c"}},
		{"long title", CreatePostInput{UserID: 1, Title: strings.Repeat("x", 201), Content: "c"}},
		{"blank content", CreatePostInput{UserID: 1, Title: "t", Content: ""}},
		{"bad image url", CreatePostInput{UserID: 1, Title: "t", Content: "c", ImageURL: "ftp://x"}},
		{"too many tags", CreatePostInput{UserID: 1, Title: "t", Content: "c", Tags: make([]string, 21)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPostService(&postRepoStub{
				createFn: func(context.Context, *models.Post, []string) error {
					t.Fatal("create must not be reached")
					return nil
				},
			}, &tagRepoStub{})
			_, err := svc.CreatePost(context.Background(), tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestCreatePost_AuthorAndDateFromCaller(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var stored *models.Post
	var storedTags []string

	repo := &postRepoStub{
		createFn: func(_ context.Context, p *models.Post, tags []string) error {
			p.ID = 9
			stored = p
			storedTags = tags
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			require.Equal(t, uint(9), id)
			return stored, nil
		},
	}
	svc := NewPostService(repo, &tagRepoStub{})
	svc.now = func() time.Time { return fixed }

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID: 7, Title: "  Hello  ", Content: "body", Tags: []string{"go", "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.UserID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, fixed, post.PublishedDate)
	assert.Equal(t, []string{"go", "web"}, storedTags)
}

func TestUpdatePost_PartialKeepsAuthorAndTags(t *testing.T) {
	existing := &models.Post{ID: 3, UserID: 5, Title: "old", Content: "old body"}
	var gotTags []string
	tagsPassed := true

	repo := &postRepoStub{
		getByIDFn: func(context.Context, uint) (*models.Post, error) {
			cp := *existing
			return &cp, nil
		},
		updateFn: func(_ context.Context, p *models.Post, tags []string) error {
			existing = p
			gotTags = tags
			tagsPassed = tags != nil
			return nil
		},
	}
	svc := NewPostService(repo, &tagRepoStub{})

	title := "new"
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 3, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", post.Title)
	assert.Equal(t, "old body", post.Content)
	assert.Equal(t, uint(5), post.UserID)
	assert.False(t, tagsPassed, "nil tags leave the tag set unchanged")
	assert.Nil(t, gotTags)

	empty := []string{}
	_, err = svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 3, Tags: &empty})
	require.NoError(t, err)
	assert.NotNil(t, gotTags, "an empty list clears tags")
	assert.Empty(t, gotTags)
}

func TestUpdatePost_NotFound(t *testing.T) {
	repo := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
	}
	svc := NewPostService(repo, &tagRepoStub{})
	title := "x"
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 42, Title: &title})
	assertAppCode(t, err, models.CodeNotFound)
}

func TestSearchPosts_RequiresTerm(t *testing.T) {
	svc := NewPostService(&postRepoStub{}, &tagRepoStub{})
	_, err := svc.SearchPosts(context.Background(), "   ", listquery.Page{Limit: 10})
	assertValidationError(t, err)
}

func TestPostsByTag_UnknownTag(t *testing.T) {
	tags := &tagRepoStub{
		bySlugFn: func(_ context.Context, slug string) (*models.Tag, error) {
			return nil, models.NewNotFoundError("Tag", slug)
		},
	}
	svc := NewPostService(&postRepoStub{}, tags)
	_, err := svc.PostsByTag(context.Background(), "nope", listquery.Page{Limit: 10})
	assertAppCode(t, err, models.CodeNotFound)
}

func TestFeed_RequiresIdentity(t *testing.T) {
	svc := NewPostService(&postRepoStub{}, &tagRepoStub{})
	_, err := svc.Feed(context.Background(), 0, listquery.Page{Limit: 10})
	assertAppCode(t, err, models.CodeAuthenticationRequired)
}
