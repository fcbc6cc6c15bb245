package service

import (
	"context"
	"fmt"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment_PostMustExist(t *testing.T) {
	posts := &postRepoStub{
		authorIDFn: func(_ context.Context, id uint) (uint, error) {
			return 0, models.NewNotFoundError("Post", id)
		},
	}
	svc := NewCommentService(&commentRepoStub{}, posts)

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 99, Content: "hi"})
	assertAppCode(t, err, models.CodeNotFound)
}

func TestCreateComment_Validation(t *testing.T) {
	svc := NewCommentService(&commentRepoStub{}, &postRepoStub{})

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 1, Content: " "})
	assertValidationError(t, err)

	_, err = svc.CreateComment(context.Background(), CreateCommentInput{PostID: 1, Content: "hi"})
	assertAppCode(t, err, models.CodeAuthenticationRequired)
}

func TestCreateComment_StoresCaller(t *testing.T) {
	var stored *models.Comment
	comments := &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 4
			stored = c
			return nil
		},
		getByIDFn: func(context.Context, uint) (*models.Comment, error) { return stored, nil },
	}
	svc := NewCommentService(comments, &postRepoStub{})

	c, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 8, PostID: 2, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, uint(8), c.UserID)
	assert.Equal(t, uint(2), c.PostID)
}

func TestUpdateComment_ContentAndTags(t *testing.T) {
	current := &models.Comment{ID: 4, UserID: 8, PostID: 2, Content: "old"}
	comments := &commentRepoStub{
		getByIDFn: func(context.Context, uint) (*models.Comment, error) {
			cp := *current
			return &cp, nil
		},
		updateFn: func(_ context.Context, c *models.Comment) error {
			current = c
			return nil
		},
	}
	svc := NewCommentService(comments, &postRepoStub{})

	c, err := svc.UpdateComment(context.Background(), 4, UpdateCommentInput{Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", c.Content)
	assert.Equal(t, uint(8), c.UserID)
	assert.Nil(t, comments.tags, "absent tags leave the set untouched")

	cleared := []string(nil)
	_, err = svc.UpdateComment(context.Background(), 4, UpdateCommentInput{Content: "new", Tags: &cleared})
	require.NoError(t, err)
	assert.NotNil(t, comments.tags)
	assert.Empty(t, comments.tags)
}

func TestCreateComment_PassesTags(t *testing.T) {
	comments := &commentRepoStub{}
	svc := NewCommentService(comments, &postRepoStub{})

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 8, PostID: 2, Content: "nice", Tags: []string{"Go", "review"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "review"}, comments.tags)

	tooMany := make([]string, maxTags+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("t%d", i)
	}
	_, err = svc.CreateComment(context.Background(), CreateCommentInput{
		UserID: 8, PostID: 2, Content: "nice", Tags: tooMany,
	})
	assertAppCode(t, err, models.CodeValidation)
}
