package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/internal/featureflags"
	"agora/internal/listquery"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSink struct {
	mu     sync.Mutex
	events []models.Notification
	actors []string
}

func (s *recordingSink) NotificationCreated(_ context.Context, n models.Notification, actor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, n)
	s.actors = append(s.actors, actor)
}

func newSocial(t *testing.T) (*gorm.DB, *SocialService, *recordingSink) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	sink := &recordingSink{}
	svc := NewSocialService(
		repository.NewFollowRepository(db, nil),
		repository.NewLikeRepository(db, nil),
		repository.NewUserRepository(db, nil),
		sink,
	)
	return db, svc, sink
}

func TestFollow_Rules(t *testing.T) {
	db, svc, _ := newSocial(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	err := svc.Follow(ctx, alice.ID, alice.ID)
	assertAppCode(t, err, models.CodeConflict)
	assert.True(t, errors.Is(err, models.ErrSelfFollow))

	assertAppCode(t, svc.Follow(ctx, alice.ID, 999), models.CodeNotFound)
	assertAppCode(t, svc.Follow(ctx, 0, bob.ID), models.CodeAuthenticationRequired)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID), "following twice is a no-op")

	followers, err := svc.Followers(ctx, bob.ID, listquery.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	ok, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLike_NotifiesAuthorAfterCommit(t *testing.T) {
	db, svc, sink := newSocial(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "Hello", time.Now())

	require.NoError(t, svc.Like(ctx, bob.ID, post.ID))
	require.Len(t, sink.events, 1)
	assert.Equal(t, alice.ID, sink.events[0].RecipientID)
	assert.Equal(t, "bob", sink.actors[0])

	err := svc.Like(ctx, bob.ID, post.ID)
	assertAppCode(t, err, models.CodeConflict)
	assert.True(t, errors.Is(err, models.ErrDuplicateLike))
	assert.Len(t, sink.events, 1, "failed likes never reach the sink")

	require.NoError(t, svc.Like(ctx, alice.ID, post.ID))
	assert.Len(t, sink.events, 1, "self-likes are not notified")

	require.NoError(t, svc.Unlike(ctx, bob.ID, post.ID))
	err = svc.Unlike(ctx, bob.ID, post.ID)
	assert.True(t, errors.Is(err, models.ErrLikeNotFound))

	assertAppCode(t, svc.Like(ctx, bob.ID, 999), models.CodeNotFound)
}

func TestLikeThenList_ReadOnFetch(t *testing.T) {
	db, social, _ := newSocial(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "Hello", time.Now())
	require.NoError(t, social.Like(ctx, bob.ID, post.ID))

	notifications := NewNotificationService(repository.NewNotificationRepository(db), nil)
	page := listquery.Page{Limit: 20}

	first, err := notifications.List(ctx, alice.ID, page)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "bob", first[0].Actor)
	assert.Equal(t, models.VerbLikedPost, first[0].Verb)
	assert.False(t, first[0].IsRead, "the fetch that marks them read still shows them unread")

	second, err := notifications.List(ctx, alice.ID, page)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].IsRead)

	unread, err := notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotificationList_FlagOffKeepsUnread(t *testing.T) {
	db, social, _ := newSocial(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "Hello", time.Now())
	require.NoError(t, social.Like(ctx, bob.ID, post.ID))

	flags := featureflags.NewManager(featureflags.NotificationsReadOnFetch + "=off")
	notifications := NewNotificationService(repository.NewNotificationRepository(db), flags)

	_, err := notifications.List(ctx, alice.ID, listquery.Page{Limit: 20})
	require.NoError(t, err)
	unread, err := notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	changed, err := notifications.MarkRead(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	_, err = notifications.List(ctx, 0, listquery.Page{Limit: 20})
	assertAppCode(t, err, models.CodeAuthenticationRequired)
}
