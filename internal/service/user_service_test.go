package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type tokenStub struct{ issued []uint }

func (s *tokenStub) Issue(userID uint, username string) (string, error) {
	s.issued = append(s.issued, userID)
	return "token-" + username, nil
}

type joinerStub struct {
	err    error
	joined map[uint]string
}

func (s *joinerStub) AddMember(_ context.Context, group string, userID uint) error {
	if s.joined == nil {
		s.joined = map[uint]string{}
	}
	s.joined[userID] = group
	return s.err
}

func newAuth(users *userRepoStub, groups GroupJoiner) (*AuthService, *tokenStub) {
	tokens := &tokenStub{}
	svc := NewAuthService(users, tokens, groups)
	svc.cost = bcrypt.MinCost
	return svc, tokens
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"}},
		{"numeric password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "12345678"}},
		{"bad username", RegisterInput{Username: "a b", Email: "a@example.com", Password: "password123"}},
		{"bad email", RegisterInput{Username: "alice", Email: "nope", Password: "password123"}},
		{"bad picture", RegisterInput{Username: "alice", Email: "a@example.com", Password: "password123", ProfilePicture: "javascript:x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newAuth(newUserRepoStub(), nil)
			_, err := svc.Register(context.Background(), tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	users := newUserRepoStub(&models.User{ID: 1, Username: "alice", Email: "alice@example.com"})
	svc, _ := newAuth(users, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "password123",
	})
	assertValidationError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "ALICE@example.com", Password: "password123",
	})
	assertValidationError(t, err)
}

func TestRegister_HashesAndIssuesToken(t *testing.T) {
	users := newUserRepoStub()
	groups := &joinerStub{err: errors.New("no such group")}
	svc, tokens := newAuth(users, groups)

	res, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "Alice@Example.com", Password: "password123", Bio: "hi",
	})
	require.NoError(t, err, "group membership failures do not block registration")
	assert.Equal(t, "token-alice", res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, models.RoleMember, res.User.Role)
	assert.NotEqual(t, "password123", res.User.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.Password), []byte("password123")))
	assert.Equal(t, []uint{res.User.ID}, tokens.issued)
	assert.Equal(t, DefaultGroup, groups.joined[res.User.ID])
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := newUserRepoStub(&models.User{ID: 3, Username: "alice", Password: string(hash)})
	svc, _ := newAuth(users, nil)

	res, err := svc.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.User.ID)
	assert.Equal(t, "token-alice", res.Token)

	_, err = svc.Login(context.Background(), "alice", "wrong-password")
	assertAppCode(t, err, models.CodeAuthenticationRequired)

	_, err = svc.Login(context.Background(), "ghost", "password123")
	assertAppCode(t, err, models.CodeAuthenticationRequired)

	_, err = svc.Login(context.Background(), "", "")
	assertValidationError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	users := newUserRepoStub(
		&models.User{ID: 1, Username: "alice", Email: "alice@example.com"},
		&models.User{ID: 2, Username: "bob", Email: "bob@example.com"},
	)
	svc := NewUserService(users)
	ctx := context.Background()

	bio := "reader"
	pic := "https://img.example.com/a.png"
	u, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Bio: &bio, ProfilePicture: &pic})
	require.NoError(t, err)
	assert.Equal(t, "reader", u.Bio)
	assert.Equal(t, pic, u.ProfilePicture)
	assert.Equal(t, "alice@example.com", u.Email)

	taken := "bob@example.com"
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Email: &taken})
	assertValidationError(t, err)

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{Bio: &bio})
	assertAppCode(t, err, models.CodeAuthenticationRequired)
}

func TestSetAdmin(t *testing.T) {
	users := newUserRepoStub(&models.User{ID: 1, Username: "alice"})
	svc := NewUserService(users)

	u, err := svc.SetAdmin(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, err = svc.SetAdmin(context.Background(), 9, true)
	assertAppCode(t, err, models.CodeNotFound)
}
