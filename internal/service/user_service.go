package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agora/internal/listquery"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const maxBioLen = 500

// DefaultGroup receives every newly registered account.
const DefaultGroup = "Viewers"

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID uint, username string) (string, error)
}

// GroupJoiner adds users to permission groups.
type GroupJoiner interface {
	AddMember(ctx context.Context, groupName string, userID uint) error
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	groups GroupJoiner
	cost   int
}

type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	Bio            string
	ProfilePicture string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewAuthService returns an AuthService. groups may be nil.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, groups GroupJoiner) *AuthService {
	return &AuthService{users: users, tokens: tokens, groups: groups, cost: bcrypt.DefaultCost}
}

func (s *AuthService) validateRegister(ctx context.Context, in RegisterInput) error {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.NewValidationError(err.Error())
	}
	if len(in.Bio) > maxBioLen {
		return models.NewValidationError("Bio too long (max 500 characters)")
	}
	if err := validation.ValidateURL(in.ProfilePicture); err != nil {
		return models.NewValidationError("profile_picture " + err.Error())
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewValidationError("A user with that username already exists.")
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewValidationError("A user with that email already exists.")
	}
	return nil
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validateRegister(ctx, in); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hashed),
		Bio:            in.Bio,
		ProfilePicture: in.ProfilePicture,
		Role:           models.RoleMember,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.groups != nil {
		if err := s.groups.AddMember(ctx, DefaultGroup, user.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "default group membership failed",
				"user_id", user.ID, "error", err)
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials by username. Unknown users and wrong passwords
// produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}
	invalid := models.NewAuthenticationRequiredError("Invalid credentials")

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalid
		}
		return nil, models.NewInternalError(err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

type UserService struct {
	users repository.UserRepository
}

// UpdateProfileInput carries the profile fields to change; nil fields keep their value.
type UpdateProfileInput struct {
	UserID         uint
	Email          *string
	Bio            *string
	ProfilePicture *string
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context, page listquery.Page) ([]models.User, error) {
	return s.users.List(ctx, page)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Profile returns the caller's own account with follow counts.
func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	if err := requireActor(userID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := requireActor(in.UserID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if email != user.Email {
			other, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, models.NewValidationError("A user with that email already exists.")
			}
		}
		user.Email = email
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.ProfilePicture != nil {
		if err := validation.ValidateURL(*in.ProfilePicture); err != nil {
			return nil, models.NewValidationError("profile_picture " + err.Error())
		}
		user.ProfilePicture = *in.ProfilePicture
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

// SetAdmin grants or revokes admin rights.
func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	if err := s.users.SetAdmin(ctx, targetID, isAdmin); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, targetID)
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.users.ListAdmins(ctx)
}
