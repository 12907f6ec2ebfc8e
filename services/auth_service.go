package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/logger"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
	"github.com/dcode-github/cozycorner/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"omitempty,signuprole"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users  store.UserStore
	tokens *utils.TokenManager
	now    func() time.Time
}

func NewAuthService(users store.UserStore, tokens *utils.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

// Register creates a tenant or landlord account. Admins are never created
// through signup.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}

	role := models.Role(in.Role)
	if role == "" {
		role = models.RoleTenant
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperrors.Store(err, "Error hashing password")
	}

	u := models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.users.Insert(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, apperrors.Conflict("Email already registered")
		}
		return models.User{}, apperrors.Store(err, "Error registering user")
	}

	logger.FromContext(ctx).Info("user registered", "user_id", u.ID.Hex(), "role", u.Role)
	return u, nil
}

// Login checks the credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, models.User, error) {
	if err := validateStruct(in); err != nil {
		return "", models.User{}, err
	}

	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", models.User{}, apperrors.Authentication("Invalid credentials")
		}
		return "", models.User{}, apperrors.Store(err, "Error logging in")
	}
	if !utils.CheckPasswordHash(in.Password, u.Password) {
		return "", models.User{}, apperrors.Authentication("Invalid credentials")
	}

	token, err := s.Token(u)
	if err != nil {
		return "", models.User{}, err
	}
	return token, u, nil
}

// Token issues a signed token for u.
func (s *AuthService) Token(u models.User) (string, error) {
	token, err := s.tokens.Generate(u.ID.Hex(), string(u.Role))
	if err != nil {
		return "", apperrors.Store(err, "Error generating token")
	}
	return token, nil
}

// Authenticate resolves a bearer token into the caller's session.
func (s *AuthService) Authenticate(token string) (models.Session, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return models.Session{}, apperrors.Authentication("Token has expired")
		}
		return models.Session{}, apperrors.Authentication("Invalid token")
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Session{}, apperrors.Authentication("Invalid token")
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return models.Session{}, apperrors.Authentication("Invalid token")
	}
	return models.Session{ID: id, Role: role}, nil
}
