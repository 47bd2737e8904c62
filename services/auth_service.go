package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/models"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/mkingstonsqr/tile-notes/utils"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles email and password accounts.
type AuthService struct {
	store  store.Store
	secret []byte
	now    func() time.Time
}

func NewAuthService(s store.Store, jwtSecret string) *AuthService {
	return &AuthService{store: s, secret: []byte(jwtSecret), now: time.Now}
}

func (s *AuthService) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.store.GetProfileByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, &PersistenceError{Op: "sign up", Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:           utils.GenerateID(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}
	settings := models.DefaultSettings(profile.ID)
	if err := s.store.CreateProfile(ctx, profile, &settings); err != nil {
		config.Logger.Errorw("create profile failed", "error", err, "email", email)
		return nil, &PersistenceError{Op: "sign up", Err: err}
	}

	config.Logger.Infow("user signed up", "userID", profile.ID)
	return s.session(profile)
}

func (s *AuthService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	profile, err := s.store.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &PersistenceError{Op: "sign in", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(profile)
}

// Authenticate resolves a bearer token to its user ID.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := utils.ParseToken(s.secret, token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// DeleteAccount removes the profile and everything it owns.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.store.DeleteProfile(ctx, userID); err != nil {
		return &PersistenceError{Op: "delete account", Err: err}
	}
	return nil
}

func (s *AuthService) session(p *models.Profile) (*models.AuthResponse, error) {
	token, err := utils.GenerateToken(s.secret, p.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: models.NewUserResponse(p)}, nil
}
