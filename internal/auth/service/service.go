// Package service implements authentication and team management.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"salesdesk_backend/internal/auth/password"
	"salesdesk_backend/internal/auth/repository"
	"salesdesk_backend/internal/auth/token"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
)

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	now  func() time.Time
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// SignIn verifies credentials and issues an access/refresh token pair.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return "", "", apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return "", "", apperr.Unauthorized("invalid credentials")
	}

	s.log.AuthEvent("sign_in", email, true, "")
	s.repo.TouchLastSignedIn(ctx, user.ID)
	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A reused token fails because the first rotation revoked it.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return "", "", apperr.Unauthorized("invalid refresh token")
	}
	if s.now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return "", "", apperr.Unauthorized("refresh token expired")
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return "", "", err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", apperr.Unauthorized("invalid refresh token")
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (*repository.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) ([]repository.User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser provisions a new account. Accounts are created by admins; there
// is no self-service sign-up.
func (s *Service) CreateUser(ctx context.Context, name, email, plainPassword, role string) (*repository.User, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", "userId", user.ID, "role", user.Role)
	return user, nil
}

// SetUserRole changes another user's role. Admins cannot change their own
// role, which keeps at least one admin able to undo a mistake.
func (s *Service) SetUserRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*repository.User, error) {
	if actorID == userID {
		return nil, apperr.BadRequest("cannot change your own role")
	}
	user, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	// Force re-authentication so the new role takes effect on the next token.
	_ = s.repo.RevokeAllRefreshTokens(ctx, userID)
	return user, nil
}

func (s *Service) issueTokens(ctx context.Context, user *repository.User) (string, string, error) {
	accessToken, err := s.signJWT(user.ID, []string{user.Role}, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	hash := token.HashSHA256(refreshToken)
	expiresAt := s.now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
