package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
)

func newTestService() *Service {
	cfg := &config.Config{
		JWTAccessSecret: "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
	}
	return New(nil, cfg, logger.New("test"))
}

func TestSetUserRoleRejectsOwnRole(t *testing.T) {
	svc := newTestService()
	self := uuid.New()

	_, err := svc.SetUserRole(context.Background(), self, self, "user")
	if err == nil {
		t.Fatal("expected error changing own role")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestSignJWTClaims(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	signed, err := svc.signJWT(userID, []string{"admin"}, 15*time.Minute)
	if err != nil {
		t.Fatalf("signJWT: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse signed token: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != userID.String() {
		t.Fatalf("sub = %v, want %s", claims["sub"], userID)
	}
	if claims["type"] != "access" {
		t.Fatalf("type = %v, want access", claims["type"])
	}
	roles, ok := claims["roles"].([]interface{})
	if !ok || len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("roles = %v", claims["roles"])
	}
}
