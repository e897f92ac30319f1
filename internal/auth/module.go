// Package auth provides the authentication bounded context module.
package auth

import (
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/internal/auth/handler"
	"salesdesk_backend/internal/auth/repository"
	"salesdesk_backend/internal/auth/service"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	secureCookies := !strings.EqualFold(cfg.Env, "development")
	h := handler.New(svc, cfg, val, secureCookies)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service for use by other composition-root wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting.
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/users/me", m.handler.GetMe)

	// Team management is admin-only.
	ctx.Admin.GET("/users", m.handler.ListUsers)
	ctx.Admin.POST("/users", m.handler.CreateUser)
	ctx.Admin.PUT("/users/:id/role", m.handler.SetUserRole)
}

var _ apphttp.Module = (*Module)(nil)
