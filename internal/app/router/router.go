// Package router builds the gin engine and its route table.
package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "passvault/internal/feature/auth/transport/handler"
	vaulthandler "passvault/internal/feature/vault/transport/handler"
	pvhttp "passvault/internal/platform/http"
	"passvault/internal/platform/http/handler"
	"passvault/internal/platform/metrics"
	"passvault/internal/shared/ratelimiter"
)

// Deps are the components the route table is assembled from.
type Deps struct {
	Auth    *authhandler.AuthHandler
	Profile *authhandler.ProfileHandler
	Vault   *vaulthandler.VaultHandler

	// Gate guards every route that touches user data.
	Gate gin.HandlerFunc
	// Limiter bounds the unauthenticated auth routes.
	Limiter ratelimiter.Limiter

	Health         map[string]handler.CheckFunc
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string

	// UploadDir is served under UploadsPrefix when non-empty.
	UploadDir     string
	UploadsPrefix string
	// MaxUploadBytes bounds multipart memory.
	MaxUploadBytes int64
}

// NewRouter wires handlers and middleware into a gin engine.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.Logger != nil {
		r.Use(pvhttp.RequestLogger(d.Logger, "/healthz", "/metrics"))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  d.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Retry-After"},
			MaxAge:        12 * time.Hour,
		}))
	}
	if d.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = d.MaxUploadBytes
	}

	// No authentication required
	r.Any("/healthz", handler.Health(d.Health))
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}
	if d.UploadDir != "" && d.UploadsPrefix != "" {
		r.Static(d.UploadsPrefix, d.UploadDir)
	}

	public := r.Group("/")
	if d.Limiter != nil {
		public.Use(ratelimiter.Middleware(d.Limiter))
	}
	{
		public.POST("/register", d.Auth.Register)
		public.POST("/login", d.Auth.Login)
		public.POST("/forgot-password", d.Auth.ForgotPassword)
		public.POST("/reset-password/:token", d.Auth.ResetPassword)
	}

	// Authentication required: the gate re-resolves the caller on every request
	auth := r.Group("/")
	auth.Use(d.Gate)
	{
		auth.GET("/me", d.Profile.Me)
		auth.PUT("/me", d.Profile.UpdateMe)
		auth.PUT("/me/photo", d.Profile.UpdatePhoto)
		auth.PUT("/change-password", d.Profile.ChangePassword)
		auth.POST("/update-settings", d.Profile.UpdateSettings)

		passwords := auth.Group("/passwords")
		passwords.GET("", d.Vault.List)
		passwords.POST("", d.Vault.Create)
		passwords.PUT("/:id", d.Vault.Update)
		passwords.DELETE("/:id", d.Vault.Delete)
	}

	return r
}
