// Package handler はvaultフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"passvault/internal/api"
	"passvault/internal/feature/vault/domain/entity"
	"passvault/internal/feature/vault/transport/http/dto"
	"passvault/internal/feature/vault/usecase"
	jwtmw "passvault/internal/platform/jwt"
)

// VaultUsecase は所有者スコープの認証情報操作を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type VaultUsecase interface {
	Create(ctx context.Context, ownerID string, in usecase.NewCredential) (*entity.Credential, error)
	List(ctx context.Context, ownerID, category string) ([]entity.Credential, error)
	Update(ctx context.Context, ownerID, id string, patch usecase.CredentialPatch) (*entity.Credential, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// VaultHandler は /passwords を処理します。すべてのルートは認証ミドルウェアの後ろに置く必要があります。
type VaultHandler struct {
	vault VaultUsecase
}

// NewVaultHandler はVaultHandlerの新しいインスタンスを生成します。
func NewVaultHandler(vault VaultUsecase) *VaultHandler {
	return &VaultHandler{vault: vault}
}

func ownerID(c *gin.Context) (string, bool) {
	id, ok := jwtmw.UserID(c)
	if !ok {
		slog.Error("vault handler reached without authenticated user", "path", c.FullPath())
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
	}
	return id, ok
}

// List は GET /passwords[?category=...] を処理します。
func (h *VaultHandler) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	creds, err := h.vault.List(c.Request.Context(), owner, c.Query("category"))
	if err != nil {
		writeError(c, owner, "list credentials failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCredentialList(creds))
}

// Create は POST /passwords を処理します。
func (h *VaultHandler) Create(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.CreateCredentialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create credential validation failed", "error", err, "user_id", owner)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: usecase.ErrInvalidInput.Error()})
		return
	}

	cred, err := h.vault.Create(c.Request.Context(), owner, usecase.NewCredential{
		Service:  req.Service,
		Username: req.Username,
		Secret:   req.Password,
		Category: req.Category,
	})
	if err != nil {
		writeError(c, owner, "create credential failed", err)
		return
	}
	slog.Info("credential created", "user_id", owner, "credential_id", cred.ID)
	c.JSON(http.StatusCreated, dto.CredentialEnvelope{
		Message:  "password saved",
		Password: dto.NewCredentialRes(cred),
	})
}

// Update は PUT /passwords/:id を処理します。
func (h *VaultHandler) Update(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.UpdateCredentialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update credential validation failed", "error", err, "user_id", owner)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	cred, err := h.vault.Update(c.Request.Context(), owner, c.Param("id"), usecase.CredentialPatch{
		Service:  req.Service,
		Username: req.Username,
		Secret:   req.Password,
		Category: req.Category,
	})
	if err != nil {
		writeError(c, owner, "update credential failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.CredentialEnvelope{
		Message:  "password updated",
		Password: dto.NewCredentialRes(cred),
	})
}

// Delete は DELETE /passwords/:id を処理します。
func (h *VaultHandler) Delete(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.vault.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		writeError(c, owner, "delete credential failed", err)
		return
	}
	slog.Info("credential deleted", "user_id", owner, "credential_id", c.Param("id"))
	c.JSON(http.StatusOK, api.MessageResponse{Message: "password deleted"})
}

func writeError(c *gin.Context, owner, msg string, err error) {
	switch {
	case errors.Is(err, usecase.ErrCredentialNotFound):
		slog.Warn(msg, "error", err, "user_id", owner, "credential_id", c.Param("id"))
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrInvalidInput):
		slog.Warn(msg, "error", err, "user_id", owner)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(msg, "error", err, "user_id", owner)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}
