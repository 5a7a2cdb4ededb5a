// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"acquisitions/internal/feature/users/domain"
	"acquisitions/internal/feature/users/domain/entity"
	"acquisitions/internal/feature/users/transport/http/dto"
	"acquisitions/internal/feature/users/usecase"
	jwtmw "acquisitions/internal/platform/jwt"
	"acquisitions/internal/platform/logger"
)

// UsersUsecase はユーザー管理のユースケースを定義します。
// インターフェースはコンシューマー（handler）側で定義します。
type UsersUsecase interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id uint) (*entity.User, error)
	UpdateUser(ctx context.Context, actor usecase.Actor, id uint, in usecase.UpdateInput) (*entity.User, error)
	DeleteUser(ctx context.Context, actor usecase.Actor, id uint) error
}

// UsersHandler はユーザー管理のHTTPリクエストを処理します。
type UsersHandler struct {
	users UsersUsecase
	log   *logger.Logger
}

// NewUsersHandler はUsersHandlerの新しいインスタンスを生成します。
func NewUsersHandler(users UsersUsecase, log *logger.Logger) *UsersHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &UsersHandler{users: users, log: log}
}

// List は全ユーザーを返します。
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully retrieved users",
		"users":   dto.NewUserList(users),
		"count":   len(users),
	})
}

// Get はIDで指定されたユーザーを返します。
func (h *UsersHandler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to get user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User retrieved", "user": dto.NewUserRes(user)})
}

// Update はユーザー情報を更新します。
// - 本人または管理者のみ更新可能
// - ロールの変更は管理者のみ
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("update user validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": "at least one field must be provided"})
		return
	}

	in := usecase.UpdateInput{Name: req.Name, Email: req.Email}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		in.Email = &email
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.users.UpdateUser(c.Request.Context(), actor, id, in)
	if err != nil {
		h.writeError(c, err, "failed to update user")
		return
	}
	h.log.Info().Uint("user_id", user.ID).Uint("actor_id", actor.ID).Msg("user updated")
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": dto.NewUserRes(user)})
}

// Delete はユーザーを削除します。本人または管理者のみ削除可能です。
func (h *UsersHandler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), actor, id); err != nil {
		h.writeError(c, err, "failed to delete user")
		return
	}
	h.log.Info().Uint("user_id", id).Uint("actor_id", actor.ID).Msg("user deleted")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// writeError はユースケースのエラーをHTTPステータスに変換します。
func (h *UsersHandler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, usecase.ErrForbidden):
		h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg(msg)
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, usecase.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
	default:
		h.log.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func userID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return uint(id), true
}

func currentActor(c *gin.Context) (usecase.Actor, bool) {
	id, role, ok := jwtmw.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return usecase.Actor{}, false
	}
	return usecase.Actor{ID: id, Role: entity.Role(role)}, true
}
