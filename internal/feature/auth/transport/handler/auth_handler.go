// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"acquisitions/internal/feature/auth/transport/http/dto"
	"acquisitions/internal/feature/auth/usecase"
	"acquisitions/internal/feature/users/domain"
	"acquisitions/internal/feature/users/domain/entity"
	jwtmw "acquisitions/internal/platform/jwt"
	"acquisitions/internal/platform/logger"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// SignUp は新規ユーザーを登録し、署名済みトークンを返します。
	SignUp(ctx context.Context, in usecase.SignUpInput) (*entity.User, string, error)
	// SignIn はユーザーを認証し、成功時に署名済みトークンを返します。
	SignIn(ctx context.Context, email, password string) (*entity.User, string, error)
	// SignOut はトークンを失効させます。
	SignOut(ctx context.Context, token string) error
}

// CookieConfig はトークンを保持するクッキーの設定です。
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth   AuthUsecase
	cookie CookieConfig
	log    *logger.Logger
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase, cookie CookieConfig, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{auth: auth, cookie: cookie, log: log}
}

// SignUp はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はトークンをクッキーに設定し201を返却
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("sign-up validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, token, err := h.auth.SignUp(c.Request.Context(), usecase.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.Role(req.Role),
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		h.log.Warn().Str("remote_addr", c.ClientIP()).Msg("sign-up with existing email")
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	case errors.Is(err, usecase.ErrWeakPassword), errors.Is(err, usecase.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	default:
		h.log.Error().Err(err).Msg("sign-up failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.setTokenCookie(c, token)
	h.log.Info().Uint("user_id", user.ID).Str("remote_addr", c.ClientIP()).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{"message": "User registered", "user": toUserRes(user)})
}

// SignIn はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は401を返却
// - 認証成功時はトークンをクッキーに設定し200を返却
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("sign-in validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			h.log.Warn().Str("remote_addr", c.ClientIP()).Msg("sign-in failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.log.Error().Err(err).Msg("sign-in failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.setTokenCookie(c, token)
	h.log.Info().Uint("user_id", user.ID).Str("remote_addr", c.ClientIP()).Msg("user signed in")
	c.JSON(http.StatusOK, gin.H{"message": "User signed in successfully", "user": toUserRes(user)})
}

// SignOut はトークンを失効させ、クッキーを削除します。
// - 失効の記録に失敗した場合もクッキーは削除し500を返却
func (h *AuthHandler) SignOut(c *gin.Context) {
	token := jwtmw.TokenFromRequest(c, h.cookie.Name)
	err := h.auth.SignOut(c.Request.Context(), token)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("sign-out failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User signed out successfully"})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func toUserRes(u *entity.User) dto.UserRes {
	return dto.UserRes{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}
