// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// SignUpReq は/sign-upエンドポイントのリクエストボディを表します。
type SignUpReq struct {
	Name     string `json:"name" binding:"required,min=2,max=256"`
	Email    string `json:"email" binding:"required,email,max=256"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

// SignInReq は/sign-inエンドポイントのリクエストボディを表します。
type SignInReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserRes は認証結果として返すユーザー情報です。パスワードは含みません。
type UserRes struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
