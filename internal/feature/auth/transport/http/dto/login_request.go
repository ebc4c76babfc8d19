// Package dto はauthフィーチャーのHTTPトランスポート層で使用するデータ転送オブジェクトを定義します。
package dto

// LoginReq は /login エンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterReq は /register エンドポイントのリクエストボディを表します。
// 長さの検証はすべての入口で適用されるようusecaseで行います。
type RegisterReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthRes は /register と /login のレスポンスです。
type AuthRes struct {
	Token string  `json:"token"`
	User  UserRes `json:"user"`
}
