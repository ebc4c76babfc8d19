// Package usecase はvaultフィーチャーの所有者スコープの認証情報操作を実装します。
package usecase

import "errors"

var (
	// ErrCredentialNotFound はIDと呼び出し元の両方に一致するレコードがない場合に返されます。
	// 他のユーザーにそのIDが存在するかどうかは明かしません。
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrInvalidInput は必須フィールドが欠落または空の場合に返されます。
	ErrInvalidInput = errors.New("service, username and password are required")
)
