// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrInvalidCredentials は未登録のメールアドレスまたは誤ったパスワードでLoginした場合に返されます。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailAlreadyExists は他のユーザーが使用中のメールアドレスを使おうとした場合に返されます。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrUserNotFound はメールアドレスまたはIDでユーザーが見つからない場合に返されます。
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput は不正または欠落したフィールドがある場合に返されます。
	ErrInvalidInput = errors.New("invalid input")

	// ErrWrongPassword は現在のパスワードが一致しない場合に返されます。
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrWeakPassword は新しいパスワードが短すぎる場合に返されます。
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrPasswordTooLong は新しいパスワードがbcryptで扱える長さを超える場合に返されます。
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

	// ErrInvalidResetToken はリセットトークンが不明、期限切れ、または使用済みの場合に返されます。
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrNoFile はアバターのアップロードにファイルが含まれない場合に返されます。
	ErrNoFile = errors.New("no file uploaded")

	// ErrUnsupportedMedia はアップロードされたファイルが画像でない場合に返されます。
	ErrUnsupportedMedia = errors.New("only image uploads are allowed")

	// ErrFileTooLarge はアップロードがサイズ上限を超えた場合に返されます。
	ErrFileTooLarge = errors.New("file too large")
)
