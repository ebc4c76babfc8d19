package usecase

import (
	"context"
	"errors"
	"strings"

	"passvault/internal/feature/auth/domain/entity"
	"passvault/internal/platform/storage"
)

// AvatarStore はアバター画像を保存し、その参照を返します。
type AvatarStore interface {
	Save(ctx context.Context, ownerID string, img storage.Image) (string, error)
}

// ProfileUpdate は PUT /me の任意フィールドを保持します。
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// SettingsUpdate は POST /update-settings の任意フィールドを保持します。
type SettingsUpdate struct {
	Username        *string
	Email           *string
	CurrentPassword string
	NewPassword     string

	DarkMode           *bool
	Language           *string
	EmailNotifications *bool
	PushNotifications  *bool
}

// profileUsecase は認証済みユーザー自身のプロフィール操作を実装します。
type profileUsecase struct {
	users          UserRepository
	hasher         PasswordHasher
	avatars        AvatarStore
	maxAvatarBytes int64
}

// NewProfileUsecase はprofileUsecaseの新しいインスタンスを生成します。
func NewProfileUsecase(users UserRepository, hasher PasswordHasher, avatars AvatarStore, maxAvatarBytes int64) *profileUsecase {
	return &profileUsecase{
		users:          users,
		hasher:         hasher,
		avatars:        avatars,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// GetSelf は呼び出し元ユーザーのレコードを返します。
func (u *profileUsecase) GetSelf(ctx context.Context, id string) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// UpdateSelf は名前とメールアドレスを変更します。新しいメールアドレスは未使用である必要があります。
func (u *profileUsecase) UpdateSelf(ctx context.Context, id string, in ProfileUpdate) (*entity.User, error) {
	patch, err := identityPatch(in.Name, in.Email)
	if err != nil {
		return nil, err
	}
	if patch == (UserPatch{}) {
		return u.users.FindByID(ctx, id)
	}
	return u.users.Update(ctx, id, patch)
}

// identityPatch は任意の名前とメールアドレスを検証します。空の値は未指定として扱います。
func identityPatch(name, email *string) (UserPatch, error) {
	var patch UserPatch
	if name != nil {
		if n := strings.TrimSpace(*name); n != "" {
			patch.Name = &n
		}
	}
	if email != nil {
		if e := NormalizeEmail(*email); e != "" {
			if !strings.Contains(e, "@") {
				return UserPatch{}, ErrInvalidInput
			}
			patch.Email = &e
		}
	}
	return patch, nil
}

// ChangePassword は現在のパスワードを確認した上でパスワードを変更します。
func (u *profileUsecase) ChangePassword(ctx context.Context, id, current, next string) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.hasher.Verify(current, user.PasswordHash) {
		return ErrWrongPassword
	}
	if err := validateNewPassword(next); err != nil {
		return err
	}

	hashed, err := u.hasher.Hash(next)
	if err != nil {
		return err
	}
	_, err = u.users.Update(ctx, id, UserPatch{PasswordHash: &hashed})
	return err
}

// UpdateAvatar は画像形式を判定して保存し、ユーザーのphotoをその参照に更新します。
func (u *profileUsecase) UpdateAvatar(ctx context.Context, id string, data []byte) (*entity.User, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if u.maxAvatarBytes > 0 && int64(len(data)) > u.maxAvatarBytes {
		return nil, ErrFileTooLarge
	}

	img, err := storage.DetectImage(data)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, ErrUnsupportedMedia
		}
		return nil, err
	}

	// 削除済みアカウントの画像を書き込む前に失敗させる
	if _, err := u.users.FindByID(ctx, id); err != nil {
		return nil, err
	}

	ref, err := u.avatars.Save(ctx, id, img)
	if err != nil {
		return nil, err
	}
	return u.users.Update(ctx, id, UserPatch{Photo: &ref})
}

// UpdateSettings はパスワード変更、名前・メール変更、設定変更を1回の書き込みで適用します。
func (u *profileUsecase) UpdateSettings(ctx context.Context, id string, in SettingsUpdate) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := identityPatch(in.Username, in.Email)
	if err != nil {
		return nil, err
	}

	if in.CurrentPassword != "" {
		if !u.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
			return nil, ErrWrongPassword
		}
		if in.NewPassword != "" {
			if err := validateNewPassword(in.NewPassword); err != nil {
				return nil, err
			}
			hashed, err := u.hasher.Hash(in.NewPassword)
			if err != nil {
				return nil, err
			}
			patch.PasswordHash = &hashed
		}
	} else if in.NewPassword != "" {
		return nil, ErrWrongPassword
	}

	settings := user.Settings
	if in.DarkMode != nil {
		settings.DarkMode = *in.DarkMode
	}
	if in.Language != nil {
		settings.Language = strings.TrimSpace(*in.Language)
	}
	if in.EmailNotifications != nil {
		settings.EmailNotifications = *in.EmailNotifications
	}
	if in.PushNotifications != nil {
		settings.PushNotifications = *in.PushNotifications
	}
	patch.Settings = &settings

	return u.users.Update(ctx, id, patch)
}
