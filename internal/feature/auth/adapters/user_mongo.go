package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"passvault/internal/feature/auth/domain/entity"
	"passvault/internal/feature/auth/usecase"
	pvmongo "passvault/internal/platform/mongo"
)

type settingsDocument struct {
	DarkMode           bool   `bson:"darkMode"`
	Language           string `bson:"language"`
	EmailNotifications bool   `bson:"emailNotifications"`
	PushNotifications  bool   `bson:"pushNotifications"`
}

// userDocument はユーザーの保存形式です。
// スパースインデックスが保留中のリセットのみを持つよう、リセット項目は空のとき省略します。
type userDocument struct {
	ID             bson.ObjectID    `bson:"_id,omitempty"`
	Name           string           `bson:"name"`
	Email          string           `bson:"email"`
	PasswordHash   string           `bson:"password"`
	Photo          string           `bson:"photo,omitempty"`
	ResetTokenHash string           `bson:"resetTokenHash,omitempty"`
	ResetExpires   *time.Time       `bson:"resetExpires,omitempty"`
	Settings       settingsDocument `bson:"settings"`
	CreatedAt      time.Time        `bson:"createdAt"`
	UpdatedAt      time.Time        `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		Photo:          d.Photo,
		ResetTokenHash: d.ResetTokenHash,
		ResetExpires:   d.ResetExpires,
		Settings: entity.Settings{
			DarkMode:           d.Settings.DarkMode,
			Language:           d.Settings.Language,
			EmailNotifications: d.Settings.EmailNotifications,
			PushNotifications:  d.Settings.PushNotifications,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// userMongo はUserRepositoryのMongoDB実装です。
type userMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// userMongo が UserRepository を実装していることをコンパイル時に検証
var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo はdbの"users"コレクションを使うuserMongoを生成します。
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(pvmongo.UsersCollection), now: time.Now}
}

// Create はユーザーを登録します。
// 同時登録による重複はユニークインデックスによりusecase.ErrEmailAlreadyExistsになります。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	now := r.now().UTC()
	doc := userDocument{
		ID:           bson.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Photo:        u.Photo,
		Settings: settingsDocument{
			DarkMode:           u.Settings.DarkMode,
			Language:           u.Settings.Language,
			EmailNotifications: u.Settings.EmailNotifications,
			PushNotifications:  u.Settings.PushNotifications,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *userMongo) findOne(ctx context.Context, filter bson.D) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを検索します。見つからない場合usecase.ErrUserNotFoundを返します。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByID はIDでユーザーを検索します。未知または不正なIDの場合usecase.ErrUserNotFoundを返します。
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// Exists は UserRepository を実装します。
func (r *userMongo) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// Update は1回のfindOneAndUpdateでpatchを適用し、更新後のドキュメントを返します。
func (r *userMongo) Update(ctx context.Context, id string, patch usecase.UserPatch) (*entity.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrUserNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: r.now().UTC()}}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *patch.PasswordHash})
	}
	if patch.Photo != nil {
		set = append(set, bson.E{Key: "photo", Value: *patch.Photo})
	}
	if s := patch.Settings; s != nil {
		set = append(set, bson.E{Key: "settings", Value: settingsDocument{
			DarkMode:           s.DarkMode,
			Language:           s.Language,
			EmailNotifications: s.EmailNotifications,
			PushNotifications:  s.PushNotifications,
		}})
	}

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		return doc.toEntity(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, usecase.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, usecase.ErrEmailAlreadyExists
	default:
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
}

// SetResetToken は UserRepository を実装します。
func (r *userMongo) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return usecase.ErrUserNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "resetTokenHash", Value: tokenHash},
			{Key: "resetExpires", Value: expires.UTC()},
			{Key: "updatedAt", Value: r.now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// ConsumeResetToken はダイジェストと有効期限を1つのフィルタで照合し、
// パスワードを保存する同じ更新で両方のリセット項目を削除します。
func (r *userMongo) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{
			{Key: "resetTokenHash", Value: tokenHash},
			{Key: "resetExpires", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
		},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "password", Value: passwordHash},
				{Key: "updatedAt", Value: r.now().UTC()},
			}},
			{Key: "$unset", Value: bson.D{
				{Key: "resetTokenHash", Value: ""},
				{Key: "resetExpires", Value: ""},
			}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if res.MatchedCount == 0 {
		return usecase.ErrInvalidResetToken
	}
	return nil
}
