package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"passvault/internal/feature/vault/domain/entity"
	"passvault/internal/feature/vault/usecase"
	pvmongo "passvault/internal/platform/mongo"
)

// credentialDocument は認証情報の保存形式です。
type credentialDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId"`
	Service   string        `bson:"service"`
	Username  string        `bson:"username"`
	Password  string        `bson:"password"`
	Category  string        `bson:"category,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *credentialDocument) toEntity() entity.Credential {
	return entity.Credential{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Service:   d.Service,
		Username:  d.Username,
		Secret:    d.Password,
		Category:  d.Category,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// credentialMongo はCredentialRepositoryのMongoDB実装です。
type credentialMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// credentialMongo が CredentialRepository を実装していることをコンパイル時に検証
var _ usecase.CredentialRepository = (*credentialMongo)(nil)

// NewCredentialMongo はdbの"passwords"コレクションを使うcredentialMongoを生成します。
func NewCredentialMongo(db *mongo.Database) *credentialMongo {
	return &credentialMongo{coll: db.Collection(pvmongo.PasswordsCollection), now: time.Now}
}

// ownedFilter は{_id, userId}のフィルタを組み立てます。
// 不正なIDはどのレコードにも一致しないため、not foundとして扱います。
func ownedFilter(id, ownerID string) (bson.D, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrCredentialNotFound
	}
	owner, err := bson.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, usecase.ErrCredentialNotFound
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: owner}}, nil
}

// Create は CredentialRepository を実装します。
func (r *credentialMongo) Create(ctx context.Context, c *entity.Credential) error {
	owner, err := bson.ObjectIDFromHex(c.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", c.UserID, err)
	}
	now := r.now().UTC()
	doc := credentialDocument{
		ID:        bson.NewObjectID(),
		UserID:    owner,
		Service:   c.Service,
		Username:  c.Username,
		Password:  c.Secret,
		Category:  c.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	c.ID = doc.ID.Hex()
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// ListByOwner は CredentialRepository を実装します。
func (r *credentialMongo) ListByOwner(ctx context.Context, ownerID, category string) ([]entity.Credential, error) {
	owner, err := bson.ObjectIDFromHex(ownerID)
	if err != nil {
		return []entity.Credential{}, nil
	}
	filter := bson.D{{Key: "userId", Value: owner}}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	var docs []credentialDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}

	out := make([]entity.Credential, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toEntity())
	}
	return out, nil
}

// UpdateOwned は{_id, userId}をフィルタとしてfindOneAndUpdateを実行するため、
// 他の所有者のレコードに触れることはありません。
func (r *credentialMongo) UpdateOwned(ctx context.Context, id, ownerID string, patch usecase.CredentialPatch) (*entity.Credential, error) {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	set := bson.D{{Key: "updatedAt", Value: r.now().UTC()}}
	if patch.Service != nil {
		set = append(set, bson.E{Key: "service", Value: *patch.Service})
	}
	if patch.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *patch.Username})
	}
	if patch.Secret != nil {
		set = append(set, bson.E{Key: "password", Value: *patch.Secret})
	}
	update := bson.D{{Key: "$set", Value: set}}
	if patch.Category != nil {
		if *patch.Category == "" {
			update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "category", Value: ""}}})
		} else {
			set = append(set, bson.E{Key: "category", Value: *patch.Category})
			update[0].Value = set
		}
	}

	var doc credentialDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to update credential: %w", err)
	}
	c := doc.toEntity()
	return &c, nil
}

// DeleteOwned は CredentialRepository を実装します。
func (r *credentialMongo) DeleteOwned(ctx context.Context, id, ownerID string) error {
	filter, err := ownedFilter(id, ownerID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	if res.DeletedCount == 0 {
		return usecase.ErrCredentialNotFound
	}
	return nil
}
