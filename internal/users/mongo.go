package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

type mongoDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d *mongoDocument) toUser() *User {
	return &User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// mongoCollection は MongoDirectory が使う *mongo.Collection の操作です。
type mongoCollection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

type indexCreator interface {
	CreateOne(ctx context.Context, model mongo.IndexModel, opts ...options.Lister[options.CreateIndexesOptions]) (string, error)
}

// MongoDirectory はユーザーを MongoDB の users コレクションに保存します。
type MongoDirectory struct {
	client *mongo.Client
	coll   mongoCollection
}

// OpenMongo は MongoDB に接続し、疎通確認と email の一意インデックス作成を行います。
func OpenMongo(ctx context.Context, uri, database string) (*MongoDirectory, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(database).Collection(usersCollection)
	if err := ensureEmailIndex(ctx, coll.Indexes()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoDirectory{client: client, coll: coll}, nil
}

func ensureEmailIndex(ctx context.Context, indexes indexCreator) error {
	_, err := indexes.CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongo create email index: %w", err)
	}
	return nil
}

// Create はユーザーを挿入します。
func (d *MongoDirectory) Create(ctx context.Context, user *User) error {
	doc := mongoDocument{
		ID:           bson.NewObjectID(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := d.coll.InsertOne(ctx, doc); err != nil {
		return mapMongoWriteError(err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	return nil
}

// FindByID は ID でユーザーを検索します。ObjectID として不正な ID は ErrNotFound です。
func (d *MongoDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return d.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (d *MongoDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	return d.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// Close は接続を切断します。
func (d *MongoDirectory) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

func (d *MongoDirectory) findOne(ctx context.Context, filter bson.D) (*User, error) {
	var doc mongoDocument
	if err := d.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.toUser(), nil
}

func mapMongoWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return fmt.Errorf("mongo insert user: %w", err)
}
