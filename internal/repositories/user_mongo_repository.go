package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"userdir/internal/models"
)

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	db       *mongo.Database
	collName string
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database, collName string) *MongoUserRepository {
	return &MongoUserRepository{
		db:       db,
		collName: collName,
	}
}

func (r *MongoUserRepository) coll() *mongo.Collection {
	return r.db.Collection(r.collName)
}

// EnsureSchema creates the users collection with its $jsonSchema validator if it
// does not exist yet. Safe to call on every startup.
func (r *MongoUserRepository) EnsureSchema(ctx context.Context) error {
	names, err := r.db.ListCollectionNames(ctx, bson.M{"name": r.collName})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}

	namePattern := "^[a-zA-Z]*$"
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"firstName", "mobile", "email"},
			"properties": bson.M{
				"firstName": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 20,
					"pattern":   namePattern,
				},
				"middleName": bson.M{
					"bsonType":  "string",
					"maxLength": 20,
					"pattern":   namePattern,
				},
				"lastName": bson.M{
					"bsonType":  "string",
					"maxLength": 20,
					"pattern":   namePattern,
				},
				// Valid mobile numbers exceed int32, so the field is stored as a
				// 64-bit integer.
				"mobile": bson.M{
					"bsonType": "long",
					"minimum":  1000000000,
					"maximum":  9999999999,
				},
				"email": bson.M{
					"bsonType":  "string",
					"maxLength": 30,
				},
				"password": bson.M{
					"bsonType": "string",
				},
				"role": bson.M{
					"bsonType": "string",
					"enum":     bson.A{models.RoleAdmin, models.RoleUser},
				},
			},
		},
	}

	opts := options.CreateCollection().SetValidator(validator)
	if err := r.db.CreateCollection(ctx, r.collName, opts); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", r.collName, err)
	}
	return nil
}

// Insert stores a new user document. The server-side schema validator rejects
// documents violating the field constraints.
func (r *MongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	if _, err := r.coll().InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByUsername retrieves a user by username.
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll().FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", username, err)
	}
	return &user, nil
}

// List returns every stored user document.
func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.coll().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Delete removes the document matching username.
func (r *MongoUserRepository) Delete(ctx context.Context, username string) (int64, error) {
	res, err := r.coll().DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user %s: %w", username, err)
	}
	return res.DeletedCount, nil
}

// UpdateField sets a single field on the document matching username.
func (r *MongoUserRepository) UpdateField(ctx context.Context, username, field string, value interface{}) (int64, error) {
	res, err := r.coll().UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update user %s: %w", username, err)
	}
	return res.MatchedCount, nil
}
