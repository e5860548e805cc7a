// Package repository provides document-store persistence for users and
// todos.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/models"
)

// MongoUserRepository persists users in the "users" collection.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a user repository over the given database.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection("users")}
}

// Create inserts a new user and returns the store-assigned id. A unique
// index violation on the email field maps to common.ErrDuplicateEmail.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, common.ErrDuplicateEmail
		}
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// FindByEmail returns the user with the given email, or common.ErrNotFound.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByToken returns the user whose id matches AND whose token list
// still contains an entry with the exact access label and token string.
// Both conditions are required; a cryptographically valid token whose
// entry has been removed does not match.
func (r *MongoUserRepository) FindByToken(ctx context.Context, id primitive.ObjectID, access, tok string) (*models.User, error) {
	filter := bson.M{
		"_id": id,
		"tokens": bson.M{"$elemMatch": bson.M{
			"access": access,
			"token":  tok,
		}},
	}

	var user models.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find user by token: %w", err)
	}
	return &user, nil
}

// AddToken appends an issued token entry to the user's list.
func (r *MongoUserRepository) AddToken(ctx context.Context, id primitive.ObjectID, entry models.TokenEntry) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$push": bson.M{"tokens": entry}})
	if err != nil {
		return fmt.Errorf("add token: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// RemoveToken removes the entry carrying the given token string from the
// user's list. Removing a token that is already gone is not an error.
func (r *MongoUserRepository) RemoveToken(ctx context.Context, id primitive.ObjectID, tok string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$pull": bson.M{"tokens": bson.M{"token": tok}}})
	if err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes the user record entirely.
func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
