package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/models"
)

// MongoTodoRepository persists todos in the "todos" collection. Every
// query filter includes the creator, so a caller can never observe or
// touch another owner's documents through this type.
type MongoTodoRepository struct {
	todos *mongo.Collection
}

// NewMongoTodoRepository creates a todo repository over the given database.
func NewMongoTodoRepository(db *mongo.Database) *MongoTodoRepository {
	return &MongoTodoRepository{todos: db.Collection("todos")}
}

// Create inserts a new todo and returns it with the store-assigned id.
func (r *MongoTodoRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	res, err := r.todos.InsertOne(ctx, todo)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	todo.ID = id
	return todo, nil
}

// ListByCreator returns all todos owned by the given creator.
func (r *MongoTodoRepository) ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error) {
	cur, err := r.todos.Find(ctx, bson.M{"_creator": creator})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	todos := []models.Todo{}
	if err := cur.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	return todos, nil
}

// FindByID returns the todo with the given id if it is owned by creator,
// otherwise common.ErrNotFound. Absence and foreign ownership are
// indistinguishable.
func (r *MongoTodoRepository) FindByID(ctx context.Context, id, creator primitive.ObjectID) (*models.Todo, error) {
	var todo models.Todo
	err := r.todos.FindOne(ctx, bson.M{"_id": id, "_creator": creator}).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find todo: %w", err)
	}
	return &todo, nil
}

// Delete removes the todo if it is owned by creator and returns the
// removed document.
func (r *MongoTodoRepository) Delete(ctx context.Context, id, creator primitive.ObjectID) (*models.Todo, error) {
	var todo models.Todo
	err := r.todos.FindOneAndDelete(ctx, bson.M{"_id": id, "_creator": creator}).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("delete todo: %w", err)
	}
	return &todo, nil
}

// Update applies the patch to the todo if it is owned by creator and
// returns the updated document. Completed and CompletedAt are always
// written; Text only when the patch carries it.
func (r *MongoTodoRepository) Update(ctx context.Context, id, creator primitive.ObjectID, patch models.TodoPatch) (*models.Todo, error) {
	set := bson.M{
		"completed":   patch.Completed,
		"completedAt": patch.CompletedAt,
	}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var todo models.Todo
	err := r.todos.FindOneAndUpdate(ctx, bson.M{"_id": id, "_creator": creator}, bson.M{"$set": set}, opts).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return &todo, nil
}
