// Package main initializes and starts the todo API server, setting up
// configuration, logging, the document store connection, repositories,
// services, and handlers.
package main

import (
	"context"
	"time"

	nethttp "net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/akarpenko/todoapi/internal/config"
	"github.com/akarpenko/todoapi/internal/db"
	"github.com/akarpenko/todoapi/internal/logger"
	"github.com/akarpenko/todoapi/internal/repository"
	"github.com/akarpenko/todoapi/internal/server/handler/http"
	"github.com/akarpenko/todoapi/internal/service"
	"github.com/akarpenko/todoapi/internal/token"
)

func main() {
	// Load .env if present, then parse the environment once. Nothing
	// reads the environment after this point.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize structured logging.
	log, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Connect to the document store and prepare indexes.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.MongoURI, cfg.Database)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Disconnect(ctx, database)
	}()

	// Initialize repositories for users and todos.
	userRepo := repository.NewMongoUserRepository(database)
	todoRepo := repository.NewMongoTodoRepository(database)

	// Initialize the token codec and business-logic services.
	codec := token.NewCodec([]byte(cfg.JWTSecret))
	userService := service.NewUserService(userRepo, codec, cfg.BcryptCost)
	todoService := service.NewTodoService(todoRepo)

	// Create HTTP handlers and build the router.
	userHandler := &http.UserHandler{Users: userService}
	todoHandler := &http.TodoHandler{Todos: todoService}
	router := http.NewRouter(userHandler, todoHandler, userService, log)

	server := &nethttp.Server{
		Addr:    cfg.Address,
		Handler: router,
	}

	log.Info("starting HTTP server", zap.String("addr", cfg.Address))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
