package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/database"
	"github.com/quillpress/blog-api/internal/users"
	"github.com/quillpress/blog-api/pkg/logger"
)

// makeadmin grants the admin role to an existing account:
//
//	makeadmin -email someone@example.com
func main() {
	email := flag.String("email", "", "email of the user to promote")
	flag.Parse()
	if *email == "" && flag.NArg() > 0 {
		*email = flag.Arg(0)
	}
	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: makeadmin -email <address>")
		os.Exit(2)
	}

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	logger.Infof("Connected to MongoDB")

	svc := users.NewService(users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection(database.UsersCollection)))
	u, err := svc.PromoteByEmail(ctx, *email)
	if errors.Is(err, users.ErrNotFound) {
		logger.Errorf("User not found: %s", *email)
		_ = client.Disconnect(ctx)
		os.Exit(1)
	}
	if err != nil {
		logger.Errorf("promote failed: %v", err)
		_ = client.Disconnect(ctx)
		os.Exit(1)
	}
	logger.Infof("User updated successfully: %s (%s) is now %s", u.Username, u.Email, u.Role)
}
