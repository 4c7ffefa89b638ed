package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"blogapp/internal/auth"
	"blogapp/internal/cache"
	"blogapp/internal/config"
	"blogapp/internal/db"
	apperrors "blogapp/internal/errors"
	"blogapp/internal/repository"
	"blogapp/internal/service"
)

const maxUsernameLen = 20

func main() {
	users := flag.Int("users", 5, "number of users to create")
	posts := flag.Int("posts", 4, "number of posts per user")
	password := flag.String("password", "password", "password shared by every seeded user")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger, *users, *posts, *password); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, users, posts int, password string) error {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(ctx, cfg.MySQLDSN, cfg.DBConnectAttempts)
	if err != nil {
		return err
	}
	logger.Info("connected to database")

	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	// Seeding only writes, so the user cache is left out.
	var noCache *cache.Client
	userService := service.NewUserService(userRepo, auth.NewBcryptHasher(), noCache, cfg.DefaultAvatar)
	postService := service.NewPostService(postRepo, userRepo, cfg.PostsPerPage)

	created, skipped, postCount := 0, 0, 0
	for i := 0; i < users; i++ {
		user, err := userService.Register(ctx, fakeUsername(), strings.ToLower(gofakeit.Email()), password)
		if errors.Is(err, apperrors.ErrDuplicateUsername) || errors.Is(err, apperrors.ErrDuplicateEmail) {
			logger.Info("skipping duplicate user", "error", err)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("register user: %w", err)
		}
		created++

		for j := 0; j < posts; j++ {
			if _, err := postService.Create(ctx, user, fakeTitle(), gofakeit.Paragraph(2, 4, 12, "\n\n")); err != nil {
				return fmt.Errorf("create post for %s: %w", user.Username, err)
			}
			postCount++
		}
		logger.Info("seeded user", "id", user.ID, "username", user.Username, "email", user.Email)
	}

	logger.Info("seed completed", "users_created", created, "users_skipped", skipped, "posts_created", postCount)
	return nil
}

func fakeUsername() string {
	name := gofakeit.Username()
	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
	}
	return name
}

func fakeTitle() string {
	title := strings.TrimSuffix(gofakeit.Sentence(6), ".")
	if len(title) > 100 {
		title = title[:100]
	}
	return title
}
