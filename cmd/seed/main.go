package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"

	"bulletin_board/internal/config"
	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"
	"bulletin_board/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const seedPassword = "Password123!"

type seedUser struct {
	username  string
	firstName string
	lastName  string
	role      model.Role
}

var seedUsers = []seedUser{
	{"bob", "Bob", "Smith", model.RoleUser},
	{"alice", "Alice", "Johnson", model.RoleUser},
	{"admin", "Admin", "User", model.RoleAdmin},
	{"canary", "Canary", "Tester", model.RoleUser},
}

var sampleMessages = []string{
	"Hello, board!",
	"Anyone around this evening?",
	"Just pushed a new build, let me know if anything breaks.",
	"Reminder: meetup is on Thursday.",
	"Does anyone have a spare charger?",
	"Great discussion today, thanks all.",
}

func main() {
	cleanup := flag.Bool("cleanup", false, "delete all messages, users and sessions instead of seeding")
	messages := flag.Int("messages", 0, "number of sample messages to create")
	flag.Parse()

	if _, err := config.LoadDotEnv(); err != nil {
		logger.New(0).Fatal("failed to load .env", "error", err)
	}
	cfg, err := config.NewConfig()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	pool, err := config.ConnectDB(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := config.Migrate(ctx, cfg.Database.DSN, log); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	if *cleanup {
		if err := wipe(ctx, pool); err != nil {
			log.Fatal("cleanup failed", "error", err)
		}
		log.Info("all messages, users and sessions deleted")
		return
	}

	users := repository.NewUserRepository(pool)
	created, err := seed(ctx, users, log)
	if err != nil {
		log.Fatal("seeding users failed", "error", err)
	}

	if *messages > 0 {
		if err := postSamples(ctx, repository.NewMessageRepository(pool), created, *messages); err != nil {
			log.Fatal("seeding messages failed", "error", err)
		}
		log.Info("sample messages created", "count", *messages)
	}
}

// seed creates the fixed test accounts and returns every seeded account, new or existing
func seed(ctx context.Context, users repository.UserRepository, log *logger.Logger) ([]*model.User, error) {
	hash, err := utils.HashPassword(seedPassword)
	if err != nil {
		return nil, err
	}

	var all []*model.User
	for _, su := range seedUsers {
		existing, err := users.FindByUsername(ctx, su.username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Info("user exists, skipping", "username", su.username)
			all = append(all, existing)
			continue
		}

		email := su.username + "@example.com"
		first, last := su.firstName, su.lastName
		u := &model.User{
			Username:     su.username,
			Email:        &email,
			PasswordHash: &hash,
			FirstName:    &first,
			LastName:     &last,
			IsActive:     true,
			Role:         su.role,
		}
		if err := users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create %s: %w", su.username, err)
		}
		log.Info("user created", "username", u.Username, "role", u.Role)
		all = append(all, u)
	}
	return all, nil
}

func postSamples(ctx context.Context, messages repository.MessageRepository, authors []*model.User, n int) error {
	if len(authors) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		msg := &model.Message{
			Content: sampleMessages[i%len(sampleMessages)],
			UserID:  authors[rand.IntN(len(authors))].ID,
		}
		if err := messages.Create(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func wipe(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, table := range []string{"messages", "session", "users"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
