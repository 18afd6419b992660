package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-accounts-service/config"
	"github.com/oksasatya/user-accounts-service/internal/application"
	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/internal/domain/repository"
	pginfra "github.com/oksasatya/user-accounts-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-accounts-service/pkg/cryptox"
	"github.com/oksasatya/user-accounts-service/pkg/helpers"
)

// seed creates the initial admin account (SEED_USERNAME / SEED_PASSWORD)
// unless a user with that name already exists.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	username := os.Getenv("SEED_USERNAME")
	password := os.Getenv("SEED_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("SEED_USERNAME and SEED_PASSWORD are required")
	}

	cipher, err := cryptox.NewCipher(cfg.CipherSecret,
		cryptox.WithIterations(cfg.CipherIterations),
		cryptox.WithSaltLength(cfg.CipherSaltLength),
	)
	if err != nil {
		log.Fatalf("password cipher: %v", err)
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	db := pginfra.OpenDB(pool)
	defer func() { _ = db.Close() }()

	repo := pginfra.NewUserRepository(db)
	if u, err := repo.GetByUsername(ctx, username); err == nil {
		fmt.Printf("user already present: id=%d username=%s\n", u.ID, u.Username)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("lookup user: %v", err)
	}

	svc := application.NewService(repo, cipher, helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), logger,
		application.WithPasswordPolicy(cfg.PasswordPolicyEnabled))
	u, err := svc.Create(ctx, application.UserInput{
		Username: username,
		Password: password,
		Branch:   getenv("SEED_BRANCH", "HQ"),
		Role:     getenv("SEED_ROLE", "admin"),
		Status:   entity.StatusActive,
	})
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d username=%s role=%s\n", u.ID, u.Username, u.Role)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
