// Command createuser provisions the operator account.
// There is no self-service signup: the lot has a single operator, created
// out-of-band with this tool.
//
// Usage:
//
//	DATABASE_URL=postgres://... createuser <username> <password>
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfarias/autolote/internal/auth"
	"github.com/mfarias/autolote/internal/domain"
	"github.com/mfarias/autolote/internal/repo"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <username> <password>\n", os.Args[0])
		os.Exit(2)
	}
	username, password := os.Args[1], os.Args[2]

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		slog.Error("creating database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	user, err := repo.NewUserRepo(pool).Create(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		slog.Error("creating user", "username", username, "error", err)
		os.Exit(1)
	}

	slog.Info("user created", "id", user.ID, "username", user.Username)
}
