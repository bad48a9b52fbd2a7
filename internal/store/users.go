package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/DivyaNareshkumarPatel/e-shop/internal/database"
	"github.com/DivyaNareshkumarPatel/e-shop/internal/models"
)

func RegisterUser(ctx context.Context, db *sql.DB, bcryptCost int, name, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{}

	query := `
		INSERT INTO users (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, email, created_at`

	err = db.QueryRowContext(ctx, query, name, email, string(hash)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// AuthenticateUser returns ErrInvalidCredentials for both an unknown email
// and a wrong password, so callers cannot probe which one failed.
func AuthenticateUser(ctx context.Context, db *sql.DB, email, password string) (*models.User, error) {
	user := &models.User{}

	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1`

	err := db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, database.ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}
