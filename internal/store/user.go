package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a registered account that owns contacts, campaigns, and a quota record.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const sqlCheckIfEmailExists = `
SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
`

func (s *Store) CheckIfEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, sqlCheckIfEmailExists, email)
	if err != nil {
		s.logger.Error(ctx, "failed to check if email exists", err)
		return false, fmt.Errorf("failed to check if email exists: %w", err)
	}
	return exists, nil
}

const sqlCreateUser = `
INSERT INTO users (email, first_name, last_name, hashed_password)
VALUES ($1, $2, $3, $4)
RETURNING id, email, first_name, last_name, hashed_password, created_at, updated_at
`

func (s *Store) CreateUser(ctx context.Context, email, firstName, lastName, hashedPassword string) (User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, sqlCreateUser, email, firstName, lastName, hashedPassword)
	if err != nil {
		s.logger.Error(ctx, "failed to create user", err)
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

const sqlGetUserByEmail = `
SELECT id, email, first_name, last_name, hashed_password, created_at, updated_at
FROM users WHERE email = $1
`

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, sqlGetUserByEmail, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get user by email", err)
		return User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

const sqlGetUserByID = `
SELECT id, email, first_name, last_name, hashed_password, created_at, updated_at
FROM users WHERE id = $1
`

func (s *Store) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, sqlGetUserByID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get user by id", err)
		return User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}
