package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Contact is a persisted contact owned by a user. Uniqueness is by
// (user_id, email) when an email is present; email is stored normalized.
type Contact struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	Name      string     `db:"name"`
	Email     *string    `db:"email"`
	Company   *string    `db:"company"`
	Phone     *string    `db:"phone"`
	Position  *string    `db:"position"`
	Notes     *string    `db:"notes"`
	Pronoun   *string    `db:"pronoun"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// CreateContactParams represents parameters for creating a contact
type CreateContactParams struct {
	UserID   uuid.UUID
	Name     string
	Email    *string
	Company  *string
	Phone    *string
	Position *string
	Notes    *string
	Pronoun  *string
}

const sqlGetContactByEmail = `
SELECT id, user_id, name, email, company, phone, position, notes, pronoun, created_at, updated_at, deleted_at
FROM contacts
WHERE user_id = $1 AND email = $2 AND deleted_at IS NULL
`

// GetContactByEmail looks up a contact by owner and normalized email
func (s *Store) GetContactByEmail(ctx context.Context, userID uuid.UUID, email string) (Contact, error) {
	var contact Contact
	err := s.db.GetContext(ctx, &contact, sqlGetContactByEmail, userID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get contact by email", err)
		return Contact{}, fmt.Errorf("failed to get contact by email: %w", err)
	}
	return contact, nil
}

const sqlUpsertContact = `
INSERT INTO contacts (user_id, name, email, company, phone, position, notes, pronoun)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, email) WHERE email IS NOT NULL
DO UPDATE SET
    name = COALESCE(NULLIF(EXCLUDED.name, ''), contacts.name),
    company = COALESCE(EXCLUDED.company, contacts.company),
    phone = COALESCE(EXCLUDED.phone, contacts.phone),
    position = COALESCE(EXCLUDED.position, contacts.position),
    updated_at = now()
RETURNING id, user_id, name, email, company, phone, position, notes, pronoun, created_at, updated_at, deleted_at
`

// UpsertContact creates a contact, or refreshes the existing row when the
// (user_id, email) pair already exists. Retried imports for the same lead
// therefore never create a second contact.
func (s *Store) UpsertContact(ctx context.Context, params CreateContactParams) (Contact, error) {
	var contact Contact
	err := s.db.GetContext(ctx, &contact, sqlUpsertContact,
		params.UserID,
		params.Name,
		params.Email,
		params.Company,
		params.Phone,
		params.Position,
		params.Notes,
		params.Pronoun,
	)
	if err != nil {
		s.logger.Error(ctx, "failed to upsert contact", err)
		return Contact{}, fmt.Errorf("failed to upsert contact: %w", err)
	}
	return contact, nil
}

const sqlGetContactByID = `
SELECT id, user_id, name, email, company, phone, position, notes, pronoun, created_at, updated_at, deleted_at
FROM contacts
WHERE id = $1 AND deleted_at IS NULL
`

// GetContactByID retrieves a contact by ID
func (s *Store) GetContactByID(ctx context.Context, contactID uuid.UUID) (Contact, error) {
	var contact Contact
	err := s.db.GetContext(ctx, &contact, sqlGetContactByID, contactID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get contact by id", err)
		return Contact{}, fmt.Errorf("failed to get contact by id: %w", err)
	}
	return contact, nil
}
