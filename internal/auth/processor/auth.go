package processor

import (
	"context"
	"errors"

	"lead-server/internal/observability"
	"lead-server/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrEmailDoesNotExist  = errors.New("email does not exist")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthProcessor struct {
	store     AuthStore
	jwtSecret string
	logger    *observability.Logger
}

func New(store AuthStore, jwtSecret string, logger *observability.Logger) AuthProcessor {
	return AuthProcessor{
		store:     store,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

type SignedUpUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

func (p *AuthProcessor) Signup(
	ctx context.Context, firstName string, lastName string, email string, password string) (SignedUpUser, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "email", Value: email})
	exists, err := p.store.CheckIfEmailExists(ctx, email)
	if err != nil {
		p.logger.Error(ctx, "failed to check if email exists", err)
		return SignedUpUser{}, err
	}
	if exists {
		return SignedUpUser{}, ErrEmailAlreadyExists
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		p.logger.Error(ctx, "failed to hash password", err)
		return SignedUpUser{}, err
	}
	user, err := p.store.CreateUser(ctx, email, firstName, lastName, string(hashedPassword))
	if err != nil {
		p.logger.Error(ctx, "failed to create user", err)
		return SignedUpUser{}, err
	}
	return SignedUpUser{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}

func (p *AuthProcessor) Login(ctx context.Context, email string, password string) (string, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "email", Value: email})
	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrEmailDoesNotExist
		}
		p.logger.Error(ctx, "failed to get user by email", err)
		return "", err
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password))
	if err != nil {
		p.logger.Error(ctx, "failed to compare hashed password", err)
		return "", ErrIncorrectPassword
	}
	token, err := p.generateJWTToken(ctx, user)
	if err != nil {
		p.logger.Error(ctx, "failed to generate jwt token", err)
		return "", err
	}
	return token, nil
}

func (p *AuthProcessor) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, ErrUserNotFound
		}
		p.logger.Error(ctx, "failed to get user by id", err)
		return User{}, err
	}
	return User{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}
