package processor

import (
	"context"
	"errors"
	"testing"

	"lead-server/internal/observability"
	"lead-server/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type stubAuthStore struct {
	checkEmailFunc     func(ctx context.Context, email string) (bool, error)
	createUserFunc     func(ctx context.Context, email, firstName, lastName, hashedPassword string) (store.User, error)
	getUserByEmailFunc func(ctx context.Context, email string) (store.User, error)
	getUserByIDFunc    func(ctx context.Context, userID uuid.UUID) (store.User, error)
}

func (s *stubAuthStore) CheckIfEmailExists(ctx context.Context, email string) (bool, error) {
	return s.checkEmailFunc(ctx, email)
}

func (s *stubAuthStore) CreateUser(ctx context.Context, email, firstName, lastName, hashedPassword string) (store.User, error) {
	return s.createUserFunc(ctx, email, firstName, lastName, hashedPassword)
}

func (s *stubAuthStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return s.getUserByEmailFunc(ctx, email)
}

func (s *stubAuthStore) GetUserByID(ctx context.Context, userID uuid.UUID) (store.User, error) {
	return s.getUserByIDFunc(ctx, userID)
}

func TestSignup_Success(t *testing.T) {
	logger := observability.NewLogger()
	stub := &stubAuthStore{
		checkEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return false, nil
		},
		createUserFunc: func(ctx context.Context, email, firstName, lastName, hashedPassword string) (store.User, error) {
			if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte("password123")); err != nil {
				t.Errorf("stored password is not a bcrypt hash of the input: %v", err)
			}
			return store.User{
				ID:        uuid.New(),
				Email:     email,
				FirstName: firstName,
				LastName:  lastName,
			}, nil
		},
	}
	p := New(stub, "secret", logger)

	result, err := p.Signup(context.Background(), "John", "Doe", "test@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Email != "test@example.com" {
		t.Errorf("expected email test@example.com, got %s", result.Email)
	}
	if result.FirstName != "John" {
		t.Errorf("expected firstName John, got %s", result.FirstName)
	}
}

func TestSignup_EmailAlreadyExists(t *testing.T) {
	stub := &stubAuthStore{
		checkEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	p := New(stub, "secret", observability.NewLogger())

	_, err := p.Signup(context.Background(), "John", "Doe", "existing@example.com", "password123")
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	userID := uuid.New()
	stub := &stubAuthStore{
		getUserByEmailFunc: func(ctx context.Context, email string) (store.User, error) {
			return store.User{ID: userID, Email: email, HashedPassword: string(hashed)}, nil
		},
	}
	p := New(stub, "secret", observability.NewLogger())

	token, err := p.Login(context.Background(), "test@example.com", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}

	claims, err := p.ValidateJWTToken(context.Background(), token)
	if err != nil {
		t.Fatalf("token failed validation: %v", err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		t.Fatalf("failed to read subject: %v", err)
	}
	if sub != userID.String() {
		t.Errorf("subject = %s, want %s", sub, userID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	stub := &stubAuthStore{
		getUserByEmailFunc: func(ctx context.Context, email string) (store.User, error) {
			return store.User{ID: uuid.New(), Email: email, HashedPassword: string(hashed)}, nil
		},
	}
	p := New(stub, "secret", observability.NewLogger())

	_, err := p.Login(context.Background(), "test@example.com", "wrongpassword")
	if !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	stub := &stubAuthStore{
		getUserByEmailFunc: func(ctx context.Context, email string) (store.User, error) {
			return store.User{}, store.ErrNotFound
		},
	}
	p := New(stub, "secret", observability.NewLogger())

	_, err := p.Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, ErrEmailDoesNotExist) {
		t.Errorf("expected ErrEmailDoesNotExist, got %v", err)
	}
}

func TestValidateJWTToken_RejectsWrongSecret(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	stub := &stubAuthStore{
		getUserByEmailFunc: func(ctx context.Context, email string) (store.User, error) {
			return store.User{ID: uuid.New(), Email: email, HashedPassword: string(hashed)}, nil
		},
	}
	p := New(stub, "secret", observability.NewLogger())
	token, err := p.Login(context.Background(), "test@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	other := New(stub, "different-secret", observability.NewLogger())
	if _, err := other.ValidateJWTToken(context.Background(), token); !errors.Is(err, ErrParseJWTToken) {
		t.Errorf("expected ErrParseJWTToken, got %v", err)
	}
}
