package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// --- Hand-written mocks ---

type memUserRepo struct {
	byEmail map[string]*User
	nextID  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*User), nextID: 1}
}

func (m *memUserRepo) Insert(_ context.Context, user *User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return ErrEmailTaken
	}
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.nextID++
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func newTestService(repo UserRepository) *Service {
	return NewService(repo, NewBcryptHasher(4), NewTokenIssuer("test-secret", time.Hour))
}

// --- Register ---

func TestRegister_HappyPath(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	view, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.ID == "" {
		t.Error("expected a store-assigned id")
	}
	if view.Name != "Ada Lovelace" {
		t.Errorf("got name %q", view.Name)
	}
	if view.Email != "ada@example.com" {
		t.Errorf("expected lowercased email, got %q", view.Email)
	}

	stored := repo.byEmail["ada@example.com"]
	if stored.PasswordHash == "hunter22" {
		t.Error("password must be stored hashed, never in plaintext")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newTestService(newMemUserRepo())

	tests := []RegisterInput{
		{Email: "a@b.com", Password: "pw"},
		{Name: "Ada", Password: "pw"},
		{Name: "Ada", Email: "a@b.com"},
		{},
		{Name: "  ", Email: "a@b.com", Password: "pw"},
	}
	for _, in := range tests {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Register(%+v): expected ErrMissingFields, got: %v", in, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemUserRepo())

	in := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on second registration, got: %v", err)
	}
}

// --- Login ---

func TestLogin_RoundTrip(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatal(err)
	}

	token, view, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if view.ID != registered.ID {
		t.Errorf("login returned user %q, registered %q", view.ID, registered.ID)
	}

	// The token's embedded identity matches the registered user.
	userID, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != registered.ID {
		t.Errorf("token carries identity %q, want %q", userID, registered.ID)
	}
}

func TestLogin_GenericInvalidCredentials(t *testing.T) {
	svc := newTestService(newMemUserRepo())

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "hunter22",
	}); err != nil {
		t.Fatal(err)
	}

	// Unknown email and wrong password must be indistinguishable.
	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "hunter22")
	_, _, wrongPwErr := svc.Login(context.Background(), "ada@example.com", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got: %v", unknownErr)
	}
	if !errors.Is(wrongPwErr, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got: %v", wrongPwErr)
	}
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Error("errors must not leak which part of the credentials was wrong")
	}
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := newTestService(newMemUserRepo())

	if _, _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}
