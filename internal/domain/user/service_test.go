package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copyUser := *u
	r.users[u.ID] = &copyUser
	return nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copyUser := *u
			return &copyUser, nil
		}
	}
	return nil, errors.New("user not found")
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	copyUser := *u
	return &copyUser, nil
}

func (r *memoryUserRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]User, 0, len(r.users))
	for _, u := range r.users {
		res = append(res, *u)
	}
	return res, nil
}

func (r *memoryUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Role = role
	return nil
}

func (r *memoryUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.IsActive = false
	return nil
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if u.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if u.Role != "user" || !u.IsActive {
		t.Fatalf("unexpected defaults: %+v", u)
	}
	if u.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "pass1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob@example.com", "pass2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRequiresEmailAndPassword(t *testing.T) {
	svc := NewService(newMemoryUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pass"); err == nil {
		t.Fatalf("empty email accepted")
	}
	if _, err := svc.Register(ctx, "carol@example.com", ""); err == nil {
		t.Fatalf("empty password accepted")
	}
}

func TestLogin(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "dave@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := svc.Login(ctx, "dave@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != registered.ID {
		t.Fatalf("logged in as wrong user")
	}

	if _, err := svc.Login(ctx, "dave@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "eve@example.com", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Deactivate(ctx, u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Login(ctx, "eve@example.com", "password"); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "frank@example.com", "password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.UpdateRole(ctx, u.ID, "superuser"); err == nil {
		t.Fatalf("unknown role accepted")
	}
	if err := svc.UpdateRole(ctx, u.ID, "admin"); err != nil {
		t.Fatalf("update role: %v", err)
	}

	got, err := svc.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Role != "admin" {
		t.Fatalf("role not updated, got %q", got.Role)
	}
}
