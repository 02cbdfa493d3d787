package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"purchase-desk/internal/model"
	"purchase-desk/internal/utils"
)

const userSelectByUsername = "SELECT id, username, password, first_name, role FROM users WHERE username=? LIMIT 1"

func TestFindByCredentials(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	mock.ExpectQuery(userSelectByUsername).
		WithArgs("ivan").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "first_name", "role"}).
			AddRow(42, "ivan", hash, "Иван", model.RoleUser))

	u, err := repo.FindByCredentials(context.Background(), "ivan", "secret123")
	if err != nil {
		t.Fatalf("find by credentials: %v", err)
	}
	if u.ID != 42 || u.Role != model.RoleUser {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash leaked out of the repository")
	}
	if u.DisplayName() != "Иван" {
		t.Fatalf("display name: got %q", u.DisplayName())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindByCredentialsWrongPassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	mock.ExpectQuery(userSelectByUsername).
		WithArgs("ivan").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "first_name", "role"}).
			AddRow(42, "ivan", hash, nil, model.RoleUser))

	if _, err := repo.FindByCredentials(context.Background(), "ivan", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong password, got %v", err)
	}
}

func TestFindByCredentialsUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(userSelectByUsername).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "first_name", "role"}))

	if _, err := repo.FindByCredentials(context.Background(), "nobody", "secret123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestListNeverSelectsPassword(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id, username, first_name, role FROM users ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "first_name", "role"}).
			AddRow(1, "admin", nil, model.RoleAdmin).
			AddRow(42, "ivan", "Иван", model.RoleUser))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("listing carries a password hash for %q", u.Username)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
