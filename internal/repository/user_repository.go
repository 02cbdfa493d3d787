package repository

import (
	"context"
	"database/sql"
	"strings"

	"purchase-desk/internal/model"
	"purchase-desk/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// FindByCredentials returns the user matching the username/password pair.
// Passwords are stored as bcrypt hashes; a username miss and a password
// mismatch are indistinguishable to the caller, both yield ErrNotFound.
func (r *UserRepo) FindByCredentials(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	var (
		u         model.User
		firstName sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, password, first_name, role FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &firstName, &u.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrNotFound
	}
	u.FirstName = firstName.String
	u.PasswordHash = "" // never hand the hash upward
	return &u, nil
}

// GetByID fetches a user by id. Used by the token refresh flow.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var (
		u         model.User
		firstName sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, username, first_name, role FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &firstName, &u.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.FirstName = firstName.String
	return &u, nil
}

// List returns every user for the admin user-database view. The password
// column is never part of the select list.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, username, first_name, role FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var (
			u         model.User
			firstName sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &firstName, &u.Role); err != nil {
			return nil, err
		}
		u.FirstName = firstName.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
