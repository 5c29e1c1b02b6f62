package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
)

// CreateUser inserts a new user. The UNIQUE constraint on email is a
// backstop; the auth service checks GetUserByEmail first so callers see a
// clean Conflict instead of a driver error in the normal path.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password, username, first_name, last_name, phone, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Password,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Address,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id, apperror.NotFound("user", id))
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email,
		apperror.NotFoundMsg("user not found with email "+email))
}

func (db *DB) getUser(ctx context.Context, where, arg string, missing error) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, password, username, first_name, last_name, phone, address, created_at
		 FROM users `+where, arg,
	).Scan(
		&u.ID, &u.Email, &u.Password, &u.Username,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, missing
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}

// UpdateUser uses fetch-then-update: read the record, merge the non-nil
// fields in Go, write the whole row back. One code path for every partial
// update beats building SQL dynamically.
func (db *DB) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	u, err := db.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, username = ?, first_name = ?, last_name = ?, phone = ?, address = ?
		 WHERE id = ?`,
		u.Email, u.Username, u.FirstName, u.LastName, u.Phone, u.Address, u.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}
	return u, nil
}
