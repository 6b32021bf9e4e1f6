package users

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the goose migrations for the users table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations that goose reads.
const MigrationsDir = "migrations"

const (
	uniqueViolation    = "23505"
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

const userColumns = `id, username, email, name, role, password, created_at, updated_at`

// DBTX is the subset of *sql.DB the store needs; *sql.Tx satisfies it too.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore returns a store over db, typically db.SQL(pool).
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *PostgresStore) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, excludeID)
}

func (s *PostgresStore) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, excludeID)
}

func (s *PostgresStore) Insert(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, nullable(u.Name), string(u.Role), u.Password, u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = $2, email = $3, name = $4, role = $5, password = $6, updated_at = $7 WHERE id = $1`,
		u.ID, u.Username, u.Email, nullable(u.Name), string(u.Role), u.Password, u.UpdatedAt,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg string) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *PostgresStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&ok)
	return ok, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var (
		u    User
		name sql.NullString
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &name, &role, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Role = Role(role)
	return &u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapConstraint turns unique violations into the store's duplicate errors.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return ErrDuplicateUsername
	case emailConstraint:
		return ErrDuplicateEmail
	}
	return err
}

var _ Store = (*PostgresStore)(nil)
