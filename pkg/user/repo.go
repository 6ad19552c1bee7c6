package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"

	"messenger/pkg/common"
)

const Schema = `CREATE TABLE IF NOT EXISTS users (
	id                SERIAL PRIMARY KEY,
	full_name         TEXT NOT NULL,
	email             TEXT NOT NULL UNIQUE,
	password          BYTEA NOT NULL,
	profile_pic       TEXT,
	bio               TEXT,
	native_language   TEXT,
	learning_language TEXT,
	location          TEXT,
	interests         TEXT[] NOT NULL DEFAULT '{}'
)`

const profileColumns = `id, full_name, email, COALESCE(profile_pic, ''), COALESCE(bio, ''),
	COALESCE(native_language, ''), COALESCE(learning_language, ''), COALESCE(location, ''), interests`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("user/repo: failed creating schema: %w", err)
	}
	return nil
}

// Add is used by the seeder only; accounts are created by the auth service.
func (r *UserRepo) Add(ctx context.Context, u *User) (string, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users(full_name, email, password, profile_pic, bio, native_language, learning_language, location, interests)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		u.FullName, u.Email, u.Password, u.ProfilePic, u.Bio, u.NativeLanguage, u.LearningLanguage, u.Location, pq.Array(u.Interests))

	var id string
	if err := row.Scan(&id); err != nil {
		return ``, fmt.Errorf("user/repo: user wasn't added: %w", err)
	}
	return id, nil
}

func (r *UserRepo) GetById(ctx context.Context, uid string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM users WHERE id::text = $1", uid)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user/repo: user %s: %w", uid, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("user/repo: could not scan row: %w", err)
	}
	return u, nil
}

// GetByIds resolves many users with one query. Unknown ids are skipped.
func (r *UserRepo) GetByIds(ctx context.Context, ids []string) (map[string]*User, error) {
	users := make(map[string]*User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+profileColumns+" FROM users WHERE id::text = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("user/repo: failed querying users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user/repo: could not scan row: %w", err)
		}
		users[u.Id] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user/repo: rows iteration failed: %w", err)
	}
	return users, nil
}

// Search matches full name or email by case-insensitive substring and applies
// the exact-match and interest-overlap filters that are set.
func (r *UserRepo) Search(ctx context.Context, f Filter) ([]*User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ExcludeId != "" {
		conds = append(conds, "id::text <> "+arg(f.ExcludeId))
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		p := arg("%" + escapeLike(kw) + "%")
		conds = append(conds, "(full_name ILIKE "+p+" OR email ILIKE "+p+")")
	}
	if f.Location != "" {
		conds = append(conds, "location = "+arg(f.Location))
	}
	if f.NativeLanguage != "" {
		conds = append(conds, "native_language = "+arg(f.NativeLanguage))
	}
	if len(f.Interests) > 0 {
		conds = append(conds, "interests && "+arg(pq.Array(f.Interests)))
	}

	query := "SELECT " + profileColumns + " FROM users"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("user/repo: failed executing search query: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user/repo: could not scan row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user/repo: rows iteration failed: %w", err)
	}
	return users, nil
}

// Returns all users. Used only for seeding the DB.
func (r *UserRepo) GetAll(ctx context.Context) ([]*User, error) {
	return r.Search(ctx, Filter{})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*User, error) {
	u := new(User)
	interests := pq.StringArray{}
	err := s.Scan(&u.Id, &u.FullName, &u.Email, &u.ProfilePic, &u.Bio,
		&u.NativeLanguage, &u.LearningLanguage, &u.Location, &interests)
	if err != nil {
		return nil, err
	}
	u.Interests = []string(interests)
	if u.Interests == nil {
		u.Interests = []string{}
	}
	return u, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
