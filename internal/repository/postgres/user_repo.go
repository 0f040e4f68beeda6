package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"pulse/internal/domain"
)

const userColumns = `id, email, name, password_hash, salt, photo_url, preferences,
		max_distance_km, push_token, created_at, updated_at`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func scanUser(row rowScanner) (*domain.UserProfile, error) {
	u := &domain.UserProfile{}
	var photoNull, tokenNull sql.NullString
	var distNull sql.NullFloat64
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Salt, &photoNull,
		pq.Array(&u.Preferences), &distNull, &tokenNull, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if photoNull.Valid {
		u.PhotoURL = &photoNull.String
	}
	if distNull.Valid {
		u.MaxDistanceKm = &distNull.Float64
	}
	if tokenNull.Valid {
		u.PushToken = &tokenNull.String
	}
	if u.Preferences == nil {
		u.Preferences = []string{}
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.UserProfile) error {
	query := `
		INSERT INTO users (email, name, password_hash, salt, photo_url, preferences,
			max_distance_km, push_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.Email, u.Name, u.PasswordHash, u.Salt, u.PhotoURL,
		pq.Array(u.Preferences), u.MaxDistanceKm, u.PushToken, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		// unique_violation on the email index
		if errors.As(err, &pqErr) && string(pqErr.Code) == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.UserProfile, error) {
	if len(ids) == 0 {
		return []*domain.UserProfile{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ANY($1) ORDER BY name ASC`, userColumns)
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.UserProfile, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, userID string, upd domain.UserProfileUpdate) (*domain.UserProfile, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.PhotoURL != nil {
		add("photo_url", *upd.PhotoURL)
	}
	if upd.Preferences != nil {
		add("preferences", pq.Array(*upd.Preferences))
	}
	if upd.MaxDistanceKm != nil {
		add("max_distance_km", *upd.MaxDistanceKm)
	}
	if upd.PushToken != nil {
		add("push_token", *upd.PushToken)
	}
	if n == 1 {
		return r.GetByID(ctx, userID)
	}
	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, userColumns)
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
