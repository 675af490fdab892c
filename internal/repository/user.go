package repository

import (
	"context"
	"fmt"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `
	id, name, email, password_hash, location, bio, skills_offered, skills_wanted,
	availability, is_public, is_banned, role, profile_photo, push_token,
	average_rating, total_ratings, total_swaps, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Location, &user.Bio,
		&user.SkillsOffered, &user.SkillsWanted, &user.Availability, &user.IsPublic,
		&user.IsBanned, &user.Role, &user.ProfilePhoto, &user.PushToken,
		&user.AverageRating, &user.TotalRatings, &user.TotalSwaps, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) queryOne(ctx context.Context, what, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return user, nil
}

func (r *UserRepository) queryMany(ctx context.Context, what, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, location, bio, skills_offered,
			skills_wanted, availability, is_public, is_banned, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Location, user.Bio,
		nonNil(user.SkillsOffered), nonNil(user.SkillsWanted), user.Availability,
		user.IsPublic, user.IsBanned, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return apperr.Conflict("User already exists with this email")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.queryOne(ctx, "get user", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.queryOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByIDs retrieves the users with the given IDs keyed by ID. Unknown IDs are skipped.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := r.queryMany(ctx, "get users by ids", `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateProfile overwrites the self-editable fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $2, email = $3, location = $4, bio = $5, skills_offered = $6,
			skills_wanted = $7, availability = $8, is_public = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query,
		id, update.Name, update.Email, update.Location, update.Bio,
		nonNil(update.SkillsOffered), nonNil(update.SkillsWanted), update.Availability, update.IsPublic,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		if isUniqueViolation(err, "users_email_key") {
			return nil, apperr.Conflict("Email already taken")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// SetBanned sets or clears the banned flag
func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool) (*models.User, error) {
	return r.queryOne(ctx, "update banned flag",
		`UPDATE users SET is_banned = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, id, banned)
}

// SetProfilePhoto stores the URL of the user's profile photo
func (r *UserRepository) SetProfilePhoto(ctx context.Context, id, url string) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET profile_photo = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("failed to update profile photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

// SetPushToken updates the push token for a user
func (r *UserRepository) SetPushToken(ctx context.Context, id string, token *string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET push_token = $2 WHERE id = $1`, id, token)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// applyRating recomputes the running average in a single statement so that
// concurrent ratings for the same user cannot lose an update
func applyRating(ctx context.Context, db queryRower, id string, rating int) (*models.User, error) {
	query := `
		UPDATE users
		SET average_rating = (average_rating * total_ratings + $2::double precision) / (total_ratings + 1),
			total_ratings = total_ratings + 1,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(db.QueryRow(ctx, query, id, float64(rating)))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return nil, fmt.Errorf("failed to apply rating: %w", err)
	}
	return user, nil
}

// ListPublic lists visible, non-banned users other than excludeID,
// optionally only those offering skill
func (r *UserRepository) ListPublic(ctx context.Context, excludeID, skill string) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1 AND is_public AND NOT is_banned
			AND ($2::text = '' OR EXISTS (
				SELECT 1 FROM unnest(skills_offered) s WHERE s ILIKE '%' || $3 || '%' ESCAPE '\'
			))
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, "list public users", query, excludeID, skill, escapeLike(skill))
}

// List lists every user, newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.queryMany(ctx, "list users", `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

// Count returns the number of users and of non-banned users
func (r *UserRepository) Count(ctx context.Context) (int, int, error) {
	var total, active int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_banned) FROM users`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, active, nil
}
