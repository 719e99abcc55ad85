package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/model"
	"github.com/lib/pq"
)

const userColumns = `
	user_id, first_name, last_name, email, barangay, skills,
	user_type, is_verified, created_at`

func (s *Storage) CreateUser(ctx context.Context, user *domain.User) error {
	row := model.UserFromDomain(user)
	query := `
		INSERT INTO users (
			user_id, first_name, last_name, email, barangay, skills,
			user_type, is_verified, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		row.UserID,
		row.FirstName,
		row.LastName,
		strings.ToLower(row.Email),
		row.Barangay,
		row.Skills,
		row.UserType,
		row.IsVerified,
		row.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to create user %s: %w", row.Email, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	var row model.User
	err := s.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := row.ToDomain()
	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, user_id DESC LIMIT $1`

	var rows []model.User
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].ToDomain())
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of update and returns the stored user
func (s *Storage) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	w := &whereBuilder{}
	var sets []string
	if update.Barangay != nil {
		sets = append(sets, "barangay = "+w.next(*update.Barangay))
	}
	if update.Skills != nil {
		sets = append(sets, "skills = "+w.next(pq.StringArray(update.Skills)))
	}
	if len(sets) == 0 {
		return s.GetUser(ctx, userID)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE user_id = ` + w.next(userID) +
		` RETURNING ` + userColumns

	var row model.User
	err := s.db.GetContext(ctx, &row, query, w.args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user := row.ToDomain()
	return &user, nil
}

// FindMatchingWorkers returns the ids of workers in barangay whose skills
// overlap skills, excluding excludeID.
func (s *Storage) FindMatchingWorkers(ctx context.Context, barangay string, skills []string, excludeID string) ([]string, error) {
	if len(skills) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT user_id
		FROM users
		WHERE barangay = $1
			AND skills && $2
			AND user_type IN ($3, $4)
			AND user_id <> $5
		ORDER BY user_id
	`

	var ids []string
	err := s.db.SelectContext(ctx, &ids, query,
		barangay,
		pq.StringArray(skills),
		string(domain.RoleEmployee),
		string(domain.RoleBoth),
		excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find matching workers: %w", err)
	}

	return ids, nil
}

// ListWorkers returns one page of verified workers, newest first, and the
// total number of matches
func (s *Storage) ListWorkers(ctx context.Context, filter domain.WorkerFilter) ([]domain.User, int, error) {
	w := &whereBuilder{}
	w.add("user_type IN ($%d, $%d)", string(domain.RoleEmployee), string(domain.RoleBoth))
	w.add("is_verified = $%d", true)

	if filter.Barangay != "" {
		w.add("barangay = $%d", filter.Barangay)
	}
	if len(filter.Skills) > 0 {
		w.add("skills && $%d", pq.StringArray(filter.Skills))
	}
	if filter.Search != "" {
		w.add(`(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d
			OR EXISTS (SELECT 1 FROM unnest(skills) AS skill WHERE skill ILIKE $%[1]d))`,
			"%"+escapeLike(filter.Search)+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users` + w.clause()
	if err := s.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count workers: %w", err)
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	query := `SELECT ` + userColumns + ` FROM users` + w.clause() +
		` ORDER BY created_at DESC, user_id DESC`
	query += " LIMIT " + w.next(filter.Limit)
	query += " OFFSET " + w.next((filter.Page-1)*filter.Limit)

	var rows []model.User
	if err := s.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list workers: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].ToDomain())
	}
	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
