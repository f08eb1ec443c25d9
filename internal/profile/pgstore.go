package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"startosedge/internal/db"

	"github.com/lib/pq"
)

// PGStore is the canonical Store backed by Postgres. Writes rely on the
// per-row atomicity of the database; there is no optimistic locking,
// concurrent patches are last-write-wins per field set.
type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

const profileColumns = `
	user_id, name, email, phone, college, degree, graduation_year,
	bio, skills, github, linkedin, portfolio, role, enrolled_programs,
	created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var (
		p    Profile
		role string
	)
	err := row.Scan(
		&p.UserID, &p.Name, &p.Email, &p.Phone, &p.College, &p.Degree,
		&p.GraduationYear, &p.Bio, pq.Array(&p.Skills), &p.Github,
		&p.Linkedin, &p.Portfolio, &role, pq.Array(&p.Enrolled),
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Role = ParseRole(role)
	return &p, nil
}

func (s *PGStore) Get(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
	`, userID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile: get: %w", err)
	}
	return p, nil
}

// Set upserts the patched fields. A missing record is created on the
// fly (lazy creation on first authenticated write), untouched fields
// keep their column defaults.
func (s *PGStore) Set(ctx context.Context, userID string, patch Patch) error {
	cols := []string{"user_id"}
	args := []any{userID}

	add := func(col string, val any) {
		cols = append(cols, col)
		args = append(args, val)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.College != nil {
		add("college", *patch.College)
	}
	if patch.Degree != nil {
		add("degree", *patch.Degree)
	}
	if patch.GraduationYear != nil {
		add("graduation_year", *patch.GraduationYear)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.Skills != nil {
		add("skills", pq.Array(*patch.Skills))
	}
	if patch.Github != nil {
		add("github", *patch.Github)
	}
	if patch.Linkedin != nil {
		add("linkedin", *patch.Linkedin)
	}
	if patch.Portfolio != nil {
		add("portfolio", *patch.Portfolio)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	if patch.Enrolled != nil {
		add("enrolled_programs", pq.Array(*patch.Enrolled))
	}

	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "user_id" {
			updates = append(updates, col+" = EXCLUDED."+col)
		}
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf(`
		INSERT INTO profiles (%s)
		VALUES (%s)
		ON CONFLICT (user_id) DO UPDATE SET %s
	`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("profile: set: %w", err)
	}
	return nil
}

// AddEnrollment adds a course id to the enrollment set. Granting twice
// is a no-op; a missing profile is ErrNotFound.
func (s *PGStore) AddEnrollment(ctx context.Context, userID, courseID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET enrolled_programs = array_append(enrolled_programs, $2),
		    updated_at = NOW()
		WHERE user_id = $1
		  AND NOT ($2 = ANY(enrolled_programs))
	`, userID, courseID)
	if err != nil {
		return fmt.Errorf("profile: add enrollment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("profile: add enrollment: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Zero rows: either already enrolled (fine) or no such profile.
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("profile: add enrollment: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, q Query) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	args := []any{}
	if q.Role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(q.Role))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("profile: list scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM profiles
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("profile: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("profile: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
