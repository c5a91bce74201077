package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Course is one catalog entry.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Duration    string `json:"duration"`
}

// Progress tracks a user's position in a course.
type Progress struct {
	UserID             string    `json:"user_id"`
	CourseID           string    `json:"course_id"`
	ProgressPercentage int       `json:"progress_percentage"`
	CurrentModule      string    `json:"current_module"`
	CompletedModules   []string  `json:"completed_modules"`
	LastAccessedAt     time.Time `json:"last_accessed_at"`
}

// ListCourses returns the full catalog ordered by title.
func (s *Store) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, level, duration FROM courses ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Level, &c.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}
	return courses, nil
}

// CreateCourse inserts a catalog entry and returns it with a generated ID.
func (s *Store) CreateCourse(ctx context.Context, c Course) (*Course, error) {
	if c.Title == "" {
		return nil, fmt.Errorf("course title is required")
	}
	c.ID = uuid.NewString()
	if c.Level == "" {
		c.Level = "beginner"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, level, duration) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.Level, c.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &c, nil
}

// GetCourse loads one course. Returns ErrNotFound when absent.
func (s *Store) GetCourse(ctx context.Context, id string) (*Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, level, duration FROM courses WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.Level, &c.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query course: %w", err)
	}
	return &c, nil
}

// UpsertProgress writes a user's progress for one course.
func (s *Store) UpsertProgress(ctx context.Context, p Progress) (*Progress, error) {
	if p.UserID == "" || p.CourseID == "" {
		return nil, fmt.Errorf("progress requires user and course IDs")
	}
	if p.ProgressPercentage < 0 || p.ProgressPercentage > 100 {
		return nil, fmt.Errorf("progress percentage must be between 0 and 100")
	}
	p.LastAccessedAt = time.Now().UTC()

	completed, err := json.Marshal(p.CompletedModules)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completed modules: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, course_id, progress_percentage, current_module, completed_modules, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, course_id) DO UPDATE SET
			progress_percentage = excluded.progress_percentage,
			current_module = excluded.current_module,
			completed_modules = excluded.completed_modules,
			last_accessed_at = excluded.last_accessed_at`,
		p.UserID, p.CourseID, p.ProgressPercentage, p.CurrentModule, string(completed), p.LastAccessedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}
	return &p, nil
}

// GetProgress loads a user's progress for one course. Returns ErrNotFound
// when the user never started it.
func (s *Store) GetProgress(ctx context.Context, userID, courseID string) (*Progress, error) {
	var (
		p         Progress
		completed string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, course_id, progress_percentage, current_module, completed_modules, last_accessed_at
		FROM user_progress WHERE user_id = ? AND course_id = ?`, userID, courseID).
		Scan(&p.UserID, &p.CourseID, &p.ProgressPercentage, &p.CurrentModule, &completed, &p.LastAccessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	if err := json.Unmarshal([]byte(completed), &p.CompletedModules); err != nil {
		return nil, fmt.Errorf("failed to decode completed modules: %w", err)
	}
	return &p, nil
}

// ListProgress returns all course progress for a user.
func (s *Store) ListProgress(ctx context.Context, userID string) ([]Progress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, course_id, progress_percentage, current_module, completed_modules, last_accessed_at
		FROM user_progress WHERE user_id = ? ORDER BY last_accessed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress list: %w", err)
	}
	defer rows.Close()

	var list []Progress
	for rows.Next() {
		var (
			p         Progress
			completed string
		)
		if err := rows.Scan(&p.UserID, &p.CourseID, &p.ProgressPercentage, &p.CurrentModule, &completed, &p.LastAccessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		if err := json.Unmarshal([]byte(completed), &p.CompletedModules); err != nil {
			return nil, fmt.Errorf("failed to decode completed modules: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress: %w", err)
	}
	return list, nil
}
