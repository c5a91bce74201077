package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRecentTurns is how many prior turns of a conversation are fed
// back into the model.
const DefaultRecentTurns = 5

// Turn is one persisted query/response exchange.
type Turn struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	ConversationID string          `json:"conversation_id"`
	Query          string          `json:"query"`
	Response       string          `json:"response"`
	Context        json.RawMessage `json:"context"`
	CreatedAt      time.Time       `json:"created_at"`
	Feedback       *Feedback       `json:"feedback,omitempty"`
}

// Feedback is the optional user rating attached to a turn.
type Feedback struct {
	Helpful     bool      `json:"helpful"`
	Comments    string    `json:"comments,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SaveTurn persists a turn and returns it with a generated ID. A nil
// context is stored as an empty JSON object.
func (s *Store) SaveTurn(ctx context.Context, t *Turn) (*Turn, error) {
	if t.UserID == "" || t.ConversationID == "" {
		return nil, fmt.Errorf("turn requires user and conversation IDs")
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	if len(t.Context) == 0 {
		t.Context = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, conversation_id, query, response, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.ConversationID, t.Query, t.Response, string(t.Context), t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}

	s.logger.Debug("Turn saved",
		zap.String("session_id", t.ID),
		zap.String("conversation_id", t.ConversationID),
	)
	return t, nil
}

// RecentTurns returns up to limit turns of one conversation in ascending
// timestamp order.
func (s *Store) RecentTurns(ctx context.Context, userID, conversationID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = DefaultRecentTurns
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, conversation_id, query, response, context, created_at,
			feedback_helpful, feedback_comments, feedback_rating, feedback_at
		FROM chat_sessions
		WHERE user_id = ? AND conversation_id = ?
		ORDER BY created_at ASC
		LIMIT ?`, userID, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}
	defer rows.Close()

	return scanTurns(rows)
}

// History returns the user's turns newest first, with the total count for
// pagination.
func (s *Store) History(ctx context.Context, userID string, limit, offset int) ([]Turn, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_sessions WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, conversation_id, query, response, context, created_at,
			feedback_helpful, feedback_comments, feedback_rating, feedback_at
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, 0, err
	}
	return turns, total, nil
}

// GetTurn loads one turn owned by the user. Returns ErrNotFound when the
// turn does not exist or belongs to someone else.
func (s *Store) GetTurn(ctx context.Context, userID, turnID string) (*Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, conversation_id, query, response, context, created_at,
			feedback_helpful, feedback_comments, feedback_rating, feedback_at
		FROM chat_sessions
		WHERE id = ? AND user_id = ?`, turnID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turn: %w", err)
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, ErrNotFound
	}
	return &turns[0], nil
}

// DeleteTurn removes one turn owned by the user.
func (s *Store) DeleteTurn(ctx context.Context, userID, turnID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`, turnID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete turn: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	s.logger.Info("Turn deleted", zap.String("session_id", turnID))
	return nil
}

// SetFeedback records feedback on a turn owned by the user.
func (s *Store) SetFeedback(ctx context.Context, userID, turnID string, fb Feedback) error {
	fb.SubmittedAt = time.Now().UTC()

	var rating any
	if fb.Rating > 0 {
		rating = fb.Rating
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE chat_sessions
		SET feedback_helpful = ?, feedback_comments = ?, feedback_rating = ?, feedback_at = ?
		WHERE id = ? AND user_id = ?`,
		fb.Helpful, fb.Comments, rating, fb.SubmittedAt, turnID, userID)
	if err != nil {
		return fmt.Errorf("failed to set feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	s.logger.Info("Feedback received",
		zap.String("session_id", turnID),
		zap.Bool("helpful", fb.Helpful),
		zap.Int("rating", fb.Rating),
	)
	return nil
}

func scanTurns(rows *sql.Rows) ([]Turn, error) {
	var turns []Turn
	for rows.Next() {
		var (
			t          Turn
			contextStr string
			helpful    sql.NullBool
			comments   sql.NullString
			rating     sql.NullInt64
			feedbackAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.ConversationID, &t.Query, &t.Response,
			&contextStr, &t.CreatedAt, &helpful, &comments, &rating, &feedbackAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Context = json.RawMessage(contextStr)
		if feedbackAt.Valid {
			t.Feedback = &Feedback{
				Helpful:     helpful.Bool,
				Comments:    comments.String,
				Rating:      int(rating.Int64),
				SubmittedAt: feedbackAt.Time,
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}
