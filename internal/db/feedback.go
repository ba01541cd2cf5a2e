package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FeedbackRecord is one stored feedback submission. The row is written
// before any forwarding attempt so submissions survive tracker outages.
type FeedbackRecord struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Email     string    `json:"email,omitempty"`
	Page      string    `json:"page,omitempty"`
	IssueURL  *string   `json:"issue_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveFeedback stores a feedback submission and returns its ID.
func (db *DB) SaveFeedback(ctx context.Context, f FeedbackRecord) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO feedback (category, message, email, page)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		f.Category, f.Message, f.Email, f.Page,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	return id, nil
}

// MarkFeedbackForwarded records the tracker issue a submission became.
func (db *DB) MarkFeedbackForwarded(ctx context.Context, id uuid.UUID, issueURL string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE feedback SET issue_url = $2 WHERE id = $1`,
		id, issueURL,
	)
	if err != nil {
		return fmt.Errorf("failed to mark feedback forwarded: %w", err)
	}
	return nil
}

// GetFeedback retrieves one submission. Returns (nil, nil) when not found.
func (db *DB) GetFeedback(ctx context.Context, id uuid.UUID) (*FeedbackRecord, error) {
	var f FeedbackRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, category, message, email, page, issue_url, created_at
		 FROM feedback WHERE id = $1`, id,
	).Scan(&f.ID, &f.Category, &f.Message, &f.Email, &f.Page, &f.IssueURL, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &f, nil
}

// ListFeedback retrieves recent submissions, newest first.
func (db *DB) ListFeedback(ctx context.Context, limit int) ([]FeedbackRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, category, message, email, page, issue_url, created_at
		 FROM feedback ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var records []FeedbackRecord
	for rows.Next() {
		var f FeedbackRecord
		if err := rows.Scan(&f.ID, &f.Category, &f.Message, &f.Email, &f.Page, &f.IssueURL, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		records = append(records, f)
	}
	return records, nil
}
