package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Wizard steps a session moves through. Deleting a session is the "clear"
// half of the lifecycle; there is no soft state beyond this row.
const (
	StepCompany  = "company"
	StepPosition = "position"
	StepSalary   = "salary"
	StepResult   = "result"
)

// EvalSession is one user's in-progress salary evaluation: the company
// profile, the position being filled, and the proposed salary, at whatever
// wizard step they have reached.
type EvalSession struct {
	ID             uuid.UUID `json:"id"`
	CompanyName    string    `json:"company_name"`
	Employees      int       `json:"employees"`
	AnnualRevenue  int64     `json:"annual_revenue"`
	PositionTitle  string    `json:"position_title"`
	OccupationCode *string   `json:"occupation_code,omitempty"`
	ProposedSalary int64     `json:"proposed_salary"`
	Step           string    `json:"step"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const sessionColumns = `id, company_name, employees, annual_revenue, position_title,
	occupation_code, proposed_salary, step, created_at, updated_at`

func scanSession(row pgx.Row) (*EvalSession, error) {
	var s EvalSession
	err := row.Scan(&s.ID, &s.CompanyName, &s.Employees, &s.AnnualRevenue, &s.PositionTitle,
		&s.OccupationCode, &s.ProposedSalary, &s.Step, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &s, nil
}

// CreateSession starts a new evaluation session and returns it.
func (db *DB) CreateSession(ctx context.Context, s EvalSession) (*EvalSession, error) {
	step := s.Step
	if step == "" {
		step = StepCompany
	}
	return scanSession(db.pool.QueryRow(ctx,
		`INSERT INTO eval_sessions (company_name, employees, annual_revenue, position_title,
		    occupation_code, proposed_salary, step)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+sessionColumns,
		s.CompanyName, s.Employees, s.AnnualRevenue, s.PositionTitle,
		s.OccupationCode, s.ProposedSalary, step,
	))
}

// GetSession retrieves a session by ID. Returns (nil, nil) when not found.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*EvalSession, error) {
	return scanSession(db.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM eval_sessions WHERE id = $1`, id,
	))
}

// UpdateSession overwrites a session's form data and step. Returns
// (nil, nil) when the session does not exist.
func (db *DB) UpdateSession(ctx context.Context, s EvalSession) (*EvalSession, error) {
	return scanSession(db.pool.QueryRow(ctx,
		`UPDATE eval_sessions
		 SET company_name = $2, employees = $3, annual_revenue = $4, position_title = $5,
		     occupation_code = $6, proposed_salary = $7, step = $8, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		s.ID, s.CompanyName, s.Employees, s.AnnualRevenue, s.PositionTitle,
		s.OccupationCode, s.ProposedSalary, s.Step,
	))
}

// DeleteSession clears a session. Deleting a session that does not exist is
// an error so the API can return 404.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM eval_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// PurgeStaleSessions removes sessions not touched within maxAge and returns
// how many were removed. Sessions are wizard state, not records; abandoned
// ones accumulate without this.
func (db *DB) PurgeStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM eval_sessions WHERE updated_at < NOW() - $1::interval`,
		fmt.Sprintf("%d seconds", int64(maxAge.Seconds())),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
