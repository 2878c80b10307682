package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

const registrationColumns = `id, event_id, student_id, email, name, team_name, description, token, created_at`

const insertRegistrationSQL = `INSERT INTO registrations (` + registrationColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Find returns the registration matching key within an event, or
// repository.ErrNotFound.
func (r *RegistrationRepository) Find(ctx context.Context, eventID string, key model.Key) (*model.Registration, error) {
	column := "email"
	if key.Kind == model.KeyTeamName {
		column = "team_name"
	}
	reg, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = ? AND `+column+` = ?
		 ORDER BY token ASC LIMIT 1`,
		eventID, key.Value,
	))
	if err != nil {
		return nil, mapError("find registration by "+column, err)
	}
	return reg, nil
}

// MaxToken returns the highest token issued for an event, 0 when none.
func (r *RegistrationRepository) MaxToken(ctx context.Context, eventID string) (int, error) {
	var maxToken int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(token), 0) FROM registrations WHERE event_id = ?`, eventID,
	).Scan(&maxToken)
	if err != nil {
		return 0, fmt.Errorf("max token: %w", err)
	}
	return maxToken, nil
}

// Insert stores a registration with its token already assigned.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *model.Registration) error {
	if _, err := r.db.ExecContext(ctx, insertRegistrationSQL, registrationArgs(reg)...); err != nil {
		return mapError("insert registration", err)
	}
	return nil
}

// InsertNext allocates the event's next token and inserts reg with it in a
// single transaction, returning the token. SQLite takes the database write
// lock at the UPDATE, so allocations are serialised. A uniqueness violation
// rolls the increment back and is reported as repository.ErrDuplicate.
func (r *RegistrationRepository) InsertNext(ctx context.Context, reg *model.Registration) (token int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			reg.Token = 0
		}
	}()

	err = tx.QueryRowContext(ctx,
		`UPDATE events
		 SET last_token = MAX(
		     last_token,
		     (SELECT COALESCE(MAX(token), 0) FROM registrations WHERE event_id = ?)
		 ) + 1
		 WHERE id = ?
		 RETURNING last_token`,
		reg.EventID, reg.EventID,
	).Scan(&token)
	if err != nil {
		return 0, mapError("allocate token", err)
	}

	reg.Token = token
	if _, err = tx.ExecContext(ctx, insertRegistrationSQL, registrationArgs(reg)...); err != nil {
		return 0, mapError("insert registration", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return token, nil
}

// ListByEvent returns all registrations for an event ordered by token.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = ?
		 ORDER BY token ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func registrationArgs(reg *model.Registration) []any {
	return []any{
		reg.ID, reg.EventID, nullString(reg.StudentID), reg.Email, reg.Name,
		nullString(reg.TeamName), reg.Description, reg.Token, toMillis(reg.CreatedAt),
	}
}

func scanRegistration(row rowScanner) (*model.Registration, error) {
	var (
		reg                 model.Registration
		studentID, teamName sql.NullString
		createdAt           int64
	)
	if err := row.Scan(&reg.ID, &reg.EventID, &studentID, &reg.Email, &reg.Name,
		&teamName, &reg.Description, &reg.Token, &createdAt); err != nil {
		return nil, err
	}
	reg.StudentID = studentID.String
	reg.TeamName = teamName.String
	reg.CreatedAt = fromMillis(createdAt)
	return &reg, nil
}
