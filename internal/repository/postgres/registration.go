package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationColumns = `id, event_id, student_id, email, name, team_name, description, token, created_at`

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Find returns the registration matching key within an event, or
// repository.ErrNotFound.
func (r *RegistrationRepository) Find(ctx context.Context, eventID string, key model.Key) (*model.Registration, error) {
	column := "email"
	if key.Kind == model.KeyTeamName {
		column = "team_name"
	}
	var reg model.Registration
	err := scanRegistration(r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = $1 AND `+column+` = $2
		 ORDER BY token ASC LIMIT 1`,
		eventID, key.Value,
	), &reg)
	if err != nil {
		return nil, mapError("find registration by "+column, err)
	}
	return &reg, nil
}

// MaxToken returns the highest token issued for an event, 0 when none.
func (r *RegistrationRepository) MaxToken(ctx context.Context, eventID string) (int, error) {
	var maxToken int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(token), 0) FROM registrations WHERE event_id = $1`, eventID,
	).Scan(&maxToken)
	if err != nil {
		return 0, fmt.Errorf("max token: %w", err)
	}
	return maxToken, nil
}

// Insert stores a registration with its token already assigned.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *model.Registration) error {
	if _, err := r.db.Exec(ctx, insertRegistrationSQL, registrationArgs(reg)...); err != nil {
		return mapError("insert registration", err)
	}
	return nil
}

// InsertNext allocates the event's next token and inserts reg with it in a
// single transaction, returning the token.
//
// The UPDATE on the event row takes a row-level lock that is held until
// COMMIT, so concurrent allocations for the same event queue behind each
// other and each observes the previous increment. The counter never moves
// below the highest stored token, which keeps it consistent with rows
// written through Insert. A uniqueness violation on the insert rolls the
// increment back and is reported as repository.ErrDuplicate.
func (r *RegistrationRepository) InsertNext(ctx context.Context, reg *model.Registration) (int, error) {
	var token int
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE events
			 SET last_token = GREATEST(
			     last_token,
			     (SELECT COALESCE(MAX(token), 0) FROM registrations WHERE event_id = $1)
			 ) + 1
			 WHERE id = $1
			 RETURNING last_token`,
			reg.EventID,
		).Scan(&token)
		if err != nil {
			return mapError("allocate token", err)
		}

		reg.Token = token
		if _, err := tx.Exec(ctx, insertRegistrationSQL, registrationArgs(reg)...); err != nil {
			return mapError("insert registration", err)
		}
		return nil
	})
	if err != nil {
		reg.Token = 0
		return 0, err
	}
	return token, nil
}

// ListByEvent returns all registrations for an event ordered by token.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = $1
		 ORDER BY token ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

const insertRegistrationSQL = `INSERT INTO registrations (` + registrationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func registrationArgs(reg *model.Registration) []any {
	return []any{
		reg.ID, reg.EventID, nullText(reg.StudentID), reg.Email, reg.Name,
		nullText(reg.TeamName), reg.Description, reg.Token, reg.CreatedAt,
	}
}

func scanRegistration(row pgx.Row, reg *model.Registration) error {
	var studentID, teamName pgtype.Text
	if err := row.Scan(&reg.ID, &reg.EventID, &studentID, &reg.Email, &reg.Name,
		&teamName, &reg.Description, &reg.Token, &reg.CreatedAt); err != nil {
		return err
	}
	reg.StudentID = studentID.String
	reg.TeamName = teamName.String
	return nil
}
