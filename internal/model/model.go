// Package model defines the core domain types for the event portal.
package model

import (
	"strings"
	"time"
)

// Student is a portal user identified by email.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a campus event students can register for.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	TeamEvent   bool      `json:"team_event"`
	ScheduledAt time.Time `json:"scheduled_at"`
	// TeamSize is the member limit; only meaningful when TeamEvent is set.
	TeamSize  int       `json:"team_size"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamLimit returns the maximum member count for a team registration,
// falling back to def when the event has no size configured.
func (e *Event) TeamLimit(def int) int {
	if e.TeamSize > 0 {
		return e.TeamSize
	}
	return def
}

// Registration links a student or team to an event under a per-event token.
type Registration struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	StudentID string `json:"student_id,omitempty"`
	Email     string `json:"email"`
	// Name is the display name, or the member list joined by ", " for teams.
	Name        string    `json:"name"`
	TeamName    string    `json:"team_name,omitempty"`
	Description string    `json:"description"`
	Token       int       `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsTeam reports whether the registration was made by a team.
func (r *Registration) IsTeam() bool { return r.TeamName != "" }

// AdminStatus is the versioned fire status singleton.
type AdminStatus struct {
	FireActive bool      `json:"fire_active"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// KeyKind selects the column a duplicate check matches on.
type KeyKind int

const (
	KeyEmail KeyKind = iota
	KeyTeamName
)

func (k KeyKind) String() string {
	if k == KeyTeamName {
		return "team_name"
	}
	return "email"
}

// Key identifies an existing registration within an event.
type Key struct {
	Kind  KeyKind
	Value string
}

// ByEmail builds an email key.
func ByEmail(email string) Key { return Key{Kind: KeyEmail, Value: NormalizeEmail(email)} }

// ByTeamName builds a team name key.
func ByTeamName(name string) Key { return Key{Kind: KeyTeamName, Value: strings.TrimSpace(name)} }
