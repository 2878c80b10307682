package model

import "time"

// SignInRequest is the payload for finding or creating a student.
type SignInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRequest is the payload for an individual registration.
type RegisterRequest struct {
	StudentID   string `json:"student_id"`
	Description string `json:"description"`
}

// TeamRegisterRequest is the payload for a team registration. The requesting
// student supplies the contact email; Members holds raw member names.
type TeamRegisterRequest struct {
	StudentID   string   `json:"student_id"`
	TeamName    string   `json:"team_name"`
	Members     []string `json:"members,omitempty"`
	Description string   `json:"description"`
}

// EventRequest is the payload for creating or replacing an event.
type EventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TeamEvent   bool      `json:"team_event,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	TeamSize    int       `json:"team_size,omitempty"`
}

// TeamModeRequest toggles an event between individual and team mode.
type TeamModeRequest struct {
	TeamEvent bool `json:"team_event"`
}

// TeamSizeRequest sets the member limit of a team event.
type TeamSizeRequest struct {
	TeamSize int `json:"team_size"`
}

// StatusRequest sets the fire status.
type StatusRequest struct {
	FireActive bool `json:"fire_active"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
