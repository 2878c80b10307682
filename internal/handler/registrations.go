package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/Shivanand-hulikatti/event-portal/internal/export"
	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

const failedMessage = "registration failed, please try again"

type RegisterInput struct {
	ID   string `path:"id"`
	Body model.RegisterRequest
}

type TeamRegisterInput struct {
	ID   string `path:"id"`
	Body model.TeamRegisterRequest
}

// RegistrationBody is the client view of a workflow outcome.
type RegistrationBody struct {
	Status model.OutcomeStatus `json:"status" doc:"registered, already_registered, invalid_team_size or registration_failed"`
	Token  int                 `json:"token,omitempty"`
	Reason string              `json:"reason,omitempty"`
}

type RegistrationOutput struct {
	Status int
	Body   RegistrationBody
}

type LookupInput struct {
	ID        string `path:"id"`
	StudentID string `path:"studentID"`
}

type LookupOutput struct {
	Body *model.Registration
}

type ParticipantsBody struct {
	Event         *model.Event         `json:"event"`
	Registrations []model.Registration `json:"registrations"`
}

type ParticipantsOutput struct {
	Body ParticipantsBody
}

type PDFOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// Register handles POST /events/{id}/registrations.
func (h *Handler) Register(ctx context.Context, in *RegisterInput) (*RegistrationOutput, error) {
	o, err := h.registrations.Register(ctx, in.ID, in.Body)
	if err != nil {
		return nil, h.apiError("register", err)
	}
	return outcomeOutput(o), nil
}

// RegisterTeam handles POST /events/{id}/team-registrations.
func (h *Handler) RegisterTeam(ctx context.Context, in *TeamRegisterInput) (*RegistrationOutput, error) {
	o, err := h.registrations.RegisterTeam(ctx, in.ID, in.Body)
	if err != nil {
		return nil, h.apiError("register team", err)
	}
	return outcomeOutput(o), nil
}

func outcomeOutput(o model.Outcome) *RegistrationOutput {
	out := &RegistrationOutput{Body: RegistrationBody{Status: o.Status, Token: o.Token, Reason: o.Reason}}
	switch o.Status {
	case model.StatusRegistered:
		out.Status = http.StatusCreated
	case model.StatusAlreadyRegistered:
		out.Status = http.StatusOK
	case model.StatusInvalidTeamSize:
		out.Status = http.StatusUnprocessableEntity
	default:
		out.Status = http.StatusInternalServerError
		out.Body = RegistrationBody{Status: model.StatusRegistrationFailed, Reason: failedMessage}
	}
	return out
}

// GetRegistration handles GET /events/{id}/registrations/{studentID}.
func (h *Handler) GetRegistration(ctx context.Context, in *LookupInput) (*LookupOutput, error) {
	reg, err := h.registrations.Lookup(ctx, in.ID, in.StudentID)
	if err != nil {
		return nil, h.apiError("lookup registration", err)
	}
	return &LookupOutput{Body: reg}, nil
}

// Participants handles GET /admin/events/{id}/participants.
func (h *Handler) Participants(ctx context.Context, in *EventIDInput) (*ParticipantsOutput, error) {
	event, regs, err := h.events.Participants(ctx, in.ID)
	if err != nil {
		return nil, h.apiError("list participants", err)
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	return &ParticipantsOutput{Body: ParticipantsBody{Event: event, Registrations: regs}}, nil
}

// ParticipantsPDF handles GET /admin/events/{id}/participants.pdf.
func (h *Handler) ParticipantsPDF(ctx context.Context, in *EventIDInput) (*PDFOutput, error) {
	event, regs, err := h.events.Participants(ctx, in.ID)
	if err != nil {
		return nil, h.apiError("export participants", err)
	}
	var buf bytes.Buffer
	if err := export.ParticipantsPDF(&buf, event, regs, h.now().UTC()); err != nil {
		return nil, h.apiError("export participants", err)
	}
	return &PDFOutput{
		ContentType:        "application/pdf",
		ContentDisposition: fmt.Sprintf(`attachment; filename="participants-%s.pdf"`, event.ID),
		Body:               buf.Bytes(),
	}, nil
}
