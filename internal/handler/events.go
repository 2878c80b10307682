package handler

import (
	"context"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

type EventIDInput struct {
	ID string `path:"id" doc:"Event ID"`
}

type ListEventsInput struct {
	Query string `query:"q" doc:"Case-insensitive title filter"`
}

type EventsOutput struct {
	Body []model.Event
}

type EventOutput struct {
	Body *model.Event
}

type CreateEventInput struct {
	Body model.EventRequest
}

type UpdateEventInput struct {
	ID   string `path:"id"`
	Body model.EventRequest
}

type TeamModeInput struct {
	ID   string `path:"id"`
	Body model.TeamModeRequest
}

type TeamSizeInput struct {
	ID   string `path:"id"`
	Body model.TeamSizeRequest
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(ctx context.Context, in *ListEventsInput) (*EventsOutput, error) {
	events, err := h.events.List(ctx, in.Query)
	if err != nil {
		return nil, h.apiError("list events", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return &EventsOutput{Body: events}, nil
}

// GetEvent handles GET /events/{id}.
func (h *Handler) GetEvent(ctx context.Context, in *EventIDInput) (*EventOutput, error) {
	event, err := h.events.Get(ctx, in.ID)
	if err != nil {
		return nil, h.apiError("get event", err)
	}
	return &EventOutput{Body: event}, nil
}

// CreateEvent handles POST /admin/events.
func (h *Handler) CreateEvent(ctx context.Context, in *CreateEventInput) (*EventOutput, error) {
	event, err := h.events.Create(ctx, in.Body)
	if err != nil {
		return nil, h.apiError("create event", err)
	}
	return &EventOutput{Body: event}, nil
}

// UpdateEvent handles PUT /admin/events/{id}.
func (h *Handler) UpdateEvent(ctx context.Context, in *UpdateEventInput) (*EventOutput, error) {
	event, err := h.events.Update(ctx, in.ID, in.Body)
	if err != nil {
		return nil, h.apiError("update event", err)
	}
	return &EventOutput{Body: event}, nil
}

// DeleteEvent handles DELETE /admin/events/{id}.
func (h *Handler) DeleteEvent(ctx context.Context, in *EventIDInput) (*struct{}, error) {
	if err := h.events.Delete(ctx, in.ID); err != nil {
		return nil, h.apiError("delete event", err)
	}
	return nil, nil
}

// SetTeamMode handles PUT /admin/events/{id}/team-mode.
func (h *Handler) SetTeamMode(ctx context.Context, in *TeamModeInput) (*EventOutput, error) {
	event, err := h.events.SetTeamMode(ctx, in.ID, in.Body.TeamEvent)
	if err != nil {
		return nil, h.apiError("set team mode", err)
	}
	return &EventOutput{Body: event}, nil
}

// SetTeamSize handles PUT /admin/events/{id}/team-size.
func (h *Handler) SetTeamSize(ctx context.Context, in *TeamSizeInput) (*EventOutput, error) {
	event, err := h.events.SetTeamSize(ctx, in.ID, in.Body.TeamSize)
	if err != nil {
		return nil, h.apiError("set team size", err)
	}
	return &EventOutput{Body: event}, nil
}
