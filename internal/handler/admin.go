package handler

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

type SignInInput struct {
	Body model.SignInRequest
}

type StudentOutput struct {
	Body *model.Student
}

type StudentIDInput struct {
	ID string `path:"id" doc:"Student ID"`
}

type StatusOutput struct {
	Body model.AdminStatus
}

type SetStatusInput struct {
	Body model.StatusRequest
}

type LoginInput struct {
	Body model.LoginRequest
}

type LoginBody struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginOutput struct {
	Body LoginBody
}

// SignIn handles POST /students. Returns the existing student for a known
// email, otherwise creates one.
func (h *Handler) SignIn(ctx context.Context, in *SignInInput) (*StudentOutput, error) {
	student, err := h.students.SignIn(ctx, in.Body)
	if err != nil {
		return nil, h.apiError("sign in", err)
	}
	return &StudentOutput{Body: student}, nil
}

// GetStudent handles GET /students/{id}.
func (h *Handler) GetStudent(ctx context.Context, in *StudentIDInput) (*StudentOutput, error) {
	student, err := h.students.Get(ctx, in.ID)
	if err != nil {
		return nil, h.apiError("get student", err)
	}
	return &StudentOutput{Body: student}, nil
}

// GetStatus handles GET /status.
func (h *Handler) GetStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	st, err := h.status.Get(ctx)
	if err != nil {
		return nil, h.apiError("get status", err)
	}
	return &StatusOutput{Body: st}, nil
}

// SetStatus handles PUT /admin/status.
func (h *Handler) SetStatus(ctx context.Context, in *SetStatusInput) (*StatusOutput, error) {
	st, err := h.status.Set(ctx, in.Body.FireActive)
	if err != nil {
		return nil, h.apiError("set status", err)
	}
	h.log.Info("fire status changed", "fire_active", st.FireActive, "version", st.Version)
	return &StatusOutput{Body: st}, nil
}

// Login handles POST /admin/login.
func (h *Handler) Login(ctx context.Context, in *LoginInput) (*LoginOutput, error) {
	token, expires, err := h.auth.Login(ctx, in.Body.Email, in.Body.Password)
	if err != nil {
		h.log.Warn("admin login rejected", "email", in.Body.Email)
		return nil, h.apiError("login", err)
	}
	return &LoginOutput{Body: LoginBody{Token: token, ExpiresAt: expires}}, nil
}
