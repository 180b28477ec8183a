package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/service"
)

func (s *Server) registerTestimonialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "submitTestimonial",
		Method:        http.MethodPost,
		Path:          "/api/v1/testimonials",
		Summary:       "Submit testimonial",
		Description:   "Redeems a link token and stores the testimonial as pending",
		Tags:          []string{"Testimonials"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSubmitTestimonial)

	huma.Register(s.api, huma.Operation{
		OperationID: "listApprovedTestimonials",
		Method:      http.MethodGet,
		Path:        "/api/v1/testimonials/approved",
		Summary:     "List approved testimonials",
		Description: "Returns approved testimonials newest first",
		Tags:        []string{"Testimonials"},
	}, s.handleListApproved)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTestimonials",
		Method:      http.MethodGet,
		Path:        "/api/v1/testimonials",
		Summary:     "List testimonials",
		Description: "Returns every testimonial newest first",
		Tags:        []string{"Testimonials"},
	}, s.handleListAll)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTestimonialStatus",
		Method:      http.MethodPatch,
		Path:        "/api/v1/testimonials/{id}/status",
		Summary:     "Moderate testimonial",
		Description: "Sets a testimonial's status to PENDING, APPROVED, or REJECTED",
		Tags:        []string{"Testimonials"},
	}, s.handleUpdateStatus)
}

// === DTOs ===

// SubmitTestimonialInput carries the testimonial and the token it redeems.
type SubmitTestimonialInput struct {
	Body struct {
		Testimonial string `json:"testimonial" doc:"Testimonial text" maxLength:"5000"`
		Token       string `json:"token" doc:"Link token"`
	}
}

// SubmissionOutput wraps a single submission for Huma.
type SubmissionOutput struct {
	Body struct {
		Submission *domain.Submission `json:"submission"`
	}
}

// ListSubmissionsOutput wraps a submission listing for Huma.
type ListSubmissionsOutput struct {
	Body struct {
		Testimonials []*domain.Submission `json:"testimonials"`
	}
}

// UpdateStatusInput identifies the submission and its new status.
type UpdateStatusInput struct {
	ID   string `path:"id" doc:"Submission ID"`
	Body struct {
		Status string `json:"status" doc:"PENDING, APPROVED, or REJECTED"`
	}
}

// === Handlers ===

func (s *Server) handleSubmitTestimonial(ctx context.Context, input *SubmitTestimonialInput) (*SubmissionOutput, error) {
	sub, err := s.services.Redemption.Redeem(ctx, service.SubmitTestimonialRequest{
		Testimonial: input.Body.Testimonial,
		Token:       input.Body.Token,
	})
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	out := &SubmissionOutput{}
	out.Body.Submission = sub
	return out, nil
}

func (s *Server) handleListApproved(ctx context.Context, _ *struct{}) (*ListSubmissionsOutput, error) {
	subs, err := s.services.Testimonials.ListApproved(ctx)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	out := &ListSubmissionsOutput{}
	out.Body.Testimonials = subs
	return out, nil
}

func (s *Server) handleListAll(ctx context.Context, _ *struct{}) (*ListSubmissionsOutput, error) {
	subs, err := s.services.Testimonials.ListAll(ctx)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	out := &ListSubmissionsOutput{}
	out.Body.Testimonials = subs
	return out, nil
}

func (s *Server) handleUpdateStatus(ctx context.Context, input *UpdateStatusInput) (*SubmissionOutput, error) {
	sub, err := s.services.Testimonials.UpdateStatus(ctx, input.ID, service.UpdateStatusRequest{
		Status: input.Body.Status,
	})
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	out := &SubmissionOutput{}
	out.Body.Submission = sub
	return out, nil
}
