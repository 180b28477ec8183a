package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/service"
)

func (s *Server) registerLinkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "issueLink",
		Method:        http.MethodPost,
		Path:          "/api/v1/testimonials/links",
		Summary:       "Issue link",
		Description:   "Creates a single-use testimonial link for a named invitee, valid for 24 hours",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, s.handleIssueLink)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLinks",
		Method:      http.MethodGet,
		Path:        "/api/v1/testimonials/links",
		Summary:     "List links",
		Description: "Returns issued links newest first with their current status",
		Tags:        []string{"Links"},
	}, s.handleListLinks)

	huma.Register(s.api, huma.Operation{
		OperationID: "verifyToken",
		Method:      http.MethodGet,
		Path:        "/api/v1/testimonials/verify",
		Summary:     "Verify token",
		Description: "Reports whether a token can currently be redeemed. Never consumes it.",
		Tags:        []string{"Links"},
	}, s.handleVerifyToken)
}

// === DTOs ===

// IssueLinkInput contains the invitee for a new link.
type IssueLinkInput struct {
	Body struct {
		Name        string `json:"name" doc:"Invitee name" maxLength:"100"`
		Designation string `json:"designation,omitempty" doc:"Invitee role or title" maxLength:"100"`
	}
}

// IssueLinkResponse is the created link.
type IssueLinkResponse struct {
	Token     string    `json:"token" doc:"Bearer token embedded in the link"`
	URL       string    `json:"url" doc:"Redemption page URL"`
	ExpiresIn string    `json:"expires_in" doc:"Validity window in words"`
	ExpiresAt time.Time `json:"expires_at" doc:"Absolute expiry time"`
}

// IssueLinkOutput wraps the created link for Huma.
type IssueLinkOutput struct {
	Body IssueLinkResponse
}

// LinkResponse is one row of the link listing.
type LinkResponse struct {
	Token       string     `json:"token" doc:"Link token"`
	URL         string     `json:"url" doc:"Redemption page URL"`
	Name        string     `json:"name" doc:"Invitee name"`
	Designation string     `json:"designation,omitempty" doc:"Invitee role or title"`
	Status      string     `json:"status" doc:"unused, used, or expired"`
	CreatedAt   time.Time  `json:"created_at" doc:"Issue time"`
	ExpiresAt   time.Time  `json:"expires_at" doc:"Expiry time"`
	UsedAt      *time.Time `json:"used_at,omitempty" doc:"Redemption time"`
}

// ListLinksOutput wraps the link listing for Huma.
type ListLinksOutput struct {
	Body struct {
		Links []LinkResponse `json:"links"`
	}
}

// VerifyTokenInput carries the token from the query string.
type VerifyTokenInput struct {
	Token string `query:"token" doc:"Token to verify"`
}

// VerifyPayload is the invitee pre-fill data.
type VerifyPayload struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
}

// VerifyTokenResponse reports a token's state. Payload is null when invalid.
type VerifyTokenResponse struct {
	Valid   bool           `json:"valid"`
	Payload *VerifyPayload `json:"payload"`
	Reason  string         `json:"reason,omitempty" doc:"NotFound, AlreadyUsed, or Expired"`
	Error   string         `json:"error,omitempty" doc:"Human-readable reason"`
}

// VerifyTokenOutput wraps the verification result for Huma.
type VerifyTokenOutput struct {
	Body VerifyTokenResponse
}

// === Handlers ===

func (s *Server) handleIssueLink(ctx context.Context, input *IssueLinkInput) (*IssueLinkOutput, error) {
	issued, err := s.services.Issuance.Issue(ctx, service.IssueLinkRequest{
		Name:        input.Body.Name,
		Designation: input.Body.Designation,
	})
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	return &IssueLinkOutput{Body: IssueLinkResponse{
		Token:     issued.Token,
		URL:       issued.URL,
		ExpiresIn: issued.ExpiresIn,
		ExpiresAt: issued.ExpiresAt,
	}}, nil
}

func (s *Server) handleListLinks(ctx context.Context, _ *struct{}) (*ListLinksOutput, error) {
	links, err := s.services.Issuance.ListLinks(ctx)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}

	out := &ListLinksOutput{}
	out.Body.Links = make([]LinkResponse, len(links))
	for i, l := range links {
		out.Body.Links[i] = LinkResponse{
			Token:       l.Token,
			URL:         s.services.Issuance.RedemptionURL(l.Token),
			Name:        l.Name,
			Designation: l.Designation,
			Status:      string(l.Status),
			CreatedAt:   l.CreatedAt,
			ExpiresAt:   l.ExpiresAt,
			UsedAt:      l.UsedAt,
		}
	}
	return out, nil
}

func (s *Server) handleVerifyToken(ctx context.Context, input *VerifyTokenInput) (*VerifyTokenOutput, error) {
	result, err := s.services.Verification.Verify(ctx, input.Token)
	if err != nil {
		return nil, s.apiError(ctx, err)
	}
	return &VerifyTokenOutput{Body: verifyResponse(result)}, nil
}

func verifyResponse(result domain.VerificationResult) VerifyTokenResponse {
	if !result.Valid {
		return VerifyTokenResponse{
			Reason: string(result.Reason),
			Error:  result.Reason.Message(),
		}
	}
	return VerifyTokenResponse{
		Valid: true,
		Payload: &VerifyPayload{
			Name:        result.Invitee.Name,
			Designation: result.Invitee.Designation,
		},
	}
}
