package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/id"
	"github.com/gbakws/testimonial-server/internal/logger"
	"github.com/gbakws/testimonial-server/internal/normalize"
	"github.com/gbakws/testimonial-server/internal/store"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// maxIssueAttempts caps retries on token collision.
const maxIssueAttempts = 3

// IssuanceService creates testimonial links and lists them for admins.
type IssuanceService struct {
	base
	store     store.Store
	validator *validation.Validator
	publicURL string
	newToken  func() string
}

// NewIssuanceService creates a new issuance service.
// publicURL is the site origin the redemption page is served from.
func NewIssuanceService(
	st store.Store,
	v *validation.Validator,
	log *slog.Logger,
	publicURL string,
	timeout time.Duration,
) *IssuanceService {
	return &IssuanceService{
		base:      newBase(log, timeout),
		store:     st,
		validator: v,
		publicURL: strings.TrimRight(publicURL, "/"),
		newToken:  id.NewToken,
	}
}

// IssueLinkRequest names the invitee a link is issued for.
type IssueLinkRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Designation string `json:"designation,omitempty" validate:"max=100"`
}

// IssuedLink is returned after a link is created.
type IssuedLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresIn string    `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkSummary is a link with its state at listing time.
type LinkSummary struct {
	*domain.Link
	Status domain.LinkState `json:"status"`
}

// Issue creates an unused link valid for domain.LinkValidity.
func (s *IssuanceService) Issue(ctx context.Context, req IssueLinkRequest) (*IssuedLink, error) {
	req.Name = normalize.Line(req.Name)
	req.Designation = normalize.Line(req.Designation)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		link := domain.NewLink(s.newToken(), req.Name, req.Designation, s.now())

		err := s.withTimeout(ctx, func(ctx context.Context) error {
			return s.store.CreateLink(ctx, link)
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			if s.logger != nil {
				s.logger.Warn("token collision, retrying", "attempt", attempt)
			}
			continue
		}
		if err != nil {
			return nil, s.storageFailure("create link", err)
		}

		s.info("link issued",
			logger.Token(link.Token),
			"name", link.Name,
			"expires_at", link.ExpiresAt,
		)
		return &IssuedLink{
			Token:     link.Token,
			URL:       s.RedemptionURL(link.Token),
			ExpiresIn: domain.LinkValidityText,
			ExpiresAt: link.ExpiresAt,
		}, nil
	}

	return nil, s.storageFailure("create link",
		fmt.Errorf("token collision after %d attempts", maxIssueAttempts))
}

// RedemptionURL builds the page URL an invitee opens to submit.
func (s *IssuanceService) RedemptionURL(token string) string {
	return s.publicURL + "/testimonial?token=" + url.QueryEscape(token)
}

// ListLinks returns every issued link newest first with its current state.
func (s *IssuanceService) ListLinks(ctx context.Context) ([]LinkSummary, error) {
	var links []*domain.Link
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		links, err = s.store.ListLinks(ctx)
		return err
	})
	if err != nil {
		return nil, s.storageFailure("list links", err)
	}

	now := s.now()
	out := make([]LinkSummary, len(links))
	for i, link := range links {
		out[i] = LinkSummary{Link: link, Status: link.State(now)}
	}
	return out, nil
}
