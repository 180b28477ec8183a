package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbakws/testimonial-server/internal/domain"
	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/store"
)

// Scenario A.
func TestRedeem_IssueVerifyRedeemOnce(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	token := ts.issue(t, "Asha Devi")

	result, err := ts.verification.Verify(ctx, token)
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, "Asha Devi", result.Invitee.Name)

	sub, err := ts.redemption.Redeem(ctx, SubmitTestimonialRequest{Token: token, Testimonial: "Great cause!"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Devi", sub.Name)
	assert.Equal(t, "Great cause!", sub.Content)
	assert.Equal(t, domain.SubmissionPending, sub.Status)
	assert.True(t, strings.HasPrefix(sub.ID, "sub-"))

	_, err = ts.redemption.Redeem(ctx, SubmitTestimonialRequest{Token: token, Testimonial: "Again"})
	assert.ErrorIs(t, err, domainerrors.ErrTokenUsed)

	result, err = ts.verification.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonAlreadyUsed, result.Reason)

	subs, err := ts.store.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

// Scenario B.
func TestRedeem_ExpiredCreatesNothing(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	token := ts.issue(t, "Bilal")
	ts.clock.Advance(25 * time.Hour)

	result, err := ts.verification.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvalidResult(domain.ReasonExpired), result)

	_, err = ts.redemption.Redeem(ctx, SubmitTestimonialRequest{Token: token, Testimonial: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Token has expired", domainErr.Message)

	subs, err := ts.store.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	link, err := ts.store.GetLink(ctx, token)
	require.NoError(t, err)
	assert.False(t, link.IsUsed)
}

func TestRedeem_UnknownToken(t *testing.T) {
	ts := setupServices(t)

	_, err := ts.redemption.Redeem(context.Background(), SubmitTestimonialRequest{Token: "nope", Testimonial: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrTokenNotFound)
}

// Scenario D.
func TestRedeem_ConcurrentCallersSingleSuccess(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	token := ts.issue(t, "Chitra")

	const callers = 8
	errs := make([]error, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = ts.redemption.Redeem(ctx, SubmitTestimonialRequest{Token: token, Testimonial: "Same instant"})
		}()
	}
	close(start)
	wg.Wait()

	successes, used := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domainerrors.ErrTokenUsed):
			used++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, used)

	subs, err := ts.store.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestRedeem_Validation(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	token := ts.issue(t, "Asha")

	tests := []struct {
		name  string
		req   SubmitTestimonialRequest
		field string
	}{
		{name: "empty content", req: SubmitTestimonialRequest{Token: token, Testimonial: ""}, field: "testimonial"},
		{name: "whitespace content", req: SubmitTestimonialRequest{Token: token, Testimonial: " \r\n\t "}, field: "testimonial"},
		{name: "too long", req: SubmitTestimonialRequest{Token: token, Testimonial: strings.Repeat("a", 5001)}, field: "testimonial"},
		{name: "missing token", req: SubmitTestimonialRequest{Token: " ", Testimonial: "Hello"}, field: "token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.redemption.Redeem(ctx, tt.req)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}

	// Rejected input must not consume the token.
	link, err := ts.store.GetLink(ctx, token)
	require.NoError(t, err)
	assert.False(t, link.IsUsed)
}

func TestRedeem_NormalizesContent(t *testing.T) {
	ts := setupServices(t)
	token := ts.issue(t, "Asha")

	sub, err := ts.redemption.Redeem(context.Background(), SubmitTestimonialRequest{
		Token:       "  " + token + "\n",
		Testimonial: "  Line one\r\nLine two\x00  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", sub.Content)
}

func TestRedeem_StorageTimeout(t *testing.T) {
	st := &stubStore{
		redeemLink: func(ctx context.Context, _ string, _ time.Time, _ store.SubmissionBuilder) (*domain.Submission, error) {
			return nil, blockUntilDone(ctx)
		},
	}
	ts := newTestServices(st)
	ts.redemption.timeout = 20 * time.Millisecond

	_, err := ts.redemption.Redeem(context.Background(), SubmitTestimonialRequest{Token: "tok", Testimonial: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrStorage)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "storage unavailable, please try again later", domainErr.Message)
}

func TestRedeem_StorageFaultIsNotATokenState(t *testing.T) {
	st := &stubStore{
		redeemLink: func(context.Context, string, time.Time, store.SubmissionBuilder) (*domain.Submission, error) {
			return nil, errors.New("disk I/O error")
		},
	}
	ts := newTestServices(st)

	_, err := ts.redemption.Redeem(context.Background(), SubmitTestimonialRequest{Token: "tok", Testimonial: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrStorage)
	assert.NotErrorIs(t, err, domainerrors.ErrTokenUsed)
}

func TestRedeem_CopiesInviteeFromLink(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	issued, err := ts.issuance.Issue(ctx, IssueLinkRequest{Name: "Dev", Designation: "Mentor"})
	require.NoError(t, err)

	sub, err := ts.redemption.Redeem(ctx, SubmitTestimonialRequest{Token: issued.Token, Testimonial: "Loved it"})
	require.NoError(t, err)
	assert.Equal(t, "Dev", sub.Name)
	assert.Equal(t, "Mentor", sub.Designation)
	assert.True(t, sub.CreatedAt.Equal(ts.clock.Now()))
}
