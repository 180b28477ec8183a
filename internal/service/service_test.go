package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/store"
	"github.com/gbakws/testimonial-server/internal/store/sqlite"
	"github.com/gbakws/testimonial-server/internal/validation"
)

// testClock is a settable clock shared by every service in a test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServices struct {
	store        store.Store
	clock        *testClock
	issuance     *IssuanceService
	verification *VerificationService
	redemption   *RedemptionService
	testimonials *TestimonialService
}

// setupServices wires every service to one sqlite store in a temp dir.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return newTestServices(st)
}

func newTestServices(st store.Store) *testServices {
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	v := validation.New()

	ts := &testServices{
		store:        st,
		clock:        clock,
		issuance:     NewIssuanceService(st, v, nil, "https://example.org/", time.Second),
		verification: NewVerificationService(st, nil, time.Second),
		redemption:   NewRedemptionService(st, v, nil, time.Second),
		testimonials: NewTestimonialService(st, v, nil, time.Second),
	}
	ts.issuance.now = clock.Now
	ts.verification.now = clock.Now
	ts.redemption.now = clock.Now
	ts.testimonials.now = clock.Now
	return ts
}

func (ts *testServices) issue(t *testing.T, name string) string {
	t.Helper()
	link, err := ts.issuance.Issue(context.Background(), IssueLinkRequest{Name: name})
	require.NoError(t, err)
	return link.Token
}

// stubStore overrides selected store methods. Calling one that is not
// set panics through the nil embedded interface.
type stubStore struct {
	store.Store
	createLink func(ctx context.Context, link *domain.Link) error
	getLink    func(ctx context.Context, token string) (*domain.Link, error)
	redeemLink func(ctx context.Context, token string, at time.Time, build store.SubmissionBuilder) (*domain.Submission, error)

	updateSubmissionStatus func(ctx context.Context, id string, status domain.SubmissionStatus, at time.Time) (*domain.Submission, error)
}

func (s *stubStore) CreateLink(ctx context.Context, link *domain.Link) error {
	return s.createLink(ctx, link)
}

func (s *stubStore) GetLink(ctx context.Context, token string) (*domain.Link, error) {
	return s.getLink(ctx, token)
}

func (s *stubStore) RedeemLink(ctx context.Context, token string, at time.Time, build store.SubmissionBuilder) (*domain.Submission, error) {
	return s.redeemLink(ctx, token, at, build)
}

func (s *stubStore) UpdateSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus, at time.Time) (*domain.Submission, error) {
	return s.updateSubmissionStatus(ctx, id, status, at)
}

// blockUntilDone waits out the store deadline like a hung database would.
func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
