package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbakws/testimonial-server/internal/domain"
	"github.com/gbakws/testimonial-server/internal/id"
)

func TestIssueLink(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/testimonials/links", map[string]any{
		"name":        "Asha Devi",
		"designation": "Volunteer",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[IssueLinkResponse](t, resp.Body.Bytes())
	assert.Equal(t, EnvelopeVersion, env.V)
	assert.True(t, env.Success)
	assert.Len(t, env.Data.Token, id.TokenLength)
	assert.Equal(t, "24 hours", env.Data.ExpiresIn)
	assert.Equal(t, "https://example.org/testimonial?token="+url.QueryEscape(env.Data.Token), env.Data.URL)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), env.Data.ExpiresAt, time.Minute)
}

func TestIssueLink_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/testimonials/links", map[string]any{"name": "   "})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "is required", env.Details["name"])
}

func TestIssueLink_MissingBodyField(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/testimonials/links", map[string]any{"designation": "CTO"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.NotEmpty(t, env.Details)
}

func TestIssueLink_LengthLimits(t *testing.T) {
	ts := setupTestServer(t)

	for _, field := range []string{"name", "designation"} {
		t.Run(field, func(t *testing.T) {
			body := map[string]any{"name": "Asha"}
			body[field] = strings.Repeat("a", 101)

			resp := ts.api.Post("/api/v1/testimonials/links", body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decode[any](t, resp.Body.Bytes())
			assert.Equal(t, "VALIDATION", env.Code)
			assert.Contains(t, env.Details, "body."+field)
		})
	}

	resp := ts.api.Post("/api/v1/testimonials/links", map[string]any{"name": strings.Repeat("a", 100)})
	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestVerifyToken(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueLink(t, "Asha Devi")

	require.NoError(t, ts.store.CreateLink(context.Background(),
		domain.NewLink("stale-token", "Old", "", time.Now().Add(-25*time.Hour))))

	tests := []struct {
		name       string
		token      string
		wantValid  bool
		wantReason string
		wantError  string
	}{
		{name: "valid", token: token, wantValid: true},
		{name: "unknown", token: "nonexistent-token", wantReason: "NotFound", wantError: "Token not found or revoked"},
		{name: "empty", token: "", wantReason: "NotFound", wantError: "Token not found or revoked"},
		{name: "expired", token: "stale-token", wantReason: "Expired", wantError: "Token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/testimonials/verify?token=" + url.QueryEscape(tt.token))
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			env := decode[map[string]any](t, resp.Body.Bytes())
			assert.True(t, env.Success)
			assert.Equal(t, tt.wantValid, env.Data["valid"])
			require.Contains(t, env.Data, "payload")

			if tt.wantValid {
				payload, ok := env.Data["payload"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "Asha Devi", payload["name"])
				return
			}
			assert.Nil(t, env.Data["payload"])
			assert.Equal(t, tt.wantReason, env.Data["reason"])
			assert.Equal(t, tt.wantError, env.Data["error"])
		})
	}
}

func TestVerifyToken_AfterRedemption(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.issueLink(t, "Bilal")

	resp := ts.api.Post("/api/v1/testimonials", map[string]any{"token": token, "testimonial": "Thank you"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/testimonials/verify?token=" + token)
	env := decode[VerifyTokenResponse](t, resp.Body.Bytes())
	assert.False(t, env.Data.Valid)
	assert.Equal(t, "AlreadyUsed", env.Data.Reason)
	assert.Equal(t, "Token already used", env.Data.Error)
}

func TestListLinks(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.issueLink(t, "Asha")
	second := ts.issueLink(t, "Bilal")

	resp := ts.api.Post("/api/v1/testimonials", map[string]any{"token": first, "testimonial": "Great"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/testimonials/links")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[struct {
		Links []LinkResponse `json:"links"`
	}](t, resp.Body.Bytes())
	require.Len(t, env.Data.Links, 2)

	byToken := map[string]LinkResponse{}
	for _, l := range env.Data.Links {
		byToken[l.Token] = l
	}
	assert.Equal(t, "used", byToken[first].Status)
	assert.NotNil(t, byToken[first].UsedAt)
	assert.Equal(t, "unused", byToken[second].Status)
	assert.Contains(t, byToken[second].URL, "/testimonial?token=")
}
