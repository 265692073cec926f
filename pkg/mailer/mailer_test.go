package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

func TestSendInvitation(t *testing.T) {
	var received apiRequest
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := New(Config{APIURL: server.URL, APIKey: "key-1", From: "no-reply@litrix.edu"})
	err := m.SendInvitation(context.Background(), InvitationEmail{
		To:               "prof@example.edu",
		RegistrationLink: "https://litrix.edu/register?token=abc",
		Role:             "researcher",
		Department:       "physics",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"prof@example.edu"}, received.To)
	assert.Contains(t, received.HTML, "physics")
}

func TestMissingRoleRejectedBeforeSend(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	m := New(Config{APIURL: server.URL, APIKey: "key-1", From: "no-reply@litrix.edu"})
	err := m.SendInvitation(context.Background(), InvitationEmail{
		To:               "prof@example.edu",
		RegistrationLink: "https://litrix.edu/register?token=abc",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, calls, "no request may reach the provider")
}

func TestProviderFailureSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	m := New(Config{APIURL: server.URL, APIKey: "key-1", From: "no-reply@litrix.edu"})
	err := m.SendInvitation(context.Background(), InvitationEmail{
		To:               "prof@example.edu",
		RegistrationLink: "https://litrix.edu/register?token=abc",
		Role:             "researcher",
	})
	require.Error(t, err)
}
