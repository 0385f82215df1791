//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/markethaus/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

// userResponse mirrors the user wire format.
type userResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	DateJoined string `json:"date_joined"`
}

type registerOption func(map[string]interface{})

func withRole(role string) registerOption {
	return func(m map[string]interface{}) {
		m["role"] = role
	}
}

func withName(first, last string) registerOption {
	return func(m map[string]interface{}) {
		m["first_name"] = first
		m["last_name"] = last
	}
}

func withPassword(password string) registerOption {
	return func(m map[string]interface{}) {
		m["password"] = password
	}
}

// registerTestUser registers a user with a random email and returns the
// created record and its email. The password is testPassword unless
// overridden. Created users are deleted at test cleanup.
func registerTestUser(t *testing.T, client *testutil.Client, opts ...registerOption) (userResponse, string) {
	t.Helper()

	email := testutil.RandomEmail()
	payload := map[string]interface{}{
		"email":    email,
		"password": testPassword,
	}
	for _, opt := range opts {
		opt(payload)
	}

	resp, err := client.POST("/users", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user userResponse
	testutil.DecodeJSON(t, resp, &user)

	t.Cleanup(func() {
		deleteUser(t, user.ID)
	})

	return user, email
}

// loginAsAdmin returns a client authenticated as the bootstrapped superuser.
func loginAsAdmin(t *testing.T) *testutil.Client {
	t.Helper()
	client := newTestClient(t)
	client.Login(t, adminEmail, adminPassword)
	return client
}

// deleteUser removes a user via the API as the admin. Missing users are not
// an error so cleanups can run after tests that delete their own records.
func deleteUser(t *testing.T, id string) {
	t.Helper()
	client := newTestClient(t)
	client.Login(t, adminEmail, adminPassword)

	resp, err := client.DELETE("/users/" + id)
	if err != nil {
		t.Logf("cleanup warning (user %s): %v", id, err)
		return
	}
	resp.Body.Close()
}
