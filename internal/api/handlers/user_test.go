package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Rijass/Spotify-Stats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"username": "newuser",
				"email":    "newuser@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.AuthResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "newuser", result.User.Username)
				assert.Equal(t, "newuser@example.com", result.User.Email)
				assert.NotEmpty(t, result.SessionToken)
			},
		},
		{
			name: "missing username",
			request: map[string]string{
				"email":    "nobody@example.com",
				"password": "password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			request: map[string]string{
				"username": "nobody",
				"email":    "nobody@example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			request: map[string]string{
				"username": "existinguser",
				"email":    "fresh@example.com",
				"password": "password123",
			},
			setup: func() {
				testutil.NewAccountBuilder().
					WithUsername("existinguser").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"username": "freshuser",
				"email":    "taken@example.com",
				"password": "password123",
			},
			setup: func() {
				testutil.NewAccountBuilder().
					WithEmail("taken@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "empty request body",
			request:        map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/users"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	account, rawPassword := testutil.NewAccountBuilder().
		WithUsername("loginuser").
		WithEmail("loginuser@example.com").
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful login by username",
			request: map[string]string{
				"username": account.Username,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.AuthResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, account.Username, result.User.Username)
				assert.NotEmpty(t, result.SessionToken)
			},
		},
		{
			name: "successful login by email",
			request: map[string]string{
				"username": account.Email,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			request: map[string]string{
				"username": account.Username,
				"password": "wrongpassword",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown user",
			request: map[string]string{
				"username": "ghost",
				"password": rawPassword,
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing fields",
			request: map[string]string{
				"username": account.Username,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestUserHandler_Session(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name      string
		token     string
		wantValid bool
	}{
		{name: "valid session", token: token, wantValid: true},
		{name: "unknown token", token: "bogus-token", wantValid: false},
		{name: "no token", token: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/session"), nil, tt.token)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, http.StatusOK)

			var result map[string]bool
			testutil.AssertJSONResponse(t, resp, &result)
			assert.Equal(t, tt.wantValid, result["valid"])
		})
	}
}

func TestUserHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)

	account, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/me"), nil, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
	}
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, account.ID, result.ID)
	assert.Equal(t, account.Username, result.Username)
}

func TestUserHandler_Update(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewAccountBuilder().
		WithUsername("before").
		BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/users"),
		map[string]string{"username": "after"}, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var result struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	testutil.AssertJSONResponse(t, resp, &result)
	assert.Equal(t, "after", result.Username)
	assert.NotEmpty(t, result.Email)
}

func TestUserHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewAccountBuilder().BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/users/logout"), nil, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// The revoked session no longer opens protected routes.
	req = testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/me"), nil, token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestUserHandler_Delete(t *testing.T) {
	ts := testutil.NewTestServer(t)

	account, token := testutil.NewAccountBuilder().
		WithUsername("doomed").
		WithPassword("password123").
		BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/users"), nil, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// The deleted account cannot log back in.
	body, _ := json.Marshal(map[string]string{
		"username": account.Username,
		"password": "password123",
	})
	resp, err = http.Post(ts.APIURL("/users/login"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/me"},
		{http.MethodPut, "/users"},
		{http.MethodDelete, "/users"},
		{http.MethodPost, "/users/logout"},
		{http.MethodGet, "/spotify/login"},
		{http.MethodGet, "/spotify/status"},
		{http.MethodGet, "/spotify/profile"},
		{http.MethodGet, "/spotify/top-tracks"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, route.method, ts.APIURL(route.path), nil, "")
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
		})
	}
}
