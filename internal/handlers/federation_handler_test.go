package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/handlers"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/mocks"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/models"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/query"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/router"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/server"
	"github.com/SimpnicServerTeam/scs-user-federation/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testUser = models.UserEntity{
	ID:            "f:comp1:u1",
	Username:      "john",
	Email:         "john@example.com",
	FirstName:     "John",
	LastName:      "Doe",
	Enabled:       true,
	EmailVerified: true,
}

type federationHandlerTestDeps struct {
	mockService *mocks.MockFederationProvider
	echo        *echo.Echo
}

func setupFederationHandlerTest(t *testing.T) federationHandlerTestDeps {
	t.Helper()
	deps := federationHandlerTestDeps{
		mockService: new(mocks.MockFederationProvider),
		echo:        echo.New(),
	}
	deps.echo.Validator = server.NewValidator()
	router.SetupFederationRoutes(deps.echo, handlers.NewFederationHandler(deps.mockService))
	return deps
}

func performRequest(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		jsonData, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(jsonData)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if reqBody != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestFederationHandler_GetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("GetUser", mock.Anything, "f:comp1:u1").Return(&testUser, nil).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/f:comp1:u1", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "f:comp1:u1", body["id"])
		assert.Equal(t, "John", body["firstName"])
		assert.Equal(t, "Doe", body["lastName"])
		assert.Equal(t, true, body["emailVerified"])
		deps.mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("GetUser", mock.Anything, "f:comp2:u1").Return(nil, service.ErrUserNotFound).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/f:comp2:u1", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		deps.mockService.AssertExpectations(t)
	})
}

func TestFederationHandler_GetUserByUsernameAndEmail(t *testing.T) {
	deps := setupFederationHandlerTest(t)
	deps.mockService.On("GetUserByUsername", mock.Anything, "john").Return(&testUser, nil).Once()
	deps.mockService.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, service.ErrUserNotFound).Once()

	rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/by-username/john", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(deps.echo, http.MethodGet, "/api/federation/users/by-email/nobody@example.com", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	deps.mockService.AssertExpectations(t)
}

func TestFederationHandler_EncodedPathParams(t *testing.T) {
	t.Run("EncodedID", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("GetUser", mock.Anything, "f:comp1:u1").Return(&testUser, nil).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/f%3Acomp1%3Au1", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.mockService.AssertExpectations(t)
	})

	t.Run("EncodedEmail", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("GetUserByEmail", mock.Anything, "john@example.com").Return(&testUser, nil).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/by-email/john%40example.com", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.mockService.AssertExpectations(t)
	})

	t.Run("EncodedUsername", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("GetUserByUsername", mock.Anything, "john doe").Return(&testUser, nil).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/by-username/john%20doe", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.mockService.AssertExpectations(t)
	})

	t.Run("MalformedEscape", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)

		req := httptest.NewRequest(http.MethodGet, "/api/federation/users/placeholder", nil)
		req.URL.RawPath = "/api/federation/users/f%ZZ"
		rec := httptest.NewRecorder()
		deps.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		deps.mockService.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})
}

func TestFederationHandler_SearchUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("SearchUsers", mock.Anything, mock.MatchedBy(func(c *query.Criteria) bool {
			v, _ := c.Get(query.KeyUsername)
			return v == "jo" && c.Exact() && !c.Has("first") && !c.Has("max") && c.Len() == 2
		}), 20, 10).Return([]models.UserEntity{testUser}).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users?username=jo&exact=true&first=20&max=10", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp models.UserListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []models.UserEntity{testUser}, resp.Users)
		deps.mockService.AssertExpectations(t)
	})

	t.Run("EmptyResult", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("SearchUsers", mock.Anything, mock.Anything, 0, 0).Return([]models.UserEntity{}).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users?search=*", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"users":[]}`, rec.Body.String())
		deps.mockService.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users?max=ten", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = performRequest(deps.echo, http.MethodGet, "/api/federation/users?first=1.5", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		deps.mockService.AssertNotCalled(t, "SearchUsers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFederationHandler_SearchUsersByAttribute(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)
		deps.mockService.On("SearchUsersByAttribute", mock.Anything, "department", "Finance").Return([]models.UserEntity{testUser}).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/by-attribute?name=department&value=Finance", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.mockService.AssertExpectations(t)
	})

	t.Run("MissingName", func(t *testing.T) {
		deps := setupFederationHandlerTest(t)

		rec := performRequest(deps.echo, http.MethodGet, "/api/federation/users/by-attribute?value=Finance", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		deps.mockService.AssertNotCalled(t, "SearchUsersByAttribute", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFederationHandler_ValidateCredential(t *testing.T) {
	validReq := models.CredentialValidationRequest{Username: "john", Type: "password", Value: "secret"}

	tests := []struct {
		name           string
		body           any
		setupMock      func(m *mocks.MockFederationProvider)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Valid",
			body: validReq,
			setupMock: func(m *mocks.MockFederationProvider) {
				m.On("ValidateCredential", mock.Anything, validReq).Return(true, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":true}`,
		},
		{
			name: "Invalid",
			body: validReq,
			setupMock: func(m *mocks.MockFederationProvider) {
				m.On("ValidateCredential", mock.Anything, validReq).Return(false, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":false}`,
		},
		{
			name: "UnsupportedTypeIsInvalid",
			body: models.CredentialValidationRequest{Username: "john", Type: "otp", Value: "123456"},
			setupMock: func(m *mocks.MockFederationProvider) {
				m.On("ValidateCredential", mock.Anything, mock.Anything).Return(false, service.ErrUnsupportedCredentialType).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"valid":false}`,
		},
		{
			name: "Locked",
			body: validReq,
			setupMock: func(m *mocks.MockFederationProvider) {
				m.On("ValidateCredential", mock.Anything, validReq).Return(false, service.ErrAccountLocked).Once()
			},
			expectedStatus: http.StatusLocked,
		},
		{
			name:           "InvalidJSON",
			body:           "{invalid json",
			setupMock:      func(m *mocks.MockFederationProvider) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MissingUsername",
			body:           models.CredentialValidationRequest{Type: "password", Value: "secret"},
			setupMock:      func(m *mocks.MockFederationProvider) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupFederationHandlerTest(t)
			tt.setupMock(deps.mockService)

			rec := performRequest(deps.echo, http.MethodPost, "/api/federation/credentials/validate", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
			deps.mockService.AssertExpectations(t)
		})
	}
}

func TestFederationHandler_SupportsCredentialType(t *testing.T) {
	deps := setupFederationHandlerTest(t)
	deps.mockService.On("SupportsCredentialType", "password").Return(true).Once()
	deps.mockService.On("SupportsCredentialType", "otp").Return(false).Once()

	rec := performRequest(deps.echo, http.MethodGet, "/api/federation/credentials/types/password", nil)
	assert.JSONEq(t, `{"type":"password","supported":true}`, rec.Body.String())

	rec = performRequest(deps.echo, http.MethodGet, "/api/federation/credentials/types/otp", nil)
	assert.JSONEq(t, `{"type":"otp","supported":false}`, rec.Body.String())
	deps.mockService.AssertExpectations(t)
}
