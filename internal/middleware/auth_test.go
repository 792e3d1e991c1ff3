package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seplitza/rejuvena-gateway/internal/middleware"
	"github.com/seplitza/rejuvena-gateway/internal/session"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSessions := NewMocksessionFetcher(ctrl)
	authMiddleware := middleware.NewAuthMiddlewareHandler(mockSessions)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
		mockSession        *session.Session
		mockSessionErr     error
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/courses",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AllowedPathPrefixWithoutToken",
			path:               "/courses/abc/rules",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "LoginAllowedWithoutToken",
			path:               "/a/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "NotAllowedPathWithoutToken",
			path:               "/marathon/c1/day/current",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidToken",
			path:               "/secure/resource",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			mockSession: &session.Session{
				Token: "valid-token",
				User:  session.TestUser(),
			},
		},
		{
			name:               "InvalidToken",
			path:               "/secure/resource",
			method:             "GET",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
			mockSessionErr:     session.ErrSessionNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			assert.NoError(t, err)
			if tc.token != "" {
				req.Header.Add(session.TokenHeader, tc.token)
			}

			if tc.path == "/secure/resource" {
				mockSessions.EXPECT().
					Get(gomock.Any(), tc.token).
					Return(tc.mockSession, tc.mockSessionErr).AnyTimes()
			}

			var gotSession *session.Session
			rr := httptest.NewRecorder()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSession, _ = session.FromContext(r.Context())
			})
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.mockSession != nil {
				assert.Equal(t, tc.mockSession, gotSession)
			}
		})
	}
}
