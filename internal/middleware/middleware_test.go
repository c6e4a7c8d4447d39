package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/AsgharZaheer/todo-app-chatbot/pkg/helpers"
)

type stubVerifier struct {
	uid string
	err error
}

func (s stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Token{UID: s.uid}, nil
}

func TestFirebaseAuth(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		verifier stubVerifier
		status   int
		uid      string
	}{
		{"missing header", "", stubVerifier{uid: "alice"}, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", stubVerifier{uid: "alice"}, http.StatusUnauthorized, ""},
		{"bad token", "Bearer abc", stubVerifier{err: errors.New("expired")}, http.StatusUnauthorized, ""},
		{"valid", "Bearer abc", stubVerifier{uid: "alice"}, http.StatusOK, "alice"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUID = UID(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			m := NewMiddleware(tc.verifier)

			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			m.FirebaseAuth(next).ServeHTTP(rr, req)

			if rr.Code != tc.status || gotUID != tc.uid {
				t.Fatalf("want %d/%q, got %d/%q", tc.status, tc.uid, rr.Code, gotUID)
			}
		})
	}
}
