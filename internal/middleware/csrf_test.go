package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCSRFIssuesCookie(t *testing.T) {
	next, called := okHandler()
	rr := httptest.NewRecorder()
	CSRF(true)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if !*called {
		t.Fatal("GET should pass through")
	}
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected a pc_csrf cookie")
	}
	if len(cookie.Value) != csrfTokenLength*2 {
		t.Errorf("token length = %d, want %d", len(cookie.Value), csrfTokenLength*2)
	}
	if cookie.HttpOnly {
		t.Error("frontend must be able to read the token cookie")
	}
	if !cookie.Secure {
		t.Error("cookie should be Secure when requested")
	}
}

func TestCSRFValidation(t *testing.T) {
	const token = "abc123"
	tests := []struct {
		name       string
		method     string
		cookie     string
		header     string
		wantStatus int
	}{
		{name: "safe method without header", method: http.MethodGet, cookie: token, wantStatus: http.StatusOK},
		{name: "options", method: http.MethodOptions, cookie: token, wantStatus: http.StatusOK},
		{name: "matching header", method: http.MethodPost, cookie: token, header: token, wantStatus: http.StatusOK},
		{name: "patch matching", method: http.MethodPatch, cookie: token, header: token, wantStatus: http.StatusOK},
		{name: "missing header", method: http.MethodPost, cookie: token, wantStatus: http.StatusForbidden},
		{name: "wrong header", method: http.MethodDelete, cookie: token, header: "nope", wantStatus: http.StatusForbidden},
		{name: "no cookie yet", method: http.MethodPut, header: token, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := okHandler()
			req := httptest.NewRequest(tt.method, "/api/projects", strings.NewReader("{}"))
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()
			CSRF(false)(next).ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden && errorBody(t, rr) != "csrf token mismatch" {
				t.Errorf("unexpected error body %q", rr.Body.String())
			}
		})
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
	if got := GetCSRFToken(req); got != "tok" {
		t.Errorf("got %q, want tok", got)
	}
}
