package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecureHeaders(t *testing.T) {
	next, _ := okHandler()
	rr := httptest.NewRecorder()
	SecureHeaders(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "0",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "interest-cohort=()",
	}
	for k, v := range want {
		if got := rr.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestAllowFraming(t *testing.T) {
	next, _ := okHandler()
	h := SecureHeaders(AllowFraming([]string{"http://localhost:5173"})(next))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/projects/x/preview", nil))

	if got := rr.Header().Get("X-Frame-Options"); got != "" {
		t.Errorf("X-Frame-Options = %q, want removed", got)
	}
	if got := rr.Header().Get("Content-Security-Policy"); got != "frame-ancestors 'self' http://localhost:5173" {
		t.Errorf("CSP = %q", got)
	}
}
