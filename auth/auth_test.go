package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, exp := IssueToken(42)
	if exp.Before(time.Now()) {
		t.Fatalf("expiry in the past: %v", exp)
	}
	uid, ok := ParseToken(token)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42 got %d (%v)", uid, ok)
	}
}

func TestTokenTampered(t *testing.T) {
	token, _ := IssueToken(42)
	parts := strings.Split(token, ".")
	forged := "1." + parts[1] + "." + parts[2]
	if _, ok := ParseToken(forged); ok {
		t.Fatalf("forged token accepted")
	}
	if _, ok := ParseToken("garbage"); ok {
		t.Fatalf("garbage accepted")
	}
}

func TestTokenExpired(t *testing.T) {
	orig := now
	defer func() { now = orig }()
	now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }
	token, _ := IssueToken(7)
	now = orig
	if _, ok := ParseToken(token); ok {
		t.Fatalf("expired token accepted")
	}
}

func TestParseSessionBearerAndCookie(t *testing.T) {
	token, _ := IssueToken(9)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if uid, ok := ParseSession(r); !ok || uid != 9 {
		t.Fatalf("bearer: expected 9 got %d", uid)
	}

	w := httptest.NewRecorder()
	CreateSession(w, 9)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	if uid, ok := ParseSession(r); !ok || uid != 9 {
		t.Fatalf("cookie: expected 9 got %d", uid)
	}
}

func TestRequireAuth(t *testing.T) {
	defer SetUserVerifier(nil)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(RequireAuth(ok))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	token, _ := IssueToken(3)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}

	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid != 3 })
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rejected user got %d", w.Code)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}
