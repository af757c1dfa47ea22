package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPMailerSend(t *testing.T) {
	var gotAuth string
	var gotReq sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m, err := NewHTTPMailer(srv.URL, "secret-key", "Falım <no-reply@falim.app>")
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if err := m.Send(context.Background(), "ayse@example.com", "Merhaba", "<p>Selam</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReq.To != "ayse@example.com" || gotReq.Subject != "Merhaba" || gotReq.HTML != "<p>Selam</p>" {
		t.Fatalf("request = %+v", gotReq)
	}
	if gotReq.From != "Falım <no-reply@falim.app>" {
		t.Fatalf("from = %q", gotReq.From)
	}
}

func TestHTTPMailerSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer srv.Close()

	m, err := NewHTTPMailer(srv.URL, "", "no-reply@falim.app")
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	err = m.Send(context.Background(), "bad", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("err = %v, want provider message surfaced", err)
	}
}

func TestNewHTTPMailerValidation(t *testing.T) {
	if _, err := NewHTTPMailer("", "k", "from@x"); err == nil {
		t.Fatalf("blank endpoint must be rejected")
	}
	if _, err := NewHTTPMailer("http://mail", "k", "  "); err == nil {
		t.Fatalf("blank sender must be rejected")
	}
}

func TestVerificationEmail(t *testing.T) {
	subject, body := VerificationEmail("https://falim.app/verify", "abc123")
	if subject == "" {
		t.Fatalf("empty subject")
	}
	if !strings.Contains(body, "https://falim.app/verify?token=abc123") {
		t.Fatalf("body missing verification link: %s", body)
	}
	// Existing query strings get appended to, not clobbered.
	_, body = VerificationEmail("https://falim.app/verify?lang=tr", "abc123")
	if !strings.Contains(body, "?lang=tr&token=abc123") {
		t.Fatalf("body does not extend the query string: %s", body)
	}
}
