//go:build !integration

package notification

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestSendEmail_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3.1/send" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("authorization = %q, want %q", got, want)
		}

		var body payloadSendEmail
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(body.Messages) != 1 {
			t.Fatalf("messages = %+v", body.Messages)
		}
		m := body.Messages[0]
		if m.From.Email != "noreply@campus.test" || m.To[0].Email != "ana@campus.test" || m.Subject != "Verify" {
			t.Errorf("message = %+v", m)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewMailjetRepository(MailjetConfig{
		MailjetBaseURL:           srv.URL,
		MailjetBasicAuthUsername: "user",
		MailjetBasicAuthPassword: "pass",
		MailjetSenderEmail:       "noreply@campus.test",
		MailjetSenderName:        "Campus Events",
	})

	if err := repo.SendEmail(context.Background(), "Ana", "ana@campus.test", "Verify", "hello"); err != nil {
		t.Fatalf("SendEmail: %v", err)
	}
}

func TestSendEmail_NegativeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ErrorMessage":"bad sender"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	repo := NewMailjetRepository(MailjetConfig{MailjetBaseURL: srv.URL})
	if err := repo.SendEmail(context.Background(), "Ana", "ana@campus.test", "Verify", "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendEmail_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMailjetRepository(MailjetConfig{MailjetBaseURL: "http://127.0.0.1:0"})
	if err := repo.SendEmail(ctx, "Ana", "ana@campus.test", "Verify", "hello"); err == nil {
		t.Fatal("expected error")
	}
}
