// Package mail sends transactional email through an HTTP email provider.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// HTTPMailer posts messages to a JSON email API (Resend-style).
type HTTPMailer struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewHTTPMailer constructs a mailer for the given provider endpoint.
func NewHTTPMailer(endpoint, apiKey, from string) (*HTTPMailer, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("mail endpoint required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("mail sender address required")
	}
	return &HTTPMailer{
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(apiKey),
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendErrorResponse struct {
	Message string `json:"message"`
}

// Send posts one message to the provider.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	body, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp sendErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message != "" {
			return fmt.Errorf("mail api error: %s", errResp.Message)
		}
		return fmt.Errorf("mail api error: %s", resp.Status)
	}
	return nil
}

// VerificationEmail builds the subject and body of the account verification
// message. verifyBaseURL points at the frontend confirmation page.
func VerificationEmail(verifyBaseURL, token string) (subject, htmlBody string) {
	link := verifyBaseURL
	if strings.Contains(link, "?") {
		link += "&token=" + url.QueryEscape(token)
	} else {
		link += "?token=" + url.QueryEscape(token)
	}
	subject = "E-posta adresinizi doğrulayın"
	htmlBody = fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
<h2>Hoş geldiniz!</h2>
<p>Hesabınızı etkinleştirmek için e-posta adresinizi doğrulamanız gerekiyor.</p>
<p><a href="%s" style="display:inline-block;padding:12px 24px;background:#6b4ba3;color:#fff;border-radius:8px;text-decoration:none">E-postamı Doğrula</a></p>
<p>Bağlantı 24 saat içinde geçerliliğini yitirir. Bu kaydı siz yapmadıysanız bu mesajı yok sayabilirsiniz.</p>
</div>`, link)
	return subject, htmlBody
}
