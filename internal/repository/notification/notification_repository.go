package notification

import (
	"bytes"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pobyzaarif/goshortcute"
)

type MailjetConfig struct {
	MailjetBaseURL           string
	MailjetBasicAuthUsername string
	MailjetBasicAuthPassword string
	MailjetSenderEmail       string
	MailjetSenderName        string
}

type MailjetRepository struct {
	mailjetConfig MailjetConfig
	client        *http.Client
}

func NewMailjetRepository(cfg MailjetConfig) *MailjetRepository {
	return &MailjetRepository{
		mailjetConfig: cfg,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

type payloadSendEmail struct {
	Messages []Messages `json:"Messages"`
}

type Recipient struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type Messages struct {
	From     Recipient   `json:"From"`
	To       []Recipient `json:"To"`
	Subject  string      `json:"Subject"`
	TextPart string      `json:"TextPart"`
	HTMLPart string      `json:"HTMLPart"`
}

func (r *MailjetRepository) SendEmail(ctx context.Context, toName, toEmail, subject, message string) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("mailjet", "send_email", "v3.1/send", start, err)
	}()

	payload := payloadSendEmail{
		Messages: []Messages{{
			From: Recipient{
				Email: r.mailjetConfig.MailjetSenderEmail,
				Name:  r.mailjetConfig.MailjetSenderName,
			},
			To:       []Recipient{{Email: toEmail, Name: toName}},
			Subject:  subject,
			TextPart: message,
			HTMLPart: message,
		}},
	}

	payloadByte, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal json payload: %w", err)
	}

	url := strings.TrimRight(r.mailjetConfig.MailjetBaseURL, "/") + "/v3.1/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadByte))
	if err != nil {
		return err
	}

	buildBasicAuth := goshortcute.StringtoBase64Encode(r.mailjetConfig.MailjetBasicAuthUsername + ":" + r.mailjetConfig.MailjetBasicAuthPassword)
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Basic "+buildBasicAuth)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	logger.Warn("mailjet negative response", "status", res.StatusCode, "body", string(bodyBytes))

	return fmt.Errorf("mailer service return negative response %v", res.StatusCode)
}
