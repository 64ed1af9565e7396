package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"odeplac.in/pro/config"
)

// EmailService delivers transactional mail through the provider's HTTP
// API. Delivery is best-effort everywhere it is used: a failed send is
// logged and never rolls back the state change that triggered it.
type EmailService struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func NewEmailService() *EmailService {
	return &EmailService{
		baseURL: config.App.EmailBaseURL,
		apiKey:  config.App.EmailAPIKey,
		from:    config.App.EmailFrom,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type emailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts one message to the provider. When no provider is configured
// the message is logged and dropped, which keeps local development free
// of external calls.
func (s *EmailService) Send(ctx context.Context, to, subject, html string) error {
	if s.baseURL == "" {
		log.WithFields(log.Fields{"to": to, "subject": subject}).Info("email provider not configured, skipping send")
		return nil
	}

	body, err := json.Marshal(emailMessage{From: s.from, To: to, Subject: subject, HTML: html})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("email provider call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync fires the send on its own goroutine with a fresh timeout so
// the caller's request context cannot cancel it mid-flight.
func (s *EmailService) SendAsync(to, subject, html string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Send(ctx, to, subject, html); err != nil {
			log.WithError(err).WithField("to", to).Warn("email delivery failed")
		}
	}()
}
