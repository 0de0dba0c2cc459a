package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/retry"
)

// statusError is a non-2xx answer from the receiver.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.code)
}

// HTTPService posts payloads as JSON and signs them when a secret is set.
type HTTPService struct {
	client *resty.Client
	url    string
	secret string
	policy retry.Policy
	log    zerolog.Logger
}

// NewHTTPService creates the sender. timeout bounds each attempt.
func NewHTTPService(url, secret string, timeout time.Duration, policy retry.Policy, log zerolog.Logger) *HTTPService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPService{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "pm-assistant-webhook/1.0"),
		url:    url,
		secret: secret,
		policy: policy,
		log:    log.With().Str("component", "webhook").Logger(),
	}
}

// Send posts the payload, retrying on transport errors, 429 and 5xx.
func (s *HTTPService) Send(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	_, err = retry.Do(ctx, s.policy, retryable, func(ctx context.Context, attempt int) (struct{}, error) {
		req := s.client.R().
			SetContext(ctx).
			SetHeader(HeaderEvent, payload.Event).
			SetHeader(HeaderDelivery, payload.ID).
			SetBody(body)
		if s.secret != "" {
			req.SetHeader(HeaderSignature, Sign(s.secret, body))
		}

		resp, err := req.Post(s.url)
		if err != nil {
			s.log.Warn().Err(err).Str("delivery_id", payload.ID).Int("attempt", attempt+1).Msg("webhook delivery failed")
			return struct{}{}, err
		}
		if resp.IsError() {
			s.log.Warn().Int("status", resp.StatusCode()).Str("delivery_id", payload.ID).Int("attempt", attempt+1).Msg("webhook rejected delivery")
			return struct{}{}, &statusError{code: resp.StatusCode()}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("deliver %s: %w", payload.Event, err)
	}

	s.log.Info().Str("delivery_id", payload.ID).Str("event", payload.Event).Msg("webhook delivered")
	return nil
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header produced by Sign.
func Verify(secret string, body []byte, header string) bool {
	got, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	want := strings.TrimPrefix(Sign(secret, body), "sha256=")
	return hmac.Equal([]byte(got), []byte(want))
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	return true
}
