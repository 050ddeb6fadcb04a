package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aabid-khan7222/myschool-sub002/internal/domain"
	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
	"github.com/rs/zerolog"
)

const maxResponseBytes = 8 << 20

// Classifier turns a raw response into a payload or a typed failure. A 401
// additionally clears the stored credentials and publishes session expiry.
type Classifier struct {
	credentials ports.CredentialStore
	notifier    *SessionNotifier
	logger      zerolog.Logger
	metrics     *Metrics
}

func NewClassifier(credentials ports.CredentialStore, notifier *SessionNotifier, logger zerolog.Logger, metrics *Metrics) *Classifier {
	if notifier == nil {
		notifier = NewSessionNotifier()
	}
	return &Classifier{
		credentials: credentials,
		notifier:    notifier,
		logger:      logger,
		metrics:     metrics,
	}
}

func (c *Classifier) Classify(ctx context.Context, resp *http.Response) (domain.Payload, error) {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		c.expireSession(ctx)
		body, _ := readBody(resp.Body)
		return nil, &domain.HTTPError{Status: resp.StatusCode, Body: body}
	}

	body, err := readBody(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domain.RateLimitedError{Message: body}
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, &domain.HTTPError{Status: resp.StatusCode, Body: body}
	}

	if strings.TrimSpace(body) == "" {
		return nil, domain.ErrEmptyBody
	}

	var parsed json.RawMessage
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, &domain.MalformedBodyError{Body: body, Err: err}
	}

	return domain.Payload(parsed), nil
}

func (c *Classifier) expireSession(ctx context.Context) {
	if c.credentials != nil {
		if err := c.credentials.Clear(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("clear credentials after unauthorized response")
		}
	}

	c.logger.Warn().Msg("session expired: server rejected the current credentials")
	c.metrics.sessionExpired()
	c.notifier.Publish(ctx)
}

var errBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)

// readBody never hands back a truncated body: anything over the cap is an
// error, so a cut-off document is not mistaken for a malformed one.
func readBody(body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseBytes+1))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if len(data) > maxResponseBytes {
		return "", errBodyTooLarge
	}
	return string(data), nil
}
