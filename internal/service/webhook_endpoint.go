package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

const (
	DefaultDeliveryLimit = 50
	MaxDeliveryLimit     = 200

	secretPrefix = "whsec_"
)

type WebhookEndpointService struct {
	endpoints  WebhookEndpointRepositoryInterface
	deliveries DeliveryRepositoryInterface
	defaultURL string
	logger     *slog.Logger
}

func NewWebhookEndpointService(
	endpoints WebhookEndpointRepositoryInterface,
	deliveries DeliveryRepositoryInterface,
	defaultURL string,
	logger *slog.Logger,
) *WebhookEndpointService {
	return &WebhookEndpointService{
		endpoints:  endpoints,
		deliveries: deliveries,
		defaultURL: defaultURL,
		logger:     logger,
	}
}

// Seed registers an active endpoint. An empty rawURL falls back to the
// configured test receiver and an empty secret is generated.
func (s *WebhookEndpointService) Seed(ctx context.Context, rawURL, signingSecret string) (*domain.WebhookEndpoint, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		rawURL = s.defaultURL
	}
	if err := validateEndpointURL(rawURL); err != nil {
		return nil, err
	}

	if signingSecret == "" {
		secret, err := generateSecret(24)
		if err != nil {
			return nil, fmt.Errorf("generate signing secret: %w", err)
		}
		signingSecret = secret
	}

	ep := &domain.WebhookEndpoint{
		URL:           rawURL,
		SigningSecret: signingSecret,
		IsActive:      true,
	}
	if err := s.endpoints.Create(ctx, ep); err != nil {
		return nil, err
	}

	s.logger.Info("webhook endpoint registered", "webhook_id", ep.ID, "url", ep.URL)

	return ep, nil
}

func (s *WebhookEndpointService) List(ctx context.Context) ([]domain.WebhookEndpoint, error) {
	return s.endpoints.ListAll(ctx)
}

func (s *WebhookEndpointService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.WebhookEndpoint, error) {
	ep, err := s.endpoints.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}

	s.logger.Info("webhook endpoint updated", "webhook_id", ep.ID, "is_active", ep.IsActive)

	return ep, nil
}

// RecentDeliveries clamps limit to 1..MaxDeliveryLimit, using
// DefaultDeliveryLimit when it is not positive.
func (s *WebhookEndpointService) RecentDeliveries(ctx context.Context, limit int) ([]domain.DeliveryWithRelations, error) {
	if limit <= 0 {
		limit = DefaultDeliveryLimit
	}
	if limit > MaxDeliveryLimit {
		limit = MaxDeliveryLimit
	}
	return s.deliveries.ListRecent(ctx, limit)
}

func validateEndpointURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return (&domain.ValidationError{}).Add("url", "must be an absolute http(s) URL")
	}
	return nil
}

func generateSecret(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return secretPrefix + hex.EncodeToString(b), nil
}
