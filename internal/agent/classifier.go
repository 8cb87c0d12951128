package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Classification is the classifier verdict for a ticket text.
type Classification struct {
	Category   domain.TicketCategory
	Confidence float64
	Provider   string
	Model      string
}

// Keyword sets for the deterministic fallback. Precedence on tied hit
// counts: billing > tech > shipping.
var (
	billingKeywords  = []string{"refund", "invoice", "payment", "billing", "charge", "subscription", "price"}
	techKeywords     = []string{"error", "bug", "crash", "broken", "not working", "stack", "code", "api"}
	shippingKeywords = []string{"delivery", "shipment", "shipping", "package", "tracking", "order"}
)

const (
	fallbackProvider      = "stub"
	fallbackModel         = "deterministic-v1"
	remoteProvider        = "llm"
	baseConfidence        = 0.3
	hitConfidenceBase     = 0.5
	hitConfidenceStep     = 0.15
	maxFallbackConfidence = 0.9
)

// Classifier predicts a ticket category. The primary path calls an external
// service under a bounded timeout with retries; the keyword fallback is the
// availability backstop and never fails.
type Classifier struct {
	cfg     config.AgentConfig
	client  *http.Client
	retry   RetryPolicy
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewClassifier builds a classifier from config. A nil metrics handle is
// allowed for tests.
func NewClassifier(cfg config.AgentConfig, retry RetryPolicy, logger *zap.Logger, metrics *observability.Metrics) *Classifier {
	return &Classifier{
		cfg:     cfg,
		client:  &http.Client{},
		retry:   retry,
		logger:  logger,
		metrics: metrics,
	}
}

// StubMode reports whether the external provider is unavailable by
// configuration.
func (c *Classifier) StubMode() bool {
	return c.cfg.StubMode || c.cfg.APIKey == "" || c.cfg.APIURL == ""
}

// Classify returns a category prediction for text. Provider errors are
// retried per the policy and then downgraded to the fallback; they are never
// surfaced to the caller.
func (c *Classifier) Classify(ctx context.Context, text string) (Classification, error) {
	if strings.TrimSpace(text) == "" {
		return Classification{}, util.NewValidationError("classification text required", nil)
	}
	if c.StubMode() {
		return c.fallbackClassify(text), nil
	}

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		result, err := c.callProvider(ctx, text)
		if err == nil {
			return result, nil
		}
		c.logger.Warn("classification attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == c.retry.MaxAttempts {
			break
		}
		if err := c.retry.Sleep(ctx, attempt); err != nil {
			break
		}
	}

	c.logger.Info("all classification attempts failed, using fallback")
	return c.fallbackClassify(text), nil
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
}

func (c *Classifier) callProvider(ctx context.Context, text string) (Classification, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout())
	defer cancel()

	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Classification{}, err
	}
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Classification{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Classification{}, fmt.Errorf("classifier service returned status %d", resp.StatusCode)
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Classification{}, fmt.Errorf("decode classifier response: %w", err)
	}
	category := domain.TicketCategory(parsed.Category)
	if !domain.ValidCategory(category) {
		return Classification{}, fmt.Errorf("classifier returned unknown category %q", parsed.Category)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return Classification{}, fmt.Errorf("classifier returned confidence %f out of range", parsed.Confidence)
	}

	model := parsed.Model
	if model == "" {
		model = "remote"
	}
	return Classification{
		Category:   category,
		Confidence: parsed.Confidence,
		Provider:   remoteProvider,
		Model:      model,
	}, nil
}

// fallbackClassify is the deterministic keyword engine. It must never fail.
func (c *Classifier) fallbackClassify(text string) Classification {
	if c.metrics != nil {
		c.metrics.RecordClassifierFallback()
	}
	lower := strings.ToLower(text)

	billingHits := countHits(lower, billingKeywords)
	techHits := countHits(lower, techKeywords)
	shippingHits := countHits(lower, shippingKeywords)

	maxHits := billingHits
	if techHits > maxHits {
		maxHits = techHits
	}
	if shippingHits > maxHits {
		maxHits = shippingHits
	}

	category := domain.CategoryOther
	confidence := baseConfidence
	if maxHits > 0 {
		switch {
		case billingHits == maxHits:
			category = domain.CategoryBilling
		case techHits == maxHits:
			category = domain.CategoryTech
		default:
			category = domain.CategoryShipping
		}
		confidence = hitConfidenceBase + float64(maxHits)*hitConfidenceStep
		if confidence > maxFallbackConfidence {
			confidence = maxFallbackConfidence
		}
	}

	return Classification{
		Category:   category,
		Confidence: confidence,
		Provider:   fallbackProvider,
		Model:      fallbackModel,
	}
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}
