// Package product implements the barcode lookup proxy against the
// upstream nutrition database and the enrichment of its payloads with a
// derived total-sugar-per-container figure.
package product

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/zachmann/go-utils/duration"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	defaultTimeout = 10 * time.Second
)

// Config holds configuration for the upstream nutrition database
type Config struct {
	// BaseURL is the upstream root; the per-product endpoint
	// /api/v2/product/<barcode>.json is appended to it
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each upstream lookup
	Timeout duration.DurationOption `yaml:"timeout"`
	// InsecureSkipVerify disables upstream TLS chain validation. This is
	// an operational escape hatch for broken upstream chains in dev
	// setups and must never be enabled in a production posture.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Service fetches products by barcode and enriches the returned payload
type Service struct {
	baseURL string
	client  *http.Client
}

// NewService creates a product Service from the passed Config
func NewService(conf Config) *Service {
	baseURL := conf.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := conf.Timeout.Duration()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	if conf.InsecureSkipVerify {
		log.Warn("upstream TLS verification is disabled; do not run this in production")
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Service{baseURL: baseURL, client: client}
}

// NotFoundError signals that the upstream database does not know the barcode
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// UpstreamError signals a transport-level failure talking to the
// upstream database; it carries the underlying cause
type UpstreamError struct {
	Err error
}

// Error implements the error interface
func (e UpstreamError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying cause
func (e UpstreamError) Unwrap() error {
	return e.Err
}

// leadingNumber extracts the first numeric token out of a free-text
// quantity string, e.g. "500ml" or "6 x 330 ml"
var leadingNumber = regexp.MustCompile(`[\d.]+`)

// FetchAndEnrich looks up the given barcode upstream and returns the
// upstream JSON payload with nutriments.sugars_serving set to the
// derived total sugar per container, when it can be computed. The
// original sugars_100g figure is always passed through untouched so
// clients can still classify a product as sugar-free independent of
// container size.
func (s *Service) FetchAndEnrich(ctx context.Context, barcode string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v2/product/%s.json", s.baseURL, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, UpstreamError{Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, UpstreamError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, UpstreamError{Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, NotFoundError("product not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, UpstreamError{Err: errors.Errorf("upstream returned status %d", resp.StatusCode)}
	}

	// The upstream signals "unknown barcode" with status == 0 or by
	// omitting the product object entirely.
	if status := gjson.GetBytes(body, "status"); (status.Exists() && status.Int() == 0) ||
		!gjson.GetBytes(body, "product").Exists() {
		return nil, NotFoundError("product not found")
	}

	total, ok := totalContainerSugar(body)
	if !ok {
		return body, nil
	}
	return injectServingSugar(body, total)
}

// totalContainerSugar derives the total sugar content of one container
// from the upstream payload. The derived figure is supplementary; any
// missing or non-numeric input simply yields ok == false.
func totalContainerSugar(body []byte) (float64, bool) {
	quantity, ok := containerQuantity(body)
	if !ok {
		return 0, false
	}
	sugars := gjson.GetBytes(body, "product.nutriments.sugars_100g")
	if !sugars.Exists() {
		return 0, false
	}
	sugars100, err := strconv.ParseFloat(sugars.String(), 64)
	if err != nil {
		return 0, false
	}
	return quantity / 100 * sugars100, true
}

// containerQuantity determines the container's net content in g/ml,
// preferring the structured product_quantity field and falling back to
// the leading numeric token of the free-text quantity string.
func containerQuantity(body []byte) (float64, bool) {
	if q := gjson.GetBytes(body, "product.product_quantity"); q.Exists() && q.String() != "" {
		if v, err := strconv.ParseFloat(q.String(), 64); err == nil {
			return v, true
		}
	}
	q := gjson.GetBytes(body, "product.quantity").String()
	token := leadingNumber.FindString(q)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// injectServingSugar sets product.nutriments.sugars_serving on the
// payload without touching any other field
func injectServingSugar(body []byte, total float64) ([]byte, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "could not decode upstream payload")
	}
	prod, ok := payload["product"].(map[string]any)
	if !ok {
		return body, nil
	}
	nutriments, ok := prod["nutriments"].(map[string]any)
	if !ok {
		nutriments = make(map[string]any)
		prod["nutriments"] = nutriments
	}
	nutriments["sugars_serving"] = total
	return json.Marshal(payload)
}
