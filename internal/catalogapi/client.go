// Package catalogapi reads phones from a remote catalog service and
// normalizes its records into domain.Phone values.
package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker/v2"

	"phonestore/internal/domain"
	applog "phonestore/internal/log"
	"phonestore/internal/metrics"
)

var (
	// ErrUnauthorized is returned when the catalog rejects the API key.
	ErrUnauthorized = errors.New("catalog: authentication failed, check API credentials")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = gobreaker.ErrOpenState
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultColors and DefaultStorageOptions fill in variants the catalog
// service does not provide.
func DefaultColors() []string { return []string{"Black", "White"} }

func DefaultStorageOptions() []domain.StorageOption {
	return []domain.StorageOption{
		{Size: "128GB", PriceIncrement: 0},
		{Size: "256GB", PriceIncrement: 100},
	}
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// a missing phone says nothing about the service's health
			return err == nil || errors.Is(err, domain.ErrPhoneNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			applog.Warn(nil, "catalog.breaker.state", nil, map[string]any{
				"breaker": name, "from": from.String(), "to": to.String(),
			})
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    hc,
		breaker: breaker,
	}
}

// apiFields checks that the required keys are present. A key holding null
// still counts as present.
type apiFields struct {
	ID        json.RawMessage `json:"id" validate:"required"`
	Brand     json.RawMessage `json:"brand" validate:"required"`
	Name      json.RawMessage `json:"name" validate:"required"`
	BasePrice json.RawMessage `json:"basePrice" validate:"required"`
}

// apiPhone is the record shape served by the catalog. Null values decode to
// zero values.
type apiPhone struct {
	ID        string  `json:"id"`
	Brand     string  `json:"brand"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"basePrice"`
	ImageURL  string  `json:"imageUrl"`
	ImgURL    string  `json:"img_url"`
	Image     string  `json:"image"`
}

func (a apiPhone) toPhone() domain.Phone {
	image := a.ImageURL
	if image == "" {
		image = a.ImgURL
	}
	if image == "" {
		image = a.Image
	}
	return domain.FromModel(domain.PhoneModel{
		ID:             a.ID,
		Brand:          a.Brand,
		Model:          a.Name,
		Price:          a.BasePrice,
		Image:          image,
		Colors:         DefaultColors(),
		StorageOptions: DefaultStorageOptions(),
	})
}

func decodePhone(raw []byte) (domain.Phone, error) {
	var fields apiFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Phone{}, fmt.Errorf("decode phone: %w", err)
	}
	if err := validate.Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Phone{}, fmt.Errorf("invalid phone data: missing required field %s", verrs[0].Field())
		}
		return domain.Phone{}, fmt.Errorf("invalid phone data: %w", err)
	}
	var a apiPhone
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Phone{}, fmt.Errorf("decode phone: %w", err)
	}
	return a.toPhone(), nil
}

// Phones lists the catalog. Null and non-object entries are skipped.
func (c *Client) Phones(ctx context.Context) ([]domain.Phone, error) {
	body, err := c.get(ctx, "list", "/products")
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("invalid catalog response: expected an array of phones: %w", err)
	}
	out := make([]domain.Phone, 0, len(raws))
	for _, raw := range raws {
		if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
			continue
		}
		p, err := decodePhone(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Phone fetches one record. Unknown ids yield domain.ErrPhoneNotFound.
func (c *Client) Phone(ctx context.Context, id string) (domain.Phone, error) {
	body, err := c.get(ctx, "get", "/products/"+url.PathEscape(id))
	if err != nil {
		return domain.Phone{}, err
	}
	if t := bytes.TrimSpace(body); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return domain.Phone{}, domain.ErrPhoneNotFound
	}
	return decodePhone(body)
}

func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request: %w", err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read catalog response: %w", err)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrPhoneNotFound
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, ErrUnauthorized
		case resp.StatusCode >= 300:
			return nil, responseError(resp.StatusCode, b)
		}
		return b, nil
	})

	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrPhoneNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.CatalogRequests.WithLabelValues(endpoint, outcome).Inc()
	return body, err
}

func responseError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("catalog error %d: %s", status, payload.Message)
	}
	return fmt.Errorf("catalog error %d: %s", status, http.StatusText(status))
}
