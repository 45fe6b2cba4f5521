package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultBaseURL = "https://api.stripe.com"

var (
	// ErrCardDeclined is returned when the gateway rejects the card itself
	// (declined, expired, insufficient funds).
	ErrCardDeclined = errors.New("card declined")
	// ErrChargeNotFound is returned by FindByCheckoutRef when no charge
	// carries the reference.
	ErrChargeNotFound = errors.New("charge not found")
)

type ChargeInput struct {
	Amount      int64
	Currency    string
	Description string
	SourceToken string
	CheckoutRef string
}

type Charge struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type apiError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the Stripe charges API. All calls go through a circuit
// breaker so a dead gateway sheds load fast; the breaker never retries.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Charge]
	baseURL    string
	secretKey  string
	logger     *log.Logger
}

func New(secretKey, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	settings := gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		// declines and empty searches are gateway answers, not outages
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCardDeclined) || errors.Is(err, ErrChargeNotFound)
		},
	}
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		breaker:    gobreaker.NewCircuitBreaker[*Charge](settings),
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		logger:     logger,
	}
}

// Charge creates a charge. The checkout reference doubles as the Stripe
// idempotency key and is stored in the charge metadata so Reconcile can
// find it again.
func (c *Client) Charge(ctx context.Context, in ChargeInput) (*Charge, error) {
	return c.breaker.Execute(func() (*Charge, error) {
		form := url.Values{}
		form.Set("amount", strconv.FormatInt(in.Amount, 10))
		form.Set("currency", in.Currency)
		form.Set("description", in.Description)
		form.Set("source", in.SourceToken)
		form.Set("metadata[checkout_ref]", in.CheckoutRef)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
		req.Header.Set("Idempotency-Key", in.CheckoutRef)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("charge request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read charge response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, c.decodeError(resp.StatusCode, body)
		}

		var charge Charge
		if err := json.Unmarshal(body, &charge); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		c.logger.Printf("stripe: charged id=%s amount=%d %s", charge.ID, charge.Amount, charge.Currency)
		return &charge, nil
	})
}

// FindByCheckoutRef searches charges by the checkout_ref metadata key.
func (c *Client) FindByCheckoutRef(ctx context.Context, ref string) (*Charge, error) {
	return c.breaker.Execute(func() (*Charge, error) {
		query := fmt.Sprintf("metadata['checkout_ref']:'%s'", ref)
		u := c.baseURL + "/v1/charges/search?query=" + url.QueryEscape(query)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.secretKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("search request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read search response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, c.decodeError(resp.StatusCode, body)
		}

		var out struct {
			Data []Charge `json:"data"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode search: %w", err)
		}
		if len(out.Data) == 0 {
			return nil, ErrChargeNotFound
		}
		return &out.Data[0], nil
	})
}

func (c *Client) decodeError(status int, body []byte) error {
	var wrapper struct {
		Error apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil || wrapper.Error.Type == "" {
		return fmt.Errorf("stripe: unexpected status %d", status)
	}
	if wrapper.Error.Type == "card_error" {
		c.logger.Printf("stripe: card declined code=%s", wrapper.Error.Code)
		return fmt.Errorf("%s: %w", wrapper.Error.Message, ErrCardDeclined)
	}
	return fmt.Errorf("stripe: %s (%s)", wrapper.Error.Message, wrapper.Error.Type)
}
