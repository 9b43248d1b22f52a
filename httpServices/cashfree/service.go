package cashfree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the payment gateway's order API. Only the narrow contract
// the engine consumes is implemented: create an order, get back a payment
// session id.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	secretKey  string
}

func NewClient(baseURL, appID, secretKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   baseURL,
		appID:     appID,
		secretKey: secretKey,
	}
}

// CreateOrder registers a payment order with the gateway and returns the
// payment session the customer completes checkout with.
func (c *Client) CreateOrder(req CreateOrderRequest) (*CreateOrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/pg/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-api-version", "2023-08-01")
	httpReq.Header.Set("x-client-id", c.appID)
	httpReq.Header.Set("x-client-secret", c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway returned non-OK status %s: %s", resp.Status, string(respBody))
	}

	var apiResp CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	if apiResp.PaymentSessionID == "" {
		return nil, errors.New("gateway response missing payment_session_id")
	}

	return &apiResp, nil
}
