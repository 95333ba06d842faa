package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNotAuthenticated means the commerce backend rejected or never received
// a customer credential. Callers surface it as a "please log in" condition.
var ErrNotAuthenticated = errors.New("not authenticated")

// ValidationError is a field-level user error reported by the commerce
// backend (unavailable variant, quantity over stock). The message is passed
// through to the end user verbatim and the operation is not retried.
type ValidationError struct {
	Message string
	Field   string
	Code    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("commerce backend rejected request: %s", e.Message)
}

// Client talks to the commerce GraphQL endpoint. It owns no domain state;
// every call is a single request-response round trip.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a commerce client. The token is the storefront access
// token sent on every request; customer credentials travel per call.
func NewClient(endpoint, token string, log *logrus.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{},
		log:        log,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// query posts a raw GraphQL document and unmarshals the data envelope into
// out.
func (c *Client) query(ctx context.Context, document string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: document, Variables: variables})
	if err != nil {
		return errors.Wrap(err, "failed to marshal graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "commerce request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("commerce backend returned status %d", resp.StatusCode)
	}

	var envelope graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(err, "failed to decode graphql response")
	}
	if len(envelope.Errors) > 0 {
		msg := envelope.Errors[0].Message
		if strings.Contains(strings.ToLower(msg), "access denied") {
			return ErrNotAuthenticated
		}
		return errors.Errorf("graphql error: %s", msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal graphql data")
	}
	return nil
}

// userErrorNode is the wire shape of a backend user error.
type userErrorNode struct {
	Message string   `json:"message"`
	Field   []string `json:"field"`
	Code    string   `json:"code"`
}

func (n userErrorNode) toValidationError() *ValidationError {
	return &ValidationError{
		Message: n.Message,
		Field:   strings.Join(n.Field, "."),
		Code:    n.Code,
	}
}

type moneyNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}
