package commerce

import (
	"context"

	"github.com/pkg/errors"
)

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
	cartCreate(input: $input) {
		cart {
			id
			checkoutUrl
		}
		userErrors {
			message
			field
			code
		}
	}
}`

// CartLine is one line of a checkout creation request. MerchandiseID must
// already be in the backend's global-identifier format.
type CartLine struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// CreatedCart is the backend's answer to cartCreate. CheckoutURL points at
// the backend's internal commerce domain.
type CreatedCart struct {
	ID          string
	CheckoutURL string
}

// CreateCart creates a remote cart from all lines in one mutation round
// trip; there is no per-item call. Backend user errors come back as
// *ValidationError with the first reported message verbatim.
func (c *Client) CreateCart(ctx context.Context, lines []CartLine) (*CreatedCart, error) {
	var data struct {
		CartCreate struct {
			Cart *struct {
				ID          string `json:"id"`
				CheckoutURL string `json:"checkoutUrl"`
			} `json:"cart"`
			UserErrors []userErrorNode `json:"userErrors"`
		} `json:"cartCreate"`
	}

	variables := map[string]any{
		"input": map[string]any{"lines": lines},
	}
	if err := c.query(ctx, cartCreateMutation, variables, &data); err != nil {
		return nil, err
	}

	if len(data.CartCreate.UserErrors) > 0 {
		return nil, data.CartCreate.UserErrors[0].toValidationError()
	}
	if data.CartCreate.Cart == nil {
		return nil, errors.New("cartCreate returned no cart")
	}
	return &CreatedCart{
		ID:          data.CartCreate.Cart.ID,
		CheckoutURL: data.CartCreate.Cart.CheckoutURL,
	}, nil
}
