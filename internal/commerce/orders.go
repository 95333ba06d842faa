package commerce

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/entity"
)

const customerOrdersQuery = `
query customerOrders($customerAccessToken: String!, $first: Int!) {
	customer(customerAccessToken: $customerAccessToken) {
		orders(first: $first, sortKey: PROCESSED_AT, reverse: true) {
			edges {
				node {
					id
					orderNumber
					processedAt
					canceledAt
					financialStatus
					fulfillmentStatus
					totalPrice {
						amount
						currencyCode
					}
					lineItems(first: 100) {
						edges {
							node {
								title
								quantity
								originalTotalPrice {
									amount
									currencyCode
								}
								variant {
									price {
										amount
										currencyCode
									}
									image {
										url
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

type orderLineNode struct {
	Title              string     `json:"title"`
	Quantity           int        `json:"quantity"`
	OriginalTotalPrice *moneyNode `json:"originalTotalPrice"`
	Variant            *struct {
		Price *moneyNode `json:"price"`
		Image *struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"variant"`
}

type orderNode struct {
	ID                string    `json:"id"`
	OrderNumber       int       `json:"orderNumber"`
	ProcessedAt       string    `json:"processedAt"`
	CanceledAt        *string   `json:"canceledAt"`
	FinancialStatus   string    `json:"financialStatus"`
	FulfillmentStatus string    `json:"fulfillmentStatus"`
	TotalPrice        moneyNode `json:"totalPrice"`
	LineItems         struct {
		Edges []struct {
			Node orderLineNode `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

// CustomerOrders fetches the authenticated customer's order history. A
// missing or rejected credential maps to ErrNotAuthenticated. Orders that
// fail to decode are dropped with a warning; the rest of the batch survives.
func (c *Client) CustomerOrders(ctx context.Context, accessToken string, first int) ([]entity.RawOrder, error) {
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}

	var data struct {
		Customer *struct {
			Orders struct {
				Edges []struct {
					Node orderNode `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		} `json:"customer"`
	}
	variables := map[string]any{
		"customerAccessToken": accessToken,
		"first":               first,
	}
	if err := c.query(ctx, customerOrdersQuery, variables, &data); err != nil {
		return nil, err
	}
	if data.Customer == nil {
		return nil, ErrNotAuthenticated
	}

	orders := make([]entity.RawOrder, 0, len(data.Customer.Orders.Edges))
	for _, edge := range data.Customer.Orders.Edges {
		order, err := c.decodeOrder(edge.Node)
		if err != nil {
			c.log.WithError(err).WithField("order_id", edge.Node.ID).Warn("Dropping undecodable order from history")
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *Client) decodeOrder(node orderNode) (entity.RawOrder, error) {
	if node.ID == "" {
		return entity.RawOrder{}, errors.New("order missing id")
	}
	total, err := entity.NewMoney(node.TotalPrice.Amount, node.TotalPrice.CurrencyCode)
	if err != nil {
		return entity.RawOrder{}, errors.Wrap(err, "order total")
	}
	createdAt, err := time.Parse(time.RFC3339, node.ProcessedAt)
	if err != nil {
		return entity.RawOrder{}, errors.Wrap(err, "order processedAt")
	}

	order := entity.RawOrder{
		ID:                node.ID,
		OrderNumber:       node.OrderNumber,
		Total:             total,
		CreatedAt:         createdAt,
		FinancialStatus:   node.FinancialStatus,
		FulfillmentStatus: node.FulfillmentStatus,
	}
	if node.CanceledAt != nil {
		cancelledAt, err := time.Parse(time.RFC3339, *node.CanceledAt)
		if err != nil {
			return entity.RawOrder{}, errors.Wrap(err, "order canceledAt")
		}
		order.CancelledAt = &cancelledAt
	}

	for _, edge := range node.LineItems.Edges {
		line, err := c.decodeOrderLine(edge.Node, total.CurrencyCode)
		if err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"order_id": node.ID,
				"title":    edge.Node.Title,
			}).Warn("Dropping undecodable order line")
			continue
		}
		order.LineItems = append(order.LineItems, line)
	}
	return order, nil
}

func (c *Client) decodeOrderLine(node orderLineNode, currency string) (entity.RawLineItem, error) {
	line := entity.RawLineItem{
		Title:    node.Title,
		Quantity: node.Quantity,
	}
	if node.OriginalTotalPrice != nil {
		original, err := entity.NewMoney(node.OriginalTotalPrice.Amount, node.OriginalTotalPrice.CurrencyCode)
		if err != nil {
			return entity.RawLineItem{}, errors.Wrap(err, "line original total")
		}
		line.OriginalTotal = &original
	}
	if node.Variant != nil {
		if node.Variant.Price != nil {
			current, err := entity.NewMoney(node.Variant.Price.Amount, currency)
			if err != nil {
				return entity.RawLineItem{}, errors.Wrap(err, "line current price")
			}
			line.CurrentUnitPrice = &current
		}
		if node.Variant.Image != nil {
			line.Image = node.Variant.Image.URL
		}
	}
	return line, nil
}
