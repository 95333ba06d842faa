package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flamexyy/bloemige-storefront/internal/commerce"
	"github.com/flamexyy/bloemige-storefront/internal/entity"
)

// defaultOrderPageSize bounds one history fetch.
const defaultOrderPageSize = 50

// OrderGateway is the slice of the commerce backend the order history
// needs.
type OrderGateway interface {
	CustomerOrders(ctx context.Context, accessToken string, first int) ([]entity.RawOrder, error)
}

// OrderService fetches historical orders and reconciles their per-line
// pricing against the authoritative order total.
type OrderService struct {
	gateway OrderGateway
	log     *logrus.Logger
}

func NewOrderService(gateway OrderGateway, log *logrus.Logger) *OrderService {
	return &OrderService{gateway: gateway, log: log}
}

// GetOrders fetches and reconciles the customer's order history. An order
// that fails to reconcile is dropped from the result with a warning;
// partial history beats an all-or-nothing failure.
func (s *OrderService) GetOrders(ctx context.Context, session entity.Session) ([]entity.ReconciledOrder, error) {
	if !session.Authenticated() {
		return nil, commerce.ErrNotAuthenticated
	}

	raw, err := s.gateway.CustomerOrders(ctx, session.AccessToken, defaultOrderPageSize)
	if err != nil {
		return nil, err
	}

	orders := make([]entity.ReconciledOrder, 0, len(raw))
	for _, order := range raw {
		reconciled, err := s.Reconcile(order)
		if err != nil {
			s.log.WithError(err).WithField("order_id", order.ID).Warn("Dropping unreconcilable order from history")
			continue
		}
		orders = append(orders, reconciled)
	}
	return orders, nil
}

// Reconcile reconstructs per-line unit prices, line totals, the shipping
// split and the display status for one order. The authoritative order total
// is never altered; only the derived split between items and shipping is.
// A line item that fails to transform is dropped with a warning rather than
// failing the order.
func (s *OrderService) Reconcile(raw entity.RawOrder) (entity.ReconciledOrder, error) {
	if raw.ID == "" {
		return entity.ReconciledOrder{}, errors.New("order missing id")
	}

	reconciled := entity.ReconciledOrder{
		ID:          raw.ID,
		OrderNumber: raw.OrderNumber,
		Total:       raw.Total.Round2(),
		CreatedAt:   raw.CreatedAt,
		Status:      entity.DeriveOrderStatus(raw.CancelledAt, raw.FinancialStatus, raw.FulfillmentStatus),
	}

	lineSum := entity.ZeroMoney(raw.Total.CurrencyCode)
	for _, line := range raw.LineItems {
		item, err := reconcileLine(line, raw.Total.CurrencyCode)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"order_id": raw.ID,
				"title":    line.Title,
			}).Warn("Dropping unreconcilable order line")
			continue
		}
		lineSum = lineSum.Add(item.LineTotal)
		reconciled.LineItems = append(reconciled.LineItems, item)
	}

	// Shipping is whatever the authoritative total does not decompose into
	// line totals. Rounding noise or free-shipping promotions can push it to
	// zero or below; the displayed value clamps at "0.00".
	shipping := raw.Total.Sub(lineSum).Round2()
	if shipping.Sign() <= 0 {
		shipping = entity.ZeroMoney(raw.Total.CurrencyCode)
	}
	reconciled.Shipping = shipping
	return reconciled, nil
}

// reconcileLine reconstructs one line's unit price. The original total
// divided by quantity preserves the price actually paid even when the
// catalog price later drifts; the variant's current price is the fallback,
// then "0.00".
func reconcileLine(line entity.RawLineItem, currency string) (entity.ReconciledLineItem, error) {
	if line.Quantity < 0 {
		return entity.ReconciledLineItem{}, errors.Errorf("negative quantity %d", line.Quantity)
	}

	var unit entity.Money
	switch {
	case line.OriginalTotal != nil && line.Quantity > 0:
		unit = line.OriginalTotal.Div(line.Quantity)
	case line.CurrentUnitPrice != nil:
		unit = *line.CurrentUnitPrice
	default:
		unit = entity.ZeroMoney(currency)
	}
	unit = unit.Round2()

	return entity.ReconciledLineItem{
		Title:     line.Title,
		Quantity:  line.Quantity,
		UnitPrice: unit,
		LineTotal: unit.Mul(line.Quantity).Round2(),
		Image:     line.Image,
	}, nil
}
