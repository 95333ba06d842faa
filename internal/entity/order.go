package entity

import (
	"strings"
	"time"
)

// OrderStatus is the derived display status of a historical order.
type OrderStatus string

const (
	StatusCancelled   OrderStatus = "CANCELLED"
	StatusRefunded    OrderStatus = "REFUNDED"
	StatusCompleted   OrderStatus = "COMPLETED"
	StatusUnfulfilled OrderStatus = "UNFULFILLED"
)

// RawLineItem is an order line as the commerce backend reports it.
// OriginalTotal is the authoritative amount charged for the line at order
// time; CurrentUnitPrice is the variant's price today and may have drifted.
type RawLineItem struct {
	Title            string `json:"title"`
	Quantity         int    `json:"quantity"`
	OriginalTotal    *Money `json:"originalTotal,omitempty"`
	CurrentUnitPrice *Money `json:"currentUnitPrice,omitempty"`
	Image            string `json:"image,omitempty"`
}

// RawOrder is a historical order record, read-only and authoritative for
// its total.
type RawOrder struct {
	ID                string        `json:"id"`
	OrderNumber       int           `json:"orderNumber"`
	Total             Money         `json:"total"`
	CreatedAt         time.Time     `json:"createdAt"`
	CancelledAt       *time.Time    `json:"cancelledAt,omitempty"`
	FinancialStatus   string        `json:"financialStatus,omitempty"`
	FulfillmentStatus string        `json:"fulfillmentStatus,omitempty"`
	LineItems         []RawLineItem `json:"lineItems"`
}

// ReconciledLineItem carries the reconstructed per-line pricing:
// lineTotal = round2(unitPrice * quantity).
type ReconciledLineItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
	LineTotal Money  `json:"lineTotal"`
	Image     string `json:"image,omitempty"`
}

// ReconciledOrder is the display model of an order: the authoritative total,
// the reconstructed split between line items and shipping, and the derived
// status.
type ReconciledOrder struct {
	ID          string               `json:"id"`
	OrderNumber int                  `json:"orderNumber"`
	Total       Money                `json:"total"`
	Shipping    Money                `json:"shipping"`
	Status      OrderStatus          `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	LineItems   []ReconciledLineItem `json:"lineItems"`
}

// DeriveOrderStatus applies the fixed-priority decision list, first match
// wins: cancellation beats refund beats fulfillment; an unknown fulfillment
// status passes through verbatim, absent means UNFULFILLED.
func DeriveOrderStatus(cancelledAt *time.Time, financialStatus, fulfillmentStatus string) OrderStatus {
	switch {
	case cancelledAt != nil:
		return StatusCancelled
	case strings.EqualFold(financialStatus, string(StatusRefunded)):
		return StatusRefunded
	case strings.EqualFold(fulfillmentStatus, "FULFILLED"):
		return StatusCompleted
	case fulfillmentStatus != "":
		return OrderStatus(fulfillmentStatus)
	default:
		return StatusUnfulfilled
	}
}
