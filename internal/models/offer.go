package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus int

const (
	OfferPending  OfferStatus = 1
	OfferApproved OfferStatus = 2
	OfferRejected OfferStatus = 3
)

func ValidOfferStatus(s OfferStatus) bool {
	switch s {
	case OfferPending, OfferApproved, OfferRejected:
		return true
	default:
		return false
	}
}

func (s OfferStatus) String() string {
	switch s {
	case OfferPending:
		return "Pending"
	case OfferApproved:
		return "Approved"
	case OfferRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

type Offer struct {
	Id              int64           `json:"id"`
	RequestId       int64           `json:"requestId"`
	SupplierId      int64           `json:"supplierId"`
	Brand           string          `json:"brand"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Currency        string          `json:"currency"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DeliveryType    DeliveryType    `json:"deliveryType"`
	DeliveryDays    int             `json:"deliveryDays"`
	Status          OfferStatus     `json:"status"`
	OfferedAt       time.Time       `json:"offeredAt"`
}

// Total is unit price times quantity, before discount.
func (o Offer) Total() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Final is the total minus the percentage discount.
func (o Offer) Final() decimal.Decimal {
	total := o.Total()
	return total.Sub(total.Mul(o.DiscountPercent).Div(decimal.NewFromInt(100)))
}
