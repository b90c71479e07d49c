package models

import "github.com/shopspring/decimal"

// OfferApprovedEvent is produced by the store when an approval transaction
// commits. The fan-out consumer turns it into notification rows; the state
// machine itself never touches notification delivery.
type OfferApprovedEvent struct {
	RequestId         int64           `json:"requestId"`
	OfferId           int64           `json:"offerId"`
	WinningSupplierId int64           `json:"winningSupplierId"`
	Currency          string          `json:"currency"`
	Final             decimal.Decimal `json:"final"`
	LosingOffers      []RejectedOffer `json:"losingOffers"`
}

// RejectedOffer identifies one losing pending offer rejected alongside an
// approval.
type RejectedOffer struct {
	OfferId    int64 `json:"offerId"`
	SupplierId int64 `json:"supplierId"`
}
