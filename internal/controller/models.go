package controller

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"procurement/internal/models"
)

// New request

type NewRequestReq struct {
	Product      string              `json:"product"`
	Quantity     int                 `json:"quantity"`
	DeliveryType models.DeliveryType `json:"deliveryType"`
	Description  string              `json:"description"`
	EmployeeId   int64               `json:"employeeId"`
	SiteId       int64               `json:"siteId"`
}

func ParseNewRequestReq(data []byte) (*NewRequestReq, error) {
	t := &NewRequestReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(t.Product, "product", 200); err != nil {
		return nil, err
	}
	if len(t.Product) == 0 {
		return nil, fmt.Errorf("field 'product' is required")
	}
	if t.Quantity <= 0 {
		return nil, fmt.Errorf("field 'quantity' must be positive")
	}
	if !models.ValidDeliveryType(t.DeliveryType) {
		return nil, fmt.Errorf("invalid delivery type supplied: %d", t.DeliveryType)
	}
	if t.EmployeeId <= 0 {
		return nil, fmt.Errorf("field 'employeeId' is required")
	}
	if err = checkLengthLimit(t.Description, "description", 500); err != nil {
		return nil, err
	}

	return t, nil
}

// New offer

type NewOfferReq struct {
	RequestId       int64               `json:"requestId"`
	Brand           string              `json:"brand"`
	Description     string              `json:"description"`
	Quantity        int                 `json:"quantity"`
	UnitPrice       decimal.Decimal     `json:"unitPrice"`
	Currency        string              `json:"currency"`
	DiscountPercent decimal.Decimal     `json:"discountPercent"`
	DeliveryType    models.DeliveryType `json:"deliveryType"`
	DeliveryDays    int                 `json:"deliveryDays"`
}

func ParseNewOfferReq(data []byte) (*NewOfferReq, error) {
	t := &NewOfferReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if t.RequestId <= 0 {
		return nil, fmt.Errorf("field 'requestId' is required")
	}
	if t.Quantity <= 0 {
		return nil, fmt.Errorf("field 'quantity' must be positive")
	}
	if t.UnitPrice.IsNegative() || t.UnitPrice.IsZero() {
		return nil, fmt.Errorf("field 'unitPrice' must be positive")
	}
	if t.DiscountPercent.IsNegative() || t.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("field 'discountPercent' must be between 0 and 100")
	}
	if !models.ValidDeliveryType(t.DeliveryType) {
		return nil, fmt.Errorf("invalid delivery type supplied: %d", t.DeliveryType)
	}
	if len(t.Currency) == 0 {
		t.Currency = "USD"
	}
	if err = checkLengthLimit(t.Brand, "brand", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Description, "description", 500); err != nil {
		return nil, err
	}

	return t, nil
}

// Bulk actions

type BulkRequestActionReq struct {
	Ids    []int64                  `json:"ids"`
	Action models.BulkRequestAction `json:"action"`
}

func ParseBulkRequestActionReq(data []byte) (*BulkRequestActionReq, error) {
	t := &BulkRequestActionReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if len(t.Ids) == 0 {
		return nil, fmt.Errorf("field 'ids' must not be empty")
	}
	if !models.ValidBulkRequestAction(t.Action) {
		return nil, fmt.Errorf("invalid action supplied: %q, should be one of: %s, %s, %s",
			t.Action, models.BulkApprove, models.BulkInProgress, models.BulkDelete)
	}

	return t, nil
}

type SendRequestsReq struct {
	RequestIds  []int64 `json:"requestIds"`
	SupplierIds []int64 `json:"supplierIds"`
}

func ParseSendRequestsReq(data []byte) (*SendRequestsReq, error) {
	t := &SendRequestsReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if len(t.RequestIds) == 0 {
		return nil, fmt.Errorf("field 'requestIds' must not be empty")
	}
	if len(t.SupplierIds) == 0 {
		return nil, fmt.Errorf("field 'supplierIds' must not be empty")
	}

	return t, nil
}

type BulkOfferActionReq struct {
	Ids []int64 `json:"ids"`
}

func ParseBulkOfferActionReq(data []byte) (*BulkOfferActionReq, error) {
	t := &BulkOfferActionReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if len(t.Ids) == 0 {
		return nil, fmt.Errorf("field 'ids' must not be empty")
	}

	return t, nil
}

// BulkActionResp reports how many rows a bulk operation actually touched.
type BulkActionResp struct {
	Affected int64 `json:"affected"`
}

// SupplierOfferResp pairs an uploaded supplier offer with the excel request
// status recomputed after the upload.
type SupplierOfferResp struct {
	Offer              models.SupplierExcelOffer `json:"offer"`
	ExcelRequestStatus models.ExcelRequestStatus `json:"excelRequestStatus"`
}

type ExcelStatusResp struct {
	ExcelRequestStatus models.ExcelRequestStatus `json:"excelRequestStatus"`
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
