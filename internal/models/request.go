package models

import "time"

// RequestStatus values are persisted as small integers. The numbering is
// append-only, existing values are never reused or renumbered.
type RequestStatus int

const (
	RequestOpen       RequestStatus = 1
	RequestInProgress RequestStatus = 2
	RequestCompleted  RequestStatus = 3
	RequestCancelled  RequestStatus = 4
)

func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestOpen, RequestInProgress, RequestCompleted, RequestCancelled:
		return true
	default:
		return false
	}
}

func (s RequestStatus) String() string {
	switch s {
	case RequestOpen:
		return "Open"
	case RequestInProgress:
		return "InProgress"
	case RequestCompleted:
		return "Completed"
	case RequestCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is permitted from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestCancelled
}

type DeliveryType int

const (
	DeliveryStandard DeliveryType = 1
	DeliveryExpress  DeliveryType = 2
	DeliveryPickup   DeliveryType = 3
)

func ValidDeliveryType(t DeliveryType) bool {
	switch t {
	case DeliveryStandard, DeliveryExpress, DeliveryPickup:
		return true
	default:
		return false
	}
}

type Request struct {
	Id           int64         `json:"id"`
	Product      string        `json:"product"`
	Quantity     int           `json:"quantity"`
	DeliveryType DeliveryType  `json:"deliveryType"`
	Description  string        `json:"description"`
	Status       RequestStatus `json:"status"`
	EmployeeId   int64         `json:"employeeId"`
	SiteId       int64         `json:"siteId"`
	RequestedAt  time.Time     `json:"requestedAt"`
}

// BulkRequestAction is the closed set of actions accepted by the bulk
// request endpoint. Free strings from clients are parsed into it and
// rejected up front when they do not match.
type BulkRequestAction string

const (
	BulkApprove    BulkRequestAction = "approve"
	BulkInProgress BulkRequestAction = "inprogress"
	BulkDelete     BulkRequestAction = "delete"
)

func ValidBulkRequestAction(a BulkRequestAction) bool {
	switch a {
	case BulkApprove, BulkInProgress, BulkDelete:
		return true
	default:
		return false
	}
}
