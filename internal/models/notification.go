package models

import "time"

// NotificationType codes are persisted as small integers and consumed by
// clients for routing. The mapping is append-only: new types get new codes,
// existing codes are never renumbered.
type NotificationType int

const (
	NoticeSupplierRegistration  NotificationType = 1
	NoticeNewRequest            NotificationType = 2
	NoticeNewOffer              NotificationType = 3
	NoticeOfferApproved         NotificationType = 4
	NoticeOfferRejected         NotificationType = 5
	NoticeSupplierApproved      NotificationType = 6
	NoticeSupplierRejected      NotificationType = 7
	NoticeExcelRequestAssigned  NotificationType = 8
	NoticeExcelOfferUploaded    NotificationType = 9
	NoticeRequestSentToSupplier NotificationType = 10
)

// SupplierNoticeTypes is the fixed allow-list of types a supplier identity
// may ever see.
var SupplierNoticeTypes = []NotificationType{
	NoticeOfferApproved,
	NoticeOfferRejected,
	NoticeSupplierApproved,
	NoticeSupplierRejected,
	NoticeRequestSentToSupplier,
}

// Notification is an append-only event record. One business event produces
// one row per affected party. UserId is the direct recipient when set;
// RequestId, OfferId and SupplierId are correlation keys used for routing,
// not necessarily the recipient. Only the read flag is ever updated.
type Notification struct {
	Id         int64            `json:"id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	UserId     *int64           `json:"userId,omitempty"`
	RequestId  *int64           `json:"requestId,omitempty"`
	OfferId    *int64           `json:"offerId,omitempty"`
	SupplierId *int64           `json:"supplierId,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Identity is the resolved caller passed into every notification-view
// operation. SupplierId is set only for supplier callers. A zero Identity
// means the caller could not be resolved and must see nothing.
type Identity struct {
	UserId     int64
	Role       Role
	SupplierId int64
}

func (id Identity) Resolved() bool {
	return id.UserId != 0 && ValidRole(id.Role)
}

// NotificationFilter is the per-role visibility predicate of an identity.
// It is built once by FilterFor and interpreted both in SQL, by the
// repository, and in memory, by Matches. The two interpretations must agree.
type NotificationFilter struct {
	// None matches nothing. Set for unresolved identities so an unknown
	// caller never falls back to the admin view.
	None bool

	// Admin rows: user_id is null or equals UserId, no type restriction.
	Admin bool

	// Supplier rows: type within Types, unread only, and either
	// supplier_id = SupplierId or (supplier_id is null and user_id = UserId).
	Supplier bool

	UserId     int64
	SupplierId int64
	Types      []NotificationType
	UnreadOnly bool
}

// FilterFor maps an identity to its visibility predicate.
func FilterFor(id Identity) NotificationFilter {
	if !id.Resolved() {
		return NotificationFilter{None: true}
	}

	switch id.Role {
	case RoleAdmin:
		return NotificationFilter{Admin: true, UserId: id.UserId}
	case RoleSupplier:
		if id.SupplierId == 0 {
			return NotificationFilter{None: true}
		}
		// Read supplier notifications are dropped for good: once
		// acknowledged they are no longer returned by any listing.
		return NotificationFilter{
			Supplier:   true,
			UserId:     id.UserId,
			SupplierId: id.SupplierId,
			Types:      SupplierNoticeTypes,
			UnreadOnly: true,
		}
	default:
		return NotificationFilter{UserId: id.UserId}
	}
}

// Matches reports whether n is visible under the filter.
func (f NotificationFilter) Matches(n Notification) bool {
	if f.None {
		return false
	}
	if f.UnreadOnly && n.Read {
		return false
	}

	if f.Admin {
		return n.UserId == nil || *n.UserId == f.UserId
	}

	if f.Supplier {
		allowed := false
		for _, t := range f.Types {
			if n.Type == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
		if n.SupplierId != nil {
			return *n.SupplierId == f.SupplierId
		}
		return n.UserId != nil && *n.UserId == f.UserId
	}

	return n.UserId != nil && *n.UserId == f.UserId
}

// NotificationSummary is the polled header payload: counts over the caller's
// visible set plus the five newest visible records.
type NotificationSummary struct {
	TotalCount  int            `json:"totalCount"`
	UnreadCount int            `json:"unreadCount"`
	Recent      []Notification `json:"recentNotifications"`
}
