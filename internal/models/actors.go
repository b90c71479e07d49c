package models

import "time"

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
	RoleSupplier Role = "Supplier"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleSupplier:
		return true
	default:
		return false
	}
}

type User struct {
	Id        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type SupplierStatus int

const (
	SupplierPending  SupplierStatus = 1
	SupplierApproved SupplierStatus = 2
	SupplierRejected SupplierStatus = 3
)

func (s SupplierStatus) String() string {
	switch s {
	case SupplierPending:
		return "Pending"
	case SupplierApproved:
		return "Approved"
	case SupplierRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

type Supplier struct {
	Id          int64          `json:"id"`
	UserId      int64          `json:"userId"`
	CompanyName string         `json:"companyName"`
	Brand       string         `json:"brand"`
	Status      SupplierStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type Employee struct {
	Id        int64     `json:"id"`
	UserId    int64     `json:"userId"`
	SiteId    int64     `json:"siteId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Site struct {
	Id        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
