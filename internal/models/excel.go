package models

import "time"

type ExcelRequestStatus int

const (
	ExcelAssigned   ExcelRequestStatus = 1
	ExcelInProgress ExcelRequestStatus = 2
	ExcelCompleted  ExcelRequestStatus = 3
)

func (s ExcelRequestStatus) String() string {
	switch s {
	case ExcelAssigned:
		return "AssignedToSuppliers"
	case ExcelInProgress:
		return "InProgress"
	case ExcelCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// DeriveExcelStatus computes the parent status from aggregate supplier
// progress. It is the only way ExcelRequest.Status is ever produced:
// clients and handlers never set it directly.
func DeriveExcelStatus(assigned, uploaded int) ExcelRequestStatus {
	switch {
	case uploaded == 0:
		return ExcelAssigned
	case uploaded >= assigned:
		return ExcelCompleted
	default:
		return ExcelInProgress
	}
}

type ExcelRequest struct {
	Id           int64              `json:"id"`
	SiteId       int64              `json:"siteId"`
	EmployeeId   int64              `json:"employeeId"`
	OriginalName string             `json:"originalName"`
	StoredName   string             `json:"-"`
	FileSize     int64              `json:"fileSize"`
	Status       ExcelRequestStatus `json:"status"`
	Description  string             `json:"description"`
	UploadedAt   time.Time          `json:"uploadedAt"`
}

// ExcelRequestSupplier is the assignment row linking one ExcelRequest to one
// supplier. The downloaded and offer-uploaded flags only ever move false→true.
type ExcelRequestSupplier struct {
	Id              int64      `json:"id"`
	ExcelRequestId  int64      `json:"excelRequestId"`
	SupplierId      int64      `json:"supplierId"`
	AssignedAt      time.Time  `json:"assignedAt"`
	Downloaded      bool       `json:"downloaded"`
	DownloadedAt    *time.Time `json:"downloadedAt,omitempty"`
	OfferUploaded   bool       `json:"offerUploaded"`
	OfferUploadedAt *time.Time `json:"offerUploadedAt,omitempty"`
}

type SupplierExcelOffer struct {
	Id             int64     `json:"id"`
	ExcelRequestId int64     `json:"excelRequestId"`
	SupplierId     int64     `json:"supplierId"`
	OriginalName   string    `json:"originalName"`
	StoredName     string    `json:"-"`
	FileSize       int64     `json:"fileSize"`
	UploadedAt     time.Time `json:"uploadedAt"`
}
