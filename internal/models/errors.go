package models

import "errors"

var (
	ErrForbidden         = errors.New("provided user does not have permission for this operation")
	ErrNoRequest         = errors.New("requested procurement request does not exist")
	ErrNoOffer           = errors.New("requested offer does not exist")
	ErrNoExcelRequest    = errors.New("requested excel request does not exist")
	ErrNoAssignment      = errors.New("supplier is not assigned to this excel request")
	ErrNoSupplier        = errors.New("requested supplier does not exist")
	ErrNoEmployee        = errors.New("requested employee does not exist")
	ErrNoSite            = errors.New("requested site does not exist")
	ErrRequestFinalized  = errors.New("request is already completed or cancelled")
	ErrRequestNotOpen    = errors.New("request is not open")
	ErrOfferFinalized    = errors.New("offer is already approved or rejected")
	ErrSupplierFinalized = errors.New("supplier is already approved or rejected")
	ErrSupplierNotReady  = errors.New("supplier is not approved")
	ErrDuplicateOffer    = errors.New("supplier already has an offer on this request")
	ErrEmptyIdList       = errors.New("empty id list supplied")
	ErrUnknownIds        = errors.New("id list contains unknown ids")
	ErrFileTooLarge      = errors.New("file exceeds the size limit")
	ErrFileType          = errors.New("file extension is not allowed")
)
