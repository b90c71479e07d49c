package service

import (
	"context"
	"sort"
	"time"

	"procurement/internal/models"
)

// memStore is an in-memory Store used by the service tests. It mirrors the
// SQL store's contracts: lookup misses report (zero, false, nil), state
// transitions are conditional, and notification visibility goes through the
// same filter the SQL interprets.
type memStore struct {
	users     map[int64]models.User
	sites     map[int64]models.Site
	employees map[int64]models.Employee
	suppliers map[int64]models.Supplier

	requests      map[int64]models.Request
	offers        map[int64]models.Offer
	excelRequests map[int64]models.ExcelRequest
	assignments   []models.ExcelRequestSupplier
	excelOffers   map[int64]models.SupplierExcelOffer
	notifications map[int64]models.Notification

	nextId int64

	// failNotifications makes AddNotification fail, to test best-effort
	// fan-out.
	failNotifications bool

	// beforeTransitionRequests runs just before TransitionRequests applies,
	// to interleave a concurrent write between a read and the update.
	beforeTransitionRequests func()
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[int64]models.User{},
		sites:         map[int64]models.Site{},
		employees:     map[int64]models.Employee{},
		suppliers:     map[int64]models.Supplier{},
		requests:      map[int64]models.Request{},
		offers:        map[int64]models.Offer{},
		excelRequests: map[int64]models.ExcelRequest{},
		excelOffers:   map[int64]models.SupplierExcelOffer{},
		notifications: map[int64]models.Notification{},
	}
}

func (m *memStore) id() int64 {
	m.nextId++
	return m.nextId
}

//// actors

func (m *memStore) addUser(role models.Role) models.User {
	user := models.User{Id: m.id(), Role: role}
	m.users[user.Id] = user
	return user
}

func (m *memStore) addSite() models.Site {
	site := models.Site{Id: m.id()}
	m.sites[site.Id] = site
	return site
}

func (m *memStore) addEmployee(siteId int64) models.Employee {
	user := m.addUser(models.RoleEmployee)
	empl := models.Employee{Id: m.id(), UserId: user.Id, SiteId: siteId}
	m.employees[empl.Id] = empl
	return empl
}

func (m *memStore) addSupplier(status models.SupplierStatus) models.Supplier {
	user := m.addUser(models.RoleSupplier)
	sup := models.Supplier{Id: m.id(), UserId: user.Id, CompanyName: "supplier", Status: status}
	m.suppliers[sup.Id] = sup
	return sup
}

func (m *memStore) UserByID(ctx context.Context, id int64) (models.User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *memStore) EmployeeByID(ctx context.Context, id int64) (models.Employee, bool, error) {
	empl, ok := m.employees[id]
	return empl, ok, nil
}

func (m *memStore) SiteByID(ctx context.Context, id int64) (models.Site, bool, error) {
	site, ok := m.sites[id]
	return site, ok, nil
}

func (m *memStore) SupplierByID(ctx context.Context, id int64) (models.Supplier, bool, error) {
	sup, ok := m.suppliers[id]
	return sup, ok, nil
}

func (m *memStore) SupplierByUserID(ctx context.Context, userId int64) (models.Supplier, bool, error) {
	for _, sup := range m.suppliers {
		if sup.UserId == userId {
			return sup, true, nil
		}
	}
	return models.Supplier{}, false, nil
}

func (m *memStore) SuppliersByIDs(ctx context.Context, ids []int64) ([]models.Supplier, error) {
	var result []models.Supplier
	for _, id := range uniqueIds(ids) {
		if sup, ok := m.suppliers[id]; ok {
			result = append(result, sup)
		}
	}
	return result, nil
}

func (m *memStore) SetSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) (models.Supplier, error) {
	sup, ok := m.suppliers[id]
	if !ok {
		return sup, models.ErrNoSupplier
	}
	if sup.Status != models.SupplierPending {
		return sup, models.ErrSupplierFinalized
	}
	sup.Status = status
	m.suppliers[id] = sup
	return sup, nil
}

//// requests

func (m *memStore) AddRequest(ctx context.Context, req models.Request) (models.Request, error) {
	req.Id = m.id()
	req.Status = models.RequestOpen
	req.RequestedAt = time.Now()
	m.requests[req.Id] = req
	return req, nil
}

func (m *memStore) RequestByID(ctx context.Context, id int64) (models.Request, bool, error) {
	req, ok := m.requests[id]
	return req, ok, nil
}

func (m *memStore) RequestsByIDs(ctx context.Context, ids []int64) ([]models.Request, error) {
	var result []models.Request
	for _, id := range uniqueIds(ids) {
		if req, ok := m.requests[id]; ok {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *memStore) Requests(ctx context.Context, limit, offset int, status models.RequestStatus, employeeId int64) ([]models.Request, error) {
	var result []models.Request
	for _, req := range m.requests {
		if status != 0 && req.Status != status {
			continue
		}
		if employeeId != 0 && req.EmployeeId != employeeId {
			continue
		}
		result = append(result, req)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	if offset < len(result) {
		result = result[offset:]
	} else {
		result = nil
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *memStore) TransitionRequest(ctx context.Context, id int64, to models.RequestStatus, from ...models.RequestStatus) (bool, error) {
	req, ok := m.requests[id]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if req.Status == status {
			req.Status = to
			m.requests[id] = req
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) TransitionRequests(ctx context.Context, ids []int64, to, from models.RequestStatus) (int64, error) {
	if m.beforeTransitionRequests != nil {
		m.beforeTransitionRequests()
	}
	var n int64
	for _, id := range uniqueIds(ids) {
		if req, ok := m.requests[id]; ok && req.Status == from {
			req.Status = to
			m.requests[id] = req
			n++
		}
	}
	return n, nil
}

func (m *memStore) SetRequestsStatus(ctx context.Context, ids []int64, to models.RequestStatus) (int64, error) {
	var n int64
	for _, id := range uniqueIds(ids) {
		if req, ok := m.requests[id]; ok {
			req.Status = to
			m.requests[id] = req
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteRequests(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range uniqueIds(ids) {
		if _, ok := m.requests[id]; ok {
			delete(m.requests, id)
			n++
		}
	}
	return n, nil
}

//// offers

func (m *memStore) AddOffer(ctx context.Context, offer models.Offer) (models.Offer, error) {
	for _, existing := range m.offers {
		if existing.RequestId == offer.RequestId && existing.SupplierId == offer.SupplierId {
			return offer, models.ErrDuplicateOffer
		}
	}
	offer.Id = m.id()
	offer.Status = models.OfferPending
	offer.OfferedAt = time.Now()
	m.offers[offer.Id] = offer
	return offer, nil
}

func (m *memStore) OfferByID(ctx context.Context, id int64) (models.Offer, bool, error) {
	offer, ok := m.offers[id]
	return offer, ok, nil
}

func (m *memStore) OffersByIDs(ctx context.Context, ids []int64) ([]models.Offer, error) {
	var result []models.Offer
	for _, id := range uniqueIds(ids) {
		if offer, ok := m.offers[id]; ok {
			result = append(result, offer)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (m *memStore) OffersByRequest(ctx context.Context, requestId int64) ([]models.Offer, error) {
	var result []models.Offer
	for _, offer := range m.offers {
		if offer.RequestId == requestId {
			result = append(result, offer)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (m *memStore) ApproveOffer(ctx context.Context, offerId int64) (models.OfferApprovedEvent, error) {
	var event models.OfferApprovedEvent

	offer, ok := m.offers[offerId]
	if !ok {
		return event, models.ErrNoOffer
	}
	if offer.Status != models.OfferPending {
		return event, models.ErrOfferFinalized
	}

	offer.Status = models.OfferApproved
	m.offers[offerId] = offer

	event = models.OfferApprovedEvent{
		RequestId:         offer.RequestId,
		OfferId:           offer.Id,
		WinningSupplierId: offer.SupplierId,
		Currency:          offer.Currency,
		Final:             offer.Final(),
	}

	for id, sibling := range m.offers {
		if sibling.RequestId == offer.RequestId && sibling.Id != offer.Id && sibling.Status == models.OfferPending {
			sibling.Status = models.OfferRejected
			m.offers[id] = sibling
			event.LosingOffers = append(event.LosingOffers, models.RejectedOffer{
				OfferId:    sibling.Id,
				SupplierId: sibling.SupplierId,
			})
		}
	}

	if req, ok := m.requests[offer.RequestId]; ok {
		req.Status = models.RequestCompleted
		m.requests[req.Id] = req
	}

	return event, nil
}

func (m *memStore) RejectOffer(ctx context.Context, offerId int64) (models.Offer, error) {
	offer, ok := m.offers[offerId]
	if !ok {
		return offer, models.ErrNoOffer
	}
	if offer.Status != models.OfferPending {
		return offer, models.ErrOfferFinalized
	}
	offer.Status = models.OfferRejected
	m.offers[offerId] = offer
	return offer, nil
}

func (m *memStore) RejectOffers(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range uniqueIds(ids) {
		if offer, ok := m.offers[id]; ok && offer.Status == models.OfferPending {
			offer.Status = models.OfferRejected
			m.offers[id] = offer
			n++
		}
	}
	return n, nil
}

//// excel

func (m *memStore) AddExcelRequest(ctx context.Context, req models.ExcelRequest, supplierIds []int64) (models.ExcelRequest, error) {
	req.Id = m.id()
	req.Status = models.ExcelAssigned
	req.UploadedAt = time.Now()
	m.excelRequests[req.Id] = req

	for _, supplierId := range uniqueIds(supplierIds) {
		m.assignments = append(m.assignments, models.ExcelRequestSupplier{
			Id:             m.id(),
			ExcelRequestId: req.Id,
			SupplierId:     supplierId,
			AssignedAt:     time.Now(),
		})
	}
	return req, nil
}

func (m *memStore) ExcelRequestByID(ctx context.Context, id int64) (models.ExcelRequest, bool, error) {
	req, ok := m.excelRequests[id]
	return req, ok, nil
}

func (m *memStore) ExcelAssignment(ctx context.Context, excelRequestId, supplierId int64) (models.ExcelRequestSupplier, bool, error) {
	for _, a := range m.assignments {
		if a.ExcelRequestId == excelRequestId && a.SupplierId == supplierId {
			return a, true, nil
		}
	}
	return models.ExcelRequestSupplier{}, false, nil
}

func (m *memStore) MarkExcelDownloaded(ctx context.Context, excelRequestId, supplierId int64) error {
	for i, a := range m.assignments {
		if a.ExcelRequestId == excelRequestId && a.SupplierId == supplierId && !a.Downloaded {
			now := time.Now()
			m.assignments[i].Downloaded = true
			m.assignments[i].DownloadedAt = &now
		}
	}
	return nil
}

func (m *memStore) AddSupplierExcelOffer(ctx context.Context, offer models.SupplierExcelOffer) (models.SupplierExcelOffer, models.ExcelRequestStatus, error) {
	offer.Id = m.id()
	offer.UploadedAt = time.Now()
	m.excelOffers[offer.Id] = offer

	for i, a := range m.assignments {
		if a.ExcelRequestId == offer.ExcelRequestId && a.SupplierId == offer.SupplierId && !a.OfferUploaded {
			now := time.Now()
			m.assignments[i].OfferUploaded = true
			m.assignments[i].OfferUploadedAt = &now
		}
	}

	status := m.recomputeExcelStatus(offer.ExcelRequestId)
	return offer, status, nil
}

func (m *memStore) SupplierExcelOfferByID(ctx context.Context, id int64) (models.SupplierExcelOffer, bool, error) {
	offer, ok := m.excelOffers[id]
	return offer, ok, nil
}

func (m *memStore) SupplierExcelOffers(ctx context.Context, excelRequestId int64) ([]models.SupplierExcelOffer, error) {
	var result []models.SupplierExcelOffer
	for _, offer := range m.excelOffers {
		if offer.ExcelRequestId == excelRequestId {
			result = append(result, offer)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (m *memStore) DeleteSupplierExcelOffer(ctx context.Context, id int64) (models.SupplierExcelOffer, models.ExcelRequestStatus, error) {
	offer, ok := m.excelOffers[id]
	if !ok {
		return offer, 0, models.ErrNoOffer
	}
	delete(m.excelOffers, id)

	remaining := false
	for _, other := range m.excelOffers {
		if other.ExcelRequestId == offer.ExcelRequestId && other.SupplierId == offer.SupplierId {
			remaining = true
			break
		}
	}
	if !remaining {
		for i, a := range m.assignments {
			if a.ExcelRequestId == offer.ExcelRequestId && a.SupplierId == offer.SupplierId {
				m.assignments[i].OfferUploaded = false
				m.assignments[i].OfferUploadedAt = nil
			}
		}
	}

	status := m.recomputeExcelStatus(offer.ExcelRequestId)
	return offer, status, nil
}

func (m *memStore) DeleteExcelRequest(ctx context.Context, id int64) (models.ExcelRequest, []models.SupplierExcelOffer, error) {
	req, ok := m.excelRequests[id]
	if !ok {
		return req, nil, models.ErrNoExcelRequest
	}
	delete(m.excelRequests, id)

	var offers []models.SupplierExcelOffer
	for offerId, offer := range m.excelOffers {
		if offer.ExcelRequestId == id {
			offers = append(offers, offer)
			delete(m.excelOffers, offerId)
		}
	}

	kept := m.assignments[:0]
	for _, a := range m.assignments {
		if a.ExcelRequestId != id {
			kept = append(kept, a)
		}
	}
	m.assignments = kept

	return req, offers, nil
}

func (m *memStore) recomputeExcelStatus(excelRequestId int64) models.ExcelRequestStatus {
	assigned, uploaded := 0, 0
	for _, a := range m.assignments {
		if a.ExcelRequestId == excelRequestId {
			assigned++
			if a.OfferUploaded {
				uploaded++
			}
		}
	}

	status := models.DeriveExcelStatus(assigned, uploaded)
	if req, ok := m.excelRequests[excelRequestId]; ok {
		req.Status = status
		m.excelRequests[excelRequestId] = req
	}
	return status
}

//// notifications

func (m *memStore) AddNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	if m.failNotifications {
		return n, context.DeadlineExceeded
	}
	n.Id = m.id()
	n.CreatedAt = time.Now()
	m.notifications[n.Id] = n
	return n, nil
}

func (m *memStore) Notifications(ctx context.Context, f models.NotificationFilter, limit int) ([]models.Notification, error) {
	var result []models.Notification
	for _, n := range m.notifications {
		if f.Matches(n) {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id > result[j].Id })
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *memStore) NotificationCounts(ctx context.Context, f models.NotificationFilter) (total, unread int, err error) {
	for _, n := range m.notifications {
		if f.Matches(n) {
			total++
			if !n.Read {
				unread++
			}
		}
	}
	return total, unread, nil
}

func (m *memStore) MarkNotificationRead(ctx context.Context, id int64) error {
	if n, ok := m.notifications[id]; ok {
		n.Read = true
		m.notifications[id] = n
	}
	return nil
}

func (m *memStore) MarkNotificationsRead(ctx context.Context, f models.NotificationFilter) error {
	for id, n := range m.notifications {
		if f.Matches(n) {
			n.Read = true
			m.notifications[id] = n
		}
	}
	return nil
}

// visible is a test convenience over the caller's full view.
func (m *memStore) visible(identity models.Identity) []models.Notification {
	list, _ := m.Notifications(context.Background(), models.FilterFor(identity), 0)
	return list
}

//// file store double

type memFiles struct {
	files map[string][]byte
	// failSave simulates a rejected or failed write.
	failSave error
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}}
}

func (m *memFiles) Save(data []byte, originalName, subdir string) (StoredFile, error) {
	if m.failSave != nil {
		return StoredFile{}, m.failSave
	}
	name := subdir + "/" + originalName
	m.files[name] = data
	return StoredFile{Name: name, Size: int64(len(data))}, nil
}

func (m *memFiles) Get(storedName, subdir string) ([]byte, error) {
	data, ok := m.files[storedName]
	if !ok {
		return nil, models.ErrNoOffer
	}
	return data, nil
}

func (m *memFiles) Delete(storedName, subdir string) error {
	delete(m.files, storedName)
	return nil
}
