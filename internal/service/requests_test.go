package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/models"
)

func newTestService() (*Service, *memStore, *memFiles) {
	store := newMemStore()
	files := newMemFiles()
	return NewService(store, files, nil, zerolog.Nop()), store, files
}

func adminIdentity(store *memStore) models.Identity {
	admin := store.addUser(models.RoleAdmin)
	return models.Identity{UserId: admin.Id, Role: models.RoleAdmin}
}

func TestCreateRequest(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	site := store.addSite()
	empl := store.addEmployee(site.Id)
	admin := adminIdentity(store)

	req, err := svc.CreateRequest(ctx, models.Request{
		Product:      "Rebar",
		Quantity:     50,
		DeliveryType: models.DeliveryStandard,
		EmployeeId:   empl.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestOpen, req.Status)
	assert.Equal(t, site.Id, req.SiteId, "request should inherit the employee's site")
	assert.NotZero(t, req.Id)

	// creation is broadcast to admins
	visible := store.visible(admin)
	require.Len(t, visible, 1)
	assert.Equal(t, models.NoticeNewRequest, visible[0].Type)
	assert.Nil(t, visible[0].UserId)

	_, err = svc.CreateRequest(ctx, models.Request{Product: "Rebar", Quantity: 1, EmployeeId: 999})
	assert.ErrorIs(t, err, models.ErrNoEmployee)

	_, err = svc.CreateRequest(ctx, models.Request{Product: "Rebar", Quantity: 1, EmployeeId: empl.Id, SiteId: 999})
	assert.ErrorIs(t, err, models.ErrNoSite)
}

func TestCancelRequest(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	site := store.addSite()
	empl := store.addEmployee(site.Id)

	req, err := svc.CreateRequest(ctx, models.Request{Product: "Cement", Quantity: 10, EmployeeId: empl.Id})
	require.NoError(t, err)

	require.NoError(t, svc.CancelRequest(ctx, req.Id))

	got, err := svc.RequestByID(ctx, req.Id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)

	assert.ErrorIs(t, svc.CancelRequest(ctx, req.Id), models.ErrRequestFinalized)
	assert.ErrorIs(t, svc.CancelRequest(ctx, 999), models.ErrNoRequest)
}

func TestBulkRequestAction(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	site := store.addSite()
	empl := store.addEmployee(site.Id)

	var ids []int64
	for i := 0; i < 3; i++ {
		req, err := svc.CreateRequest(ctx, models.Request{Product: "Bolts", Quantity: 5, EmployeeId: empl.Id})
		require.NoError(t, err)
		ids = append(ids, req.Id)
	}

	_, err := svc.BulkRequestAction(ctx, nil, models.BulkApprove)
	assert.ErrorIs(t, err, models.ErrEmptyIdList)

	_, err = svc.BulkRequestAction(ctx, []int64{998, 999}, models.BulkApprove)
	assert.ErrorIs(t, err, models.ErrNoRequest)

	// unknown ids are skipped as long as at least one matches
	n, err := svc.BulkRequestAction(ctx, append(ids, 999), models.BulkInProgress)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := svc.RequestByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.RequestInProgress, got.Status)

	n, err = svc.BulkRequestAction(ctx, ids[:1], models.BulkApprove)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err = svc.RequestByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, got.Status)

	n, err = svc.BulkRequestAction(ctx, ids, models.BulkDelete)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = svc.RequestByID(ctx, ids[0])
	assert.ErrorIs(t, err, models.ErrNoRequest)
}

func TestSendRequestsToSuppliers(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	site := store.addSite()
	empl := store.addEmployee(site.Id)
	sup1 := store.addSupplier(models.SupplierApproved)
	sup2 := store.addSupplier(models.SupplierApproved)
	pending := store.addSupplier(models.SupplierPending)

	req1, err := svc.CreateRequest(ctx, models.Request{Product: "Pipes", Quantity: 10, EmployeeId: empl.Id})
	require.NoError(t, err)
	req2, err := svc.CreateRequest(ctx, models.Request{Product: "Valves", Quantity: 20, EmployeeId: empl.Id})
	require.NoError(t, err)

	err = svc.SendRequestsToSuppliers(ctx, nil, []int64{sup1.Id})
	assert.ErrorIs(t, err, models.ErrEmptyIdList)

	err = svc.SendRequestsToSuppliers(ctx, []int64{req1.Id, 999}, []int64{sup1.Id})
	assert.ErrorIs(t, err, models.ErrUnknownIds)

	err = svc.SendRequestsToSuppliers(ctx, []int64{req1.Id}, []int64{sup1.Id, 999})
	assert.ErrorIs(t, err, models.ErrUnknownIds)

	err = svc.SendRequestsToSuppliers(ctx, []int64{req1.Id}, []int64{sup1.Id, pending.Id})
	assert.ErrorIs(t, err, models.ErrSupplierNotReady)

	// validation failures must not have transitioned anything
	got, err := svc.RequestByID(ctx, req1.Id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestOpen, got.Status)

	err = svc.SendRequestsToSuppliers(ctx, []int64{req1.Id, req2.Id}, []int64{sup1.Id, sup2.Id})
	require.NoError(t, err)

	for _, id := range []int64{req1.Id, req2.Id} {
		got, err := svc.RequestByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.RequestInProgress, got.Status)
	}

	// one notification per (request, supplier) pair, routed to the supplier
	for _, sup := range []models.Supplier{sup1, sup2} {
		visible := store.visible(models.Identity{UserId: sup.UserId, Role: models.RoleSupplier, SupplierId: sup.Id})
		require.Len(t, visible, 2)
		for _, n := range visible {
			assert.Equal(t, models.NoticeRequestSentToSupplier, n.Type)
		}
	}

	// requests already in progress cannot be sent again
	err = svc.SendRequestsToSuppliers(ctx, []int64{req1.Id}, []int64{sup1.Id})
	assert.ErrorIs(t, err, models.ErrRequestNotOpen)
}

func TestSendRequestsCancelledInFlight(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	site := store.addSite()
	empl := store.addEmployee(site.Id)
	sup := store.addSupplier(models.SupplierApproved)

	req, err := svc.CreateRequest(ctx, models.Request{Product: "Cement", Quantity: 40, EmployeeId: empl.Id})
	require.NoError(t, err)
	store.notifications = map[int64]models.Notification{}

	// the request is cancelled after validation has seen it Open but before
	// the status write lands
	store.beforeTransitionRequests = func() {
		row := store.requests[req.Id]
		row.Status = models.RequestCancelled
		store.requests[req.Id] = row
	}

	err = svc.SendRequestsToSuppliers(ctx, []int64{req.Id}, []int64{sup.Id})
	assert.ErrorIs(t, err, models.ErrRequestNotOpen)

	// the terminal state sticks and the supplier hears nothing
	got, err := svc.RequestByID(ctx, req.Id)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, got.Status)
	assert.Empty(t, store.visible(models.Identity{UserId: sup.UserId, Role: models.RoleSupplier, SupplierId: sup.Id}))
}
