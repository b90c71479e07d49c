package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/models"
)

func TestResolveIdentity(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	admin := store.addUser(models.RoleAdmin)
	sup := store.addSupplier(models.SupplierApproved)

	identity, err := svc.ResolveIdentity(ctx, admin.Id)
	require.NoError(t, err)
	assert.True(t, identity.Resolved())
	assert.Equal(t, models.RoleAdmin, identity.Role)
	assert.Zero(t, identity.SupplierId)

	identity, err = svc.ResolveIdentity(ctx, sup.UserId)
	require.NoError(t, err)
	assert.True(t, identity.Resolved())
	assert.Equal(t, models.RoleSupplier, identity.Role)
	assert.Equal(t, sup.Id, identity.SupplierId)

	// an unknown caller resolves to the empty identity, not an error
	identity, err = svc.ResolveIdentity(ctx, 999)
	require.NoError(t, err)
	assert.False(t, identity.Resolved())
}

func TestNotificationVisibility(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	admin := adminIdentity(store)
	site := store.addSite()
	empl := store.addEmployee(site.Id)
	sup := store.addSupplier(models.SupplierApproved)
	other := store.addSupplier(models.SupplierApproved)

	// broadcast row, addressed to nobody in particular
	_, err := store.AddNotification(ctx, models.Notification{Type: models.NoticeNewRequest})
	require.NoError(t, err)

	// row addressed to the employee's user
	_, err = store.AddNotification(ctx, models.Notification{Type: models.NoticeNewOffer, UserId: ptr(empl.UserId)})
	require.NoError(t, err)

	// row routed to the supplier
	_, err = store.AddNotification(ctx, models.Notification{
		Type:       models.NoticeOfferApproved,
		UserId:     ptr(sup.UserId),
		SupplierId: ptr(sup.Id),
	})
	require.NoError(t, err)

	// supplier-typed row for a different supplier
	_, err = store.AddNotification(ctx, models.Notification{
		Type:       models.NoticeOfferRejected,
		UserId:     ptr(other.UserId),
		SupplierId: ptr(other.Id),
	})
	require.NoError(t, err)

	// admin sees broadcasts plus rows addressed to it, nothing routed to others
	list, err := svc.Notifications(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NoticeNewRequest, list[0].Type)

	// employee sees only its own rows
	employee := models.Identity{UserId: empl.UserId, Role: models.RoleEmployee}
	list, err = svc.Notifications(ctx, employee)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NoticeNewOffer, list[0].Type)

	// supplier sees its routed row and not the other supplier's
	supplier := models.Identity{UserId: sup.UserId, Role: models.RoleSupplier, SupplierId: sup.Id}
	list, err = svc.Notifications(ctx, supplier)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NoticeOfferApproved, list[0].Type)

	// supplier never sees types outside the allow-list, even when addressed
	_, err = store.AddNotification(ctx, models.Notification{Type: models.NoticeNewRequest, UserId: ptr(sup.UserId)})
	require.NoError(t, err)
	list, err = svc.Notifications(ctx, supplier)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// acknowledged supplier rows drop out of every listing
	require.NoError(t, svc.MarkNotificationRead(ctx, list[0].Id))
	list, err = svc.Notifications(ctx, supplier)
	require.NoError(t, err)
	assert.Empty(t, list)

	// the unresolved identity sees nothing at all
	list, err = svc.Notifications(ctx, models.Identity{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationSummary(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	admin := adminIdentity(store)

	for i := 0; i < 8; i++ {
		n, err := store.AddNotification(ctx, models.Notification{
			Type:    models.NoticeNewRequest,
			Message: fmt.Sprintf("request %d", i),
		})
		require.NoError(t, err)
		if i < 3 {
			require.NoError(t, store.MarkNotificationRead(ctx, n.Id))
		}
	}

	summary, err := svc.NotificationSummary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 8, summary.TotalCount)
	assert.Equal(t, 5, summary.UnreadCount)
	require.Len(t, summary.Recent, 5, "recent list is capped")
	assert.Equal(t, "request 7", summary.Recent[0].Message, "newest first")

	// unknown callers get the empty summary, not the admin view
	summary, err = svc.NotificationSummary(ctx, models.Identity{})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalCount)
	assert.Zero(t, summary.UnreadCount)
	assert.NotNil(t, summary.Recent)
	assert.Empty(t, summary.Recent)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	admin := adminIdentity(store)
	sup := store.addSupplier(models.SupplierApproved)

	for i := 0; i < 3; i++ {
		_, err := store.AddNotification(ctx, models.Notification{Type: models.NoticeNewRequest})
		require.NoError(t, err)
	}
	supRow, err := store.AddNotification(ctx, models.Notification{
		Type:       models.NoticeOfferApproved,
		UserId:     ptr(sup.UserId),
		SupplierId: ptr(sup.Id),
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllNotificationsRead(ctx, admin))

	summary, err := svc.NotificationSummary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCount)
	assert.Zero(t, summary.UnreadCount)

	// the supplier's routed row is outside the admin's view and stays unread
	assert.False(t, store.notifications[supRow.Id].Read)
}

func TestNotifyBestEffort(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	site := store.addSite()
	empl := store.addEmployee(site.Id)

	// a failing notification store must not fail the state change
	store.failNotifications = true
	req, err := svc.CreateRequest(ctx, models.Request{Product: "Gravel", Quantity: 5, EmployeeId: empl.Id})
	require.NoError(t, err)
	assert.NotZero(t, req.Id)
	assert.Empty(t, store.notifications)
}
