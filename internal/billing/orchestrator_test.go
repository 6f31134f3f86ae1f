package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

type orchestratorMocks struct {
	vehicles  *MockVehicleCollection
	vendors   *MockVendorCollection
	services  *MockServiceTypeCollection
	invoices  *MockInvoiceCollection
	items     *MockLineItemCollection
	alerts    *MockAlertCollection
	publisher *MockPublisher
}

func newTestOrchestrator(taxRate float64) (*Orchestrator, *orchestratorMocks) {
	m := &orchestratorMocks{
		vehicles:  new(MockVehicleCollection),
		vendors:   new(MockVendorCollection),
		services:  new(MockServiceTypeCollection),
		invoices:  new(MockInvoiceCollection),
		items:     new(MockLineItemCollection),
		alerts:    new(MockAlertCollection),
		publisher: new(MockPublisher),
	}
	totals := NewTotalsAggregator(m.invoices, m.items, taxRate)
	status := NewStatusMachine(m.invoices, m.alerts)
	rules := NewRuleEngine(m.items, m.alerts)
	o := NewOrchestrator(m.vehicles, m.vendors, m.services, m.invoices, m.items, m.alerts,
		totals, status, rules, m.publisher)
	return o, m
}

func TestOrchestrator_CreateLineItem(t *testing.T) {
	invoiceID := primitive.NewObjectID()

	t.Run("prices the item, copies references and recomputes totals", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		invoice := &models.Invoice{
			ID:        invoiceID,
			VehicleID: "veh1",
			VendorID:  "ven1",
			Status:    models.InvoiceStatusDraft,
		}
		m.services.On("FindServiceTypeByID", mock.Anything, "svc1").
			Return(&models.ServiceType{Name: "Oil Change"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).Return(invoice, nil)
		m.items.On("InsertLineItem", mock.Anything, mock.AnythingOfType("models.LineItem")).Return(nil)
		// totals recompute sees only the new item
		m.items.On("FindLineItemsByInvoice", mock.Anything, invoiceID.Hex()).
			Return([]models.LineItem{{TotalPrice: 30.02, Taxable: true}}, nil)
		m.invoices.On("UpdateInvoiceTotals", mock.Anything, invoiceID.Hex(), 30.02, 2.10, 32.12).Return(nil)
		// no siblings, so no alerts
		m.items.On("FindLineItemsByVehicleService", mock.Anything, "veh1", "svc1").
			Return([]models.LineItem{}, nil)

		created, err := o.CreateLineItem(context.Background(), models.LineItem{
			InvoiceID:     invoiceID.Hex(),
			ServiceTypeID: "svc1",
			UnitPrice:     10.005,
			Quantity:      3,
			Taxable:       true,
			// caller-supplied references are ignored
			VehicleID: "spoofed",
			VendorID:  "spoofed",
		})

		assert.NoError(t, err)
		assert.Equal(t, 30.02, created.TotalPrice)
		assert.Equal(t, "veh1", created.VehicleID)
		assert.Equal(t, "ven1", created.VendorID)
		assert.False(t, created.ID.IsZero())
		m.invoices.AssertExpectations(t)
	})

	t.Run("approved invoice rejects the write", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.services.On("FindServiceTypeByID", mock.Anything, "svc1").
			Return(&models.ServiceType{Name: "Oil Change"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusApproved}, nil)

		_, err := o.CreateLineItem(context.Background(), models.LineItem{
			InvoiceID:     invoiceID.Hex(),
			ServiceTypeID: "svc1",
			UnitPrice:     10.00,
			Quantity:      1,
		})

		assert.True(t, errors.Is(err, models.ErrConflict))
		m.items.AssertNotCalled(t, "InsertLineItem", mock.Anything, mock.Anything)
	})

	t.Run("unknown service type aborts before pricing", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.services.On("FindServiceTypeByID", mock.Anything, "missing").
			Return(nil, &models.NotFoundError{Entity: "service type", ID: "missing"})

		_, err := o.CreateLineItem(context.Background(), models.LineItem{
			InvoiceID:     invoiceID.Hex(),
			ServiceTypeID: "missing",
			UnitPrice:     10.00,
			Quantity:      1,
		})

		assert.True(t, errors.Is(err, models.ErrNotFound))
		m.items.AssertNotCalled(t, "InsertLineItem", mock.Anything, mock.Anything)
	})

	t.Run("negative unit price aborts before the write", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.services.On("FindServiceTypeByID", mock.Anything, "svc1").
			Return(&models.ServiceType{Name: "Oil Change"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusDraft}, nil)

		_, err := o.CreateLineItem(context.Background(), models.LineItem{
			InvoiceID:     invoiceID.Hex(),
			ServiceTypeID: "svc1",
			UnitPrice:     -5.00,
			Quantity:      1,
		})

		assert.True(t, errors.Is(err, models.ErrValidation))
		m.items.AssertNotCalled(t, "InsertLineItem", mock.Anything, mock.Anything)
	})
}

func TestOrchestrator_UpdateLineItem(t *testing.T) {
	itemID := primitive.NewObjectID()
	oldInvoiceID := primitive.NewObjectID()
	newInvoiceID := primitive.NewObjectID()

	t.Run("reassignment recomputes totals on both invoices", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.items.On("FindLineItemByID", mock.Anything, itemID.Hex()).
			Return(&models.LineItem{ID: itemID, InvoiceID: oldInvoiceID.Hex(), ServiceTypeID: "svc1"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, oldInvoiceID.Hex()).
			Return(&models.Invoice{ID: oldInvoiceID, VehicleID: "vehA", VendorID: "venA", Status: models.InvoiceStatusDraft}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, newInvoiceID.Hex()).
			Return(&models.Invoice{ID: newInvoiceID, VehicleID: "vehB", VendorID: "venB", Status: models.InvoiceStatusDraft}, nil)
		m.alerts.On("DeleteAlertsByLineItem", mock.Anything, itemID.Hex()).Return(int64(1), nil)
		// references follow the destination invoice
		m.items.On("ReplaceLineItem", mock.Anything, itemID.Hex(), mock.MatchedBy(func(li models.LineItem) bool {
			return li.InvoiceID == newInvoiceID.Hex() &&
				li.VehicleID == "vehB" && li.VendorID == "venB" &&
				li.TotalPrice == 20.0
		})).Return(nil)
		// the source invoice is now empty, the destination holds the moved item
		m.items.On("FindLineItemsByInvoice", mock.Anything, oldInvoiceID.Hex()).
			Return([]models.LineItem{}, nil)
		m.items.On("FindLineItemsByInvoice", mock.Anything, newInvoiceID.Hex()).
			Return([]models.LineItem{{TotalPrice: 20.0, Taxable: true}}, nil)
		m.invoices.On("UpdateInvoiceTotals", mock.Anything, oldInvoiceID.Hex(), 0.0, 0.0, 0.0).Return(nil)
		m.invoices.On("UpdateInvoiceTotals", mock.Anything, newInvoiceID.Hex(), 20.0, 1.4, 21.4).Return(nil)
		// no siblings on the destination vehicle, so the rules stay quiet
		m.items.On("FindLineItemsByVehicleService", mock.Anything, "vehB", "svc1").
			Return([]models.LineItem{}, nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, oldInvoiceID.Hex()).Return(int64(0), nil)

		updated, err := o.UpdateLineItem(context.Background(), itemID.Hex(), models.LineItem{
			InvoiceID: newInvoiceID.Hex(),
			UnitPrice: 10.00,
			Quantity:  2,
			Taxable:   true,
		})

		assert.NoError(t, err)
		assert.Equal(t, newInvoiceID.Hex(), updated.InvoiceID)
		assert.Equal(t, "vehB", updated.VehicleID)
		assert.Equal(t, "venB", updated.VendorID)
		assert.Equal(t, 20.0, updated.TotalPrice)
		m.invoices.AssertExpectations(t)
	})

	t.Run("stale alerts are dropped and the rules re-run", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)
		siblingID := primitive.NewObjectID()

		m.items.On("FindLineItemByID", mock.Anything, itemID.Hex()).
			Return(&models.LineItem{ID: itemID, InvoiceID: oldInvoiceID.Hex(), ServiceTypeID: "svc1"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, oldInvoiceID.Hex()).
			Return(&models.Invoice{ID: oldInvoiceID, VehicleID: "vehA", VendorID: "venA", Status: models.InvoiceStatusDraft}, nil)
		m.alerts.On("DeleteAlertsByLineItem", mock.Anything, itemID.Hex()).Return(int64(2), nil)
		m.items.On("ReplaceLineItem", mock.Anything, itemID.Hex(), mock.AnythingOfType("models.LineItem")).Return(nil)
		m.items.On("FindLineItemsByInvoice", mock.Anything, oldInvoiceID.Hex()).
			Return([]models.LineItem{{TotalPrice: 50.0}}, nil)
		m.invoices.On("UpdateInvoiceTotals", mock.Anything, oldInvoiceID.Hex(), 50.0, 0.0, 50.0).Return(nil)
		// the cheaper sibling trips the price rule against the new price
		m.items.On("FindLineItemsByVehicleService", mock.Anything, "vehA", "svc1").
			Return([]models.LineItem{{ID: siblingID, ServiceTypeID: "svc1", VehicleID: "vehA", UnitPrice: 30.0, TotalPrice: 30.0}}, nil)
		m.alerts.On("InsertAlert", mock.Anything, mock.MatchedBy(func(a models.Alert) bool {
			return a.Type == models.AlertTypeHigherPrice && a.ValidLineItemID == siblingID.Hex()
		})).Return(nil)
		m.alerts.On("InsertAlert", mock.Anything, mock.MatchedBy(func(a models.Alert) bool {
			return a.Type == models.AlertTypeSameService
		})).Return(nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, oldInvoiceID.Hex()).Return(int64(2), nil)
		m.invoices.On("UpdateInvoiceStatus", mock.Anything, oldInvoiceID.Hex(), models.InvoiceStatusPendingAlertReview).Return(nil)
		m.publisher.On("PublishAlert", mock.AnythingOfType("models.Alert")).Return(nil)

		_, err := o.UpdateLineItem(context.Background(), itemID.Hex(), models.LineItem{
			UnitPrice: 50.00,
			Quantity:  1,
		})

		assert.NoError(t, err)
		m.alerts.AssertCalled(t, "DeleteAlertsByLineItem", mock.Anything, itemID.Hex())
		m.alerts.AssertNumberOfCalls(t, "InsertAlert", 2)
		m.alerts.AssertExpectations(t)
	})

	t.Run("approved destination invoice blocks the reassignment", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.items.On("FindLineItemByID", mock.Anything, itemID.Hex()).
			Return(&models.LineItem{ID: itemID, InvoiceID: oldInvoiceID.Hex(), ServiceTypeID: "svc1"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, oldInvoiceID.Hex()).
			Return(&models.Invoice{ID: oldInvoiceID, Status: models.InvoiceStatusDraft}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, newInvoiceID.Hex()).
			Return(&models.Invoice{ID: newInvoiceID, Status: models.InvoiceStatusApproved}, nil)

		_, err := o.UpdateLineItem(context.Background(), itemID.Hex(), models.LineItem{
			InvoiceID: newInvoiceID.Hex(),
			UnitPrice: 10.00,
			Quantity:  1,
		})

		assert.True(t, errors.Is(err, models.ErrConflict))
		m.alerts.AssertNotCalled(t, "DeleteAlertsByLineItem", mock.Anything, mock.Anything)
		m.items.AssertNotCalled(t, "ReplaceLineItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative price aborts before the alert cascade", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.items.On("FindLineItemByID", mock.Anything, itemID.Hex()).
			Return(&models.LineItem{ID: itemID, InvoiceID: oldInvoiceID.Hex(), ServiceTypeID: "svc1"}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, oldInvoiceID.Hex()).
			Return(&models.Invoice{ID: oldInvoiceID, Status: models.InvoiceStatusDraft}, nil)

		_, err := o.UpdateLineItem(context.Background(), itemID.Hex(), models.LineItem{
			UnitPrice: -5.00,
			Quantity:  1,
		})

		assert.True(t, errors.Is(err, models.ErrValidation))
		m.alerts.AssertNotCalled(t, "DeleteAlertsByLineItem", mock.Anything, mock.Anything)
		m.items.AssertNotCalled(t, "ReplaceLineItem", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrchestrator_DeleteLineItem(t *testing.T) {
	invoiceID := primitive.NewObjectID()
	itemID := primitive.NewObjectID()

	t.Run("cascades alerts and recomputes the invoice", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.items.On("FindLineItemByID", mock.Anything, itemID.Hex()).
			Return(&models.LineItem{ID: itemID, InvoiceID: invoiceID.Hex()}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusDraft}, nil)
		m.alerts.On("DeleteAlertsByLineItem", mock.Anything, itemID.Hex()).Return(int64(2), nil)
		m.items.On("DeleteLineItem", mock.Anything, itemID.Hex()).Return(nil)
		m.items.On("FindLineItemsByInvoice", mock.Anything, invoiceID.Hex()).
			Return([]models.LineItem{}, nil)
		m.invoices.On("UpdateInvoiceTotals", mock.Anything, invoiceID.Hex(), 0.0, 0.0, 0.0).Return(nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(0), nil)

		err := o.DeleteLineItem(context.Background(), itemID.Hex())

		assert.NoError(t, err)
		m.alerts.AssertExpectations(t)
		m.items.AssertExpectations(t)
	})

	t.Run("paid invoice blocks the delete", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.items.On("FindLineItemByID", mock.Anything, itemID.Hex()).
			Return(&models.LineItem{ID: itemID, InvoiceID: invoiceID.Hex()}, nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusPaid}, nil)

		err := o.DeleteLineItem(context.Background(), itemID.Hex())

		assert.True(t, errors.Is(err, models.ErrConflict))
		m.items.AssertNotCalled(t, "DeleteLineItem", mock.Anything, mock.Anything)
	})
}

func TestOrchestrator_CreateInvoice(t *testing.T) {
	t.Run("new invoice starts in draft with zeroed money fields", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.vehicles.On("FindVehicleByID", mock.Anything, "veh1").Return(&models.Vehicle{}, nil)
		m.vendors.On("FindVendorByID", mock.Anything, "ven1").Return(&models.Vendor{}, nil)
		m.invoices.On("FindInvoiceByNumber", mock.Anything, "INV-100").Return(nil, nil)
		m.invoices.On("InsertInvoice", mock.Anything, mock.MatchedBy(func(inv models.Invoice) bool {
			return inv.Status == models.InvoiceStatusDraft &&
				inv.SubTotal == 0 && inv.Tax == 0 && inv.InvoiceAmount == 0
		})).Return(nil)

		created, err := o.CreateInvoice(context.Background(), models.Invoice{
			VehicleID:     "veh1",
			VendorID:      "ven1",
			InvoiceNumber: "INV-100",
			// caller cannot preload money fields
			SubTotal:      99.99,
			Tax:           7.00,
			InvoiceAmount: 106.99,
		})

		assert.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusDraft, created.Status)
		assert.Equal(t, 0.0, created.InvoiceAmount)
		m.invoices.AssertExpectations(t)
	})

	t.Run("duplicate invoice number conflicts", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.vehicles.On("FindVehicleByID", mock.Anything, "veh1").Return(&models.Vehicle{}, nil)
		m.vendors.On("FindVendorByID", mock.Anything, "ven1").Return(&models.Vendor{}, nil)
		m.invoices.On("FindInvoiceByNumber", mock.Anything, "INV-100").
			Return(&models.Invoice{ID: primitive.NewObjectID(), InvoiceNumber: "INV-100"}, nil)

		_, err := o.CreateInvoice(context.Background(), models.Invoice{
			VehicleID:     "veh1",
			VendorID:      "ven1",
			InvoiceNumber: "INV-100",
		})

		assert.True(t, errors.Is(err, models.ErrConflict))
		m.invoices.AssertNotCalled(t, "InsertInvoice", mock.Anything, mock.Anything)
	})

	t.Run("missing vehicle reference is required", func(t *testing.T) {
		o, _ := newTestOrchestrator(0.07)

		_, err := o.CreateInvoice(context.Background(), models.Invoice{
			VendorID:      "ven1",
			InvoiceNumber: "INV-100",
		})

		assert.True(t, errors.Is(err, models.ErrValidation))
	})
}

func TestOrchestrator_UpdateInvoice(t *testing.T) {
	invoiceID := primitive.NewObjectID()

	t.Run("changing the vehicle rewrites the line item references", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		current := &models.Invoice{
			ID:            invoiceID,
			VehicleID:     "vehA",
			VendorID:      "venA",
			InvoiceNumber: "INV-100",
			Status:        models.InvoiceStatusDraft,
			SubTotal:      50.00,
			Tax:           3.50,
			InvoiceAmount: 53.50,
		}
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).Return(current, nil)
		m.vehicles.On("FindVehicleByID", mock.Anything, "vehB").Return(&models.Vehicle{}, nil)
		m.invoices.On("ReplaceInvoice", mock.Anything, invoiceID.Hex(), mock.MatchedBy(func(inv models.Invoice) bool {
			// money fields carried over from the stored document
			return inv.VehicleID == "vehB" && inv.SubTotal == 50.00 && inv.InvoiceAmount == 53.50
		})).Return(nil)
		m.items.On("UpdateLineItemRefs", mock.Anything, invoiceID.Hex(), "vehB", "venA").
			Return(int64(3), nil)

		updated, err := o.UpdateInvoice(context.Background(), invoiceID.Hex(), models.Invoice{
			VehicleID: "vehB",
		})

		assert.NoError(t, err)
		assert.Equal(t, "vehB", updated.VehicleID)
		m.items.AssertExpectations(t)
	})

	t.Run("unchanged references skip the rewrite", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		current := &models.Invoice{
			ID:            invoiceID,
			VehicleID:     "vehA",
			VendorID:      "venA",
			InvoiceNumber: "INV-100",
			Status:        models.InvoiceStatusDraft,
		}
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).Return(current, nil)
		m.invoices.On("ReplaceInvoice", mock.Anything, invoiceID.Hex(), mock.AnythingOfType("models.Invoice")).Return(nil)

		_, err := o.UpdateInvoice(context.Background(), invoiceID.Hex(), models.Invoice{
			Description: "fleet maintenance, March",
		})

		assert.NoError(t, err)
		m.items.AssertNotCalled(t, "UpdateLineItemRefs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrchestrator_DeleteInvoice_Cascade(t *testing.T) {
	invoiceID := primitive.NewObjectID()

	o, m := newTestOrchestrator(0.07)

	m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
		Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusDraft}, nil)
	m.alerts.On("DeleteAlertsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(4), nil)
	m.items.On("DeleteLineItemsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(2), nil)
	m.invoices.On("DeleteInvoice", mock.Anything, invoiceID.Hex()).Return(nil)

	err := o.DeleteInvoice(context.Background(), invoiceID.Hex())

	assert.NoError(t, err)
	m.alerts.AssertExpectations(t)
	m.items.AssertExpectations(t)
	m.invoices.AssertExpectations(t)
}

func TestOrchestrator_CreateAlert(t *testing.T) {
	invoiceID := primitive.NewObjectID()

	t.Run("pending alert moves the invoice to review and hits the bus", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.alerts.On("InsertAlert", mock.Anything, mock.AnythingOfType("models.Alert")).Return(nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusDraft}, nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(1), nil)
		m.invoices.On("UpdateInvoiceStatus", mock.Anything, invoiceID.Hex(), models.InvoiceStatusPendingAlertReview).Return(nil)
		m.publisher.On("PublishAlert", mock.AnythingOfType("models.Alert")).Return(nil)

		created, err := o.CreateAlert(context.Background(), models.Alert{
			Type:      models.AlertTypeHigherPrice,
			InvoiceID: invoiceID.Hex(),
		})

		assert.NoError(t, err)
		assert.Equal(t, models.AlertStatusPending, created.Status)
		m.invoices.AssertExpectations(t)
		m.publisher.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.alerts.On("InsertAlert", mock.Anything, mock.AnythingOfType("models.Alert")).Return(nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusPendingAlertReview}, nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(2), nil)
		m.publisher.On("PublishAlert", mock.AnythingOfType("models.Alert")).Return(assert.AnError)

		_, err := o.CreateAlert(context.Background(), models.Alert{
			Type:      models.AlertTypeSameService,
			InvoiceID: invoiceID.Hex(),
		})

		assert.NoError(t, err)
	})

	t.Run("missing type is rejected", func(t *testing.T) {
		o, _ := newTestOrchestrator(0.07)

		_, err := o.CreateAlert(context.Background(), models.Alert{InvoiceID: invoiceID.Hex()})

		assert.True(t, errors.Is(err, models.ErrValidation))
	})
}

func TestOrchestrator_UpdateAlert(t *testing.T) {
	invoiceID := primitive.NewObjectID()
	alertID := primitive.NewObjectID()

	t.Run("resolving the last pending alert records who and returns the invoice to draft", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		prev := &models.Alert{
			ID:        alertID,
			Type:      models.AlertTypeWarranty,
			InvoiceID: invoiceID.Hex(),
			Status:    models.AlertStatusPending,
		}
		m.alerts.On("FindAlertByID", mock.Anything, alertID.Hex()).Return(prev, nil)
		m.alerts.On("ReplaceAlert", mock.Anything, alertID.Hex(), mock.MatchedBy(func(a models.Alert) bool {
			return a.Status == models.AlertStatusResolved &&
				a.Resolution != nil &&
				a.Resolution.Action == "resolve" &&
				a.Resolution.Actor == "manager@fleet.example"
		})).Return(nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusPendingAlertReview}, nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(0), nil)
		m.invoices.On("UpdateInvoiceStatus", mock.Anything, invoiceID.Hex(), models.InvoiceStatusDraft).Return(nil)

		updated, err := o.UpdateAlert(context.Background(), alertID.Hex(),
			models.Alert{Status: models.AlertStatusResolved}, "manager@fleet.example")

		assert.NoError(t, err)
		assert.Equal(t, models.AlertStatusResolved, updated.Status)
		assert.NotNil(t, updated.Resolution)
		m.invoices.AssertExpectations(t)
	})

	t.Run("reopening clears the resolution", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		prev := &models.Alert{
			ID:         alertID,
			Type:       models.AlertTypeWarranty,
			InvoiceID:  invoiceID.Hex(),
			Status:     models.AlertStatusOverridden,
			Resolution: &models.Resolution{Action: "override", Actor: "clerk@fleet.example"},
		}
		m.alerts.On("FindAlertByID", mock.Anything, alertID.Hex()).Return(prev, nil)
		m.alerts.On("ReplaceAlert", mock.Anything, alertID.Hex(), mock.MatchedBy(func(a models.Alert) bool {
			return a.Status == models.AlertStatusPending && a.Resolution == nil
		})).Return(nil)
		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{ID: invoiceID, Status: models.InvoiceStatusDraft}, nil)
		m.alerts.On("CountPendingAlertsByInvoice", mock.Anything, invoiceID.Hex()).Return(int64(1), nil)
		m.invoices.On("UpdateInvoiceStatus", mock.Anything, invoiceID.Hex(), models.InvoiceStatusPendingAlertReview).Return(nil)

		updated, err := o.UpdateAlert(context.Background(), alertID.Hex(),
			models.Alert{Status: models.AlertStatusPending}, "manager@fleet.example")

		assert.NoError(t, err)
		assert.Nil(t, updated.Resolution)
		m.invoices.AssertExpectations(t)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.alerts.On("FindAlertByID", mock.Anything, alertID.Hex()).
			Return(&models.Alert{ID: alertID, Status: models.AlertStatusPending}, nil)

		_, err := o.UpdateAlert(context.Background(), alertID.Hex(),
			models.Alert{Status: "Snoozed"}, "manager@fleet.example")

		assert.True(t, errors.Is(err, models.ErrValidation))
		m.alerts.AssertNotCalled(t, "ReplaceAlert", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrchestrator_CreateVehicle(t *testing.T) {
	t.Run("duplicate VIN conflicts", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.vehicles.On("FindVehicleByVIN", mock.Anything, "1FTFW1ET5DFC10312").
			Return(&models.Vehicle{ID: primitive.NewObjectID()}, nil)

		_, err := o.CreateVehicle(context.Background(), models.Vehicle{VIN: "1FTFW1ET5DFC10312"})

		assert.True(t, errors.Is(err, models.ErrConflict))
		m.vehicles.AssertNotCalled(t, "InsertVehicle", mock.Anything, mock.Anything)
	})

	t.Run("tracked expirations raise permit alerts on the bus", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		expiration := date("2026-03-01")
		m.vehicles.On("FindVehicleByVIN", mock.Anything, "1FTFW1ET5DFC10312").Return(nil, nil)
		m.vehicles.On("InsertVehicle", mock.Anything, mock.AnythingOfType("models.Vehicle")).Return(nil)
		m.alerts.On("FindPermitAlert", mock.Anything, mock.Anything, models.AlertSubcategoryInsurance, expiration).
			Return(nil, nil)
		m.alerts.On("InsertAlert", mock.Anything, mock.AnythingOfType("models.Alert")).Return(nil)
		m.publisher.On("PublishAlert", mock.MatchedBy(func(a models.Alert) bool {
			return a.Type == models.AlertTypePermit
		})).Return(nil)

		created, err := o.CreateVehicle(context.Background(), models.Vehicle{
			VIN:                     "1FTFW1ET5DFC10312",
			Make:                    "Ford",
			Model:                   "F-150",
			InsuranceExpirationDate: &expiration,
		})

		assert.NoError(t, err)
		assert.Equal(t, "active", created.Status)
		m.publisher.AssertExpectations(t)
	})
}

func TestOrchestrator_ReconcileInvoice(t *testing.T) {
	invoiceID := primitive.NewObjectID()

	t.Run("stale totals are reported and repaired", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{
				ID:            invoiceID,
				SubTotal:      10.00,
				Tax:           0.70,
				InvoiceAmount: 10.70,
			}, nil)
		m.items.On("FindLineItemsByInvoice", mock.Anything, invoiceID.Hex()).
			Return([]models.LineItem{{TotalPrice: 20.00, Taxable: false}}, nil)
		m.invoices.On("UpdateInvoiceTotals", mock.Anything, invoiceID.Hex(), 20.0, 0.0, 20.0).Return(nil)

		report, err := o.ReconcileInvoice(context.Background(), invoiceID.Hex(), true)

		assert.NoError(t, err)
		assert.True(t, report.Drifted)
		assert.True(t, report.Repaired)
		assert.Equal(t, 20.0, report.ExpectedInvoiceAmount)
		m.invoices.AssertExpectations(t)
	})

	t.Run("consistent totals report no drift and write nothing", func(t *testing.T) {
		o, m := newTestOrchestrator(0.07)

		m.invoices.On("FindInvoiceByID", mock.Anything, invoiceID.Hex()).
			Return(&models.Invoice{
				ID:            invoiceID,
				SubTotal:      20.00,
				Tax:           0.00,
				InvoiceAmount: 20.00,
			}, nil)
		m.items.On("FindLineItemsByInvoice", mock.Anything, invoiceID.Hex()).
			Return([]models.LineItem{{TotalPrice: 20.00, Taxable: false}}, nil)

		report, err := o.ReconcileInvoice(context.Background(), invoiceID.Hex(), true)

		assert.NoError(t, err)
		assert.False(t, report.Drifted)
		assert.False(t, report.Repaired)
		m.invoices.AssertNotCalled(t, "UpdateInvoiceTotals",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
