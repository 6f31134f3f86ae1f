package billing

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// MockInvoiceCollection is a mock implementation of db.InvoiceCollection
type MockInvoiceCollection struct {
	mock.Mock
}

func (m *MockInvoiceCollection) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceCollection) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) FindInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceCollection) ReplaceInvoice(ctx context.Context, id string, invoice models.Invoice) error {
	args := m.Called(ctx, id, invoice)
	return args.Error(0)
}

func (m *MockInvoiceCollection) DeleteInvoice(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceCollection) UpdateInvoiceTotals(ctx context.Context, id string, subTotal, tax, invoiceAmount float64) error {
	args := m.Called(ctx, id, subTotal, tax, invoiceAmount)
	return args.Error(0)
}

func (m *MockInvoiceCollection) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockInvoiceCollection) FindInvoices(ctx context.Context, filter bson.M, page db.Page) ([]models.Invoice, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Invoice), args.Get(1).(int64), args.Error(2)
}

// MockLineItemCollection is a mock implementation of db.LineItemCollection
type MockLineItemCollection struct {
	mock.Mock
}

func (m *MockLineItemCollection) InsertLineItem(ctx context.Context, item models.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockLineItemCollection) FindLineItemByID(ctx context.Context, id string) (*models.LineItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LineItem), args.Error(1)
}

func (m *MockLineItemCollection) ReplaceLineItem(ctx context.Context, id string, item models.LineItem) error {
	args := m.Called(ctx, id, item)
	return args.Error(0)
}

func (m *MockLineItemCollection) DeleteLineItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLineItemCollection) FindLineItemsByInvoice(ctx context.Context, invoiceID string) ([]models.LineItem, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LineItem), args.Error(1)
}

func (m *MockLineItemCollection) FindLineItemsByVehicleService(ctx context.Context, vehicleID, serviceTypeID string) ([]models.LineItem, error) {
	args := m.Called(ctx, vehicleID, serviceTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LineItem), args.Error(1)
}

func (m *MockLineItemCollection) UpdateLineItemRefs(ctx context.Context, invoiceID, vehicleID, vendorID string) (int64, error) {
	args := m.Called(ctx, invoiceID, vehicleID, vendorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLineItemCollection) DeleteLineItemsByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLineItemCollection) FindLineItems(ctx context.Context, filter bson.M, page db.Page) ([]models.LineItem, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.LineItem), args.Get(1).(int64), args.Error(2)
}

// MockAlertCollection is a mock implementation of db.AlertCollection
type MockAlertCollection struct {
	mock.Mock
}

func (m *MockAlertCollection) InsertAlert(ctx context.Context, alert models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertCollection) FindAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertCollection) ReplaceAlert(ctx context.Context, id string, alert models.Alert) error {
	args := m.Called(ctx, id, alert)
	return args.Error(0)
}

func (m *MockAlertCollection) DeleteAlert(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAlertCollection) DeleteAlertsByLineItem(ctx context.Context, lineItemID string) (int64, error) {
	args := m.Called(ctx, lineItemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertCollection) DeleteAlertsByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertCollection) CountPendingAlertsByInvoice(ctx context.Context, invoiceID string) (int64, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlertCollection) FindPermitAlert(ctx context.Context, vehicleID, subcategory string, expiration time.Time) (*models.Alert, error) {
	args := m.Called(ctx, vehicleID, subcategory, expiration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Alert), args.Error(1)
}

func (m *MockAlertCollection) FindAlerts(ctx context.Context, filter bson.M, page db.Page) ([]models.Alert, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Alert), args.Get(1).(int64), args.Error(2)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByVIN(ctx context.Context, vin string) (*models.Vehicle, error) {
	args := m.Called(ctx, vin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) ReplaceVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, id, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, filter bson.M, page db.Page) ([]models.Vehicle, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Vehicle), args.Get(1).(int64), args.Error(2)
}

// MockVendorCollection is a mock implementation of db.VendorCollection
type MockVendorCollection struct {
	mock.Mock
}

func (m *MockVendorCollection) InsertVendor(ctx context.Context, vendor models.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorCollection) FindVendorByID(ctx context.Context, id string) (*models.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorCollection) ReplaceVendor(ctx context.Context, id string, vendor models.Vendor) error {
	args := m.Called(ctx, id, vendor)
	return args.Error(0)
}

func (m *MockVendorCollection) DeleteVendor(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVendorCollection) FindVendors(ctx context.Context, filter bson.M, page db.Page) ([]models.Vendor, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Vendor), args.Get(1).(int64), args.Error(2)
}

// MockServiceTypeCollection is a mock implementation of db.ServiceTypeCollection
type MockServiceTypeCollection struct {
	mock.Mock
}

func (m *MockServiceTypeCollection) InsertServiceType(ctx context.Context, serviceType models.ServiceType) error {
	args := m.Called(ctx, serviceType)
	return args.Error(0)
}

func (m *MockServiceTypeCollection) FindServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceType), args.Error(1)
}

func (m *MockServiceTypeCollection) ReplaceServiceType(ctx context.Context, id string, serviceType models.ServiceType) error {
	args := m.Called(ctx, id, serviceType)
	return args.Error(0)
}

func (m *MockServiceTypeCollection) DeleteServiceType(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServiceTypeCollection) FindServiceTypes(ctx context.Context, filter bson.M, page db.Page) ([]models.ServiceType, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ServiceType), args.Get(1).(int64), args.Error(2)
}

// MockPublisher is a mock implementation of notify.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishAlert(alert models.Alert) error {
	args := m.Called(alert)
	return args.Error(0)
}
