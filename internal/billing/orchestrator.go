package billing

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/notify"
	"github.com/ukydev/fleet-maintenance/internal/pricing"
)

// Orchestrator coordinates the consistency engine: it sequences validation,
// the mutability gate, pricing, persistence, totals recomputation, the alert
// rules and the status state machine for every consistency-significant
// mutation.
//
// Failure policy: anything before the primary write aborts the operation;
// anything after it is best-effort. Best-effort steps report a
// SideEffectError which is logged here and never surfaced to the caller, so
// a failed recomputation can leave an invoice's totals stale until the next
// mutation or a reconcile run.
type Orchestrator struct {
	vehicles db.VehicleCollection
	vendors  db.VendorCollection
	services db.ServiceTypeCollection
	invoices db.InvoiceCollection
	items    db.LineItemCollection
	alerts   db.AlertCollection

	totals   *TotalsAggregator
	status   *StatusMachine
	rules    *RuleEngine
	notifier notify.Publisher
}

// NewOrchestrator wires the consistency engine. All collaborators are
// constructed once at process start and injected.
func NewOrchestrator(
	vehicles db.VehicleCollection,
	vendors db.VendorCollection,
	services db.ServiceTypeCollection,
	invoices db.InvoiceCollection,
	items db.LineItemCollection,
	alerts db.AlertCollection,
	totals *TotalsAggregator,
	status *StatusMachine,
	rules *RuleEngine,
	notifier notify.Publisher,
) *Orchestrator {
	if notifier == nil {
		notifier = notify.NopPublisher{}
	}
	return &Orchestrator{
		vehicles: vehicles,
		vendors:  vendors,
		services: services,
		invoices: invoices,
		items:    items,
		alerts:   alerts,
		totals:   totals,
		status:   status,
		rules:    rules,
		notifier: notifier,
	}
}

// logSideEffect records a failed best-effort step. The primary write stands.
func logSideEffect(op string, fields log.Fields, err error) {
	if err == nil {
		return
	}
	se := &models.SideEffectError{Op: op, Err: err}
	log.WithError(se).WithFields(fields).Error("side effect failed; primary write stands")
}

// afterAlertsCreated runs the alert-creation side effects for rule output:
// the status state machine and the alert bus, each independently guarded.
func (o *Orchestrator) afterAlertsCreated(ctx context.Context, created []models.Alert) {
	for i := range created {
		alert := &created[i]
		fields := log.Fields{"alert_id": alert.ID.Hex(), "invoice_id": alert.InvoiceID}
		logSideEffect("invoice status sync", fields, o.status.OnAlertCreated(ctx, alert))
		logSideEffect("alert publish", fields, o.notifier.PublishAlert(*alert))
	}
}

// --- Line items ---

// CreateLineItem validates references, applies the mutability gate, prices
// the item, copies the invoice's vehicle/vendor, persists, then recomputes
// totals and runs the alert rules.
func (o *Orchestrator) CreateLineItem(ctx context.Context, item models.LineItem) (*models.LineItem, error) {
	if item.InvoiceID == "" {
		return nil, &models.ValidationError{Field: "invoiceId", Reason: "required"}
	}
	if item.ServiceTypeID == "" {
		return nil, &models.ValidationError{Field: "serviceTypeId", Reason: "required"}
	}

	if _, err := o.services.FindServiceTypeByID(ctx, item.ServiceTypeID); err != nil {
		return nil, err
	}
	invoice, err := o.invoices.FindInvoiceByID(ctx, item.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := o.status.EnsureMutable(invoice); err != nil {
		return nil, err
	}

	total, err := pricing.ExtendedPrice(item.UnitPrice, item.Quantity)
	if err != nil {
		return nil, err
	}
	item.TotalPrice = total

	// Denormalized references come from the parent invoice, never the caller.
	item.VehicleID = invoice.VehicleID
	item.VendorID = invoice.VendorID

	item.ID = primitive.NewObjectID()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	if err := o.items.InsertLineItem(ctx, item); err != nil {
		return nil, err
	}

	fields := log.Fields{"line_item_id": item.ID.Hex(), "invoice_id": item.InvoiceID}
	logSideEffect("totals recompute", fields, o.totals.Recompute(ctx, item.InvoiceID))
	o.afterAlertsCreated(ctx, o.rules.EvaluateLineItem(ctx, &item, invoice))

	return &item, nil
}

// UpdateLineItem gates the current (and, when reassigned, the new) invoice,
// invalidates the alerts raised for the old state, reprices, persists, then
// recomputes totals for every affected invoice and re-runs the rules.
func (o *Orchestrator) UpdateLineItem(ctx context.Context, id string, in models.LineItem) (*models.LineItem, error) {
	current, err := o.items.FindLineItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldInvoice, err := o.invoices.FindInvoiceByID(ctx, current.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := o.status.EnsureMutable(oldInvoice); err != nil {
		return nil, err
	}

	invoice := oldInvoice
	reassigned := in.InvoiceID != "" && in.InvoiceID != current.InvoiceID
	if reassigned {
		invoice, err = o.invoices.FindInvoiceByID(ctx, in.InvoiceID)
		if err != nil {
			return nil, err
		}
		if err := o.status.EnsureMutable(invoice); err != nil {
			return nil, err
		}
	}
	if in.ServiceTypeID != "" && in.ServiceTypeID != current.ServiceTypeID {
		if _, err := o.services.FindServiceTypeByID(ctx, in.ServiceTypeID); err != nil {
			return nil, err
		}
	}

	// Price before the alert cascade: a bad price must abort with nothing
	// written or deleted.
	total, err := pricing.ExtendedPrice(in.UnitPrice, in.Quantity)
	if err != nil {
		return nil, err
	}

	// The alerts raised for the old state may no longer be accurate; drop
	// them all and let the rules re-evaluate below.
	if _, err := o.alerts.DeleteAlertsByLineItem(ctx, id); err != nil {
		return nil, err
	}

	updated := *current
	updated.InvoiceID = invoice.ID.Hex()
	if in.ServiceTypeID != "" {
		updated.ServiceTypeID = in.ServiceTypeID
	}
	updated.Description = in.Description
	updated.UnitPrice = in.UnitPrice
	updated.Quantity = in.Quantity
	updated.TotalPrice = total
	updated.Taxable = in.Taxable
	updated.Mileage = in.Mileage
	updated.Warranty = in.Warranty
	updated.WarrantyMileage = in.WarrantyMileage
	updated.WarrantyDate = in.WarrantyDate
	updated.VehicleID = invoice.VehicleID
	updated.VendorID = invoice.VendorID
	updated.UpdatedAt = time.Now()

	if err := o.items.ReplaceLineItem(ctx, id, updated); err != nil {
		return nil, err
	}

	fields := log.Fields{"line_item_id": id, "invoice_id": updated.InvoiceID}
	logSideEffect("totals recompute", fields, o.totals.Recompute(ctx, current.InvoiceID))
	if reassigned {
		logSideEffect("totals recompute", fields, o.totals.Recompute(ctx, updated.InvoiceID))
	}
	o.afterAlertsCreated(ctx, o.rules.EvaluateLineItem(ctx, &updated, invoice))
	// The cascade delete above may have cleared the old invoice's last
	// pending alert.
	logSideEffect("invoice status sync", fields, o.status.Sync(ctx, current.InvoiceID))

	return &updated, nil
}

// DeleteLineItem gates the owning invoice, removes the alerts referencing the
// item, deletes it, then recomputes the invoice's totals.
func (o *Orchestrator) DeleteLineItem(ctx context.Context, id string) error {
	current, err := o.items.FindLineItemByID(ctx, id)
	if err != nil {
		return err
	}
	invoice, err := o.invoices.FindInvoiceByID(ctx, current.InvoiceID)
	if err != nil {
		return err
	}
	if err := o.status.EnsureMutable(invoice); err != nil {
		return err
	}

	if _, err := o.alerts.DeleteAlertsByLineItem(ctx, id); err != nil {
		return err
	}
	if err := o.items.DeleteLineItem(ctx, id); err != nil {
		return err
	}

	fields := log.Fields{"line_item_id": id, "invoice_id": current.InvoiceID}
	logSideEffect("totals recompute", fields, o.totals.Recompute(ctx, current.InvoiceID))
	logSideEffect("invoice status sync", fields, o.status.Sync(ctx, current.InvoiceID))
	return nil
}

// --- Alerts ---

// CreateAlert persists an administratively entered alert and runs the status
// state machine and alert bus side effects.
func (o *Orchestrator) CreateAlert(ctx context.Context, alert models.Alert) (*models.Alert, error) {
	if alert.Type == "" {
		return nil, &models.ValidationError{Field: "type", Reason: "required"}
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusPending
	}
	if !models.IsValidAlertStatus(alert.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: "unknown alert status"}
	}

	alert.ID = primitive.NewObjectID()
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = alert.CreatedAt
	if err := o.alerts.InsertAlert(ctx, alert); err != nil {
		return nil, err
	}

	o.afterAlertsCreated(ctx, []models.Alert{alert})
	return &alert, nil
}

var resolutionActions = map[models.AlertStatus]string{
	models.AlertStatusAcknowledged: "acknowledge",
	models.AlertStatusOverridden:   "override",
	models.AlertStatusResolved:     "resolve",
}

// UpdateAlert applies a status transition (and message edit) to an alert,
// recording a resolution when the alert leaves Pending, then runs the status
// state machine.
func (o *Orchestrator) UpdateAlert(ctx context.Context, id string, in models.Alert, actor string) (*models.Alert, error) {
	prev, err := o.alerts.FindAlertByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status == "" {
		in.Status = prev.Status
	}
	if !models.IsValidAlertStatus(in.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: "unknown alert status"}
	}

	cur := *prev
	if in.Message != "" {
		cur.Message = in.Message
	}
	if in.Status != prev.Status {
		cur.Status = in.Status
		if cur.Status == models.AlertStatusPending {
			cur.Resolution = nil
		} else {
			cur.Resolution = &models.Resolution{
				Action:     resolutionActions[cur.Status],
				Actor:      actor,
				ResolvedAt: time.Now(),
			}
		}
	}
	cur.UpdatedAt = time.Now()

	if err := o.alerts.ReplaceAlert(ctx, id, cur); err != nil {
		return nil, err
	}

	logSideEffect("invoice status sync", log.Fields{"alert_id": id, "invoice_id": cur.InvoiceID},
		o.status.OnAlertUpdated(ctx, prev, &cur))
	return &cur, nil
}

// DeleteAlert removes an alert and rechecks the owning invoice's status.
func (o *Orchestrator) DeleteAlert(ctx context.Context, id string) error {
	alert, err := o.alerts.FindAlertByID(ctx, id)
	if err != nil {
		return err
	}
	if err := o.alerts.DeleteAlert(ctx, id); err != nil {
		return err
	}

	logSideEffect("invoice status sync", log.Fields{"alert_id": id, "invoice_id": alert.InvoiceID},
		o.status.OnAlertDeleted(ctx, alert))
	return nil
}

// --- Invoices ---

// CreateInvoice validates references and invoice number uniqueness and
// persists the invoice in Draft with zeroed money fields.
func (o *Orchestrator) CreateInvoice(ctx context.Context, invoice models.Invoice) (*models.Invoice, error) {
	if invoice.VehicleID == "" {
		return nil, &models.ValidationError{Field: "vehicleId", Reason: "required"}
	}
	if invoice.VendorID == "" {
		return nil, &models.ValidationError{Field: "vendorId", Reason: "required"}
	}
	if invoice.InvoiceNumber == "" {
		return nil, &models.ValidationError{Field: "invoiceNumber", Reason: "required"}
	}

	if _, err := o.vehicles.FindVehicleByID(ctx, invoice.VehicleID); err != nil {
		return nil, err
	}
	if _, err := o.vendors.FindVendorByID(ctx, invoice.VendorID); err != nil {
		return nil, err
	}
	existing, err := o.invoices.FindInvoiceByNumber(ctx, invoice.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.ConflictError{Reason: "invoice number " + invoice.InvoiceNumber + " already exists"}
	}

	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusDraft
	}
	if !models.IsValidInvoiceStatus(invoice.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: "unknown invoice status"}
	}

	// Money fields are derived; a new invoice has no line items yet.
	invoice.SubTotal = 0
	invoice.Tax = 0
	invoice.InvoiceAmount = 0

	invoice.ID = primitive.NewObjectID()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt
	if err := o.invoices.InsertInvoice(ctx, invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice replaces the caller-editable invoice fields. The derived
// money fields are carried over from the stored document; when the vehicle or
// vendor reference changes the denormalized copies on the invoice's line
// items are rewritten as a best-effort follow-up.
func (o *Orchestrator) UpdateInvoice(ctx context.Context, id string, in models.Invoice) (*models.Invoice, error) {
	current, err := o.invoices.FindInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if in.InvoiceNumber != "" && in.InvoiceNumber != current.InvoiceNumber {
		existing, err := o.invoices.FindInvoiceByNumber(ctx, in.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != current.ID {
			return nil, &models.ConflictError{Reason: "invoice number " + in.InvoiceNumber + " already exists"}
		}
		updated.InvoiceNumber = in.InvoiceNumber
	}

	refsChanged := false
	if in.VehicleID != "" && in.VehicleID != current.VehicleID {
		if _, err := o.vehicles.FindVehicleByID(ctx, in.VehicleID); err != nil {
			return nil, err
		}
		updated.VehicleID = in.VehicleID
		refsChanged = true
	}
	if in.VendorID != "" && in.VendorID != current.VendorID {
		if _, err := o.vendors.FindVendorByID(ctx, in.VendorID); err != nil {
			return nil, err
		}
		updated.VendorID = in.VendorID
		refsChanged = true
	}

	if in.Status != "" && in.Status != current.Status {
		if !models.IsValidInvoiceStatus(in.Status) {
			return nil, &models.ValidationError{Field: "status", Reason: "unknown invoice status"}
		}
		updated.Status = in.Status
	}

	updated.Description = in.Description
	if !in.InvoiceDate.IsZero() {
		updated.InvoiceDate = in.InvoiceDate
	}
	if !in.OrderStartDate.IsZero() {
		updated.OrderStartDate = in.OrderStartDate
	}
	if !in.OrderEndDate.IsZero() {
		updated.OrderEndDate = in.OrderEndDate
	}
	updated.UpdatedAt = time.Now()

	if err := o.invoices.ReplaceInvoice(ctx, id, updated); err != nil {
		return nil, err
	}

	if refsChanged {
		_, err := o.items.UpdateLineItemRefs(ctx, id, updated.VehicleID, updated.VendorID)
		logSideEffect("line item reference sync", log.Fields{"invoice_id": id}, err)
	}
	return &updated, nil
}

// DeleteInvoice removes an invoice together with its line items and every
// alert referencing it. The cascade runs alerts first, then line items, then
// the invoice; a partial failure leaves the intermediate state.
func (o *Orchestrator) DeleteInvoice(ctx context.Context, id string) error {
	if _, err := o.invoices.FindInvoiceByID(ctx, id); err != nil {
		return err
	}
	if _, err := o.alerts.DeleteAlertsByInvoice(ctx, id); err != nil {
		return err
	}
	if _, err := o.items.DeleteLineItemsByInvoice(ctx, id); err != nil {
		return err
	}
	return o.invoices.DeleteInvoice(ctx, id)
}

// --- Vehicles ---

// CreateVehicle persists a vehicle and evaluates the permit rules over its
// compliance expiration dates.
func (o *Orchestrator) CreateVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	if vehicle.VIN != "" {
		existing, err := o.vehicles.FindVehicleByVIN(ctx, vehicle.VIN)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &models.ConflictError{Reason: "vehicle with VIN " + vehicle.VIN + " already exists"}
		}
	}
	if vehicle.Status == "" {
		vehicle.Status = "active"
	}

	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt
	if err := o.vehicles.InsertVehicle(ctx, vehicle); err != nil {
		return nil, err
	}

	o.publishPermitAlerts(o.rules.EvaluateVehicle(ctx, &vehicle))
	return &vehicle, nil
}

// UpdateVehicle replaces a vehicle and re-evaluates the permit rules, which
// create alerts only for expiration values not yet flagged.
func (o *Orchestrator) UpdateVehicle(ctx context.Context, id string, in models.Vehicle) (*models.Vehicle, error) {
	current, err := o.vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.VIN != "" && in.VIN != current.VIN {
		existing, err := o.vehicles.FindVehicleByVIN(ctx, in.VIN)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != current.ID {
			return nil, &models.ConflictError{Reason: "vehicle with VIN " + in.VIN + " already exists"}
		}
	}

	updated := *current
	if in.VIN != "" {
		updated.VIN = in.VIN
	}
	if in.Make != "" {
		updated.Make = in.Make
	}
	if in.Model != "" {
		updated.Model = in.Model
	}
	if in.Year != 0 {
		updated.Year = in.Year
	}
	if in.LicensePlate != "" {
		updated.LicensePlate = in.LicensePlate
	}
	if in.Status != "" {
		updated.Status = in.Status
	}
	updated.InsuranceExpirationDate = in.InsuranceExpirationDate
	updated.TagExpirationDate = in.TagExpirationDate
	updated.InspectionExpirationDate = in.InspectionExpirationDate
	updated.RegistrationExpirationDate = in.RegistrationExpirationDate
	updated.UpdatedAt = time.Now()

	if err := o.vehicles.ReplaceVehicle(ctx, id, updated); err != nil {
		return nil, err
	}

	o.publishPermitAlerts(o.rules.EvaluateVehicle(ctx, &updated))
	return &updated, nil
}

// publishPermitAlerts pushes permit alerts to the alert bus. Permit alerts
// reference no invoice, so the status state machine is not involved.
func (o *Orchestrator) publishPermitAlerts(created []models.Alert) {
	for i := range created {
		logSideEffect("alert publish", log.Fields{"alert_id": created[i].ID.Hex()},
			o.notifier.PublishAlert(created[i]))
	}
}
