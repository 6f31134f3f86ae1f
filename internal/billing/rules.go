package billing

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// RuleEngine evaluates business rules against newly written line items and
// vehicles and emits alerts. Every evaluation is fire-and-forget: a failing
// rule is logged and never blocks the other rules or the triggering write.
//
// The line item rules do not deduplicate: a matching write re-flags even when
// an equivalent alert already exists. Only the permit evaluator is idempotent
// (one alert per distinct expiration value).
type RuleEngine struct {
	items  db.LineItemCollection
	alerts db.AlertCollection
}

// NewRuleEngine creates an alert rule engine.
func NewRuleEngine(items db.LineItemCollection, alerts db.AlertCollection) *RuleEngine {
	return &RuleEngine{items: items, alerts: alerts}
}

type lineItemRule struct {
	name string
	eval func(item *models.LineItem, invoice *models.Invoice, siblings []models.LineItem) *models.Alert
}

var lineItemRules = []lineItemRule{
	{"warranty_date", warrantyDateRule},
	{"warranty_mileage", warrantyMileageRule},
	{"lower_price", lowerPriceRule},
	{"same_service", sameServiceRule},
}

// EvaluateLineItem runs every line item rule against the written item and
// persists the resulting alerts. It returns the alerts that were created;
// rule and store failures are logged and skipped.
func (e *RuleEngine) EvaluateLineItem(ctx context.Context, item *models.LineItem, invoice *models.Invoice) []models.Alert {
	siblings, err := e.items.FindLineItemsByVehicleService(ctx, item.VehicleID, item.ServiceTypeID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"line_item_id": item.ID.Hex(),
			"vehicle_id":   item.VehicleID,
		}).Error("alert rules: sibling lookup failed")
		return nil
	}

	// The written item is its own sibling in the store; rules compare
	// against the others only.
	others := siblings[:0:0]
	for _, s := range siblings {
		if s.ID != item.ID {
			others = append(others, s)
		}
	}

	var created []models.Alert
	for _, rule := range lineItemRules {
		alert := rule.eval(item, invoice, others)
		if alert == nil {
			continue
		}
		alert.ID = primitive.NewObjectID()
		alert.CreatedAt = time.Now()
		alert.UpdatedAt = alert.CreatedAt
		if err := e.alerts.InsertAlert(ctx, *alert); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"rule":         rule.name,
				"line_item_id": item.ID.Hex(),
			}).Error("alert rules: insert failed")
			continue
		}
		created = append(created, *alert)
	}
	return created
}

// newLineItemAlert builds the common shape of a line item rule alert.
func newLineItemAlert(item *models.LineItem, alertType, subcategory, message string) *models.Alert {
	return &models.Alert{
		Type:          alertType,
		Category:      models.AlertCategoryLineItem,
		Subcategory:   subcategory,
		Reasons:       subcategory,
		Message:       message,
		VehicleID:     item.VehicleID,
		InvoiceID:     item.InvoiceID,
		LineItemID:    item.ID.Hex(),
		ServiceTypeID: item.ServiceTypeID,
		Status:        models.AlertStatusPending,
	}
}

// warrantyDateRule flags the item when another line item for the same
// vehicle/service carries a warranty date on or after the current invoice's
// order start date. The most recent qualifying warranty date wins the
// back-reference.
func warrantyDateRule(item *models.LineItem, invoice *models.Invoice, siblings []models.LineItem) *models.Alert {
	var match *models.LineItem
	for i := range siblings {
		s := &siblings[i]
		if !s.Warranty || s.WarrantyDate == nil {
			continue
		}
		if s.WarrantyDate.Before(invoice.OrderStartDate) {
			continue
		}
		if match == nil || s.WarrantyDate.After(*match.WarrantyDate) {
			match = s
		}
	}
	if match == nil {
		return nil
	}

	alert := newLineItemAlert(item, models.AlertTypeWarranty, models.AlertSubcategoryDateValid,
		fmt.Sprintf("service appears covered by an existing warranty through %s",
			match.WarrantyDate.Format("2006-01-02")))
	alert.ValidLineItemID = match.ID.Hex()
	return alert
}

// warrantyMileageRule flags the item when another warranty line item's
// mileage coverage (service mileage + warranty mileage) still reaches the
// current item's mileage. The match with the greatest coverage wins.
func warrantyMileageRule(item *models.LineItem, _ *models.Invoice, siblings []models.LineItem) *models.Alert {
	var match *models.LineItem
	for i := range siblings {
		s := &siblings[i]
		if !s.Warranty || s.WarrantyMileage <= 0 {
			continue
		}
		if s.Mileage+s.WarrantyMileage < item.Mileage {
			continue
		}
		if match == nil || s.Mileage+s.WarrantyMileage > match.Mileage+match.WarrantyMileage {
			match = s
		}
	}
	if match == nil {
		return nil
	}

	alert := newLineItemAlert(item, models.AlertTypeWarranty, models.AlertSubcategoryMileageValid,
		fmt.Sprintf("service appears covered by an existing warranty through mileage %d (current %d)",
			match.Mileage+match.WarrantyMileage, item.Mileage))
	alert.ValidLineItemID = match.ID.Hex()
	return alert
}

// lowerPriceRule flags the item when the same service on the same vehicle was
// previously billed at a strictly lower unit price. The cheapest match wins.
func lowerPriceRule(item *models.LineItem, _ *models.Invoice, siblings []models.LineItem) *models.Alert {
	var match *models.LineItem
	for i := range siblings {
		s := &siblings[i]
		if s.UnitPrice >= item.UnitPrice {
			continue
		}
		if match == nil || s.UnitPrice < match.UnitPrice {
			match = s
		}
	}
	if match == nil {
		return nil
	}

	alert := newLineItemAlert(item, models.AlertTypeHigherPrice, models.AlertSubcategoryLowerPriceFound,
		fmt.Sprintf("same service previously billed at a lower unit price %.2f (current %.2f)",
			match.UnitPrice, item.UnitPrice))
	alert.ValidLineItemID = match.ID.Hex()
	return alert
}

// sameServiceRule flags the item when any other line item exists for the same
// vehicle/service, regardless of price.
func sameServiceRule(item *models.LineItem, _ *models.Invoice, siblings []models.LineItem) *models.Alert {
	if len(siblings) == 0 {
		return nil
	}

	alert := newLineItemAlert(item, models.AlertTypeSameService, models.AlertSubcategorySameServiceFound,
		"this service has already been billed for this vehicle")
	alert.ValidLineItemID = siblings[0].ID.Hex()
	return alert
}
