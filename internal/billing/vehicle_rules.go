package billing

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

type complianceField struct {
	subcategory string
	label       string
}

// EvaluateVehicle inspects the vehicle's compliance expiration dates and
// creates a permit alert for each tracked date that does not already have
// one. Unlike the line item rules this evaluator is idempotent: re-writing a
// vehicle with the same expiration values creates nothing new. Each field is
// independently guarded; a failure is logged and the remaining fields still
// run.
func (e *RuleEngine) EvaluateVehicle(ctx context.Context, vehicle *models.Vehicle) []models.Alert {
	fields := []struct {
		complianceField
		date *time.Time
	}{
		{complianceField{models.AlertSubcategoryInsurance, "insurance"}, vehicle.InsuranceExpirationDate},
		{complianceField{models.AlertSubcategoryTag, "tag"}, vehicle.TagExpirationDate},
		{complianceField{models.AlertSubcategoryAnnualInspection, "annual inspection"}, vehicle.InspectionExpirationDate},
		{complianceField{models.AlertSubcategoryRegistration, "registration"}, vehicle.RegistrationExpirationDate},
	}

	vehicleID := vehicle.ID.Hex()
	var created []models.Alert
	for _, f := range fields {
		if f.date == nil {
			continue
		}

		existing, err := e.alerts.FindPermitAlert(ctx, vehicleID, f.subcategory, *f.date)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"vehicle_id":  vehicleID,
				"subcategory": f.subcategory,
			}).Error("permit rules: lookup failed")
			continue
		}
		if existing != nil {
			continue
		}

		expiration := *f.date
		alert := models.Alert{
			ID:             primitive.NewObjectID(),
			Type:           models.AlertTypePermit,
			Category:       models.AlertCategoryPermitVehicle,
			Subcategory:    f.subcategory,
			Reasons:        models.AlertReasonExpirationDate,
			Message:        fmt.Sprintf("vehicle %s expires %s", f.label, expiration.Format("2006-01-02")),
			VehicleID:      vehicleID,
			ExpirationDate: &expiration,
			Status:         models.AlertStatusPending,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := e.alerts.InsertAlert(ctx, alert); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"vehicle_id":  vehicleID,
				"subcategory": f.subcategory,
			}).Error("permit rules: insert failed")
			continue
		}
		created = append(created, alert)
	}
	return created
}
