package jobs

import (
	"context"
	"log"

	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
)

// OnHandAlertService scans the projection against min_on_hand policy floors and
// reports pairs sitting below their floor.
type OnHandAlertService struct {
	onHandRepo   repositories.OnHandRepository
	itemRepo     repositories.ItemRepository
	locationRepo repositories.LocationRepository
	policyRepo   repositories.PolicyRepository
}

type OnHandAlert struct {
	ItemID     uuid.UUID
	ItemName   string
	LocationID uuid.UUID
	QtyBase    float64
	Floor      float64
}

func NewOnHandAlertService(onHandRepo repositories.OnHandRepository, itemRepo repositories.ItemRepository,
	locationRepo repositories.LocationRepository, policyRepo repositories.PolicyRepository) *OnHandAlertService {
	return &OnHandAlertService{
		onHandRepo:   onHandRepo,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		policyRepo:   policyRepo,
	}
}

// CheckLowOnHand walks every projection row and compares it to the min_on_hand
// floor configured for the row's department and item type. Pairs with no
// configured floor are skipped.
func (a *OnHandAlertService) CheckLowOnHand(ctx context.Context) ([]OnHandAlert, error) {
	rows, err := a.onHandRepo.ListAll(ctx)
	if err != nil {
		log.Printf("Failed to list on-hand rows for alert scan: %v", err)
		return nil, err
	}

	var alerts []OnHandAlert
	for _, row := range rows {
		item, err := a.itemRepo.GetByID(ctx, row.ItemID)
		if err != nil {
			log.Printf("Failed to get item %s during alert scan: %v", row.ItemID.String(), err)
			continue
		}
		location, err := a.locationRepo.GetByID(ctx, row.LocationID)
		if err != nil {
			log.Printf("Failed to get location %s during alert scan: %v", row.LocationID.String(), err)
			continue
		}

		floor, ok, err := a.floorFor(ctx, location.DepartmentID, item.ItemType)
		if err != nil {
			log.Printf("Failed to load policies for department %s item type %s: %v",
				location.DepartmentID.String(), item.ItemType, err)
			continue
		}
		if !ok {
			continue
		}

		if row.QtyBase < floor {
			alerts = append(alerts, OnHandAlert{
				ItemID:     row.ItemID,
				ItemName:   item.Name,
				LocationID: row.LocationID,
				QtyBase:    row.QtyBase,
				Floor:      floor,
			})
		}
	}
	return alerts, nil
}

func (a *OnHandAlertService) floorFor(ctx context.Context, departmentID uuid.UUID, itemType string) (float64, bool, error) {
	policies, err := a.policyRepo.ListByScope(ctx, departmentID, itemType)
	if err != nil {
		return 0, false, err
	}
	for _, policy := range policies {
		if policy.Key != models.PolicyMinOnHand {
			continue
		}
		switch n := policy.Value["floor"].(type) {
		case float64:
			return n, true, nil
		case int:
			return float64(n), true, nil
		}
	}
	return 0, false, nil
}

func (a *OnHandAlertService) LogLowOnHandAlerts(alerts []OnHandAlert) {
	if len(alerts) == 0 {
		log.Println("No low on-hand alerts to log")
		return
	}

	log.Printf("Low on-hand alerts: %d pairs below floor", len(alerts))
	for _, alert := range alerts {
		log.Printf("- Item '%s' at location %s has %.3f base units (floor: %.3f)",
			alert.ItemName,
			alert.LocationID.String(),
			alert.QtyBase,
			alert.Floor)
	}
}

// ScheduledLowOnHandCheck runs the scan and logs the result.
func (a *OnHandAlertService) ScheduledLowOnHandCheck(ctx context.Context) error {
	log.Println("Starting scheduled low on-hand check")

	alerts, err := a.CheckLowOnHand(ctx)
	if err != nil {
		log.Printf("Scheduled low on-hand check failed: %v", err)
		return err
	}
	a.LogLowOnHandAlerts(alerts)

	log.Println("Scheduled low on-hand check completed successfully")
	return nil
}
