package services

import (
	"context"
	"log"
	"time"

	"eventops/internal/caching"
	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
)

// OnHandProjection serves fast reads of current quantity per (item, location).
// The ledger service keeps the projection current inside its own transactions;
// Refresh is the full recompute used by the reconcile job.
type OnHandProjection interface {
	Refresh(ctx context.Context) error
	Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error)
	Query(ctx context.Context, itemID uuid.UUID, from, to *time.Time) (*models.ItemSummary, error)
}

type onHandProjection struct {
	db         repositories.DB
	onHandRepo repositories.OnHandRepository
	ledgerRepo repositories.LedgerRepository
	itemRepo   repositories.ItemRepository
	cacheSvc   caching.CacheService
}

func NewOnHandProjection(db repositories.DB, onHandRepo repositories.OnHandRepository, ledgerRepo repositories.LedgerRepository, itemRepo repositories.ItemRepository, cacheSvc caching.CacheService) OnHandProjection {
	return &onHandProjection{
		db:         db,
		onHandRepo: onHandRepo,
		ledgerRepo: ledgerRepo,
		itemRepo:   itemRepo,
		cacheSvc:   cacheSvc,
	}
}

// Refresh rebuilds the whole projection from ledger sums in one transaction,
// repairing any drift between projection and ledger.
func (s *onHandProjection) Refresh(ctx context.Context) error {
	sums, err := s.ledgerRepo.SumAllPairs(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.onHandRepo.ReplaceAllTx(ctx, tx, sums); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if cacheErr := s.cacheSvc.InvalidateAll(ctx); cacheErr != nil {
		log.Printf("Failed to invalidate cache after projection refresh: %v", cacheErr)
	}
	return nil
}

func (s *onHandProjection) Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error) {
	if cached, err := s.cacheSvc.GetOnHand(ctx, itemID, locationID); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for on-hand %s/%s: %v", itemID, locationID, err)
	}

	row, err := s.onHandRepo.Get(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}

	// Short TTL: the pair is invalidated on every post, the TTL only bounds
	// staleness after an out-of-band ledger write.
	if cacheErr := s.cacheSvc.SetOnHand(ctx, row, time.Minute); cacheErr != nil {
		log.Printf("Failed to cache on-hand %s/%s: %v", itemID, locationID, cacheErr)
	}
	return row, nil
}

func (s *onHandProjection) Query(ctx context.Context, itemID uuid.UUID, from, to *time.Time) (*models.ItemSummary, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	rows, err := s.onHandRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	summary := &models.ItemSummary{
		ItemID: itemID,
		AsOf:   time.Now().UTC(),
	}
	for _, row := range rows {
		summary.Locations = append(summary.Locations, *row)
		summary.Total += row.QtyBase
	}

	if from != nil && to != nil {
		if err := common.ValidateDateRange(*from, *to); err != nil {
			return nil, common.Validationf("%v", err)
		}
		// Bounded windows aggregate the ledger directly; the projection only
		// knows "now".
		moved, err := s.ledgerRepo.WindowTotals(ctx, itemID, *from, *to)
		if err != nil {
			return nil, err
		}
		window := &models.WindowTotal{From: *from, To: *to, Moved: moved}
		for _, t := range moved {
			window.NetQty += t.QtyBase
		}
		summary.Window = window
	}

	return summary, nil
}
