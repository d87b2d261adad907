package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"eventops/internal/caching"
	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
)

const sourceDocBucket = "eventops-source-docs"

// Source docs above this size move to object storage; the ledger row keeps a
// reference instead of the payload.
const maxInlineSourceDoc = 8 << 10

// TransferSpec names the destination of a TRANSFER_OUT movement.
type TransferSpec struct {
	DestinationLocationID uuid.UUID
}

// PostInput describes one proposed stock movement. Qty is interpreted in Unit
// when set, otherwise in the item's base unit.
type PostInput struct {
	ItemID        uuid.UUID
	LocationID    uuid.UUID
	EventType     string
	Qty           float64
	Unit          string
	LotID         *string
	SerialNo      *string
	CostPerBase   *float64
	SourceDoc     map[string]any
	PostedBy      string
	ReservationID *uuid.UUID
	Transfer      *TransferSpec
}

// TransactionLedger is the single writer of truth for quantity history. Post
// appends one entry, or two atomically-linked entries for a transfer, and folds
// the movement into the on-hand projection in the same transaction.
type TransactionLedger interface {
	Post(ctx context.Context, input PostInput) ([]*models.LedgerEntry, error)
	List(ctx context.Context, filter *models.LedgerFilter) ([]*models.LedgerEntry, error)
	// SourceDoc resolves a transaction's source document: the inline payload,
	// or a presigned download URL when the payload was offloaded to storage.
	SourceDoc(ctx context.Context, txnID uuid.UUID) (map[string]any, string, error)
}

type transactionLedger struct {
	db              repositories.DB
	ledgerRepo      repositories.LedgerRepository
	onHandRepo      repositories.OnHandRepository
	itemRepo        repositories.ItemRepository
	locationRepo    repositories.LocationRepository
	reservationRepo repositories.ReservationRepository
	converter       UnitConverter
	policyEngine    PolicyEngine
	cacheSvc        caching.CacheService
	storage         StorageService
}

func NewTransactionLedger(
	db repositories.DB,
	ledgerRepo repositories.LedgerRepository,
	onHandRepo repositories.OnHandRepository,
	itemRepo repositories.ItemRepository,
	locationRepo repositories.LocationRepository,
	reservationRepo repositories.ReservationRepository,
	converter UnitConverter,
	policyEngine PolicyEngine,
	cacheSvc caching.CacheService,
	storage StorageService,
) TransactionLedger {
	return &transactionLedger{
		db:              db,
		ledgerRepo:      ledgerRepo,
		onHandRepo:      onHandRepo,
		itemRepo:        itemRepo,
		locationRepo:    locationRepo,
		reservationRepo: reservationRepo,
		converter:       converter,
		policyEngine:    policyEngine,
		cacheSvc:        cacheSvc,
		storage:         storage,
	}
}

func (s *transactionLedger) Post(ctx context.Context, input PostInput) ([]*models.LedgerEntry, error) {
	item, err := s.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	location, err := s.locationRepo.GetByID(ctx, input.LocationID)
	if err != nil {
		return nil, err
	}

	if !models.ValidEventType(input.EventType) {
		return nil, common.Validationf("unknown event type %q", input.EventType)
	}
	if math.IsNaN(input.Qty) || math.IsInf(input.Qty, 0) {
		return nil, common.Validationf("qty must be finite")
	}
	if err := common.ValidateRequiredString(input.PostedBy, "posted_by"); err != nil {
		return nil, common.Validationf("%v", err)
	}

	qtyBase := input.Qty
	if input.Unit != "" && input.Unit != item.BaseUnit {
		qtyBase, err = s.converter.ConvertToBase(ctx, item.BaseUnit, input.Qty, input.Unit)
		if err != nil {
			return nil, err
		}
	}

	reservationPresent, err := s.checkReservation(ctx, input)
	if err != nil {
		return nil, err
	}

	current, err := s.ledgerRepo.SumByPair(ctx, input.ItemID, input.LocationID)
	if err != nil {
		return nil, err
	}
	onHandAfter := current + qtyBase

	if err := s.policyEngine.Evaluate(ctx, MovementCheck{
		DepartmentID:       location.DepartmentID,
		ItemType:           item.ItemType,
		EventType:          input.EventType,
		OnHandAfter:        &onHandAfter,
		ReservationPresent: reservationPresent,
	}); err != nil {
		return nil, err
	}

	entries, err := s.buildEntries(ctx, item, input, qtyBase)
	if err != nil {
		return nil, err
	}

	offloaded, err := s.offloadSourceDoc(ctx, entries)
	if err != nil {
		return nil, err
	}

	// Both entries of a transfer and the projection deltas commit or roll back
	// as one unit; a half-posted transfer is never observable.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.discardOffload(ctx, offloaded)
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		if err := s.ledgerRepo.InsertTx(ctx, tx, entry); err != nil {
			s.discardOffload(ctx, offloaded)
			return nil, err
		}
		if err := s.onHandRepo.ApplyDeltaTx(ctx, tx, entry.ItemID, entry.LocationID, entry.QtyBase); err != nil {
			s.discardOffload(ctx, offloaded)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.discardOffload(ctx, offloaded)
		return nil, err
	}

	for _, entry := range entries {
		if cacheErr := s.cacheSvc.DeleteOnHand(ctx, entry.ItemID, entry.LocationID); cacheErr != nil {
			log.Printf("Failed to invalidate on-hand cache for %s/%s: %v", entry.ItemID, entry.LocationID, cacheErr)
		}
	}

	return entries, nil
}

func (s *transactionLedger) List(ctx context.Context, filter *models.LedgerFilter) ([]*models.LedgerEntry, error) {
	return s.ledgerRepo.List(ctx, filter)
}

func (s *transactionLedger) SourceDoc(ctx context.Context, txnID uuid.UUID) (map[string]any, string, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, txnID)
	if err != nil {
		return nil, "", err
	}
	if entry.SourceDoc == nil {
		return nil, "", common.NotFoundf("transaction %s has no source document", txnID)
	}
	if bucket, object, ok := storageRef(entry.SourceDoc); ok {
		url, err := s.storage.GetPresignedURL(bucket, object, 15*time.Minute)
		if err != nil {
			return nil, "", err
		}
		return nil, url, nil
	}
	return entry.SourceDoc, "", nil
}

// offloadSourceDoc moves an oversized source document to object storage and
// replaces every entry's payload with a reference. One object serves both
// halves of a transfer. Returns the object name, or "" when the payload stayed
// inline.
func (s *transactionLedger) offloadSourceDoc(ctx context.Context, entries []*models.LedgerEntry) (string, error) {
	doc := entries[0].SourceDoc
	if doc == nil {
		return "", nil
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", common.Validationf("source_doc is not serializable: %v", err)
	}
	if len(payload) <= maxInlineSourceDoc {
		return "", nil
	}

	if err := s.storage.EnsureBucketExists(ctx, sourceDocBucket); err != nil {
		return "", err
	}
	objectName := fmt.Sprintf("sourcedoc-%s.json", entries[0].TxnID)
	if err := s.storage.Upload(ctx, sourceDocBucket, objectName, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return "", err
	}

	ref := map[string]any{
		"storage_bucket": sourceDocBucket,
		"storage_object": objectName,
	}
	for _, entry := range entries {
		entry.SourceDoc = ref
	}
	return objectName, nil
}

// discardOffload removes an orphaned source-doc object after the ledger write
// failed. Removal failures only log; an unreferenced object is harmless.
func (s *transactionLedger) discardOffload(ctx context.Context, objectName string) {
	if objectName == "" {
		return
	}
	if err := s.storage.Remove(ctx, sourceDocBucket, objectName); err != nil {
		log.Printf("Failed to remove orphaned source doc %s: %v", objectName, err)
	}
}

func storageRef(doc map[string]any) (bucket, object string, ok bool) {
	bucket, _ = doc["storage_bucket"].(string)
	object, _ = doc["storage_object"].(string)
	return bucket, object, bucket != "" && object != ""
}

// checkReservation verifies a referenced reservation actually covers this
// movement; a dangling reference would otherwise satisfy require_reservation.
func (s *transactionLedger) checkReservation(ctx context.Context, input PostInput) (bool, error) {
	if input.ReservationID == nil {
		return false, nil
	}
	reservation, err := s.reservationRepo.GetByID(ctx, *input.ReservationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, common.Validationf("reservation %s does not exist", *input.ReservationID)
		}
		return false, err
	}
	if reservation.ItemID != input.ItemID || reservation.LocationID != input.LocationID {
		return false, common.Validationf("reservation %s is for a different item or location", reservation.ID)
	}
	// Only a live hold counts; released or fulfilled reservations no longer
	// claim any quantity.
	if reservation.Status != models.ReservationHeld {
		return false, common.Validationf("reservation %s is %s, not HELD", reservation.ID, reservation.Status)
	}
	return true, nil
}

func (s *transactionLedger) buildEntries(ctx context.Context, item *models.Item, input PostInput, qtyBase float64) ([]*models.LedgerEntry, error) {
	now := time.Now().UTC()

	source := &models.LedgerEntry{
		TxnID:       uuid.New(),
		Timestamp:   now,
		ItemID:      input.ItemID,
		LocationID:  input.LocationID,
		EventType:   input.EventType,
		QtyBase:     qtyBase,
		LotID:       input.LotID,
		SerialNo:    input.SerialNo,
		CostPerBase: input.CostPerBase,
		SourceDoc:   input.SourceDoc,
		PostedBy:    input.PostedBy,
	}

	if input.EventType != models.EventTransferOut {
		return []*models.LedgerEntry{source}, nil
	}

	if input.Transfer == nil || input.Transfer.DestinationLocationID == uuid.Nil {
		return nil, common.Validationf("transfer destination location is required for %s", models.EventTransferOut)
	}
	if input.Transfer.DestinationLocationID == input.LocationID {
		return nil, common.Validationf("transfer destination must differ from source location")
	}
	if _, err := s.locationRepo.GetByID(ctx, input.Transfer.DestinationLocationID); err != nil {
		return nil, err
	}

	group := uuid.New()
	source.TransferGroupID = &group

	destination := &models.LedgerEntry{
		TxnID:           uuid.New(),
		Timestamp:       now,
		ItemID:          input.ItemID,
		LocationID:      input.Transfer.DestinationLocationID,
		EventType:       models.EventTransferIn,
		QtyBase:         math.Abs(qtyBase),
		LotID:           input.LotID,
		SerialNo:        input.SerialNo,
		CostPerBase:     input.CostPerBase,
		SourceDoc:       input.SourceDoc,
		PostedBy:        input.PostedBy,
		TransferGroupID: &group,
	}
	return []*models.LedgerEntry{source, destination}, nil
}
