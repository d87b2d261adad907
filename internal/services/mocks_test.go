package services

import (
	"context"
	"io"
	"time"

	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// Shared testify mocks for the repository and service interfaces exercised by
// the service test suites.

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepo) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepo) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

type MockLocationRepo struct {
	mock.Mock
}

func (m *MockLocationRepo) Create(ctx context.Context, location *models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepo) List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*models.Location, error) {
	args := m.Called(ctx, departmentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Location), args.Error(1)
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) InsertTx(ctx context.Context, tx pgx.Tx, entry *models.LedgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByID(ctx context.Context, txnID uuid.UUID) (*models.LedgerEntry, error) {
	args := m.Called(ctx, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepo) List(ctx context.Context, filter *models.LedgerFilter) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepo) SumByPair(ctx context.Context, itemID, locationID uuid.UUID) (float64, error) {
	args := m.Called(ctx, itemID, locationID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockLedgerRepo) SumAllPairs(ctx context.Context) ([]*models.OnHand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OnHand), args.Error(1)
}

func (m *MockLedgerRepo) WindowTotals(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]models.EventTotal, error) {
	args := m.Called(ctx, itemID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventTotal), args.Error(1)
}

type MockOnHandRepo struct {
	mock.Mock
}

func (m *MockOnHandRepo) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, delta float64) error {
	args := m.Called(ctx, tx, itemID, locationID, delta)
	return args.Error(0)
}

func (m *MockOnHandRepo) ReplaceAllTx(ctx context.Context, tx pgx.Tx, rows []*models.OnHand) error {
	args := m.Called(ctx, tx, rows)
	return args.Error(0)
}

func (m *MockOnHandRepo) Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error) {
	args := m.Called(ctx, itemID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnHand), args.Error(1)
}

func (m *MockOnHandRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.OnHand, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OnHand), args.Error(1)
}

func (m *MockOnHandRepo) ListAll(ctx context.Context) ([]*models.OnHand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OnHand), args.Error(1)
}

type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) LockPairTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID) error {
	args := m.Called(ctx, tx, itemID, locationID)
	return args.Error(0)
}

func (m *MockReservationRepo) HasOverlapTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, start, end time.Time) (bool, error) {
	args := m.Called(ctx, tx, itemID, locationID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepo) InsertTx(ctx context.Context, tx pgx.Tx, reservation *models.Reservation) error {
	args := m.Called(ctx, tx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockReservationRepo) List(ctx context.Context, itemID, eventID *uuid.UUID, limit, offset int) ([]*models.Reservation, error) {
	args := m.Called(ctx, itemID, eventID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *MockReservationRepo) TransitionFromHeld(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	args := m.Called(ctx, item, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockCacheService) GetOnHand(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error) {
	args := m.Called(ctx, itemID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnHand), args.Error(1)
}

func (m *MockCacheService) SetOnHand(ctx context.Context, row *models.OnHand, ttl time.Duration) error {
	args := m.Called(ctx, row, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteOnHand(ctx context.Context, itemID, locationID uuid.UUID) error {
	args := m.Called(ctx, itemID, locationID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockUnitConverter struct {
	mock.Mock
}

func (m *MockUnitConverter) ConvertToBase(ctx context.Context, baseUnit string, qty float64, unit string) (float64, error) {
	args := m.Called(ctx, baseUnit, qty, unit)
	return args.Get(0).(float64), args.Error(1)
}

type MockPolicyEngine struct {
	mock.Mock
}

func (m *MockPolicyEngine) Evaluate(ctx context.Context, check MovementCheck) error {
	args := m.Called(ctx, check)
	return args.Error(0)
}

type MockSchemaValidator struct {
	mock.Mock
}

func (m *MockSchemaValidator) Validate(ctx context.Context, schemaID uuid.UUID, attributes map[string]any) error {
	args := m.Called(ctx, schemaID, attributes)
	return args.Error(0)
}

func (m *MockSchemaValidator) Invalidate(schemaID uuid.UUID) {
	m.Called(schemaID)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockStorageService) GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Remove(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}
