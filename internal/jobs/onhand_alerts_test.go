package jobs

import (
	"context"
	"testing"
	"time"

	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

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

type MockPolicyRepo struct {
	mock.Mock
}

func (m *MockPolicyRepo) Upsert(ctx context.Context, policy *models.Policy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyRepo) ListByScope(ctx context.Context, departmentID uuid.UUID, itemType string) ([]*models.Policy, error) {
	args := m.Called(ctx, departmentID, itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Policy), args.Error(1)
}

func (m *MockPolicyRepo) List(ctx context.Context, limit, offset int) ([]*models.Policy, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Policy), args.Error(1)
}

type OnHandAlertsTestSuite struct {
	suite.Suite
	onHandRepo   *MockOnHandRepo
	itemRepo     *MockItemRepo
	locationRepo *MockLocationRepo
	policyRepo   *MockPolicyRepo
	service      *OnHandAlertService

	itemID       uuid.UUID
	locationID   uuid.UUID
	departmentID uuid.UUID
	ctx          context.Context
}

func (suite *OnHandAlertsTestSuite) SetupTest() {
	suite.onHandRepo = &MockOnHandRepo{}
	suite.itemRepo = &MockItemRepo{}
	suite.locationRepo = &MockLocationRepo{}
	suite.policyRepo = &MockPolicyRepo{}
	suite.service = NewOnHandAlertService(suite.onHandRepo, suite.itemRepo, suite.locationRepo, suite.policyRepo)

	suite.itemID = uuid.New()
	suite.locationID = uuid.New()
	suite.departmentID = uuid.New()
	suite.ctx = context.Background()
}

func TestOnHandAlertsTestSuite(t *testing.T) {
	suite.Run(t, new(OnHandAlertsTestSuite))
}

func (suite *OnHandAlertsTestSuite) expectScanRow(qty float64) {
	suite.onHandRepo.On("ListAll", suite.ctx).Return([]*models.OnHand{
		{ItemID: suite.itemID, LocationID: suite.locationID, QtyBase: qty, RefreshedAt: time.Now()},
	}, nil)
	suite.itemRepo.On("GetByID", suite.ctx, suite.itemID).Return(&models.Item{
		ID:       suite.itemID,
		Name:     "Folding Chair",
		ItemType: "furniture",
	}, nil)
	suite.locationRepo.On("GetByID", suite.ctx, suite.locationID).Return(&models.Location{
		ID:           suite.locationID,
		DepartmentID: suite.departmentID,
	}, nil)
}

func (suite *OnHandAlertsTestSuite) TestCheckLowOnHand_BelowFloorAlerts() {
	suite.expectScanRow(3)
	suite.policyRepo.On("ListByScope", suite.ctx, suite.departmentID, "furniture").Return([]*models.Policy{
		{Key: models.PolicyMinOnHand, Value: map[string]any{"floor": 10.0}},
	}, nil)

	alerts, err := suite.service.CheckLowOnHand(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), alerts, 1)
	assert.Equal(suite.T(), suite.itemID, alerts[0].ItemID)
	assert.Equal(suite.T(), "Folding Chair", alerts[0].ItemName)
	assert.Equal(suite.T(), 3.0, alerts[0].QtyBase)
	assert.Equal(suite.T(), 10.0, alerts[0].Floor)
}

func (suite *OnHandAlertsTestSuite) TestCheckLowOnHand_AtFloorNoAlert() {
	suite.expectScanRow(10)
	suite.policyRepo.On("ListByScope", suite.ctx, suite.departmentID, "furniture").Return([]*models.Policy{
		{Key: models.PolicyMinOnHand, Value: map[string]any{"floor": 10.0}},
	}, nil)

	alerts, err := suite.service.CheckLowOnHand(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), alerts)
}

func (suite *OnHandAlertsTestSuite) TestCheckLowOnHand_NoFloorConfigured() {
	suite.expectScanRow(1)
	suite.policyRepo.On("ListByScope", suite.ctx, suite.departmentID, "furniture").Return([]*models.Policy{}, nil)

	alerts, err := suite.service.CheckLowOnHand(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), alerts)
}

func (suite *OnHandAlertsTestSuite) TestCheckLowOnHand_SkipsRowsWithMissingItem() {
	missingItem := uuid.New()
	suite.onHandRepo.On("ListAll", suite.ctx).Return([]*models.OnHand{
		{ItemID: missingItem, LocationID: suite.locationID, QtyBase: 1},
	}, nil)
	suite.itemRepo.On("GetByID", suite.ctx, missingItem).Return(nil, assert.AnError)

	alerts, err := suite.service.CheckLowOnHand(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), alerts)
}
