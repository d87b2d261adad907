package services

import (
	"context"
	"testing"
	"time"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReservationManagerTestSuite struct {
	suite.Suite
	db              pgxmock.PgxPoolIface
	reservationRepo *MockReservationRepo
	itemRepo        *MockItemRepo
	locationRepo    *MockLocationRepo
	manager         ReservationManager

	itemID     uuid.UUID
	locationID uuid.UUID
	eventID    uuid.UUID
	start      time.Time
	end        time.Time
	ctx        context.Context
}

func (suite *ReservationManagerTestSuite) SetupTest() {
	db, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.db = db

	suite.reservationRepo = &MockReservationRepo{}
	suite.itemRepo = &MockItemRepo{}
	suite.locationRepo = &MockLocationRepo{}
	suite.manager = NewReservationManager(db, suite.reservationRepo, suite.itemRepo, suite.locationRepo)

	suite.itemID = uuid.New()
	suite.locationID = uuid.New()
	suite.eventID = uuid.New()
	suite.start = time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	suite.end = time.Date(2026, 9, 12, 17, 0, 0, 0, time.UTC)
	suite.ctx = context.Background()
}

func (suite *ReservationManagerTestSuite) TearDownTest() {
	suite.db.Close()
}

func TestReservationManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ReservationManagerTestSuite))
}

func (suite *ReservationManagerTestSuite) expectLookups() {
	suite.itemRepo.On("GetByID", suite.ctx, suite.itemID).Return(&models.Item{ID: suite.itemID, BaseUnit: "each"}, nil)
	suite.locationRepo.On("GetByID", suite.ctx, suite.locationID).Return(&models.Location{ID: suite.locationID}, nil)
}

func (suite *ReservationManagerTestSuite) input() ReservationCreateInput {
	return ReservationCreateInput{
		ItemID:     suite.itemID,
		LocationID: suite.locationID,
		EventID:    suite.eventID,
		QtyBase:    40,
		StartTs:    suite.start,
		EndTs:      suite.end,
	}
}

func (suite *ReservationManagerTestSuite) TestCreate_Success() {
	suite.expectLookups()
	suite.reservationRepo.On("LockPairTx", suite.ctx, mock.Anything, suite.itemID, suite.locationID).Return(nil).Once()
	suite.reservationRepo.On("HasOverlapTx", suite.ctx, mock.Anything, suite.itemID, suite.locationID, suite.start, suite.end).Return(false, nil).Once()
	suite.reservationRepo.On("InsertTx", suite.ctx, mock.Anything, mock.AnythingOfType("*models.Reservation")).Return(nil).Once()
	suite.reservationRepo.On("GetByID", suite.ctx, mock.AnythingOfType("uuid.UUID")).Return(&models.Reservation{
		ItemID:     suite.itemID,
		LocationID: suite.locationID,
		EventID:    suite.eventID,
		QtyBase:    40,
		StartTs:    suite.start,
		EndTs:      suite.end,
		Status:     models.ReservationHeld,
	}, nil).Once()

	suite.db.ExpectBegin()
	suite.db.ExpectCommit()

	reservation, err := suite.manager.Create(suite.ctx, suite.input())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ReservationHeld, reservation.Status)
	assert.NoError(suite.T(), suite.db.ExpectationsWereMet())
	suite.reservationRepo.AssertExpectations(suite.T())
}

func (suite *ReservationManagerTestSuite) TestCreate_OverlapRejected() {
	suite.expectLookups()
	suite.reservationRepo.On("LockPairTx", suite.ctx, mock.Anything, suite.itemID, suite.locationID).Return(nil).Once()
	suite.reservationRepo.On("HasOverlapTx", suite.ctx, mock.Anything, suite.itemID, suite.locationID, suite.start, suite.end).Return(true, nil).Once()

	suite.db.ExpectBegin()
	suite.db.ExpectRollback()

	reservation, err := suite.manager.Create(suite.ctx, suite.input())
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrConflict)
	assert.Nil(suite.T(), reservation)
	assert.NoError(suite.T(), suite.db.ExpectationsWereMet())
	suite.reservationRepo.AssertNotCalled(suite.T(), "InsertTx")
}

func (suite *ReservationManagerTestSuite) TestCreate_InvertedWindowRejected() {
	suite.expectLookups()

	input := suite.input()
	input.StartTs, input.EndTs = input.EndTs, input.StartTs
	_, err := suite.manager.Create(suite.ctx, input)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *ReservationManagerTestSuite) TestCreate_EmptyWindowRejected() {
	suite.expectLookups()

	input := suite.input()
	input.EndTs = input.StartTs
	_, err := suite.manager.Create(suite.ctx, input)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *ReservationManagerTestSuite) TestCreate_NonPositiveQtyRejected() {
	suite.expectLookups()

	input := suite.input()
	input.QtyBase = 0
	_, err := suite.manager.Create(suite.ctx, input)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *ReservationManagerTestSuite) TestCreate_UnknownItemRejected() {
	suite.itemRepo.On("GetByID", suite.ctx, suite.itemID).Return(nil, common.NotFoundf("item %s", suite.itemID))

	_, err := suite.manager.Create(suite.ctx, suite.input())
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ReservationManagerTestSuite) TestUpdate_ReleaseHeld() {
	reservationID := uuid.New()
	suite.reservationRepo.On("TransitionFromHeld", suite.ctx, reservationID, models.ReservationReleased).Return(true, nil).Once()
	suite.reservationRepo.On("GetByID", suite.ctx, reservationID).Return(&models.Reservation{
		ID:     reservationID,
		Status: models.ReservationReleased,
	}, nil).Once()

	reservation, err := suite.manager.Update(suite.ctx, reservationID, models.ReservationActionRelease)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ReservationReleased, reservation.Status)
}

func (suite *ReservationManagerTestSuite) TestUpdate_FulfillHeld() {
	reservationID := uuid.New()
	suite.reservationRepo.On("TransitionFromHeld", suite.ctx, reservationID, models.ReservationFulfilled).Return(true, nil).Once()
	suite.reservationRepo.On("GetByID", suite.ctx, reservationID).Return(&models.Reservation{
		ID:     reservationID,
		Status: models.ReservationFulfilled,
	}, nil).Once()

	reservation, err := suite.manager.Update(suite.ctx, reservationID, models.ReservationActionFulfill)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ReservationFulfilled, reservation.Status)
}

func (suite *ReservationManagerTestSuite) TestUpdate_TerminalStateConflicts() {
	reservationID := uuid.New()
	suite.reservationRepo.On("TransitionFromHeld", suite.ctx, reservationID, models.ReservationReleased).Return(false, nil).Once()
	suite.reservationRepo.On("GetByID", suite.ctx, reservationID).Return(&models.Reservation{
		ID:     reservationID,
		Status: models.ReservationFulfilled,
	}, nil).Once()

	reservation, err := suite.manager.Update(suite.ctx, reservationID, models.ReservationActionRelease)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrConflict)
	assert.Contains(suite.T(), err.Error(), models.ReservationFulfilled)
	assert.Nil(suite.T(), reservation)
}

func (suite *ReservationManagerTestSuite) TestUpdate_UnknownReservation() {
	reservationID := uuid.New()
	suite.reservationRepo.On("TransitionFromHeld", suite.ctx, reservationID, models.ReservationReleased).Return(false, nil).Once()
	suite.reservationRepo.On("GetByID", suite.ctx, reservationID).Return(nil, common.NotFoundf("reservation %s", reservationID))

	_, err := suite.manager.Update(suite.ctx, reservationID, models.ReservationActionRelease)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ReservationManagerTestSuite) TestUpdate_UnknownActionRejected() {
	_, err := suite.manager.Update(suite.ctx, uuid.New(), "CANCEL")
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	suite.reservationRepo.AssertNotCalled(suite.T(), "TransitionFromHeld")
}
