package services

import (
	"context"
	"testing"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ItemCatalogTestSuite struct {
	suite.Suite
	itemRepo   *MockItemRepo
	schemaRepo *MockAttributeSchemaRepo
	validator  *MockSchemaValidator
	cacheSvc   *MockCacheService
	catalog    ItemCatalog

	schemaID uuid.UUID
	ctx      context.Context
}

func (suite *ItemCatalogTestSuite) SetupTest() {
	suite.itemRepo = &MockItemRepo{}
	suite.schemaRepo = &MockAttributeSchemaRepo{}
	suite.validator = &MockSchemaValidator{}
	suite.cacheSvc = &MockCacheService{}
	suite.catalog = NewItemCatalog(suite.itemRepo, suite.schemaRepo, suite.validator, suite.cacheSvc)

	suite.schemaID = uuid.New()
	suite.ctx = context.Background()
}

func TestItemCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(ItemCatalogTestSuite))
}

func (suite *ItemCatalogTestSuite) createInput() ItemCreateInput {
	return ItemCreateInput{
		SKU:        "CHAIR-01",
		Name:       "Folding Chair",
		ItemType:   "furniture",
		BaseUnit:   "each",
		SchemaID:   suite.schemaID,
		Attributes: map[string]any{"color": "black"},
	}
}

func (suite *ItemCatalogTestSuite) expectSchemaLookup() {
	suite.schemaRepo.On("GetByID", suite.ctx, suite.schemaID).Return(&models.AttributeSchema{
		ID:       suite.schemaID,
		ItemType: "furniture",
		Version:  1,
	}, nil)
}

func (suite *ItemCatalogTestSuite) TestCreate_Success() {
	suite.expectSchemaLookup()
	suite.validator.On("Validate", suite.ctx, suite.schemaID, map[string]any{"color": "black"}).Return(nil)
	suite.itemRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Item")).Return(nil)
	suite.itemRepo.On("GetByID", suite.ctx, mock.AnythingOfType("uuid.UUID")).
		Return(&models.Item{SKU: "CHAIR-01", SchemaID: suite.schemaID, Active: true}, nil)

	item, err := suite.catalog.Create(suite.ctx, suite.createInput())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "CHAIR-01", item.SKU)
	assert.Equal(suite.T(), suite.schemaID, item.SchemaID)
	assert.True(suite.T(), item.Active)
	suite.itemRepo.AssertExpectations(suite.T())
}

func (suite *ItemCatalogTestSuite) TestCreate_MissingSKU() {
	input := suite.createInput()
	input.SKU = ""

	_, err := suite.catalog.Create(suite.ctx, input)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	suite.itemRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *ItemCatalogTestSuite) TestCreate_UnknownSchemaIsValidationError() {
	suite.schemaRepo.On("GetByID", suite.ctx, suite.schemaID).
		Return(nil, common.NotFoundf("attribute schema %s", suite.schemaID))

	_, err := suite.catalog.Create(suite.ctx, suite.createInput())
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	suite.itemRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *ItemCatalogTestSuite) TestCreate_InvalidAttributesMakeNoWrite() {
	suite.expectSchemaLookup()
	suite.validator.On("Validate", suite.ctx, suite.schemaID, map[string]any{"color": "black"}).
		Return(&common.AttributesInvalidError{Message: "missing properties: 'max_load'", Path: "$"})

	_, err := suite.catalog.Create(suite.ctx, suite.createInput())
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	suite.itemRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *ItemCatalogTestSuite) TestCreate_DuplicateSKUPropagatesConflict() {
	suite.expectSchemaLookup()
	suite.validator.On("Validate", suite.ctx, suite.schemaID, map[string]any{"color": "black"}).Return(nil)
	suite.itemRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Item")).
		Return(common.Conflictf("sku %q already exists", "CHAIR-01"))

	_, err := suite.catalog.Create(suite.ctx, suite.createInput())
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrConflict)
}

func (suite *ItemCatalogTestSuite) TestPatch_RevalidatesAgainstStoredSchema() {
	itemID := uuid.New()
	storedSchemaID := uuid.New()
	suite.itemRepo.On("GetByID", suite.ctx, itemID).Return(&models.Item{
		ID:         itemID,
		SKU:        "CHAIR-01",
		SchemaID:   storedSchemaID,
		Attributes: map[string]any{"color": "black"},
		Active:     true,
	}, nil)
	newAttrs := map[string]any{"color": "white"}
	suite.validator.On("Validate", suite.ctx, storedSchemaID, newAttrs).Return(nil).Once()
	suite.itemRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Item")).Return(nil)
	suite.cacheSvc.On("DeleteItem", suite.ctx, itemID).Return(nil)

	item, err := suite.catalog.Patch(suite.ctx, itemID, ItemPatchInput{Attributes: &newAttrs})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newAttrs, item.Attributes)
	// The validator saw the schema the item was created with, never a
	// caller-supplied one.
	suite.validator.AssertCalled(suite.T(), "Validate", suite.ctx, storedSchemaID, newAttrs)
	suite.cacheSvc.AssertCalled(suite.T(), "DeleteItem", suite.ctx, itemID)
}

func (suite *ItemCatalogTestSuite) TestPatch_InvalidAttributesMakeNoWrite() {
	itemID := uuid.New()
	storedSchemaID := uuid.New()
	suite.itemRepo.On("GetByID", suite.ctx, itemID).Return(&models.Item{
		ID:       itemID,
		SchemaID: storedSchemaID,
		Active:   true,
	}, nil)
	badAttrs := map[string]any{"color": 7}
	suite.validator.On("Validate", suite.ctx, storedSchemaID, badAttrs).
		Return(&common.AttributesInvalidError{Message: "expected string, but got number", Path: "$.color"})

	_, err := suite.catalog.Patch(suite.ctx, itemID, ItemPatchInput{Attributes: &badAttrs})
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	suite.itemRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *ItemCatalogTestSuite) TestPatch_FieldsWithoutAttributesSkipValidation() {
	itemID := uuid.New()
	suite.itemRepo.On("GetByID", suite.ctx, itemID).Return(&models.Item{
		ID:       itemID,
		Name:     "Folding Chair",
		SchemaID: suite.schemaID,
		Active:   true,
	}, nil)
	suite.itemRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Item")).Return(nil)
	suite.cacheSvc.On("DeleteItem", suite.ctx, itemID).Return(nil)

	name := "Stacking Chair"
	item, err := suite.catalog.Patch(suite.ctx, itemID, ItemPatchInput{Name: &name})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Stacking Chair", item.Name)
	suite.validator.AssertNotCalled(suite.T(), "Validate")
}

func (suite *ItemCatalogTestSuite) TestPatch_UnknownItem() {
	itemID := uuid.New()
	suite.itemRepo.On("GetByID", suite.ctx, itemID).Return(nil, common.NotFoundf("item %s", itemID))

	_, err := suite.catalog.Patch(suite.ctx, itemID, ItemPatchInput{})
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ItemCatalogTestSuite) TestGet_CacheHitSkipsRepo() {
	itemID := uuid.New()
	cached := &models.Item{ID: itemID, SKU: "CHAIR-01"}
	suite.cacheSvc.On("GetItem", suite.ctx, itemID).Return(cached, nil)

	item, err := suite.catalog.Get(suite.ctx, itemID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, item)
	suite.itemRepo.AssertNotCalled(suite.T(), "GetByID")
}

func (suite *ItemCatalogTestSuite) TestGet_CacheMissFallsThroughAndCaches() {
	itemID := uuid.New()
	stored := &models.Item{ID: itemID, SKU: "CHAIR-01"}
	suite.cacheSvc.On("GetItem", suite.ctx, itemID).Return(nil, nil)
	suite.itemRepo.On("GetByID", suite.ctx, itemID).Return(stored, nil)
	suite.cacheSvc.On("SetItem", suite.ctx, stored, mock.AnythingOfType("time.Duration")).Return(nil)

	item, err := suite.catalog.Get(suite.ctx, itemID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), stored, item)
	suite.cacheSvc.AssertExpectations(suite.T())
}
