package services

import (
	"context"
	"errors"
	"log"
	"time"

	"eventops/internal/caching"
	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
)

// ItemCreateInput carries the fields accepted on item creation.
type ItemCreateInput struct {
	SKU        string
	Name       string
	ItemType   string
	BaseUnit   string
	SchemaID   uuid.UUID
	Attributes map[string]any
	CategoryID *uuid.UUID
}

// ItemPatchInput carries the optional fields accepted on item update. The
// stored schema_id is never repointed; patched attributes re-validate against
// the schema the item was created with.
type ItemPatchInput struct {
	Name       *string
	BaseUnit   *string
	Attributes *map[string]any
	Active     *bool
}

type ItemCatalog interface {
	Create(ctx context.Context, input ItemCreateInput) (*models.Item, error)
	Patch(ctx context.Context, itemID uuid.UUID, input ItemPatchInput) (*models.Item, error)
	Get(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
}

type itemCatalog struct {
	itemRepo   repositories.ItemRepository
	schemaRepo repositories.AttributeSchemaRepository
	validator  SchemaValidator
	cacheSvc   caching.CacheService
}

func NewItemCatalog(itemRepo repositories.ItemRepository, schemaRepo repositories.AttributeSchemaRepository, validator SchemaValidator, cacheSvc caching.CacheService) ItemCatalog {
	return &itemCatalog{
		itemRepo:   itemRepo,
		schemaRepo: schemaRepo,
		validator:  validator,
		cacheSvc:   cacheSvc,
	}
}

func (s *itemCatalog) Create(ctx context.Context, input ItemCreateInput) (*models.Item, error) {
	if err := common.ValidateRequiredString(input.SKU, "sku"); err != nil {
		return nil, common.Validationf("%v", err)
	}
	if err := common.ValidateRequiredString(input.Name, "name"); err != nil {
		return nil, common.Validationf("%v", err)
	}
	if err := common.ValidateRequiredString(input.ItemType, "item_type"); err != nil {
		return nil, common.Validationf("%v", err)
	}
	if err := common.ValidateRequiredString(input.BaseUnit, "base_unit"); err != nil {
		return nil, common.Validationf("%v", err)
	}

	// The schema must resolve before validation so a bad reference surfaces as
	// a validation error, not a cache-population failure.
	if _, err := s.schemaRepo.GetByID(ctx, input.SchemaID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Validationf("schema %s does not exist", input.SchemaID)
		}
		return nil, err
	}

	attributes := input.Attributes
	if attributes == nil {
		attributes = map[string]any{}
	}
	if err := s.validator.Validate(ctx, input.SchemaID, attributes); err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:         uuid.New(),
		SKU:        input.SKU,
		Name:       input.Name,
		ItemType:   input.ItemType,
		BaseUnit:   input.BaseUnit,
		SchemaID:   input.SchemaID,
		Attributes: attributes,
		CategoryID: input.CategoryID,
		Active:     true,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByID(ctx, item.ID)
}

func (s *itemCatalog) Patch(ctx context.Context, itemID uuid.UUID, input ItemPatchInput) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.BaseUnit != nil {
		item.BaseUnit = *input.BaseUnit
	}
	if input.Active != nil {
		item.Active = *input.Active
	}
	if input.Attributes != nil {
		// Re-validate against the schema the item is pinned to.
		if err := s.validator.Validate(ctx, item.SchemaID, *input.Attributes); err != nil {
			return nil, err
		}
		item.Attributes = *input.Attributes
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	if cacheErr := s.cacheSvc.DeleteItem(ctx, itemID); cacheErr != nil {
		log.Printf("Failed to invalidate cache for item %s: %v", itemID, cacheErr)
	}

	return item, nil
}

func (s *itemCatalog) Get(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	if cached, err := s.cacheSvc.GetItem(ctx, itemID); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors never fail the read.
		log.Printf("Cache error for item %s: %v", itemID, err)
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheSvc.SetItem(ctx, item, 10*time.Minute); cacheErr != nil {
		log.Printf("Failed to cache item %s: %v", itemID, cacheErr)
	}
	return item, nil
}

func (s *itemCatalog) List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	return s.itemRepo.List(ctx, filter)
}
