package services

import (
	"context"
	"errors"
	"fmt"

	"eventops/internal/common"
	"eventops/internal/repositories"
)

// UnitConverter normalizes transaction quantities into an item's base unit.
// Resolution is direct edge first, then the stored inverse; no multi-hop paths.
type UnitConverter interface {
	ConvertToBase(ctx context.Context, baseUnit string, qty float64, unit string) (float64, error)
}

type unitConverter struct {
	conversionRepo repositories.UnitConversionRepository
}

func NewUnitConverter(conversionRepo repositories.UnitConversionRepository) UnitConverter {
	return &unitConverter{conversionRepo: conversionRepo}
}

func (s *unitConverter) ConvertToBase(ctx context.Context, baseUnit string, qty float64, unit string) (float64, error) {
	if unit == baseUnit {
		return qty, nil
	}

	factor, err := s.conversionRepo.GetFactor(ctx, unit, baseUnit)
	if err == nil {
		return qty * factor, nil
	}
	if !errors.Is(err, repositories.ErrNoEdge) {
		return 0, err
	}

	inverse, err := s.conversionRepo.GetFactor(ctx, baseUnit, unit)
	if err != nil {
		if errors.Is(err, repositories.ErrNoEdge) {
			return 0, fmt.Errorf("%s -> %s: %w", unit, baseUnit, common.ErrNoConversionPath)
		}
		return 0, err
	}
	if inverse == 0 {
		return 0, fmt.Errorf("%s -> %s has zero factor: %w", baseUnit, unit, common.ErrNoConversionPath)
	}
	return qty / inverse, nil
}
