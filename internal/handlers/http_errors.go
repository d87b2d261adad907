package handlers

import (
	"errors"
	"log"
	"net/http"

	"eventops/internal/common"

	"github.com/labstack/echo/v4"
)

// httpError maps the core error taxonomy onto status codes. Storage error text
// stays out of response bodies.
func httpError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrNoConversionPath),
		errors.Is(err, common.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Unexpected failure")
	}
}
