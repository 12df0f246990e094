package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"aitradegame/internal/domain"
)

// Response represents a standardized API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// SuccessResponse sends a success response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c echo.Context, statusCode int, message string, err interface{}) error {
	return c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Error:   err,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message, nil)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusNotFound, message, nil)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c echo.Context, message string, err error) error {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return ErrorResponse(c, http.StatusInternalServerError, message, errMsg)
}

// DomainErrorResponse maps the ledger error taxonomy onto HTTP statuses:
// rejected instructions are 422, a busy account is 409, a missing account is
// 404, and a dead price feed is 503.
func DomainErrorResponse(c echo.Context, err error) error {
	var (
		validationErr  *domain.ValidationError
		fundsErr       *domain.InsufficientFundsError
		noPositionErr  *domain.NoSuchPositionError
		notFoundErr    *domain.AccountNotFoundError
		priceErr       *domain.PriceUnavailableError
		concurrencyErr *domain.ConcurrencyError
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid trade instruction", validationErr.Error())
	case errors.As(err, &fundsErr):
		return ErrorResponse(c, http.StatusUnprocessableEntity, "Insufficient funds", fundsErr.Error())
	case errors.As(err, &noPositionErr):
		return ErrorResponse(c, http.StatusUnprocessableEntity, "No such position", noPositionErr.Error())
	case errors.As(err, &notFoundErr):
		return NotFoundResponse(c, notFoundErr.Error())
	case errors.As(err, &priceErr):
		return ErrorResponse(c, http.StatusServiceUnavailable, "Price feed unavailable", priceErr.Error())
	case errors.As(err, &concurrencyErr):
		return ErrorResponse(c, http.StatusConflict, "Account is busy", concurrencyErr.Error())
	default:
		return InternalServerErrorResponse(c, "Internal error", err)
	}
}
