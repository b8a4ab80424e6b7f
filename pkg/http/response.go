package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes data in the envelope with statusCode.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// CachedResponse is SuccessResponse with a private Cache-Control max-age.
// Clients may reuse a signal or price for maxAge seconds.
func CachedResponse(c echo.Context, maxAge int, data interface{}) error {
	if maxAge > 0 {
		c.Response().Header().Set(echo.HeaderCacheControl, fmt.Sprintf("private, max-age=%d", maxAge))
	}
	return SuccessResponse(c, data)
}

// BadRequestResponse writes the validation errors returned by BindQuery.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// ServiceUnavailableResponse reports a failed dependency, e.g. from a
// health check.
func ServiceUnavailableResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusServiceUnavailable, data)
}

// AppErrorResponse writes err in the envelope. An error that is not an
// *AppError becomes a generic 500 and its text is not exposed.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
