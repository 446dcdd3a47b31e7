package utils

import (
    "context"
    "errors"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"
)

// ApiError is the typed failure every handler and service raises.  The
// outermost error handler renders it as the standard envelope; anything that
// is not an ApiError is treated as an internal failure with no detail leaked
// to the client.
type ApiError struct {
    StatusCode int      `json:"statusCode"`
    Message    string   `json:"message"`
    Errs       []string `json:"errors"`
}

func (e *ApiError) Error() string { return e.Message }

func NewApiError(status int, msg string, errs ...string) *ApiError {
    if errs == nil {
        errs = []string{}
    }
    return &ApiError{StatusCode: status, Message: msg, Errs: errs}
}

func BadRequest(msg string) *ApiError      { return NewApiError(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *ApiError    { return NewApiError(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *ApiError       { return NewApiError(http.StatusForbidden, msg) }
func NotFound(msg string) *ApiError        { return NewApiError(http.StatusNotFound, msg) }
func Conflict(msg string) *ApiError        { return NewApiError(http.StatusConflict, msg) }
func Internal(msg string) *ApiError        { return NewApiError(http.StatusInternalServerError, msg) }
func Unavailable(msg string) *ApiError     { return NewApiError(http.StatusServiceUnavailable, msg) }

// apiEnvelope is the uniform response body.  Success responses carry a
// payload under data; failures carry data:null and an errors array.
type apiEnvelope struct {
    StatusCode int         `json:"statusCode"`
    Message    string      `json:"message"`
    Success    bool        `json:"success"`
    Data       interface{} `json:"data"`
    Errors     []string    `json:"errors,omitempty"`
}

// Respond writes a success envelope with the given status and payload.
func Respond(c echo.Context, status int, message string, data interface{}) error {
    return c.JSON(status, apiEnvelope{
        StatusCode: status,
        Message:    message,
        Success:    status >= 200 && status < 300,
        Data:       data,
    })
}

// HTTPErrorHandler converts any error escaping a handler into the envelope.
// Typed ApiErrors pass through with their status; a store call that ran out
// of deadline becomes a retryable 503 (never a 401/403, those come only from
// explicit verification failures); everything else is a 500 with a generic
// message.
func HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }

    var apiErr *ApiError
    switch {
    case errors.As(err, &apiErr):
        // use as-is
    case errors.Is(err, context.DeadlineExceeded):
        apiErr = Unavailable("service temporarily unavailable")
    default:
        var httpErr *echo.HTTPError
        if errors.As(err, &httpErr) {
            msg := http.StatusText(httpErr.Code)
            if s, ok := httpErr.Message.(string); ok {
                msg = s
            }
            apiErr = NewApiError(httpErr.Code, msg)
        } else {
            log.Printf("unhandled error: %v", err)
            apiErr = Internal("internal server error")
        }
    }

    if c.Request().Method == http.MethodHead {
        _ = c.NoContent(apiErr.StatusCode)
        return
    }
    _ = c.JSON(apiErr.StatusCode, apiEnvelope{
        StatusCode: apiErr.StatusCode,
        Message:    apiErr.Message,
        Success:    false,
        Data:       nil,
        Errors:     apiErr.Errs,
    })
}
