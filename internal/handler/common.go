package handler // handler defines http handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kavyand/vidstream/internal/utils"
)

// reqCtx bounds every store call made on behalf of a request. Timeouts
// surface as 503 through the error handler, never as an auth failure.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID parses a numeric path parameter. A non-numeric or zero id is a 400.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.BadRequest("invalid " + name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// saveTempFile copies an uploaded multipart file into the OS temp dir so
// the uploader can stream it. The caller removes the file on every path.
func saveTempFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(fh.Filename))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// pathIDValue parses a numeric id from an arbitrary string.
func pathIDValue(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, utils.BadRequest("invalid id")
	}
	return id, nil
}

// storeFailure maps a store error to the envelope: deadline overruns stay
// retryable 503s, everything else is a 500 with a stable message.
func storeFailure(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return utils.Internal(msg)
}
