package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Response   any    `json:"response,omitempty"`
}

// errBadRequest marks malformed input other than identifiers.
var errBadRequest = errors.New("bad request")

// params returns the named path parameters after checking each one.
func params(c *gin.Context, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		v := c.Param(name)
		if err := types.ValidateID(v); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// statusFor maps an error onto its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidID), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrAlreadyExists), errors.Is(err, types.ErrInvalidMove):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func reply(c *gin.Context, code int, message string, body any) {
	c.JSON(code, Envelope{StatusCode: code, Message: message, Response: body})
}

// fail writes err with its mapped status and attaches it to the context for
// the request logger.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	code := statusFor(err)
	reply(c, code, err.Error(), nil)
}
