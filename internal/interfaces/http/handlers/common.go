// Package handlers implements the gin HTTP handlers for the prediction API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// errorBody is the standard error response shape.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status.  Server-side
// failures are masked; the taxonomy code still reaches the client for
// correlation.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	body := errorBody{Code: string(code), Message: err.Error()}
	if status >= http.StatusInternalServerError {
		body.Message = "internal server error"
	}
	c.JSON(status, body)
}

// respondBadRequest rejects a malformed request body or query.
func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{
		Code:    string(errors.CodeInvalidParam),
		Message: msg,
	})
}
