package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/brollplan/internal/errs"
)

const errorKindKey = "error_kind"

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// statusFor maps an error kind onto the HTTP status reported to the client.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindConfiguration:
		return http.StatusBadRequest
	case errs.KindInput:
		if errors.Is(err, errs.ErrEmptyInput) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errs.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	respondStatus(c, statusFor(err), errs.KindOf(err), err.Error())
}

func respondStatus(c *gin.Context, status int, kind errs.Kind, msg string) {
	c.Set(errorKindKey, kind.String())
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Kind: kind.String(), Message: msg}})
}
