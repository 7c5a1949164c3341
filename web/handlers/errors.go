package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rodrigoinhaia/DiinPonto/correction"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/printer"
	"github.com/rodrigoinhaia/DiinPonto/kiosk"
	"github.com/rodrigoinhaia/DiinPonto/timeclock"
	"github.com/rodrigoinhaia/DiinPonto/web/common"
)

// abortWithError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with the raw message.
func abortWithError(c *gin.Context, err error) {
	var violation *timeclock.SequenceViolationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &violation),
		errors.Is(err, correction.ErrDuplicatePending),
		errors.Is(err, correction.ErrAlreadyProcessed),
		errors.Is(err, correction.ErrReasonTooShort),
		errors.Is(err, correction.ErrInvalidDecision),
		errors.Is(err, kiosk.ErrInvalidFormat),
		errors.Is(err, printer.ErrInvalidAddress),
		errors.Is(err, printer.ErrNotConfigured):
		status = http.StatusBadRequest
	case errors.Is(err, correction.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, timeclock.ErrUserNotFound),
		errors.Is(err, timeclock.ErrRecordNotFound),
		errors.Is(err, correction.ErrNotFound),
		errors.Is(err, correction.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, kiosk.ErrNotFound):
		status = http.StatusUnauthorized
	case errors.Is(err, kiosk.ErrTemporarilyBlocked):
		status = http.StatusTooManyRequests
	}

	c.AbortWithStatusJSON(status, common.NewErrorResponse(err.Error()))
}
