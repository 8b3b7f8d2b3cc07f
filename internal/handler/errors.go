package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/dto"
	"furnit-storefront/internal/repository"
	"furnit-storefront/internal/service"
)

const msgInternal = "Internal server error"

// ErrorHandler renders every failure as {"success": false, "error": "..."}.
// Unexpected errors are logged and reported without details.
func ErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := msgInternal

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
			if he.Internal != nil && status >= http.StatusInternalServerError {
				logger.Errorf("%s %s: %v", c.Request().Method, c.Path(), he.Internal)
			}
		} else {
			logger.Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.ErrorResponse{Success: false, Error: msg})
		}
		if err != nil {
			logger.Errorf("write error response: %v", err)
		}
	}
}

func mailerError(err error) error {
	var merr *service.MailerError
	if !errors.As(err, &merr) {
		return err
	}

	status := http.StatusBadRequest
	switch merr.Kind {
	case service.KindUserNotFound:
		status = http.StatusNotFound
	case service.KindMailTransportFailure:
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, merr.Message).SetInternal(merr)
}

// storefrontStatus maps domain errors to a status and a message safe to show the shopper.
func storefrontStatus(err error) (int, string, bool) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Message, true
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, checkout.MsgEmptyCart, true
	case errors.Is(err, checkout.ErrUnknownDistrict),
		errors.Is(err, checkout.ErrSectorNotInDistrict),
		errors.Is(err, checkout.ErrUnknownTimeBand),
		errors.Is(err, checkout.ErrUnknownPayment),
		errors.Is(err, checkout.ErrUnknownField):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrSubmitInFlight),
		errors.Is(err, checkout.ErrSessionClosed):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, checkout.ErrSubmitFailed):
		return http.StatusBadGateway, checkout.MsgSubmitFailed, true
	}
	return 0, "", false
}

func storefrontError(err error) error {
	status, msg, ok := storefrontStatus(err)
	if !ok {
		return err
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}
