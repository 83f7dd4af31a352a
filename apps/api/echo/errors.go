package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
)

var (
	errInvalidBody = core.NewValidationError(errors.New("Invalid request body."))

	msgInternal = "Internal server error."
	msgNotFound = "Record not found."
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors in the response envelope.
// Server errors are logged along with the acting principal.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateValidationErrors(origErr, translator)
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		case *core.AuthenticationError:
			code = http.StatusUnauthorized
			message = origErr.Error()
		case *core.AuthorizationError:
			code = http.StatusForbidden
			message = origErr.Error()
		case *core.StoreError:
			if origErr.IsConstraint() {
				code = http.StatusBadRequest
				message = origErr.UserMessage()
				break
			}
			code = http.StatusInternalServerError
			message = origErr.UserMessage()
			logger.Error("store failure", err, getPrincipal(ctx))
		default:
			if core.IsNotFound(err) {
				code = http.StatusNotFound
				message = msgNotFound
				break
			}
			// any other error is a server error
			code = http.StatusInternalServerError
			message = msgInternal
			if ctx.Echo().Debug {
				message = err.Error()
			}
			logger.Error(msgInternal, errors.Wrap(err, msgInternal), getPrincipal(ctx))
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, response{Error: message})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
