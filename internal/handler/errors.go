package handler

import (
	"errors"
	"net/http"

	customError "github.com/segyhp/microloans/pkg/errors"
	"github.com/segyhp/microloans/pkg/response"

	"github.com/sirupsen/logrus"
)

// writeError maps the error taxonomy onto HTTP. Anything unrecognised,
// storage failures included, becomes a 500 whose body hides the cause.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var verr *customError.ValidationError
	var berr *customError.BusinessError

	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, customError.ErrCodeValidationFailed, "Validation failed", verr.Fields)
	case errors.Is(err, customError.ErrMalformedRequest) && errors.As(err, &berr):
		response.BadRequest(w, berr.Code, berr.Message, nil)
	case errors.Is(err, customError.ErrLoanNotFound) && errors.As(err, &berr):
		response.NotFound(w, berr.Code, berr.Message)
	default:
		log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"code":   customError.CodeOf(err),
		}).WithError(err).Error("request failed")
		response.InternalServerError(w)
	}
}
