package utils

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/homedger-dev/homedger/shared/errors"
	"github.com/homedger-dev/homedger/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		http.Error(w, err.Error(), e.StatusCode)
		return
	}
	// default error is 500
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// ValidateStruct runs go-playground tag validation over a request DTO and
// maps failures to a 400.
func ValidateStruct(body any) error {
	if err := validate.Struct(body); err != nil {
		logger.Log.Warn("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing or invalid", StatusCode: http.StatusBadRequest}
	}
	return nil
}
