package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mlorenc/go-shop-api/internal/shop"
)

// NewValidator reports field names from json tags so error bodies match the
// request payload.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts the first validator violation into the domain
// validation error so the response names the failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return shop.Invalid(verrs[0].Field(), "failed validation on '"+verrs[0].Tag()+"'")
	}
	return shop.Invalid("", err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels to status codes. Anything unrecognized is
// logged in full and reported as a bare 500: internal detail stays internal.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	body := map[string]string{"error": err.Error()}
	var fe *shop.FieldError
	if errors.As(err, &fe) && fe.Field != "" {
		body["field"] = fe.Field
	}

	switch {
	case errors.Is(err, shop.ErrValidation):
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, shop.ErrAuthentication):
		writeJSON(w, http.StatusUnauthorized, body)
	case errors.Is(err, shop.ErrAuthorization):
		writeJSON(w, http.StatusForbidden, body)
	case errors.Is(err, shop.ErrNotFound):
		writeJSON(w, http.StatusNotFound, body)
	case errors.Is(err, shop.ErrConflict):
		writeJSON(w, http.StatusConflict, body)
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
