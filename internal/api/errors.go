package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/repository"
)

// StructuredError lists validation problems per request field.
type StructuredError struct {
	Errors map[string][]string `json:"errors"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fromValidationError converts validator field errors into a
// StructuredError. It returns nil for any other error.
func fromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "gt":
			problems[field] = append(problems[field], "Value must be greater than "+fe.Param())
		case "gte":
			problems[field] = append(problems[field], "Value must be at least "+fe.Param())
		case "url":
			problems[field] = append(problems[field], "Value must be a valid URL")
		case "oneof":
			problems[field] = append(problems[field], "Value must be one of: "+fe.Param())
		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}
	return &StructuredError{Errors: problems}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, policy.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, policy.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, policy.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, policy.ErrInvalidTransition), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the response for an error returned by the
// service. Hidden and missing resources produce the same body. Internal
// causes are logged, never returned.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := statusFor(err)
	switch status {
	case http.StatusNotFound:
		s.respondError(w, status, "not found")
	case http.StatusForbidden:
		s.respondError(w, status, "forbidden")
	case http.StatusInternalServerError:
		s.logger.WithError(err).WithField("request_id", requestID(r.Context())).Errorf("failed to %s", action)
		s.respondError(w, status, "failed to "+action)
	default:
		s.respondError(w, status, err.Error())
	}
}
