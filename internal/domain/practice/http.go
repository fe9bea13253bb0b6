package practice

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"vet-practice-api/internal/domain/vets"
	"vet-practice-api/internal/middleware"
	"vet-practice-api/internal/platform/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var (
	errInvalidJSON = apperr.Invalid("INVALID_JSON", "request body is not valid JSON")
	errValidation  = apperr.Invalid("VALIDATION_FAILED", "request failed validation")
	errBadQuery    = apperr.Invalid("INVALID_QUERY", "invalid query parameter")
)

type errorBody struct {
	Error *apperr.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduce cualquier error al cuerpo {"error":{code,message,details}}.
// Lo que no es apperr sale como 500 sin filtrar el mensaje interno.
func writeError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		e = apperr.Internal(nil)
	}
	writeJSON(w, apperr.HTTPStatus(e.Kind), errorBody{Error: e})
}

// decode lee el body y corre las reglas de validación de la DTO.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if e, ok := apperr.As(err); ok {
			return e
		}
		if errors.Is(err, io.EOF) {
			return errInvalidJSON.WithDetails(map[string]any{"reason": "empty body"})
		}
		return errInvalidJSON
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]any, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			return errValidation.WithDetails(map[string]any{"fields": fields})
		}
		return errValidation
	}
	return nil
}

// currentVet resuelve el Vet del request; escribe 401 si no hay identidad.
func currentVet(w http.ResponseWriter, r *http.Request, svc *Service) (vets.Vet, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, apperr.Unauthorized("authentication required"))
		return vets.Vet{}, false
	}
	v, err := svc.Vets().Resolve(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return vets.Vet{}, false
	}
	return v, true
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errBadQuery.WithDetails(map[string]any{"param": key})
	}
	return v, nil
}

func queryOptBool(r *http.Request, key string) (*bool, error) {
	if strings.TrimSpace(r.URL.Query().Get(key)) == "" {
		return nil, nil
	}
	v, err := queryBool(r, key)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errBadQuery.WithDetails(map[string]any{"param": key})
	}
	return n, nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errBadQuery.WithDetails(map[string]any{"param": key, "format": "RFC3339"})
	}
	return &t, nil
}
