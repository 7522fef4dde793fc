// Package bind decodes request bodies and validates them with go-playground/validator.
// Messages are English and name fields by their json tag, so they can be returned to callers as is
package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"

	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// defaultMaxBytes bounds request bodies; card reader payloads are tiny
const defaultMaxBytes = 64 << 10

// Options controls ParseJSON
type Options struct {
	// MaxBytes caps the body, 0 means the default
	MaxBytes int64
	// AllowUnknown accepts fields T does not declare
	AllowUnknown bool
	// AllowEmpty treats an empty body as the zero T on any method
	AllowEmpty bool
}

// Validator bundles the validator with its English translator
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// short messages replacing the stock English ones, plus our own tags
var messages = map[string]string{
	"min":         "{0} must be at least {1}",
	"max":         "{0} must be at most {1}",
	"reader_name": "{0} must contain printable characters only",
}

var (
	vOnce sync.Once
	vSvc  *Validator
)

// Get returns the process validator, building it on first use
func Get() *Validator {
	vOnce.Do(func() { vSvc = newValidator() })
	return vSvc
}

func newValidator() *Validator {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// printable only: reader names end up in log lines and MQTT topics
	_ = v.RegisterValidation("reader_name", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsPrint(r) }) < 0
	})

	for tag, text := range messages {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return &Validator{v: v, trans: trans}
}

// jsonName reports a field by its json tag, falling back to the Go name
func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// ParseJSON decodes the body into T and validates it.
// Decode problems are JSON errors, rule failures are Validation errors carrying the field
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var zero T
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	body := bufio.NewReader(io.LimitReader(r.Body, o.MaxBytes))
	if _, err := body.Peek(1); err != nil {
		if o.AllowEmpty || safeMethod(r.Method) {
			return zero, nil
		}
		return zero, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(body)
	if !o.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	var dst T
	if err := dec.Decode(&dst); err != nil {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// Struct validates v and returns the first failure as a Validation error carrying the field
func Struct(v any) error {
	err := Get().v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.JSONErrf("validation error")
	}
	field, msg := FieldAndMessage(err)
	out := perr.Newf(perr.ErrorCodeValidation, "%s", msg)
	if field != "" {
		out = perr.WithField(out, field)
	}
	return out
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().trans)
	}
	return "", err.Error()
}
