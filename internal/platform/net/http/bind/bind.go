// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "policyxray/internal/platform/errors"
	"policyxray/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps a request body
const DefaultMaxBytes int64 = 4 << 20

// Validator pairs the validator with its english translator
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	once sync.Once
	std  *Validator
)

// Default returns the process wide validator
func Default() *Validator {
	once.Do(func() { std = newValidator() })
	return std
}

func newValidator() *Validator {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// string lengths are counted in characters
	translate(v, trans, "min", "{0} must be at least {1} characters")
	translate(v, trans, "max", "{0} must be at most {1} characters")

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	translate(v, trans, "notblank", "{0} must contain text")

	return &Validator{v: v, trans: trans}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func translate(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Struct validates v and returns a validation error naming the first bad field
func (val *Validator) Struct(v any) error {
	err := val.v.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Named("bind").Error().Err(inv).Msg("validator misuse")
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validation failed")
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(val.trans)), fe.Field())
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, err.Error())
}

// ParseJSON decodes exactly one JSON object into T and validates it. Unknown fields,
// trailing data and an empty body are rejected
func ParseJSON[T any](r *http.Request) (T, error) {
	return ParseJSONLimit[T](r, DefaultMaxBytes)
}

// ParseJSONLimit is ParseJSON with an explicit body cap
func ParseJSONLimit[T any](r *http.Request, maxBytes int64) (T, error) {
	var dst T
	if r.Body == nil {
		return dst, perr.JSONErrf("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dst, perr.JSONErrf("empty body")
		}
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}
	if err := Default().Struct(dst); err != nil {
		return dst, err
	}
	return dst, nil
}
