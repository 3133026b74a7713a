// Package bind decodes and validates JSON request bodies
// failures come back as perr values so handlers can return them unchanged
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "magnetinfo/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// DefaultMaxBytes caps bodies when JSONOptions.MaxBytes is zero
const DefaultMaxBytes = 1 << 20

// JSONOptions tune decoding, the zero value is strict with a 1 MiB cap
type JSONOptions struct {
	MaxBytes     int64
	AllowUnknown bool
}

// messages replaces the library's wording for the tags our payloads use
var messages = map[string]string{
	"notblank": "{0} must not be blank",
	"min":      "{0} must be at least {1}",
	"max":      "{0} must be at most {1}",
}

type checker struct {
	v  *validator.Validate
	tr ut.Translator
}

var get = sync.OnceValue(func() *checker {
	loc := en.New()
	tr, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = entrans.RegisterDefaultTranslations(v, tr)
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	for tag, text := range messages {
		tag, text := tag, text
		_ = v.RegisterTranslation(tag, tr,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return &checker{v: v, tr: tr}
})

// jsonName reports fields by their wire name so messages read "magnet_link must not be blank"
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ParseJSON decodes exactly one JSON value into T and validates it
func ParseJSON[T any](r *http.Request, opt JSONOptions) (T, error) {
	var zero, dst T
	limit := opt.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body := http.MaxBytesReader(nil, r.Body, limit)
	defer body.Close()

	dec := json.NewDecoder(body)
	if !opt.AllowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&dst); err != nil {
		return zero, decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return zero, perr.JSONErrf("request body must hold a single JSON object")
	}
	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

func decodeError(err error) error {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return perr.JSONErrf("request body is empty")
	case errors.As(err, &tooBig):
		return perr.JSONErrf("request body exceeds %d bytes", tooBig.Limit)
	default:
		return perr.JSONErrf("invalid JSON: %v", err)
	}
}

// Validate runs the struct tags on v, the first failing field becomes a validation error
func Validate(v any) error {
	c := get()
	err := c.v.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		return perr.WithField(perr.Validationf("%s", fe.Translate(c.tr)), fe.Field())
	}
	return perr.Wrap(err, perr.ErrorCodeUnknown, "validator misuse")
}
