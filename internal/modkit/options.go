package modkit

// Options validation: modules validate their Options structs at construction
// so a bad knob fails the run up front instead of mid-pipeline

import (
	"reflect"
	"strings"
	"sync"

	perr "oppwatch/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Validator returns the options validator singleton, initializing on first use
func Validator() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer conf tag names in messages so errors read like env/flag knobs
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("conf")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// ValidateOptions validates an options struct and returns a Validation error
// with translated, comma-joined messages
func ValidateOptions(opts any) error {
	svc := Validator()
	err := svc.Validator.Struct(opts)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return perr.Wrap(err, perr.ErrorCodeValidation, "options validation failed")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(svc.Translator))
	}
	return perr.Validationf("invalid options: %s", strings.Join(msgs, ", "))
}

// MustOptions panics when opts fail validation; module constructors call this
// once, before any remote work starts
func MustOptions(opts any) {
	if err := ValidateOptions(opts); err != nil {
		panic(err)
	}
}
