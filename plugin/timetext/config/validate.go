package config

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
	"github.com/hrygo/timetext/plugin/timetext/timezone"
)

// ValidatorSvc holds the shared validator and its English translator.
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Validator returns the validator singleton. Messages name fields by their json tag.
func Validator() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerZone(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// registerZone adds the "iana_zone" tag, checked against the shared IANA provider.
func registerZone(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("iana_zone", func(fl validator.FieldLevel) bool {
		return timezone.Default().IsValidTimezone(fl.Field().String())
	})
	_ = v.RegisterTranslation("iana_zone", trans,
		func(ut ut.Translator) error {
			return ut.Add("iana_zone", "{0} must be an IANA zone id", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("iana_zone", fe.Field())
			return msg
		},
	)
}

// Struct validates s and converts the first failure into INVALID_CONFIG.
func Struct(s interface{}) error {
	svc := Validator()
	err := svc.Validator.Struct(s)
	if err == nil {
		return nil
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return terrors.Wrap(inv, terrors.ErrCodeInvalidConfig, inv.Error(), "")
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return terrors.Wrap(err, terrors.ErrCodeInvalidConfig, fe.Translate(svc.Translator), "").
			WithContext("field", fe.Namespace())
	}
	return terrors.Wrap(err, terrors.ErrCodeInvalidConfig, err.Error(), "")
}
