package market

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(JSONFieldName)

	// Compare decimals numerically in gte/lte tags.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if str, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(str) != ""
		}
		return false
	})

	registerMessage(notBlankTag, "is required")
	registerMessage("http_url", "must be an http or https URL")
}

// JSONFieldName reports struct fields by their JSON names in validation errors.
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func registerMessage(tag, message string) {
	_ = validate.RegisterTranslation(tag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string { return fe.Field() + " " + message },
	)
}

// ValidateStruct checks v against its validate tags and reports the first
// failing field as a ValidationError.
func ValidateStruct(v interface{}) error {
	errValidate := validate.Struct(v)
	if errValidate == nil {
		return nil
	}
	if errField := FromFieldErrors(errValidate); errField != nil {
		return errField
	}
	return errValidate
}

// FromFieldErrors converts the first validator.FieldError in err into a
// ValidationError. It returns nil when err carries no field errors.
func FromFieldErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return nil
	}
	fe := fieldErrs[0]
	return Invalid(fe.Field(), strings.TrimPrefix(describe(fe), fe.Field()+" "))
}

// describe renders fe in English. Errors raised by other validator instances,
// such as gin's binding engine, fall back to the shared message table.
func describe(fe validator.FieldError) string {
	if msg := fe.Translate(translator); msg != fe.Error() {
		return msg
	}
	if msg, errT := translator.T(fe.Tag(), fe.Field(), fe.Param()); errT == nil && msg != "" {
		return msg
	}
	return fe.Field() + " failed the " + fe.Tag() + " check"
}
