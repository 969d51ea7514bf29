package utils

import (
	"reflect"
	"regexp"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
}

var (
	instance      *Validator
	once          sync.Once
	configuration *truemail.Configuration
	sanitizer     = bluemonday.StrictPolicy()
)

func GetValidator() *Validator {
	once.Do(func() {
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "team@todo-api.dev",
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
		}

		registerCustomValidators(instance.Validate)
	})

	return instance
}

func validateEmail(email string) bool {
	return truemail.IsValid(email, configuration)
}

// SanitizeData strips markup from every settable string field of the given
// struct pointer, nested structs included.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizer.Sanitize(field.String()))
		case reflect.Struct:
			if field.CanAddr() {
				if err := v.SanitizeData(field.Addr().Interface()); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func registerCustomValidators(v *validator.Validate) {
	err := v.RegisterValidation("short_name_validation", shortNameValidation)
	if err != nil {
		return
	}

	err = v.RegisterValidation("password_validation", passwordValidation)
	if err != nil {
		return
	}
}

func shortNameValidation(fl validator.FieldLevel) bool {
	shortName := fl.Field().String()
	// Define the regular expression pattern for a valid short name
	// The pattern allows a-z, A-Z, 0-9, ., -, and _
	pattern := `^[a-zA-Z0-9.\-_]+$`
	match, err := regexp.MatchString(pattern, shortName)
	if err != nil {
		return false
	}

	return match
}

func passwordValidation(fl validator.FieldLevel) bool {
	var upperLetter, lowerLetter, number, specialChar bool

	value := fl.Field().String()
	for _, r := range value {
		if r > unicode.MaxASCII {
			return false
		}

		switch {
		case unicode.IsUpper(r):
			upperLetter = true
		case unicode.IsLower(r):
			lowerLetter = true
		case unicode.IsNumber(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			specialChar = true
		}
	}

	return upperLetter && lowerLetter && number && specialChar
}
