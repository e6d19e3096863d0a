package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/lingocards/lingocards/internal/credential"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("secretkey", isSecretKey); err != nil {
		return nil, nil, fmt.Errorf("failed to register secretkey validation: %w", err)
	}
	if err := validate.RegisterTranslation("secretkey", trans, func(ut ut.Translator) error {
		return ut.Add("secretkey", fmt.Sprintf("{0} must start with the %q secret-key prefix", credential.SecretKeyPrefix), true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("secretkey", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register secretkey translation: %w", err)
	}

	return validate, trans, nil
}

func isSecretKey(fl validator.FieldLevel) bool {
	return credential.IsWellFormed(fl.Field().String())
}
