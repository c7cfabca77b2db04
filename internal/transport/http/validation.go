package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// payloadValidator validates inbound payloads and reports failures keyed by JSON field name.
type payloadValidator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

func newPayloadValidator() *payloadValidator {
	v := govalidator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	return &payloadValidator{validate: v, trans: trans}
}

// Check returns nil when dst is valid, otherwise field name to message.
func (p *payloadValidator) Check(dst interface{}) map[string]string {
	err := p.validate.Struct(dst)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(p.trans)
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}
