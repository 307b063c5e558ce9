package validator

import (
	"log"

	"imgrelay/internal/datauri"

	"github.com/go-playground/validator/v10"
)

// TagDataURI - правило для поля file: data:<mime>;base64,<payload>
const TagDataURI = "is-data-uri"

// registerCustomRules регистрирует кастомные функции валидации.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правила приложение запускать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister(TagDataURI, validateDataURI)
}

func validateDataURI(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}
	return datauri.Match(value)
}
