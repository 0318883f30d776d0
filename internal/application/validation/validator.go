// Package validation traduce las reglas declarativas (tags de go-playground/validator) de los DTO
// a mensajes de violación legibles. Nunca se detiene en la primera falla.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/precios-especiales-api/internal/domain/entity"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Rutas de error con los nombres JSON (user.email en lugar de User.Email).
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// decimal.Decimal como numérico para que min/gt no entren en pánico.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("clienttype", func(fl validator.FieldLevel) bool {
		_, ok := entity.ParseClientType(fl.Field().String())
		return ok
	})
	return v
}

// Struct valida s y devuelve una violación por cada campo inválido.
func Struct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " es requerido"
	case "email":
		return field + ": formato de email inválido"
	case "max":
		return fmt.Sprintf("%s no puede exceder %s caracteres", field, fe.Param())
	case "clienttype":
		return field + ": tipo de cliente inválido (VIP, Premium, Corporate, Wholesale, Employee)"
	default:
		return fmt.Sprintf("%s no cumple la regla %s", field, fe.Tag())
	}
}

// fieldPath quita el nombre del struct raíz: "CreateSpecialPriceRequest.user.email" → "user.email".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
