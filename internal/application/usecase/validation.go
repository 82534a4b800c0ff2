package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/catalogo-api/internal/domain"
)

// inputValidate valida los tags `validate` de los DTO de entrada.
var inputValidate = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Reportar el nombre JSON del campo, no el de Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput convierte los errores del validador en *domain.ValidationError.
func validateInput(in any) error {
	err := inputValidate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{Field: fe.Field(), Reason: reasonFor(fe.Tag(), fe.Param())}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

// validateName aplica las reglas del nombre ya recortado.
func validateName(name string) error {
	if name == "" {
		return &domain.ValidationError{Field: "name", Reason: "es requerido"}
	}
	if err := inputValidate.Var(name, "max=120"); err != nil {
		return &domain.ValidationError{Field: "name", Reason: reasonFor("max", "120")}
	}
	return nil
}

func reasonFor(tag, param string) string {
	switch tag {
	case "required":
		return "es requerido"
	case "max":
		return fmt.Sprintf("excede la longitud máxima (%s)", param)
	case "min":
		return fmt.Sprintf("no alcanza la longitud mínima (%s)", param)
	default:
		return "no cumple la regla " + tag
	}
}
