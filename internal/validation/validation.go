package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"customshipping/internal/rate"
)

var (
	serviceCodeRe = regexp.MustCompile(`^[A-Za-z0-9-_.]+$`)
	cepRe         = regexp.MustCompile(`^[0-9]{5}-?[0-9]{3}$`)
)

// Error lists every field that failed validation.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		n, ok := f.Interface().(rate.NullFloat)
		if !ok || !n.Valid {
			return nil
		}
		return n.Float64
	}, rate.NullFloat{})
	_ = v.RegisterValidation("servicecode", func(fl validator.FieldLevel) bool {
		return serviceCodeRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return cepRe.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// MerchantConfig checks the merged application settings once, before any
// stage of the calculation sees them.
func (v *Validator) MerchantConfig(cfg *rate.MerchantConfig) error {
	return v.check(cfg)
}

func (v *Validator) Params(p *rate.Params) error {
	return v.check(p)
}

func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &Error{Fields: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) string {
	name := fe.Namespace()
	if _, rest, ok := strings.Cut(name, "."); ok {
		name = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "servicecode":
		return fmt.Sprintf("%s must contain only letters, digits, '-', '_' or '.'", name)
	case "cep":
		return fmt.Sprintf("%s must be a zip code like 00000-000", name)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s validation", name, fe.Tag())
	}
}
