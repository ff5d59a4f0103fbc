package planner

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tphakala/irrigo/internal/errors"
)

// Inputs is one planning request. Pointer fields distinguish "absent" from zero.
type Inputs struct {
	Latitude     *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Longitude    *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Crop         string   `json:"crop" validate:"required"`
	SoilMoisture *float64 `json:"soil_moisture" validate:"required,min=0,max=100"`
	FarmArea     *float64 `json:"farm_area,omitempty" validate:"omitempty,min=0"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports missing required fields as ErrInputIncomplete and
// out-of-range values as ErrInvalidInput. Crop is trimmed first.
func (in *Inputs) Validate() error {
	in.Crop = strings.TrimSpace(in.Crop)

	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.New(fmt.Errorf("%w: %w", ErrInvalidInput, err)).
			Component("planner").
			Category(errors.CategoryValidation).
			Build()
	}

	missing := make([]string, 0, len(verrs))
	invalid := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fmt.Sprintf("%s must be %s %s", fe.Field(), boundWord(fe.Tag()), fe.Param()))
		}
	}

	if len(missing) > 0 {
		return errors.New(ErrInputIncomplete).
			Component("planner").
			Category(errors.CategoryInputIncomplete).
			Context("missing", strings.Join(missing, ",")).
			Build()
	}
	return errors.New(&InputError{Fields: invalid}).
		Component("planner").
		Category(errors.CategoryValidation).
		Build()
}

// Area returns the farm area, 0 when absent.
func (in *Inputs) Area() float64 {
	if in.FarmArea == nil {
		return 0
	}
	return *in.FarmArea
}

func boundWord(tag string) string {
	switch tag {
	case "min":
		return "at least"
	case "max":
		return "at most"
	default:
		return tag
	}
}
