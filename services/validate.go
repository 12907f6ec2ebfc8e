package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dcode-github/cozycorner/apperrors"
	"github.com/dcode-github/cozycorner/models"
	"github.com/dcode-github/cozycorner/store"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("registering validation %q: %v", tag, err))
		}
	}
	mustRegister("propertytype", func(fl validator.FieldLevel) bool {
		_, ok := models.ParsePropertyType(fl.Field().String())
		return ok
	})
	mustRegister("signuprole", func(fl validator.FieldLevel) bool {
		r := models.Role(fl.Field().String())
		return r == models.RoleTenant || r == models.RoleLandlord
	})
	return v
}

// validateStruct turns validator failures into one ValidationError. Missing
// required fields are reported together.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("invalid input")
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperrors.Validation("Please provide all required fields: %s", strings.Join(missing, ", "))
	}
	return apperrors.Validation("Invalid value for: %s", strings.Join(invalid, ", "))
}

func parseID(raw, resource string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid %s ID", strings.ToLower(resource))
	}
	return id, nil
}

func storeErr(err error, resource, action string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, store.ErrDuplicate):
		return apperrors.Conflict(resource + " already exists")
	}
	return apperrors.Store(err, action)
}

// normalizeStrings trims, drops empties and removes duplicates, keeping the
// first occurrence order.
func normalizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
