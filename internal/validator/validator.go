package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
)

// Validator wraps go-playground struct validation together with the business
// rule validator.
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

func New() *Validator {
	business := NewBusinessValidator()
	return &Validator{
		validate: business.validate,
		business: business,
	}
}

// Validate runs struct-tag validation and converts failures to field-level
// ValidationErrors.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// registerRules installs the domain-specific validation tags shared by models
// and request DTOs.
func registerRules(validate *validator.Validate) {
	// Course duration is bounded in hours
	_ = validate.RegisterValidation("course_duration", func(fl validator.FieldLevel) bool {
		d := fl.Field().Int()
		return d >= 1 && d <= 300
	})

	_ = validate.RegisterValidation("grade_range", func(fl validator.FieldLevel) bool {
		g := fl.Field().Float()
		return g >= 0 && g <= 100
	})

	_ = validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	_ = validate.RegisterValidation("faculty", func(fl validator.FieldLevel) bool {
		return models.Faculty(fl.Field().String()).Valid()
	})

	_ = validate.RegisterValidation("enrollment_status", func(fl validator.FieldLevel) bool {
		return models.EnrollmentStatus(fl.Field().String()).Valid()
	})

	// Usernames are login identifiers; keep them shell- and URL-safe.
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if len(name) < 3 || len(name) > 30 {
			return false
		}
		for _, r := range name {
			ok := r == '_' || r == '.' || r == '-' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !ok {
				return false
			}
		}
		return true
	})
}

// getErrorMessage returns user-facing messages for failed rules; these are
// rendered back into the form.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "course_duration":
		return "must be between 1 and 300 hours"
	case "grade_range":
		return "must be between 0 and 100"
	case "user_role":
		return "must be STUDENT, TEACHER or ADMIN"
	case "faculty":
		return "must be one of " + facultyList()
	case "enrollment_status":
		return "must be active, completed or dropped"
	case "username":
		return "must be 3-30 characters of letters, digits, '.', '-' or '_'"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

func facultyList() string {
	names := make([]string, len(models.Faculties))
	for i, f := range models.Faculties {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
