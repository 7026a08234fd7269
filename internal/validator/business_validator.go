package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
)

// ValidationError is a single field-level failure, rendered back to the form.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = fmt.Sprintf("%s %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// ToValidationErrors converts go-playground errors into the field-level form.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			out = append(out, ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: getErrorMessage(fe),
				Rule:    fe.Tag(),
			})
		}
		return out
	}

	return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
}

// BusinessValidator handles business rule validation on top of struct tags.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	registerRules(validate)
	return &BusinessValidator{validate: validate}
}

// Validate validates struct tags for any request.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRegister validates the registration form, including the
// cross-field confirmation rule.
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.Password != "" && req.PasswordConfirm != "" && req.Password != req.PasswordConfirm {
		errors = append(errors, ValidationError{
			Field:   "password_confirm",
			Message: "does not match the password",
			Rule:    "password_match",
		})
	}

	// Admin accounts are provisioned, never self-registered.
	if req.RoleRequest == models.RoleAdmin {
		errors = append(errors, ValidationError{
			Field:   "role_request",
			Message: "cannot be ADMIN",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateCourseCreate validates course creation; title uniqueness is checked
// at the service layer with a repository lookup.
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateStatusTransition validates an enrollment status change against the
// fixed transition table.
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.EnrollmentStatus) ValidationErrors {
	var errors ValidationErrors

	if !next.Valid() {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "must be active, completed or dropped",
			Value:   next,
			Rule:    "enrollment_status",
		})
		return errors
	}

	if current == next {
		return nil
	}

	if !current.CanTransition(next) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot change from %s to %s", current, next),
			Value:   next,
			Rule:    "business_logic",
		})
	}

	return errors
}
