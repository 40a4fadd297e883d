package element

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validation limit constants
const (
	MaxNameLength    = 200
	MaxContentLength = 5000
	MaxStyleLength   = 500
	MaxCoordinate    = 1000000
	MaxDimension     = 1000000
)

// wire is the validated shape of an inbound element payload.
type wire struct {
	Type    string  `validate:"required"`
	Name    string  `validate:"required,max=200"`
	Content string  `validate:"max=5000"`
	X       float64 `validate:"min=0,max=1000000"`
	Y       float64 `validate:"min=0,max=1000000"`
	Width   float64 `validate:"gt=0,max=1000000"`
	Height  float64 `validate:"gt=0,max=1000000"`
}

// Validator: validation and sanitization of inbound elements before they are
// stored or broadcast.
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewValidator() *Validator {
	// StrictPolicy removes all HTML/scripts.
	return &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ValidateAndSanitize checks the element against the widget-kind whitelist
// and the field bounds, then sanitizes every string field in place.
func (v *Validator) ValidateAndSanitize(el *Element) error {
	if !AllowedTypes[el.Type] {
		return fmt.Errorf("invalid element type: %s", el.Type)
	}

	w := wire{
		Type:    el.Type,
		Name:    el.Name,
		Content: el.Content,
		X:       el.Position.X,
		Y:       el.Position.Y,
		Width:   el.Size.Width,
		Height:  el.Size.Height,
	}
	if err := v.validate.Struct(&w); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(verrs)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	el.Name = v.sanitizer.Sanitize(el.Name)
	el.Content = v.sanitizer.Sanitize(el.Content)
	el.Styles = v.sanitizeMap(el.Styles)
	return nil
}

// SanitizeString strips HTML/scripts from a single value.
func (v *Validator) SanitizeString(s string) string {
	return v.sanitizer.Sanitize(s)
}

// SanitizeStyles sanitizes a style mapping without full element validation,
// for partial updates that only touch styles.
func (v *Validator) SanitizeStyles(styles map[string]any) map[string]any {
	return v.sanitizeMap(styles)
}

// sanitizeMap recursively sanitizes all string values in a map.
func (v *Validator) sanitizeMap(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	result := make(map[string]any, len(data))
	for key, value := range data {
		result[key] = v.sanitizeValue(value)
	}
	return result
}

func (v *Validator) sanitizeValue(value any) any {
	switch val := value.(type) {
	case string:
		return v.sanitizer.Sanitize(val)
	case map[string]any:
		return v.sanitizeMap(val)
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = v.sanitizeValue(item)
		}
		return result
	default:
		return value
	}
}

// formatValidationErrors converts validator errors to a user-facing message.
func formatValidationErrors(errs validator.ValidationErrors) error {
	err := errs[0]
	switch err.Tag() {
	case "required":
		return fmt.Errorf("validation failed: '%s' is required", err.Field())
	case "min", "max", "gt":
		return fmt.Errorf("validation failed: '%s' value out of allowed range", err.Field())
	default:
		return fmt.Errorf("validation failed: '%s' is invalid", err.Field())
	}
}
