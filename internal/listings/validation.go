package listings

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the fields an admin form must supply.
func (l Listing) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&l.Category, validation.Required, validation.In(
			CategoryResidential, CategoryCommercial, CategoryMixedUse,
		)),
		validation.Field(&l.Status, validation.Required, validation.In(
			StatusRunning, StatusUpcoming, StatusCompleted, StatusDraft,
		)),
		validation.Field(&l.DisplayOrder, validation.Min(0)),
		validation.Field(&l.Specs, validation.Each(validation.By(specComplete))),
	)
}

// ValidDirection reports whether d is up or down.
func ValidDirection(d Direction) bool {
	return d == DirectionUp || d == DirectionDown
}

func notBlank(value any) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}

func specComplete(value any) error {
	spec, ok := value.(Spec)
	if !ok {
		return nil
	}
	if strings.TrimSpace(spec.Label) == "" {
		return validation.NewError("validation_spec_label", "spec label is required")
	}
	return nil
}
