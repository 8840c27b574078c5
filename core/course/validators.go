package course

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bochengwang975-blip/campus/core"
)

var (
	courseCodeTag   = "coursecode"
	courseCodeText  = "only letters, digits, dashes and underscores are allowed"
	courseCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	slotTag  = "slot"
	slotText = "day and period must both be between 1 and 5"
)

// InitValidators registers the course validations on validate.
// core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseCodeTag, courseCodeValidation)
	core.RegisterCustomTranslation(validate, translator, courseCodeTag, courseCodeText)

	validate.RegisterStructValidation(courseStructValidation, NewCourse{}, UpdateCourse{})
	core.RegisterCustomTranslation(validate, translator, slotTag, slotText)
}

func courseCodeValidation(fl validator.FieldLevel) bool {
	return courseCodeRegex.MatchString(fl.Field().String())
}

// courseStructValidation reports a single "time" error instead of one per slot field.
func courseStructValidation(sl validator.StructLevel) {
	var slot *TimeSlot
	switch crs := sl.Current().Interface().(type) {
	case NewCourse:
		slot = crs.Time
	case UpdateCourse:
		slot = crs.Time
	}
	if slot != nil && !slot.Valid() {
		sl.ReportError(slot, "time", "Time", slotTag, "")
	}
}
