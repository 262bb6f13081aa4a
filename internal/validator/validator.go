package validator

import (
	"time"

	models "flightguard/internal"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("valid_uuid", validateUUID)
	v.RegisterValidation("future_date", validateFutureDate)
	v.RegisterValidation("flight_type", validateFlightType)
	v.RegisterValidation("training_level", validateTrainingLevel)

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func validateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return date.After(time.Now())
}

func validateFlightType(fl validator.FieldLevel) bool {
	flightType := fl.Field().String()
	supported := map[string]bool{
		"TRAINING":      true,
		"SOLO":          true,
		"CHECKRIDE":     true,
		"CROSS_COUNTRY": true,
	}
	return supported[flightType]
}

func validateTrainingLevel(fl validator.FieldLevel) bool {
	level := models.TrainingLevel(fl.Field().String())
	supported := map[models.TrainingLevel]bool{
		models.LevelStudentPilot:    true,
		models.LevelPrivatePilot:    true,
		models.LevelInstrumentRated: true,
	}
	return supported[level]
}

func validateUUID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	_, err := uuid.Parse(id)
	return err == nil
}
