package api

import (
	"net/http"
	"strconv"
	"time"

	models "flightguard/internal"
	"flightguard/internal/ports"
	"flightguard/internal/utils"
	"flightguard/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func BookingHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			createBooking(service, w, r)
		case http.MethodGet:
			listBookings(service, w, r)
		}
	}
}

func createBooking(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := utils.JsonDecodeBody(r, &req); err != nil {
		ae := utils.NewBadRequest("error json decoding body")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	v := validator.NewCustomValidator()
	if err := v.Validate(req); err != nil {
		ae := utils.NewBadRequest(err.Error())
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	booking, err := service.CreateBooking(r.Context(), &req)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(w, http.StatusCreated, booking)
}

func listBookings(service ports.BookingService, w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			ae := utils.NewBadRequest("limit must be an integer between 1 and 100")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		limit = parsed
	}

	resp, err := service.AllBookings(r.Context(), models.GetBookingsRequest{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(w, http.StatusOK, resp)
}

func BookingByIDHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodGet:
			getBooking(service, w, r, id)
		case http.MethodPatch:
			updateBooking(service, w, r, id)
		case http.MethodDelete:
			cancelBooking(service, w, r, id)
		}
	}
}

func getBooking(service ports.BookingService, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	booking, err := service.GetBooking(r.Context(), id)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(w, http.StatusOK, booking)
}

func updateBooking(service ports.BookingService, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var upd models.BookingUpdate
	if err := utils.JsonDecodeBody(r, &upd); err != nil {
		ae := utils.NewBadRequest("error json decoding body")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	v := validator.NewCustomValidator()
	if err := v.Validate(upd); err != nil {
		ae := utils.NewBadRequest(err.Error())
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	booking, err := service.UpdateBooking(r.Context(), id, &upd)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(w, http.StatusOK, booking)
}

func cancelBooking(service ports.BookingService, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	expectedVersion, err := strconv.ParseInt(r.URL.Query().Get("expected_version"), 10, 64)
	if err != nil || expectedVersion < 1 {
		ae := utils.NewBadRequest("expected_version must be a positive integer")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		ae := utils.NewBadRequest("actor is required")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}

	booking, err := service.CancelBooking(r.Context(), id, expectedVersion, actor)
	if err != nil {
		ae := getApiError(err)
		utils.RenderResponse(w, ae.StatusCode, ae)
		return
	}
	utils.RenderResponse(w, http.StatusOK, booking)
}

type completeRequest struct {
	ExpectedVersion int64  `json:"expected_version" validate:"required,min=1"`
	Actor           string `json:"actor" validate:"required"`
	Hours           string `json:"hours" validate:"required"`
}

func CompleteHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req completeRequest
		if err := utils.JsonDecodeBody(r, &req); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		v := validator.NewCustomValidator()
		if err := v.Validate(req); err != nil {
			ae := utils.NewBadRequest(err.Error())
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		hours, err := decimal.NewFromString(req.Hours)
		if err != nil {
			ae := utils.NewBadRequest("hours must be a decimal number")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}

		booking, err := service.CompleteBooking(r.Context(), id, req.ExpectedVersion, req.Actor, hours)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, booking)
	}
}

func WeatherCheckHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		result, err := service.RunWeatherCheck(r.Context(), id)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, result)
	}
}

func WeatherCheckLogHandler(checks ports.WeatherCheckRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		log, err := checks.ListWeatherChecks(r.Context(), id)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, log)
	}
}

func RescheduleOptionsHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		options, err := service.RescheduleOptions(r.Context(), id)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, options)
	}
}

func RescheduleConfirmHandler(service ports.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req models.RescheduleConfirmRequest
		if err := utils.JsonDecodeBody(r, &req); err != nil {
			ae := utils.NewBadRequest("error json decoding body")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		req.BookingID = id

		v := validator.NewCustomValidator()
		if err := v.Validate(req); err != nil {
			ae := utils.NewBadRequest(err.Error())
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}

		successor, err := service.ConfirmReschedule(r.Context(), &req)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusCreated, successor)
	}
}

func HistoryHandler(audit ports.AuditRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		history, err := audit.ListHistory(r.Context(), id)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, history)
	}
}

func LocationSafetyHandler(safety ports.SafetyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, level, ok := locationQuery(w, r)
		if !ok {
			return
		}
		result, err := safety.CheckLocationSafety(r.Context(), loc, level)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, result)
	}
}

func SlotsHandler(availability ports.AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		instructorID, err := uuid.Parse(q.Get("instructor_id"))
		if err != nil {
			ae := utils.NewBadRequest("instructor_id must be a valid uuid")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		aircraftID, err := uuid.Parse(q.Get("aircraft_id"))
		if err != nil {
			ae := utils.NewBadRequest("aircraft_id must be a valid uuid")
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		studentID := uuid.Nil
		if raw := q.Get("student_id"); raw != "" {
			studentID, err = uuid.Parse(raw)
			if err != nil {
				ae := utils.NewBadRequest("student_id must be a valid uuid")
				utils.RenderResponse(w, ae.StatusCode, ae)
				return
			}
		}

		slots, err := availability.GenerateWeeklySlots(r.Context(), instructorID, aircraftID, studentID, uuid.Nil)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, slots)
	}
}

func BriefingHandler(briefings ports.BriefingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, level, ok := locationQuery(w, r)
		if !ok {
			return
		}
		at := time.Now().UTC()
		if raw := r.URL.Query().Get("at"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				ae := utils.NewBadRequest("at must be an RFC3339 timestamp")
				utils.RenderResponse(w, ae.StatusCode, ae)
				return
			}
			at = parsed
		}

		text, err := briefings.GetBriefing(r.Context(), loc, at, level)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, map[string]string{"briefing": text})
	}
}

func StudentHoursHandler(hours ports.HoursRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		total, err := hours.TotalHours(r.Context(), id)
		if err != nil {
			ae := getApiError(err)
			utils.RenderResponse(w, ae.StatusCode, ae)
			return
		}
		utils.RenderResponse(w, http.StatusOK, map[string]string{
			"student_id":  id.String(),
			"total_hours": total.String(),
		})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ae := utils.NewBadRequest("id must be a valid uuid")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return uuid.Nil, false
	}
	return id, true
}

func locationQuery(w http.ResponseWriter, r *http.Request) (models.Location, models.TrainingLevel, bool) {
	q := r.URL.Query()
	name := q.Get("location")
	if name == "" {
		ae := utils.NewBadRequest("location is required")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return models.Location{}, "", false
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		ae := utils.NewBadRequest("lat must be a number")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return models.Location{}, "", false
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		ae := utils.NewBadRequest("lon must be a number")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return models.Location{}, "", false
	}

	level := models.TrainingLevel(q.Get("level"))
	v := validator.NewCustomValidator()
	if err := v.Validate(struct {
		Level string `validate:"required,training_level"`
	}{Level: string(level)}); err != nil {
		ae := utils.NewBadRequest("level must be one of STUDENT_PILOT, PRIVATE_PILOT, INSTRUMENT_RATED")
		utils.RenderResponse(w, ae.StatusCode, ae)
		return models.Location{}, "", false
	}

	return models.Location{Name: name, Latitude: lat, Longitude: lon}, level, true
}

func getApiError(err error) utils.ApiError {
	ae := utils.ApiError{Msg: err.Error()}
	switch models.KindOf(err) {
	case models.KindValidation:
		ae.StatusCode = http.StatusBadRequest
	case models.KindNotFound:
		ae.StatusCode = http.StatusNotFound
	case models.KindConflict:
		ae.StatusCode = http.StatusConflict
	case models.KindAuthorization:
		ae.StatusCode = http.StatusForbidden
	case models.KindInvalidState:
		ae.StatusCode = http.StatusUnprocessableEntity
	case models.KindExternal:
		ae.StatusCode = http.StatusBadGateway
	default:
		// Unclassified errors carry driver and wrapping detail that callers
		// must never see.
		ae.StatusCode = http.StatusInternalServerError
		ae.Msg = "internal server error"
	}
	return ae
}
