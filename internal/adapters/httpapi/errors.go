package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/sharetrip-app/sharetrip-api/internal/app/bookings"
	"github.com/sharetrip-app/sharetrip-api/internal/app/trips"
	"github.com/sharetrip-app/sharetrip-api/internal/app/users"
)

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeServiceError maps application-layer errors onto the wire format.
// Anything unmapped is a 500 and gets logged with the request id.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *users.Error
	if errors.As(err, &ue) {
		writeError(w, r, ue.Status, ue.Code, ue.Message, ue.Details)
		return
	}
	var te *trips.Error
	if errors.As(err, &te) {
		writeError(w, r, te.Status, te.Code, te.Message, te.Details)
		return
	}
	var be *bookings.Error
	if errors.As(err, &be) {
		writeError(w, r, be.Status, be.Code, be.Message, be.Details)
		return
	}
	log.Printf("internal error (request %s): %v", middleware.GetReqID(r.Context()), err)
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
