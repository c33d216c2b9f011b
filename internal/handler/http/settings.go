package http

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/attendance"
	"github.com/cmlabs-hris/teams-worktime/internal/handler/http/response"
)

type SettingsHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	UpdateCredentials(w http.ResponseWriter, r *http.Request)
	UpdateThreshold(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService attendance.SettingsService
}

func NewSettingsHandler(settingsService attendance.SettingsService) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

// Get implements SettingsHandler.
func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateCredentials implements SettingsHandler.
func (h *settingsHandlerImpl) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateCredentialsRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateCredentials decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.settingsService.UpdateCredentials(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Credentials updated successfully", result)
}

// UpdateThreshold implements SettingsHandler.
func (h *settingsHandlerImpl) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateThresholdRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateThreshold decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.settingsService.UpdateThreshold(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// An unparseable threshold is not an error; the fallback is reported back
	message := "Threshold updated successfully"
	if !result.Valid {
		message = "Invalid threshold, previous value kept"
	}
	response.SuccessWithMessage(w, message, result)
}
