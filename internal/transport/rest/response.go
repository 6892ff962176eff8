package rest

import (
	"encoding/json"
	"log"
	"net/http"
)

// APIResponse is the envelope of every JSON answer. ErrorCode mirrors the
// HTTP status on errors and is 0 on success.
type APIResponse struct {
	ErrorCode int         `json:"error_code"`
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, httpStatus int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[HTTP] write response error: %v", err)
	}
}

func Success(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Status: "success", Message: message, Data: data})
}

func SuccessAccepted(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusAccepted, APIResponse{Status: "success", Message: message, Data: data})
}

func Error(w http.ResponseWriter, message string, httpStatus int) {
	writeJSON(w, httpStatus, APIResponse{ErrorCode: httpStatus, Status: "error", Message: message})
}

func ErrorBadRequest(w http.ResponseWriter, message string) {
	Error(w, message, http.StatusBadRequest)
}

func ErrorUnauthorized(w http.ResponseWriter, message string) {
	Error(w, message, http.StatusUnauthorized)
}

func ErrorNotFound(w http.ResponseWriter, message string) {
	Error(w, message, http.StatusNotFound)
}

func ErrorTooLarge(w http.ResponseWriter, message string) {
	Error(w, message, http.StatusRequestEntityTooLarge)
}

func ErrorUnprocessable(w http.ResponseWriter, message string) {
	Error(w, message, http.StatusUnprocessableEntity)
}

func ErrorInternal(w http.ResponseWriter, message string) {
	Error(w, message, http.StatusInternalServerError)
}
