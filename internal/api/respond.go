package api

import (
	"encoding/json"
	"net/http"
)

// Success responses wrap the payload as {"data": ...}; failures carry
// {"message": ...} with a non-2xx status.
type dataEnvelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeDataMessage(w, status, data, "")
}

func writeDataMessage(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dataEnvelope{Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Message: message})
}
