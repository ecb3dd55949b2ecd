package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse mirrors the {"detail": ...} error shape callers of this
// service already parse.
type errorResponse struct {
	Detail string `json:"detail"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, detail string) {
	respondJSON(w, code, errorResponse{Detail: detail})
}

func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, statusResponse{Status: "success", Message: message})
}
