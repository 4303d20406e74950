package server

import (
	"net/http"

	"github.com/vitalvas/kasper/mux"
)

const (
	codeNoRoute          = "rest_no_route"
	codeInvalidNamespace = "rest_invalid_namespace"
	codeGenerationFailed = "rest_swagger_generation_failed"
)

// errorResponse is the API error envelope.
type errorResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    errorData `json:"data"`
}

type errorData struct {
	Status int `json:"status"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	mux.ResponseJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
		Data:    errorData{Status: status},
	})
}
