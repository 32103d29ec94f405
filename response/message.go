// Package response contains the JSON bodies written by the HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// Message is the body of every error response, and of acknowledgements that carry
// no resource.
type Message struct {
	Message string `json:"message"`
}

// JSON writes payload with the given status code.
func JSON(res http.ResponseWriter, status int, payload any) error {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	return json.NewEncoder(res).Encode(payload)
}

// Error writes a Message body with the given status code.
func Error(res http.ResponseWriter, status int, message string) error {
	return JSON(res, status, Message{Message: message})
}
