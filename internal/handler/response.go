package handler

import (
	"encoding/json"
	"log"
	"net/http"
)

// envelope is the {success:true,data:T} / {success:false,error:string}
// wrapper every server HTTP response carries (§6.1/§6.2), the wire-shape
// counterpart to the teacher's ErrorResponse — kept as two structs rather
// than one so a success body never marshals a spurious "error" field.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON writes a successful {success:true,data:...} body.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Printf("handler: failed to encode response: %v", err)
	}
}

// writeError writes a {success:false,error:...} body.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: message}); err != nil {
		log.Printf("handler: failed to encode error response: %v", err)
	}
}
