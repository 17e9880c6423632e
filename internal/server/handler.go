package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

func (s Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	s.writeJsonResponse(w, errorResponse{Error: message}, statusCode)
}

func (s Server) writeValidationError(w http.ResponseWriter, err error) {
	s.writeJsonResponse(w, errorResponse{
		Error:   "Validation failed",
		Details: validationDetails(err),
	}, http.StatusBadRequest)
}

// validationDetails flattens validator errors into a field -> reason map so
// the admin form can attach messages to individual inputs.
func validationDetails(err error) map[string]string {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}
	details := make(map[string]string, len(ves))
	for _, ve := range ves {
		switch ve.Tag() {
		case "required":
			details[ve.Field()] = "is required"
		case "oneof":
			details[ve.Field()] = "must be one of: " + ve.Param()
		case "hexcolor":
			details[ve.Field()] = "must be a hex color"
		case "min":
			details[ve.Field()] = "must be at least " + ve.Param()
		case "max":
			details[ve.Field()] = "must be at most " + ve.Param()
		case "gtfield":
			details[ve.Field()] = "must be after " + ve.Param()
		default:
			details[ve.Field()] = "is invalid"
		}
	}
	return details
}
