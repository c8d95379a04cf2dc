// Package response defines the JSON envelope every handler replies with.
package response

import "github.com/gin-gonic/gin"

// Envelope is the wire shape shared by success and error responses.
type Envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

// RespondJSON writes the envelope with the given HTTP status. Status is
// "success" or "error"; errors carries validation detail on bad requests.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, Envelope{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
