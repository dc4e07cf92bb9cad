package models

// ErrorResponse is the body of every non 2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
