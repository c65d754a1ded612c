package dto

// APIResponse is the success envelope of every endpoint.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the error envelope rendered by the error boundary.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// NewAPIResponse builds a success envelope. success is true for every status below 400.
func NewAPIResponse(statusCode int, data any, message string) APIResponse {
	if data == nil {
		data = struct{}{}
	}
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

// NewErrorResponse builds an error envelope. errors is never null.
func NewErrorResponse(statusCode int, message string, errors []string) ErrorResponse {
	if errors == nil {
		errors = []string{}
	}
	return ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
		Errors:     errors,
	}
}
