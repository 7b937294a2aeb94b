package response

// ErrorBody is the JSON envelope returned for failed requests.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Error(code, message string, details interface{}) ErrorBody {
	return ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}
}
