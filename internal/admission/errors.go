package admission

import (
	"errors"
	"fmt"
)

const failurePrefix = "An error occurred while admitting the patient: "

// ResponseData is the decoded body of a failed admit response
type ResponseData struct {
	Error string `json:"error"`
}

// Response describes the HTTP response behind a failed admit call
type Response struct {
	Status int
	Data   ResponseData
}

// ResponseError is returned by admitters whose failure carries a response
// body. Response.Data.Error holds the server-side reason when there is one.
type ResponseError struct {
	Response *Response
	Message  string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Response != nil {
		return fmt.Sprintf("request failed with status code %d", e.Response.Status)
	}
	return "request failed"
}

// ErrorMessage converts an admit failure into the text shown under the form.
// A structured response error wins over the failure's own message.
func ErrorMessage(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.Data.Error != "" {
		return failurePrefix + respErr.Response.Data.Error
	}
	if err == nil || err.Error() == "" {
		return failurePrefix + "unknown error"
	}
	return failurePrefix + err.Error()
}
