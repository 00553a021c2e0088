package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Сообщения, которые показываются пользователю вместо технических деталей
const (
	MessageConnection = "Could not reach the server. Please check your connection and try again."
	MessageServer     = "Something went wrong on our side. Please try again."
)

// ValidationError - ошибки полей формы. До сети такие ошибки не доходят
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// TransportError - запрос не дошел до сервера или ответ не получен
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError - сервер ответил статусом 4xx/5xx
type ServerError struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.Status)
	}
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Message)
}

// UserMessage - текст для показа пользователю
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	var transportErr *TransportError
	var serverErr *ServerError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &transportErr):
		return MessageConnection
	case errors.As(err, &serverErr):
		if serverErr.Message != "" {
			return serverErr.Message
		}
		return MessageServer
	default:
		return MessageServer
	}
}

// decodeServerError разбирает тело ошибки.
// Поле error бывает строкой или объектом {code, message, details}.
func decodeServerError(status int, body []byte) *ServerError {
	serverErr := &ServerError{Status: status}

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return serverErr
	}

	raw := envelope.Error
	if len(raw) == 0 || string(raw) == "null" {
		serverErr.Message = envelope.Message
		return serverErr
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		serverErr.Message = text
		return serverErr
	}

	var structured struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		serverErr.Code = structured.Code
		serverErr.Message = structured.Message
		serverErr.Details = structured.Details
	}

	return serverErr
}
