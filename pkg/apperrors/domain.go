package apperrors

import (
	"fmt"
	"net/http"
)

/*
Предопределенные ошибки и фабрики для relay-пайплайна.
Тексты сообщений - это то, что видит клиент в поле "error".
*/

// --- Запрос ---

// ErrMethodNotAllowed - загрузка принимается только через POST.
var ErrMethodNotAllowed = New(
	CodeMethodNotAllowed,
	"request",
	"Method not allowed",
	http.StatusMethodNotAllowed, // 405
)

// ErrMissingInput - в теле нет поля file.
var ErrMissingInput = New(
	CodeMissingInput,
	"validation",
	"No file provided",
	http.StatusBadRequest, // 400
)

// ErrInvalidFormat - file не является data URI с base64.
var ErrInvalidFormat = New(
	CodeInvalidFormat,
	"validation",
	"Invalid file format",
	http.StatusBadRequest, // 400
)

// ErrFileTooLarge - тело запроса больше relay.max_body_bytes.
var ErrFileTooLarge = New(
	CodeFileTooLarge,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge, // 413
)

// ErrProviderNotFound - запрошен незарегистрированный провайдер.
var ErrProviderNotFound = New(
	CodeProviderNotFound,
	"provider",
	"Unknown provider",
	http.StatusNotFound, // 404
)

// ErrRouteNotFound - маршрута нет.
var ErrRouteNotFound = New(
	CodeRouteNotFound,
	"request",
	"Not found",
	http.StatusNotFound, // 404
)

// --- Провайдер ---

// ErrUpstreamHTTP - провайдер ответил не-2xx статусом.
func ErrUpstreamHTTP(status int) *AppError {
	return New(CodeUpstreamHTTPError, "provider", "Upload failed", http.StatusInternalServerError).
		WithDetails(fmt.Sprintf("Upload failed: %d", status))
}

// ErrUpstreamTransport - запрос к провайдеру не состоялся (DNS, таймаут, обрыв).
func ErrUpstreamTransport(err error) *AppError {
	appErr := Wrap(err, CodeUpstreamHTTPError, "provider", "Upload failed", http.StatusInternalServerError)
	appErr.Details = err.Error()
	return appErr
}

// ErrUpstreamParse - тело ответа провайдера не JSON.
func ErrUpstreamParse(err error) *AppError {
	appErr := Wrap(err, CodeUpstreamParseError, "provider", "Upload failed", http.StatusInternalServerError)
	appErr.Details = "invalid JSON from provider: " + err.Error()
	return appErr
}

// ErrUpstreamRejected - JSON корректный, но признаков успеха нет.
// message - текст ошибки провайдера, если он его прислал.
func ErrUpstreamRejected(message string) *AppError {
	if message == "" {
		message = "Upload failed - no file URL returned"
	}
	return New(CodeUpstreamRejected, "provider", "Upload failed", http.StatusInternalServerError).
		WithDetails(message)
}
