package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Входные данные запроса
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeMissingInput     ErrorCode = "MISSING_INPUT"
	CodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	CodeFileTooLarge     ErrorCode = "FILE_TOO_LARGE"
	CodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	CodeRouteNotFound    ErrorCode = "NOT_FOUND"

	// Ошибки внешнего провайдера
	CodeUpstreamHTTPError  ErrorCode = "UPSTREAM_HTTP_ERROR"
	CodeUpstreamParseError ErrorCode = "UPSTREAM_PARSE_ERROR"
	CodeUpstreamRejected   ErrorCode = "UPSTREAM_REJECTED"

	// Системные и неизвестные ошибки
	CodeUnexpectedError ErrorCode = "UNEXPECTED_ERROR"
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
)
