package errors

import (
	"fmt"
	"net/http"
)

// ErrorType 错误类型
type ErrorType string

const (
	ErrorTypeInvalidRequest   ErrorType = "invalid_request"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeContentViolation ErrorType = "content_violation"
	ErrorTypeInternal         ErrorType = "internal_error"
)

// ErrorCode 错误码
type ErrorCode string

const (
	// 验证错误
	CodeInvalidRequest ErrorCode = "invalid_request"
	CodeRequiredField  ErrorCode = "required_field"
	CodeInvalidEnum    ErrorCode = "invalid_enum"
	CodeEmptyWord      ErrorCode = "empty_word"
	CodeEmptyBatch     ErrorCode = "empty_batch"

	// 资源错误
	CodeNotFound ErrorCode = "not_found"

	// 存储错误
	CodeRedisError    ErrorCode = "redis_error"
	CodeDatabaseError ErrorCode = "database_error"

	// 内部错误
	CodeInternalError ErrorCode = "internal_error"
)

// AppError 应用错误
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       ErrorCode              `json:"code"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails 添加详情
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithError 包装原始错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// ErrorResponse API 错误响应格式
type ErrorResponse struct {
	Error ErrorResponseBody `json:"error"`
}

// ErrorResponseBody 错误响应体
type ErrorResponseBody struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    ErrorCode              `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToResponse 转换为 API 响应格式
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorResponseBody{
			Type:    e.Type,
			Message: e.Message,
			Code:    e.Code,
			Details: e.Details,
		},
	}
}

// 预定义错误构造函数

// NewValidationError 创建验证错误
func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		Code:       code,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidRequest 创建无效请求错误
func NewInvalidRequest(message string) *AppError {
	return NewValidationError(message, CodeInvalidRequest)
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Code:       CodeNotFound,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInternalError 创建内部错误
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Code:       CodeInternalError,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewRedisError 创建 Redis 错误（后端存储不可达）
func NewRedisError(err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    "Redis error",
		Code:       CodeRedisError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabaseError 创建数据库错误
func NewDatabaseError(err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    "Database error",
		Code:       CodeDatabaseError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Is 检查错误类型
func Is(err error, target ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == target
	}
	return false
}

// IsCode 检查错误码
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound 检查是否为资源不存在错误
func IsNotFound(err error) bool {
	return Is(err, ErrorTypeNotFound)
}

// IsStoreUnavailable 检查是否为后端存储不可用错误
// 内容检测热路径据此决定 fail-open
func IsStoreUnavailable(err error) bool {
	return IsCode(err, CodeRedisError) || IsCode(err, CodeDatabaseError)
}
