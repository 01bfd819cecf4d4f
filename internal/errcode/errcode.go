package errcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind 对面向用户的失败进行归类，UI 层据此选择提示策略，
// 而无需检查 HTTP 细节。
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindAuth
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindLookup
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// Error 承载一次失败的 API 调用或本地目录查找的结果。
// Message 面向用户展示；后端返回 detail/error 字段时优先于状态码默认文案。
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is 按 Kind 匹配两个 errcode 错误，使 errors.Is 可以配合哨兵值使用。
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New 构造指定类别的错误。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 附加类别与用户可见文案，同时保留原始错误。
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Transport 包装网络层失败（主机不可达、超时）。
func Transport(cause error) *Error {
	return &Error{Kind: KindTransport, Message: "network unreachable or timed out", cause: cause}
}

// Is 报告 err 是否为指定类别的 errcode 错误。
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// errorBody 覆盖后端错误载荷使用的两种字段名。
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// FromResponse 将非 2xx 响应映射为带类别的错误。body 可为空；
// 可解析的 detail/error 字段优先于状态码默认文案。
func FromResponse(status int, body []byte) *Error {
	message := defaultMessage(status)
	if len(body) > 0 {
		var parsed errorBody
		if err := json.Unmarshal(body, &parsed); err == nil {
			if parsed.Detail != "" {
				message = parsed.Detail
			} else if parsed.Error != "" {
				message = parsed.Error
			}
		}
	}
	return &Error{Kind: kindForStatus(status), Status: status, Message: message}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindTransport
	}
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "token expired or invalid, please sign in again"
	case http.StatusForbidden:
		return "you do not have access to this resource"
	case http.StatusNotFound:
		return "the requested resource does not exist"
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return http.StatusText(status)
	}
}
