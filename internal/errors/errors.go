// errors стандартизирует ответы об ошибках HTTP-слоя school-auth.
// На вход он принимает ошибку сервисного слоя (sentinel из service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - стабильный машиночитаемый code;
//   - краткое безопасное message без утечки деталей.
//
// Каждая причина отказа аутентификации получает свой code, чтобы клиент
// мог отличить "перелогиньтесь" (token_expired/token_revoked) от ошибки интеграции.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/school-auth/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrInvalidArgument — локальная ошибка транспорта: битый JSON, DTO не прошёл
// валидацию, некорректный UUID в пути.
var ErrInvalidArgument = stderrors.New("invalid argument")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type mapping struct {
	target error
	status int
	code   string
	msg    string
}

// table — порядок важен только для читаемости: sentinel-ошибки не пересекаются.
var table = []mapping{
	{service.ErrMissingToken, http.StatusUnauthorized, "missing_token", "missing bearer token"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "malformed token"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "token_expired", "token expired"},
	{service.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked", "token revoked"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "forbidden"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid credentials"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_argument", "invalid role"},
	{service.ErrInvalidUsername, http.StatusBadRequest, "invalid_argument", "invalid username"},
	{service.ErrWeakPassword, http.StatusBadRequest, "invalid_argument", "password is too weak"},
	{service.ErrEmptyPassword, http.StatusBadRequest, "invalid_argument", "password is empty"},
	{ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrUsernameTaken, http.StatusConflict, "already_exists", "username already taken"},
	{service.ErrUserNotFound, http.StatusNotFound, "not_found", "not found"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - известная sentinel-ошибка (через errors.Is) - статус/код из table;
//   - прочее - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if stderrors.Is(err, m.target) {
				return m.status, ErrorResponse{Error: APIError{Code: m.code, Message: m.msg}}
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="school-auth"`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
