package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any HTTPError with status 401 via errors.Is
var ErrUnauthorized = errors.New("unauthorized")

// HTTPError ошибка транспортного/протокольного уровня.
// Status == 0 означает, что ответ не был получен (таймаут, обрыв соединения).
type HTTPError struct {
	Err     error // исходная причина, если ответ не получен
	Message string
	Status  int
	timeout bool
}

func (e *HTTPError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Is позволяет писать errors.Is(err, ErrUnauthorized)
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Timeout сообщает, что запрос не уложился в таймаут
func (e *HTTPError) Timeout() bool {
	return e.timeout
}

// StatusOf возвращает HTTP статус из цепочки ошибок или 0
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
