// Package api содержит wire-типы REST API cvagent, общие для клиента и сервера.
package api

import (
	"encoding/json"
	"fmt"
)

// Envelope представляет обертку всех JSON ответов сервера
type Envelope[T any] struct {
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// RawEnvelope хранит data без декодирования, клиент разбирает его сам
type RawEnvelope = Envelope[json.RawMessage]

// OK оборачивает данные в успешный ответ
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Fail формирует ответ с ошибкой
func Fail(errText, message string) Envelope[any] {
	return Envelope[any]{Success: false, Error: errText, Message: message}
}

// Reason возвращает наиболее информативное описание ошибки из конверта
func (e Envelope[T]) Reason() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	default:
		return "unknown error"
	}
}

// ValidationError описывает некорректное поле во входных данных
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}
