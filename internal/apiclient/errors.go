package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind — класс ошибки обращения к backend.
type Kind uint8

const (
	// KindValidation — backend отклонил запрос (400).
	KindValidation Kind = iota + 1
	// KindUnauthorized — нет или истёк credential (401).
	KindUnauthorized
	// KindForbidden — роль не допускает операцию (403).
	KindForbidden
	// KindNotFound — ресурс не найден (404).
	KindNotFound
	// KindConflict — ресурс уже существует (409).
	KindConflict
	// KindServer — 5xx или неожиданный статус.
	KindServer
	// KindTransport — сеть недоступна или ответ не разобран.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Ошибки-сентинелы для errors.Is.
var (
	ErrValidation   = errors.New("backend отклонил запрос")
	ErrUnauthorized = errors.New("требуется аутентификация")
	ErrForbidden    = errors.New("недостаточно прав")
	ErrNotFound     = errors.New("не найдено")
	ErrConflict     = errors.New("ресурс уже существует")
	ErrServer       = errors.New("ошибка backend")
	ErrTransport    = errors.New("backend недоступен")
)

// sentinels — соответствие Kind → сентинел.
var sentinels = map[Kind]error{
	KindValidation:   ErrValidation,
	KindUnauthorized: ErrUnauthorized,
	KindForbidden:    ErrForbidden,
	KindNotFound:     ErrNotFound,
	KindConflict:     ErrConflict,
	KindServer:       ErrServer,
	KindTransport:    ErrTransport,
}

// Error — ошибка операции API-клиента.
type Error struct {
	// Op — имя операции (login, my_history, ...).
	Op string
	// Kind — класс ошибки.
	Kind Kind
	// Status — HTTP-статус ответа (0 для KindTransport).
	Status int
	// Message — поле msg ответа backend; пустая строка, если его нет.
	Message string
	// Err — исходная ошибка транспорта или декодирования.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("backend %s: статус %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("backend %s: статус %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с сентинелом её Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// kindForStatus классифицирует HTTP-статус ответа с ошибкой.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	}
	return KindServer
}

// MessageOf возвращает поле msg ответа backend из ошибки клиента.
// Пустая строка — сообщения нет, вызывающий показывает общий текст.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
