package model

// StateKind — вариант состояния асинхронной операции.
type StateKind uint8

const (
	// StateIdle — операция ещё не запускалась.
	StateIdle StateKind = iota
	// StateLoading — запрос к backend выполняется.
	StateLoading
	// StateSucceeded — операция завершилась, результат доступен через Value.
	StateSucceeded
	// StateFailed — операция завершилась ошибкой, причина доступна через Reason.
	StateFailed
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// State — состояние одной асинхронной операции представления:
// Idle | Loading | Succeeded(payload) | Failed(reason).
// Каждая страница рендерится как функция одного такого значения.
type State[T any] struct {
	kind   StateKind
	value  T
	reason string
}

// Idle возвращает начальное состояние.
func Idle[T any]() State[T] {
	return State[T]{kind: StateIdle}
}

// Loading возвращает состояние выполняющегося запроса.
func Loading[T any]() State[T] {
	return State[T]{kind: StateLoading}
}

// Succeeded возвращает успешное состояние с результатом.
func Succeeded[T any](value T) State[T] {
	return State[T]{kind: StateSucceeded, value: value}
}

// Failed возвращает состояние ошибки с причиной для пользователя.
func Failed[T any](reason string) State[T] {
	return State[T]{kind: StateFailed, reason: reason}
}

// Kind возвращает вариант состояния.
func (s State[T]) Kind() StateKind {
	return s.kind
}

// Value возвращает результат; ok=false для всех вариантов, кроме Succeeded.
func (s State[T]) Value() (value T, ok bool) {
	if s.kind != StateSucceeded {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Reason возвращает причину ошибки (пустая строка вне Failed).
func (s State[T]) Reason() string {
	if s.kind != StateFailed {
		return ""
	}
	return s.reason
}
