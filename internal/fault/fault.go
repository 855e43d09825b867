// Package fault описывает классифицированные ошибки сервиса.
// Вызывающая сторона по виду ошибки решает, подставить ли запасное значение
// или прервать запрос.
package fault

import (
	"errors"
	"net/http"

	"github.com/mdobak/go-xerrors"
)

// Kind классифицирует ошибку
type Kind uint8

const (
	// KindInternal: непредвиденная ошибка, запрос прерывается
	KindInternal Kind = iota
	// KindInvalid: ошибка входных данных, исправимая клиентом
	KindInvalid
	// KindUpstream: внешний сервис недоступен или вернул ошибочный статус
	KindUpstream
	// KindMalformed: внешний сервис ответил, но ответ не удалось разобрать
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUpstream:
		return "upstream"
	case KindMalformed:
		return "malformed"
	default:
		return "internal"
	}
}

// Error описывает ошибку с видом, операцией и сообщением для клиента.
// Причина хранится вместе со стеком вызовов.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает ошибку вида kind. Сообщение для клиента совпадает с текстом причины.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Message: err.Error(), Err: xerrors.New(err)}
}

// WithMessage создает ошибку с отдельным сообщением для клиента.
func WithMessage(kind Kind, op, message string, err error) error {
	if err == nil {
		err = errors.New(message)
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: xerrors.New(err)}
}

// KindOf возвращает вид ошибки; неклассифицированные ошибки считаются внутренними.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// MessageOf возвращает сообщение для клиента.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}

// HTTPStatus сопоставляет вид ошибки с HTTP статусом.
func HTTPStatus(err error) int {
	if KindOf(err) == KindInvalid {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
