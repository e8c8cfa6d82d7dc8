package httperr

import "errors"

// Kind classifies a business error so callers can react without string
// matching on codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindSchedulingConflict
	KindAlreadyInQueue
	KindStateConflict
	KindUnavailable
)

// Scheduling conflict subcodes. Callers surface a distinct message for each.
const (
	CodeOutsideWorkingHours = "outside_working_hours"
	CodeTimeConflict        = "time_conflict"
)

type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(kind Kind, code string) error {
	return BusinessError{Kind: kind, Code: code}
}

func NotFoundErr(code string) error   { return ErrBusiness(KindNotFound, code) }
func Validation(code string) error    { return ErrBusiness(KindValidation, code) }
func StateConflict(code string) error { return ErrBusiness(KindStateConflict, code) }
func Unavailable(code string) error   { return ErrBusiness(KindUnavailable, code) }

func AlreadyInQueue() error {
	return ErrBusiness(KindAlreadyInQueue, "already_in_queue")
}

func OutsideWorkingHours() error {
	return ErrBusiness(KindSchedulingConflict, CodeOutsideWorkingHours)
}

func TimeConflict() error {
	return ErrBusiness(KindSchedulingConflict, CodeTimeConflict)
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}
