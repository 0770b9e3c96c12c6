package outbox

import "errors"

// ErrPermanent marca fallos que no se arreglan reintentando (payload malformado).
// El despachador manda el evento directo a DEAD.
var ErrPermanent = errors.New("fallo permanente")

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() []error {
	return []error{ErrPermanent, e.err}
}

// Permanent envuelve err para que errors.Is(err, ErrPermanent) sea verdadero.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
