package dlms

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Kenshin-api/internal/observability/metrics"
)

// Reason motivo por el que no se pudo construir una sesión.
type Reason string

const (
	ReasonNoTransport  Reason = "no_transport"
	ReasonNoCodec      Reason = "no_codec"
	ReasonInvalidMeter Reason = "invalid_meter"
	ReasonPanic        Reason = "panic"
	ReasonUnknown      Reason = "unknown"
)

// ConstructionError error de construcción con su motivo.
type ConstructionError struct {
	Reason Reason
	Err    error
}

func (e *ConstructionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dlms: no se pudo crear la sesión (%s)", e.Reason)
	}
	return fmt.Sprintf("dlms: no se pudo crear la sesión (%s): %v", e.Reason, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Result resultado de Create: Session o Err, nunca ambos.
type Result struct {
	Session *Session
	Err     *ConstructionError
}

// OK indica si la sesión fue creada.
func (r Result) OK() bool { return r.Session != nil }

// Constructor construye una sesión a partir del contexto.
type Constructor func(Context) (*Session, error)

// Factory crea sesiones DLMS sin propagar fallos al llamador.
type Factory struct {
	construct Constructor
	log       zerolog.Logger
}

// Option configura la Factory.
type Option func(*Factory)

// WithConstructor reemplaza el constructor (por defecto NewSession).
func WithConstructor(c Constructor) Option {
	return func(f *Factory) {
		if c != nil {
			f.construct = c
		}
	}
}

// WithLogger asigna el logger usado para reportar fallos.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// NewFactory crea la factory. Sin opciones usa NewSession y un logger nulo.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{construct: NewSession, log: zerolog.Nop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Create intenta construir una sesión. Cualquier error o panic queda en Result.Err.
func (f *Factory) Create(c Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: &ConstructionError{Reason: ReasonPanic, Err: fmt.Errorf("%v", r)}}
			f.report(c, res.Err)
		}
	}()

	s, err := f.construct(c)
	if err != nil {
		ce := asConstructionError(err)
		f.report(c, ce)
		return Result{Err: ce}
	}
	if s == nil {
		ce := &ConstructionError{Reason: ReasonUnknown, Err: errors.New("constructor devolvió sesión nula")}
		f.report(c, ce)
		return Result{Err: ce}
	}
	return Result{Session: s}
}

// CreateInstance devuelve la sesión o nil si no pudo construirse. Nunca falla ni entra en pánico.
func (f *Factory) CreateInstance(c Context) *Session {
	return f.Create(c).Session
}

// IsAvailable siempre es true: la implementación DLMS está enlazada en el binario.
func (f *Factory) IsAvailable() bool { return true }

func (f *Factory) report(c Context, ce *ConstructionError) {
	metrics.DLMSFactoryFailure(string(ce.Reason))
	f.log.Warn().Err(ce).Str("serial", c.SerialID).Str("reason", string(ce.Reason)).Msg("fallo al crear sesión DLMS")
}

func asConstructionError(err error) *ConstructionError {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConstructionError{Reason: ReasonUnknown, Err: err}
}
