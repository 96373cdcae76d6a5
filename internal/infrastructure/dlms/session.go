// Package dlms maneja la sesión con medidores DLMS/COSEM.
//
// La codificación de tramas es externa: el paquete recibe un Codec que construye y valida
// las tramas y un Transport que las mueve (BLE, puerto óptico, TCP). Aquí solo vive la
// secuencia de la sesión:
//
//	Establish: Open -> Session -> Challenge -> Confirm
//	Release:   Release -> Close -> Finish
//	Access:    Get / Set / Action sobre un objeto y atributo
package dlms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Valores por defecto de la sesión (equivalen a 300 esperas de 10 ms).
const (
	DefaultResponseTimeout = 3 * time.Second
	successResult          = "success (0)"
)

var (
	ErrResponseTimeout   = errors.New("dlms: tiempo de espera de respuesta agotado")
	ErrHandshakeRejected = errors.New("dlms: paso de sesión rechazado")
	ErrAccessFailed      = errors.New("dlms: acceso a datos fallido")
	ErrNotEstablished    = errors.New("dlms: sesión no establecida")
)

// Transport canal físico con el medidor.
type Transport interface {
	Write(ctx context.Context, frame []byte) error
	// Receive bloquea hasta recibir una trama completa o hasta que ctx termine.
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Codec construye y valida tramas DLMS. Los métodos que reciben resp validan la respuesta
// anterior y devuelven la siguiente trama (ok=false si la respuesta fue rechazada).
type Codec interface {
	Open() []byte
	Session(resp []byte) (frame []byte, ok bool)
	Challenge(resp []byte) (frame []byte, ok bool)
	Confirm(resp []byte) bool
	Release() []byte
	Close(resp []byte) (frame []byte, ok bool)
	Finish(resp []byte) bool

	GetRequest(obj int, attr, selector byte, param string, dataIndex byte) []byte
	SetRequest(obj int, attr, selector byte, param string, dataIndex byte) []byte
	ActionRequest(obj int, method byte, param string, dataIndex byte) []byte
	// DataResponse decodifica la respuesta a un acceso; code < 0 indica error del medidor.
	DataResponse(resp []byte, modeling bool) (values []string, code int)
	// Scale convierte un valor crudo del medidor dividiéndolo por divisor.
	Scale(divisor int64, raw string) (decimal.Decimal, error)
}

// Objects índices de los objetos COSEM usados por la aplicación (dependen del Codec).
type Objects struct {
	BillingParams int
	DatetimeNow   int
	DemandReset   int
}

// AccessMode tipo de acceso a datos.
type AccessMode int

const (
	ModeGet AccessMode = iota
	ModeSet
	ModeAction
)

func (m AccessMode) String() string {
	switch m {
	case ModeGet:
		return "get"
	case ModeSet:
		return "set"
	case ModeAction:
		return "action"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Request parámetros de un acceso a datos.
type Request struct {
	Mode      AccessMode
	Object    int
	Attribute byte // atributo (get/set) o método (action)
	Selector  byte
	Parameter string
	DataIndex byte
	Modeling  bool
}

// Context contexto de ejecución de la sesión: medidor, canal y codec.
type Context struct {
	SerialID        string
	Transport       Transport
	Codec           Codec
	Objects         Objects
	ResponseTimeout time.Duration
	Logger          zerolog.Logger
}

// Session sesión con un medidor. Los métodos se serializan entre sí.
type Session struct {
	mu          sync.Mutex
	serialID    string
	transport   Transport
	codec       Codec
	objects     Objects
	timeout     time.Duration
	log         zerolog.Logger
	established bool
}

// NewSession valida el contexto y construye la sesión (no abre la conexión).
func NewSession(c Context) (*Session, error) {
	if c.Transport == nil {
		return nil, &ConstructionError{Reason: ReasonNoTransport}
	}
	if c.Codec == nil {
		return nil, &ConstructionError{Reason: ReasonNoCodec}
	}
	if c.SerialID == "" {
		return nil, &ConstructionError{Reason: ReasonInvalidMeter, Err: errors.New("serial vacío")}
	}
	timeout := c.ResponseTimeout
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	return &Session{
		serialID:  c.SerialID,
		transport: c.Transport,
		codec:     c.Codec,
		objects:   c.Objects,
		timeout:   timeout,
		log:       c.Logger.With().Str("serial", c.SerialID).Logger(),
	}, nil
}

// SerialID serial del medidor de la sesión.
func (s *Session) SerialID() string { return s.serialID }

// Established indica si el handshake terminó correctamente.
func (s *Session) Established() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.established
}

// Establish ejecuta Open -> Session -> Challenge -> Confirm.
func (s *Session) Establish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.roundTrip(ctx, "open", s.codec.Open())
	if err != nil {
		return err
	}
	frame, ok := s.codec.Session(resp)
	if !ok || frame == nil {
		return rejected("session")
	}
	if resp, err = s.roundTrip(ctx, "session", frame); err != nil {
		return err
	}
	frame, ok = s.codec.Challenge(resp)
	if !ok || frame == nil {
		return rejected("challenge")
	}
	if resp, err = s.roundTrip(ctx, "challenge", frame); err != nil {
		return err
	}
	if !s.codec.Confirm(resp) {
		return rejected("confirm")
	}
	s.established = true
	s.log.Info().Msg("sesión DLMS establecida")
	return nil
}

// Release ejecuta Release -> Close -> Finish.
func (s *Session) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := s.codec.Release()
	if frame == nil {
		return rejected("release")
	}
	resp, err := s.roundTrip(ctx, "release", frame)
	if err != nil {
		return err
	}
	frame, ok := s.codec.Close(resp)
	if !ok || frame == nil {
		return rejected("close")
	}
	if resp, err = s.roundTrip(ctx, "close", frame); err != nil {
		return err
	}
	if !s.codec.Finish(resp) {
		return rejected("finish")
	}
	s.established = false
	s.log.Info().Msg("sesión DLMS liberada")
	return nil
}

// Access ejecuta un acceso Get/Set/Action y devuelve los valores decodificados.
func (s *Session) Access(ctx context.Context, req Request) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access(ctx, req)
}

func (s *Session) access(ctx context.Context, req Request) ([]string, error) {
	if !s.established {
		return nil, ErrNotEstablished
	}

	var frame []byte
	switch req.Mode {
	case ModeGet:
		frame = s.codec.GetRequest(req.Object, req.Attribute, req.Selector, req.Parameter, req.DataIndex)
	case ModeSet:
		frame = s.codec.SetRequest(req.Object, req.Attribute, req.Selector, req.Parameter, req.DataIndex)
	case ModeAction:
		frame = s.codec.ActionRequest(req.Object, req.Attribute, req.Parameter, req.DataIndex)
	}
	if frame == nil {
		return nil, fmt.Errorf("%w: %s obj=%d attr=%d sin trama", ErrAccessFailed, req.Mode, req.Object, req.Attribute)
	}
	s.log.Debug().Str("mode", req.Mode.String()).Int("obj", req.Object).Uint8("attr", req.Attribute).Msg("acceso DLMS")

	resp, err := s.roundTrip(ctx, req.Mode.String(), frame)
	if err != nil {
		return nil, err
	}
	values, code := s.codec.DataResponse(resp, req.Modeling)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: respuesta vacía", ErrAccessFailed)
	}
	if code < 0 {
		return nil, fmt.Errorf("%w: código %d", ErrAccessFailed, code)
	}
	if req.Mode != ModeGet && len(values) > 1 && values[1] != successResult {
		return nil, fmt.Errorf("%w: %s", ErrAccessFailed, values[1])
	}
	return values, nil
}

// Close cierra el transporte.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.established = false
	return s.transport.Close()
}

func (s *Session) roundTrip(ctx context.Context, step string, frame []byte) ([]byte, error) {
	if err := s.transport.Write(ctx, frame); err != nil {
		return nil, fmt.Errorf("dlms: escribir %s: %w", step, err)
	}
	s.log.Trace().Str("step", step).Int("bytes", len(frame)).Msg("trama enviada")

	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := s.transport.Receive(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.log.Error().Str("step", step).Msg("timeout esperando respuesta")
			return nil, fmt.Errorf("%w en %s", ErrResponseTimeout, step)
		}
		return nil, fmt.Errorf("dlms: recibir %s: %w", step, err)
	}
	return resp, nil
}

func rejected(step string) error {
	return fmt.Errorf("%w: %s", ErrHandshakeRejected, step)
}

// ReadBillingCount lee la cantidad de registros del perfil de facturación.
func (s *Session) ReadBillingCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.access(ctx, Request{Mode: ModeGet, Object: s.objects.BillingParams, Attribute: 7})
	if err != nil {
		return 0, err
	}
	if len(values) < 2 {
		return 0, fmt.Errorf("%w: respuesta sin contador", ErrAccessFailed)
	}
	n, err := strconv.Atoi(values[1])
	if err != nil {
		return 0, fmt.Errorf("%w: contador %q", ErrAccessFailed, values[1])
	}
	return n, nil
}

// ReadBillingRecord lee el registro index (1..count) del perfil de facturación.
func (s *Session) ReadBillingRecord(ctx context.Context, index int) (entity.MeterRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.access(ctx, Request{
		Mode:      ModeGet,
		Object:    s.objects.BillingParams,
		Attribute: 2,
		Selector:  2,
		Parameter: BillingEntryParameter(index),
	})
	if err != nil {
		return entity.MeterRecord{}, err
	}
	if len(values) < 10 {
		return entity.MeterRecord{}, fmt.Errorf("%w: registro con %d campos", ErrAccessFailed, len(values))
	}

	rec := entity.MeterRecord{Clock: values[0], Alert1: values[9]}
	if len(values) > 10 {
		rec.Alert2 = values[10]
	}
	fields := []struct {
		dst     *decimal.Decimal
		idx     int
		divisor int64
	}{
		{&rec.Imp, 2, 1000},
		{&rec.Exp, 3, 1000},
		{&rec.Abs, 4, 1000},
		{&rec.Net, 5, 1000},
		{&rec.MaxImp, 6, 1000},
		{&rec.MaxExp, 7, 1000},
		{&rec.MinVolt, 8, 100},
	}
	for _, f := range fields {
		v, err := s.codec.Scale(f.divisor, values[f.idx])
		if err != nil {
			return entity.MeterRecord{}, fmt.Errorf("%w: campo %d: %v", ErrAccessFailed, f.idx, err)
		}
		*f.dst = v
	}
	return rec, nil
}

// SetClock sincroniza el reloj del medidor con now (+1 s, como el envío tarda).
func (s *Session) SetClock(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.access(ctx, Request{
		Mode:      ModeSet,
		Object:    s.objects.DatetimeNow,
		Attribute: 2,
		Parameter: ClockParameter(now.Add(time.Second)),
	})
	return err
}

// DemandReset reinicia la demanda máxima del medidor.
func (s *Session) DemandReset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.access(ctx, Request{
		Mode:      ModeAction,
		Object:    s.objects.DemandReset,
		Attribute: 1,
		Parameter: "120001",
	})
	return err
}

// BillingEntryParameter parámetro de selección por entrada (from = to = index).
func BillingEntryParameter(index int) string {
	return fmt.Sprintf("020406%08x06%08x120001120000", index, index)
}

// ClockParameter octet-string date-time de 12 bytes para el atributo de reloj.
func ClockParameter(t time.Time) string {
	return fmt.Sprintf("090c%04x%02x%02xff%02x%02x%02xff800000",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}
