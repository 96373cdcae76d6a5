package dlms

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	wrapperVersion    = 0x0001
	wrapperHeaderSize = 8
)

// TCPTransport transporte DLMS/TCP con cabecera wrapper: versión, wPort origen, wPort destino, largo.
type TCPTransport struct {
	conn       net.Conn
	clientPort uint16
	serverPort uint16
}

// NewTCPTransport envuelve una conexión ya abierta.
func NewTCPTransport(conn net.Conn, clientPort, serverPort uint16) *TCPTransport {
	return &TCPTransport{conn: conn, clientPort: clientPort, serverPort: serverPort}
}

func (t *TCPTransport) Write(ctx context.Context, frame []byte) error {
	if len(frame) > 0xFFFF {
		return fmt.Errorf("trama de %d bytes excede el wrapper", len(frame))
	}
	buf := make([]byte, wrapperHeaderSize+len(frame))
	binary.BigEndian.PutUint16(buf[0:], wrapperVersion)
	binary.BigEndian.PutUint16(buf[2:], t.clientPort)
	binary.BigEndian.PutUint16(buf[4:], t.serverPort)
	binary.BigEndian.PutUint16(buf[6:], uint16(len(frame)))
	copy(buf[wrapperHeaderSize:], frame)

	deadline, _ := ctx.Deadline()
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := t.conn.Write(buf)
	return mapDeadline(err)
}

func (t *TCPTransport) Receive(ctx context.Context) ([]byte, error) {
	deadline, _ := ctx.Deadline()
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	// Si el callback ya arrancó se espera a que termine: un deadline vencido tardío
	// haría fallar el Receive siguiente.
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		_ = t.conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer func() {
		if !stop() {
			<-fired
		}
	}()

	var hdr [wrapperHeaderSize]byte
	if _, err := io.ReadFull(t.conn, hdr[:]); err != nil {
		return nil, t.readErr(ctx, err)
	}
	if v := binary.BigEndian.Uint16(hdr[0:]); v != wrapperVersion {
		return nil, fmt.Errorf("versión de wrapper desconocida: %d", v)
	}
	frame := make([]byte, binary.BigEndian.Uint16(hdr[6:]))
	if _, err := io.ReadFull(t.conn, frame); err != nil {
		return nil, t.readErr(ctx, err)
	}
	return frame, nil
}

func (t *TCPTransport) readErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return mapDeadline(err)
}

func (t *TCPTransport) Close() error { return t.conn.Close() }

func mapDeadline(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

// GatewayConfig parámetros del gateway DLMS/TCP y del codec.
type GatewayConfig struct {
	Addr            string
	ClientWPort     uint16
	ServerWPort     uint16
	ResponseTimeout time.Duration
	Objects         Objects
}

// GatewayConnector arma el Context de sesión para un medidor detrás de un gateway TCP.
// Sin dirección o sin codec, el Context queda incompleto y la Factory lo reporta.
type GatewayConnector struct {
	cfg   GatewayConfig
	codec Codec
	log   zerolog.Logger
	dial  func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewGatewayConnector(cfg GatewayConfig, codec Codec, log zerolog.Logger) *GatewayConnector {
	d := &net.Dialer{Timeout: 5 * time.Second}
	return &GatewayConnector{cfg: cfg, codec: codec, log: log, dial: d.DialContext}
}

// Connect abre la conexión (si hay gateway) y devuelve el Context de la sesión.
func (g *GatewayConnector) Connect(ctx context.Context, serialID string) (Context, error) {
	c := Context{
		SerialID:        serialID,
		Codec:           g.codec,
		Objects:         g.cfg.Objects,
		ResponseTimeout: g.cfg.ResponseTimeout,
		Logger:          g.log,
	}
	if g.cfg.Addr == "" {
		return c, nil
	}
	conn, err := g.dial(ctx, "tcp", g.cfg.Addr)
	if err != nil {
		return c, fmt.Errorf("conectar gateway %s: %w", g.cfg.Addr, err)
	}
	c.Transport = NewTCPTransport(conn, g.cfg.ClientWPort, g.cfg.ServerWPort)
	return c, nil
}
