package dlms_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// fakeTransport responde a cada Write con la siguiente respuesta guionizada.
// Sin respuestas pendientes, Receive bloquea hasta que el contexto termine.
type fakeTransport struct {
	mu      sync.Mutex
	written []string
	replies []string
	pending chan []byte
	closed  bool
}

func newFakeTransport(replies ...string) *fakeTransport {
	return &fakeTransport{replies: replies, pending: make(chan []byte, 32)}
}

func (t *fakeTransport) Write(_ context.Context, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.written = append(t.written, string(frame))
	if len(t.replies) > 0 {
		t.pending <- []byte(t.replies[0])
		t.replies = t.replies[1:]
	}
	return nil
}

func (t *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case r := <-t.pending:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) frames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}

// fakeCodec codec textual: las respuestas de datos son valores separados por "|".
type fakeCodec struct{}

func (fakeCodec) Open() []byte { return []byte("SNRM") }

func (fakeCodec) Session(resp []byte) ([]byte, bool) {
	return []byte("AARQ"), string(resp) == "UA"
}

func (fakeCodec) Challenge(resp []byte) ([]byte, bool) {
	return []byte("HLS"), string(resp) == "AARE"
}

func (fakeCodec) Confirm(resp []byte) bool { return string(resp) == "HLS-OK" }

func (fakeCodec) Release() []byte { return []byte("RLRQ") }

func (fakeCodec) Close(resp []byte) ([]byte, bool) {
	return []byte("DISC"), string(resp) == "RLRE"
}

func (fakeCodec) Finish(resp []byte) bool { return string(resp) == "UA" }

func (fakeCodec) GetRequest(obj int, attr, selector byte, param string, _ byte) []byte {
	return []byte(fmt.Sprintf("GET %d/%d/%d %s", obj, attr, selector, param))
}

func (fakeCodec) SetRequest(obj int, attr, _ byte, param string, _ byte) []byte {
	return []byte(fmt.Sprintf("SET %d/%d %s", obj, attr, param))
}

func (fakeCodec) ActionRequest(obj int, method byte, param string, _ byte) []byte {
	return []byte(fmt.Sprintf("ACT %d/%d %s", obj, method, param))
}

func (fakeCodec) DataResponse(resp []byte, _ bool) ([]string, int) {
	values := strings.Split(string(resp), "|")
	if values[0] == "ERR" {
		return values, -1
	}
	return values, 0
}

func (fakeCodec) Scale(divisor int64, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Div(decimal.NewFromInt(divisor)), nil
}

// handshake respuestas de un Establish exitoso.
var handshake = []string{"UA", "AARE", "HLS-OK"}
