package dlms_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/infrastructure/dlms"
)

func TestTCPTransport_WriteAgregaWrapper(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	tr := dlms.NewTCPTransport(client, 16, 1)
	defer tr.Close()

	go func() {
		_ = tr.Write(context.Background(), []byte{0xC0, 0x01})
	}()

	buf := make([]byte, 10)
	_, err := io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x10, 0x00, 0x01, 0x00, 0x02, 0xC0, 0x01}, buf)
}

func TestTCPTransport_ReceiveQuitaWrapper(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	tr := dlms.NewTCPTransport(client, 16, 1)
	defer tr.Close()

	go func() {
		_, _ = server.Write([]byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x00, 0x03, 0xC4, 0x01, 0x00})
	}()

	frame, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC4, 0x01, 0x00}, frame)
}

func TestTCPTransport_ReceiveTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	tr := dlms.NewTCPTransport(client, 16, 1)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tr.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTCPTransport_ReceiveTrasCancelacion(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	tr := dlms.NewTCPTransport(client, 16, 1)
	defer tr.Close()

	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(time.Millisecond, cancel)
		_, err := tr.Receive(ctx)
		require.ErrorIs(t, err, context.Canceled)
		cancel()

		go func() {
			_, _ = server.Write([]byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x00, 0x01, 0xC4})
		}()
		frame, err := tr.Receive(context.Background())
		require.NoError(t, err, "iteración %d", i)
		assert.Equal(t, []byte{0xC4}, frame)
	}
}

func TestGatewayConnector_SinDireccionNoHayTransporte(t *testing.T) {
	conn := dlms.NewGatewayConnector(dlms.GatewayConfig{}, fakeCodec{}, zerolog.Nop())
	c, err := conn.Connect(context.Background(), "SN-1")
	require.NoError(t, err)
	assert.Nil(t, c.Transport)

	res := dlms.NewFactory().Create(c)
	require.NotNil(t, res.Err)
	assert.Equal(t, dlms.ReasonNoTransport, res.Err.Reason)
}
