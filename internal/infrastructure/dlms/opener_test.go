package dlms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/dlms"
)

type connectorFunc func(ctx context.Context, serialID string) (dlms.Context, error)

func (f connectorFunc) Connect(ctx context.Context, serialID string) (dlms.Context, error) {
	return f(ctx, serialID)
}

func TestOpener_Open_SesionCreada(t *testing.T) {
	tr := newFakeTransport()
	o := dlms.NewOpener(connectorFunc(func(_ context.Context, serial string) (dlms.Context, error) {
		return dlms.Context{SerialID: serial, Transport: tr, Codec: fakeCodec{}}, nil
	}), dlms.NewFactory())

	s, err := o.Open(context.Background(), "SN-9")
	require.NoError(t, err)
	assert.Equal(t, "SN-9", s.SerialID())
	assert.False(t, tr.closed)
}

func TestOpener_Open_SinCodecCierraTransporte(t *testing.T) {
	tr := newFakeTransport()
	o := dlms.NewOpener(connectorFunc(func(_ context.Context, serial string) (dlms.Context, error) {
		return dlms.Context{SerialID: serial, Transport: tr}, nil
	}), dlms.NewFactory())

	s, err := o.Open(context.Background(), "SN-9")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, domain.ErrDeviceUnavailable)
	assert.Contains(t, err.Error(), "no_codec")
	assert.True(t, tr.closed)
}

func TestOpener_Open_FalloDeConexion(t *testing.T) {
	o := dlms.NewOpener(connectorFunc(func(context.Context, string) (dlms.Context, error) {
		return dlms.Context{}, errors.New("connection refused")
	}), dlms.NewFactory())

	_, err := o.Open(context.Background(), "SN-9")
	assert.ErrorIs(t, err, domain.ErrDeviceUnavailable)
}
