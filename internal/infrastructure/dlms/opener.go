package dlms

import (
	"context"
	"fmt"

	"github.com/jhoicas/Kenshin-api/internal/domain"
)

// Connector arma el Context de sesión para un medidor (transporte incluido si hay gateway).
type Connector interface {
	Connect(ctx context.Context, serialID string) (Context, error)
}

// Opener conecta con el medidor y construye la sesión a través de la Factory.
type Opener struct {
	connector Connector
	factory   *Factory
}

func NewOpener(connector Connector, factory *Factory) *Opener {
	return &Opener{connector: connector, factory: factory}
}

// Open devuelve la sesión lista para Establish. Un fallo de conexión o de construcción se
// devuelve envolviendo domain.ErrDeviceUnavailable; si había transporte se cierra.
func (o *Opener) Open(ctx context.Context, serialID string) (*Session, error) {
	c, err := o.connector.Connect(ctx, serialID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	res := o.factory.Create(c)
	if !res.OK() {
		if c.Transport != nil {
			_ = c.Transport.Close()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, res.Err)
	}
	return res.Session, nil
}
