package ratefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// Loader mantiene la tabla vigente cargada desde path; ante cualquier fallo usa las tarifas por defecto.
type Loader struct {
	path string
	log  zerolog.Logger

	mu       sync.RWMutex
	current  entity.RateTable
	defaults bool
}

func NewLoader(path string, log zerolog.Logger) *Loader {
	return &Loader{path: path, log: log, current: entity.DefaultRateTable(), defaults: true}
}

// Load relee el archivo y devuelve la tabla vigente.
func (l *Loader) Load() entity.RateTable {
	table, err := l.read()
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Error().Err(err).Str("path", l.path).Msg("error cargando tarifas")
		}
		l.log.Info().Msg("usando tarifas por defecto")
		l.current, l.defaults = entity.DefaultRateTable(), true
		return l.current
	}
	l.log.Debug().Str("path", l.path).Str("rate_type", table.RateType).Msg("tarifas cargadas")
	l.current, l.defaults = table, false
	return l.current
}

func (l *Loader) read() (entity.RateTable, error) {
	if l.path == "" {
		return entity.RateTable{}, os.ErrNotExist
	}
	f, err := os.Open(l.path)
	if err != nil {
		return entity.RateTable{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Current tabla vigente sin releer el archivo.
func (l *Loader) Current() entity.RateTable {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// UsingDefaults indica si la tabla vigente es la de por defecto.
func (l *Loader) UsingDefaults() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaults
}

// Store reemplaza el archivo con data (solo si se puede parsear) y recarga.
func (l *Loader) Store(data []byte) (entity.RateTable, error) {
	table, err := Parse(bytes.NewReader(data))
	if err != nil {
		return entity.RateTable{}, err
	}
	if l.path == "" {
		return entity.RateTable{}, errors.New("ruta de rate.csv no configurada")
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return entity.RateTable{}, fmt.Errorf("crear directorio de tarifas: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return entity.RateTable{}, fmt.Errorf("escribir rate.csv: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return entity.RateTable{}, fmt.Errorf("reemplazar rate.csv: %w", err)
	}

	l.mu.Lock()
	l.current, l.defaults = table, false
	l.mu.Unlock()
	l.log.Info().Str("rate_type", table.RateType).Msg("tarifas reemplazadas")
	return table, nil
}
