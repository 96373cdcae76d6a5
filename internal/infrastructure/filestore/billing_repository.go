// Package filestore persiste el historial de facturación en un CSV por medidor.
//
// Cada archivo {serial}_billing.csv acumula registros con el encabezado
// Timestamp,Period,BillingData,Rates; las dos últimas columnas son JSON.
package filestore

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
)

const fileSuffix = "_billing.csv"

var header = []string{"Timestamp", "Period", "BillingData", "Rates"}

var validSerial = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

var _ repository.BillingRepository = (*BillingRepository)(nil)

// BillingRepository implementación de repository.BillingRepository sobre archivos CSV.
type BillingRepository struct {
	dir string
	log zerolog.Logger
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBillingRepository crea el repositorio en dir (se crea al primer Save).
func NewBillingRepository(dir string, log zerolog.Logger) *BillingRepository {
	return &BillingRepository{dir: dir, log: log, now: time.Now, locks: make(map[string]*sync.Mutex)}
}

// Dir directorio de los archivos.
func (r *BillingRepository) Dir() string { return r.dir }

func (r *BillingRepository) lockFor(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[path]
	if !ok {
		l = &sync.Mutex{}
		r.locks[path] = l
	}
	return l
}

func (r *BillingRepository) pathFor(serial string) (string, error) {
	if !validSerial.MatchString(serial) || strings.Contains(serial, "..") {
		return "", fmt.Errorf("%w: serial %q", domain.ErrInvalidInput, serial)
	}
	return filepath.Join(r.dir, serial+fileSuffix), nil
}

// Save agrega el registro al final del archivo del medidor. Timestamp cero se completa con la hora actual.
func (r *BillingRepository) Save(_ context.Context, saved *entity.SavedBilling) error {
	if saved == nil || saved.Billing.SerialID == "" {
		return fmt.Errorf("%w: serial requerido", domain.ErrInvalidInput)
	}
	path, err := r.pathFor(saved.Billing.SerialID)
	if err != nil {
		return err
	}
	if saved.Timestamp.IsZero() {
		saved.Timestamp = r.now()
	}
	billingJSON, err := json.Marshal(saved.Billing)
	if err != nil {
		return fmt.Errorf("serializar facturación: %w", err)
	}
	ratesJSON, err := json.Marshal(saved.Rates)
	if err != nil {
		return fmt.Errorf("serializar tarifas: %w", err)
	}

	lock := r.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio de facturación: %w", err)
	}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("leer %s: %w", filepath.Base(path), err)
	}
	saved.ID = recordID(saved.Timestamp.UnixMilli(), countRows(existing)+1)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("abrir %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
		r.log.Debug().Str("file", path).Msg("archivo de facturación creado")
	}
	if err := w.Write([]string{strconv.FormatInt(saved.Timestamp.UnixMilli(), 10), saved.Billing.Period, string(billingJSON), string(ratesJSON)}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("escribir %s: %w", filepath.Base(path), err)
	}
	r.log.Debug().Str("serial", saved.Billing.SerialID).Msg("facturación guardada")
	return nil
}

// Latest último registro del medidor; (nil, nil) si no hay.
func (r *BillingRepository) Latest(ctx context.Context, serialID string) (*entity.SavedBilling, error) {
	all, err := r.History(ctx, serialID)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[len(all)-1], nil
}

// History todos los registros del medidor en orden de escritura.
func (r *BillingRepository) History(_ context.Context, serialID string) ([]*entity.SavedBilling, error) {
	path, err := r.pathFor(serialID)
	if err != nil {
		return nil, err
	}
	lock := r.lockFor(path)
	lock.Lock()
	data, err := os.ReadFile(path)
	lock.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", filepath.Base(path), err)
	}
	return r.parse(serialID, data), nil
}

func (r *BillingRepository) parse(serialID string, data []byte) []*entity.SavedBilling {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []*entity.SavedBilling
	seq := 0
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.log.Warn().Err(err).Str("serial", serialID).Int("line", line).Msg("línea de facturación ilegible")
			continue
		}
		if line == 0 && len(rec) > 0 && rec[0] == header[0] {
			continue
		}
		seq++
		saved, err := decodeRecord(rec, seq)
		if err != nil {
			r.log.Warn().Err(err).Str("serial", serialID).Int("line", line).Msg("registro de facturación descartado")
			continue
		}
		out = append(out, saved)
	}
	return out
}

// countRows filas de datos del archivo, con el mismo criterio que parse.
func countRows(data []byte) int {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	n := 0
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return n
		}
		if err != nil || (line == 0 && len(rec) > 0 && rec[0] == header[0]) {
			continue
		}
		n++
	}
}

// recordID timestamp en ms más la posición de la fila; dos Save en el mismo ms no colisionan.
func recordID(millis int64, seq int) string {
	return strconv.FormatInt(millis, 10) + "-" + strconv.Itoa(seq)
}

func decodeRecord(rec []string, seq int) (*entity.SavedBilling, error) {
	if len(rec) < 4 {
		return nil, fmt.Errorf("se esperaban 4 columnas, hay %d", len(rec))
	}
	millis, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("timestamp %q: %w", rec[0], err)
	}
	saved := &entity.SavedBilling{ID: recordID(millis, seq), Timestamp: time.UnixMilli(millis)}
	if err := json.Unmarshal([]byte(rec[2]), &saved.Billing); err != nil {
		return nil, fmt.Errorf("facturación: %w", err)
	}
	if saved.Rates, err = decodeRates(rec[3]); err != nil {
		return nil, fmt.Errorf("tarifas: %w", err)
	}
	return saved, nil
}

// decodeRates acepta el objeto RateTable o un arreglo simple de tarifas.
func decodeRates(s string) (entity.RateTable, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		var rt entity.RateTable
		err := json.Unmarshal([]byte(s), &rt)
		return rt, err
	}
	var rates []decimal.Decimal
	if err := json.Unmarshal([]byte(s), &rates); err != nil {
		return entity.RateTable{}, err
	}
	rt, ok := entity.RateTableFromSlice(rates, entity.DefaultRateType)
	if !ok {
		return entity.RateTable{}, fmt.Errorf("%d tarifas", len(rates))
	}
	return rt, nil
}

// ListSerials medidores con archivo de facturación, ordenados.
func (r *BillingRepository) ListSerials(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", r.dir, err)
	}
	var serials []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		if serial := strings.TrimSuffix(e.Name(), fileSuffix); validSerial.MatchString(serial) {
			serials = append(serials, serial)
		}
	}
	sort.Strings(serials)
	return serials, nil
}

// Summary resumen del historial; (nil, nil) si no hay registros.
func (r *BillingRepository) Summary(ctx context.Context, serialID string) (*entity.BillingSummary, error) {
	all, err := r.History(ctx, serialID)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	path, _ := r.pathFor(serialID)
	first, last := all[0], all[len(all)-1]
	return &entity.BillingSummary{
		SerialID:      serialID,
		RecordCount:   len(all),
		FirstRecordAt: first.Timestamp,
		LastRecordAt:  last.Timestamp,
		FirstPeriod:   first.Billing.Period,
		LastPeriod:    last.Billing.Period,
		Location:      path,
	}, nil
}

// Has indica si existe archivo para el medidor.
func (r *BillingRepository) Has(_ context.Context, serialID string) (bool, error) {
	path, err := r.pathFor(serialID)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Clear elimina el archivo del medidor (sin error si no existe).
func (r *BillingRepository) Clear(_ context.Context, serialID string) error {
	path, err := r.pathFor(serialID)
	if err != nil {
		return err
	}
	lock := r.lockFor(path)
	lock.Lock()
	defer lock.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("eliminar %s: %w", filepath.Base(path), err)
	}
	r.log.Info().Str("serial", serialID).Msg("historial de facturación eliminado")
	return nil
}

// ClearAll elimina todos los archivos de facturación.
func (r *BillingRepository) ClearAll(ctx context.Context) error {
	serials, err := r.ListSerials(ctx)
	if err != nil {
		return err
	}
	for _, s := range serials {
		if err := r.Clear(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
