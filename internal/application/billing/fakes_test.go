package billing_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	calc "github.com/jhoicas/Kenshin-api/internal/domain/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/filestore"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/ratefile"
)

var defaults = calc.Defaults{
	Commercial: "LARGE",
	Multiplier: decimal.NewFromInt(1),
	Discount:   decimal.Zero,
	Interest:   decimal.Zero,
	Reader:     "Fuji Taro",
	Version:    "v1.0",
}

func newRepo(t *testing.T) *filestore.BillingRepository {
	t.Helper()
	return filestore.NewBillingRepository(filepath.Join(t.TempDir(), "billing"), zerolog.Nop())
}

func newRates(t *testing.T) *ratefile.Loader {
	t.Helper()
	return ratefile.NewLoader(filepath.Join(t.TempDir(), "rate.csv"), zerolog.Nop())
}

func meterRecord(clock string, imp, maxImp int64) entity.MeterRecord {
	return entity.MeterRecord{
		Clock:  clock,
		Imp:    decimal.NewFromInt(imp),
		MaxImp: decimal.NewFromInt(maxImp),
	}
}

// fakeSession sesión DLMS guionizada.
type fakeSession struct {
	establishErr error
	countErr     error
	count        int
	records      map[int]entity.MeterRecord
	clockErr     error

	read       []int
	clockSet   time.Time
	demandDone bool
	released   bool
	closed     bool
}

func (s *fakeSession) Establish(context.Context) error { return s.establishErr }

func (s *fakeSession) ReadBillingCount(context.Context) (int, error) { return s.count, s.countErr }

func (s *fakeSession) ReadBillingRecord(_ context.Context, index int) (entity.MeterRecord, error) {
	s.read = append(s.read, index)
	rec, ok := s.records[index]
	if !ok {
		return entity.MeterRecord{}, errors.New("registro inexistente")
	}
	return rec, nil
}

func (s *fakeSession) SetClock(_ context.Context, now time.Time) error {
	s.clockSet = now
	return s.clockErr
}

func (s *fakeSession) DemandReset(context.Context) error {
	s.demandDone = true
	return nil
}

func (s *fakeSession) Release(context.Context) error {
	s.released = true
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func openerFor(s *fakeSession) billing.SessionOpener {
	return billing.OpenerFunc(func(context.Context, string) (billing.MeterSession, error) {
		return s, nil
	})
}
