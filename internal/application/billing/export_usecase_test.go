package billing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/application/billing"
	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/export"
)

type fakeUploader struct {
	name string
	data []byte
	err  error
}

func (u *fakeUploader) Upload(_ context.Context, fileName, _ string, data []byte) (string, error) {
	u.name, u.data = fileName, data
	if u.err != nil {
		return "", u.err
	}
	return "https://storage.local/" + fileName, nil
}

var issuer = entity.Issuer{Name: "Electric Philippines Inc.", Phone: "000-000-0000"}

// seeded repositorio con un cálculo guardado para SN-1.
func seeded(t *testing.T) (*billing.BillingUseCase, *billing.ExportUseCase, *fakeUploader) {
	t.Helper()
	repo, rates := newRepo(t), newRates(t)
	b := billing.NewBillingUseCase(repo, rates, defaults, zerolog.Nop())
	_, err := b.Compute(context.Background(), computeReq("SN-1", "February 2024"), "Ana")
	require.NoError(t, err)
	up := &fakeUploader{}
	return b, billing.NewExportUseCase(repo, rates, issuer, up, zerolog.Nop()), up
}

func TestExport_JSON(t *testing.T) {
	_, uc, _ := seeded(t)

	f, err := uc.Export(context.Background(), "SN-1", "", false)
	require.NoError(t, err)
	assert.Equal(t, export.ContentTypeJSON, f.ContentType)
	assert.True(t, strings.HasSuffix(f.FileName, "_SN-1.json"))
	assert.Empty(t, f.URL)

	var bills []map[string]interface{}
	require.NoError(t, json.Unmarshal(f.Data, &bills))
	require.Len(t, bills, 1)
	assert.Equal(t, "February 2024", bills[0]["Period"])
}

func TestExport_Formatos(t *testing.T) {
	_, uc, _ := seeded(t)
	ctx := context.Background()

	csvFile, err := uc.Export(ctx, "SN-1", "csv", false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csvFile.Data), "Timestamp,Period"))
	assert.Contains(t, csvFile.FileName, "SN-1_BD_")

	xlsx, err := uc.Export(ctx, "SN-1", "XLSX", false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx.Data, []byte("PK")))

	pdfFile, err := uc.Export(ctx, "SN-1", "pdf", false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfFile.Data, []byte("%PDF")))
	assert.Equal(t, export.ContentTypePDF, pdfFile.ContentType)

	txt, err := uc.Export(ctx, "SN-1", "txt", false)
	require.NoError(t, err)
	assert.Contains(t, string(txt.Data), "1581.91")
	assert.True(t, strings.HasSuffix(txt.FileName, ".txt"))
}

func TestExport_FormatoInvalido(t *testing.T) {
	_, uc, _ := seeded(t)

	_, err := uc.Export(context.Background(), "SN-1", "docx", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExport_SinHistorial(t *testing.T) {
	_, uc, _ := seeded(t)

	_, err := uc.Export(context.Background(), "SN-404", "json", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExport_SubeAlAlmacenamiento(t *testing.T) {
	_, uc, up := seeded(t)

	f, err := uc.Export(context.Background(), "SN-1", "csv", true)
	require.NoError(t, err)
	assert.Equal(t, f.FileName, up.name)
	assert.Equal(t, f.Data, up.data)
	assert.Equal(t, "https://storage.local/"+f.FileName, f.URL)
}

func TestExport_FalloDeSubida(t *testing.T) {
	_, uc, up := seeded(t)
	up.err = errors.New("bucket inexistente")

	_, err := uc.Export(context.Background(), "SN-1", "json", true)
	assert.Error(t, err)
}

func TestExport_SinAlmacenamiento(t *testing.T) {
	repo, rates := newRepo(t), newRates(t)
	uc := billing.NewExportUseCase(repo, rates, issuer, nil, zerolog.Nop())
	assert.False(t, uc.CanUpload())

	_, err := uc.Export(context.Background(), "SN-1", "json", true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
