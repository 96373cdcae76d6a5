package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/domain/repository"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/export"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/printer"
	"github.com/jhoicas/Kenshin-api/internal/observability/metrics"
)

// Formatos de exportación.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatText = "txt"
)

// ExportFile archivo generado; URL solo se completa cuando se subió al almacenamiento.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	URL         string
}

// ExportUseCase genera las exportaciones del historial de un medidor.
type ExportUseCase struct {
	repo     repository.BillingRepository
	rates    RateSource
	issuer   entity.Issuer
	uploader Uploader // nil: almacenamiento deshabilitado
	log      zerolog.Logger
	now      func() time.Time
}

// NewExportUseCase construye el caso de uso; uploader puede ser nil.
func NewExportUseCase(repo repository.BillingRepository, rates RateSource, issuer entity.Issuer, uploader Uploader, log zerolog.Logger) *ExportUseCase {
	return &ExportUseCase{repo: repo, rates: rates, issuer: issuer, uploader: uploader, log: log, now: time.Now}
}

// CanUpload indica si hay almacenamiento configurado.
func (uc *ExportUseCase) CanUpload() bool { return uc.uploader != nil }

// Export genera el archivo en el formato pedido. Los recibos (pdf, txt) usan el último registro.
// Con upload=true el archivo además se sube y se devuelve su URL.
func (uc *ExportUseCase) Export(ctx context.Context, serialID, format string, upload bool) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if upload && uc.uploader == nil {
		return nil, fmt.Errorf("%w: almacenamiento de exportaciones no configurado", domain.ErrInvalidInput)
	}

	history, err := uc.repo.History(ctx, serialID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	latest := history[len(history)-1]

	file := &ExportFile{}
	switch format {
	case FormatJSON:
		bills := make([]entity.BillingData, len(history))
		for i, s := range history {
			bills[i] = s.Billing
		}
		file.Data, err = export.BillingJSON(bills)
		file.FileName, file.ContentType = export.JSONFileName(serialID, now), export.ContentTypeJSON
	case FormatCSV:
		file.Data, err = export.HistoryCSV(history)
		file.FileName, file.ContentType = export.CSVFileName(serialID, export.KindBilling, now), export.ContentTypeCSV
	case FormatXLSX:
		file.Data, err = export.BillingXLSX(history, uc.rates.Current())
		file.FileName, file.ContentType = fmt.Sprintf("%s_billing_%s.xlsx", serialID, now.Format("20060102")), export.ContentTypeXLSX
	case FormatPDF:
		file.Data, err = pdf.ReceiptPDF(latest.Billing, uc.issuer)
		file.FileName, file.ContentType = receiptName(serialID, now, "pdf"), export.ContentTypePDF
	case FormatText:
		file.Data, err = printer.Receipt(latest.Billing, uc.issuer, now)
		file.FileName, file.ContentType = receiptName(serialID, now, "txt"), export.ContentTypeText
	default:
		return nil, fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("exportar %s: %w", format, err)
	}
	metrics.ExportGenerated(format)

	if upload {
		url, err := uc.uploader.Upload(ctx, file.FileName, file.ContentType, file.Data)
		if err != nil {
			return nil, fmt.Errorf("subir exportación: %w", err)
		}
		file.URL = url
		uc.log.Info().Str("serial", serialID).Str("file", file.FileName).Msg("exportación subida")
	}
	return file, nil
}

func receiptName(serialID string, now time.Time, ext string) string {
	return fmt.Sprintf("receipt_%s_%s.%s", serialID, now.Format("20060102_150405"), ext)
}
