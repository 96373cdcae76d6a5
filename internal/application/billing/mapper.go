package billing

import (
	"time"

	"github.com/jhoicas/Kenshin-api/internal/application/dto"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
)

// ToBillingDTO convierte el agregado al formato JSON de la API.
func ToBillingDTO(b entity.BillingData) dto.BillingDataDTO {
	return dto.BillingDataDTO{
		Period:              b.Period,
		PeriodFrom:          b.PeriodFrom,
		PeriodTo:            b.PeriodTo,
		Commercial:          b.Commercial,
		SerialID:            b.SerialID,
		Multiplier:          b.Multiplier,
		PresReading:         b.PresReading,
		PrevReading:         b.PrevReading,
		MaxDemand:           b.MaxDemand,
		TotalUse:            b.TotalUse,
		GenTransCharges:     b.GenTransCharges,
		DistributionCharges: b.DistributionCharges,
		SustainableCapex:    b.SustainableCapex,
		OtherCharges:        b.OtherCharges,
		UniversalCharges:    b.UniversalCharges,
		ValueAddedTax:       b.ValueAddedTax,
		TotalAmount:         b.TotalAmount,
		Discount:            b.Discount,
		Interest:            b.Interest,
		DueDate:             b.DueDate,
		DiscoDate:           b.DiscoDate,
		Reader:              b.Reader,
		ReadDatetime:        b.ReadDatetime,
		Version:             b.Version,
	}
}

func toSavedResponse(s *entity.SavedBilling, now time.Time) dto.SavedBillingResponse {
	return dto.SavedBillingResponse{
		ID:            s.ID,
		Timestamp:     s.Timestamp,
		Valid:         s.IsValid(now),
		DaysRemaining: s.DaysRemaining(now),
		Billing:       ToBillingDTO(s.Billing),
		RateType:      s.Rates.RateType,
		Rates:         s.Rates.Slice(),
	}
}

func toSummaryResponse(s *entity.BillingSummary) *dto.SummaryResponse {
	return &dto.SummaryResponse{
		SerialID:      s.SerialID,
		RecordCount:   s.RecordCount,
		FirstRecordAt: s.FirstRecordAt,
		LastRecordAt:  s.LastRecordAt,
		DateRange:     s.DateRange(),
		PeriodRange:   s.PeriodRange(),
		Location:      s.Location,
	}
}

func warningStrings[W ~string](ws []W) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = string(w)
	}
	return out
}
