package silver

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// BuildPrescriptionFacts converts prescription drug events into facts.
// The medicare share is derived, never read: total cost minus the patient
// payment, floored at zero so a patient overpayment cannot go negative.
func BuildPrescriptionFacts(rows []model.PrescriptionRaw) []model.PrescriptionFact {
	out := make([]model.PrescriptionFact, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		f := model.PrescriptionFact{
			PrescriptionID: r.EventID,
			BeneID:         r.BeneID,
			ServiceDate:    r.ServiceDate,
			ProductID:      strOr(r.ProductID, model.Unknown),
			ProviderID:     strOr(r.ProviderID, model.UnknownProvider),
			DaysSupply:     int32OrZero(r.DaysSupply),
			PatientCents:   centsOrZero(r.PatientPayCents),
			TotalCostCents: centsOrZero(r.TotalCostCents),
			Year:           r.Year,
			BeneIDPrefix:   r.BeneIDPrefix,
		}
		if r.QuantityDispensed != nil {
			f.QuantityDispensed = *r.QuantityDispensed
		}
		f.MedicareCents = f.TotalCostCents - f.PatientCents
		if f.MedicareCents < 0 {
			f.MedicareCents = 0
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrescriptionID < out[j].PrescriptionID })
	return out
}

func strOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func int32OrZero(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}
