package gold

import (
	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// BuildPatientView assembles the two row-aligned component tables of the
// patient view from already-computed metrics and rankings. Both inputs are
// sorted by (bene_id, year); the view keeps that order so the serving side
// can range-scan either table by the same key without a join.
func BuildPatientView(
	metrics []model.MemberYearMetric,
	rankings []model.DiagnosisRanking,
) ([]model.PatientMetric, []model.PatientDiagnosis) {
	pm := make([]model.PatientMetric, 0, len(metrics))
	for i := range metrics {
		m := &metrics[i]
		pm = append(pm, model.PatientMetric{
			BeneID:            m.BeneID,
			Year:              m.Year,
			TotalAllowedCents: m.TotalAllowedCents,
			TotalPaidCents:    m.TotalPaidCents,
			InpatientStays:    m.InpatientStays,
			OutpatientVisits:  m.OutpatientVisits,
			RxFills:           m.RxFills,
			UniqueProviders:   m.UniqueProviders,
		})
	}

	pd := make([]model.PatientDiagnosis, 0, len(rankings))
	for i := range rankings {
		r := &rankings[i]
		pd = append(pd, model.PatientDiagnosis{
			BeneID:                r.BeneID,
			Year:                  r.Year,
			DiagnosisCode:         r.DiagnosisCode,
			DiagnosisDescription:  r.DiagnosisDescription,
			DiagnosisPaymentCents: r.DiagnosisPaymentCents,
			DiagnosisRank:         r.DiagnosisRank,
		})
	}
	return pm, pd
}
