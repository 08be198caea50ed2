package model

// MemberYearMetric is one precomputed per-member-per-year aggregate row,
// keyed by (bene_id, year).
type MemberYearMetric struct {
	BeneID string  `parquet:"bene_id"`
	Year   int32   `parquet:"year"`
	Sex    *string `parquet:"gender,optional"`
	Race   *string `parquet:"race,optional"`
	State  *string `parquet:"state,optional"`

	TotalAllowedCents int64 `parquet:"total_allowed_cents"`
	TotalPaidCents    int64 `parquet:"total_paid_cents"`

	InpatientStays   int64 `parquet:"inpatient_stays"`
	OutpatientVisits int64 `parquet:"outpatient_visits"`
	CarrierClaims    int64 `parquet:"carrier_claims"`
	UniqueProviders  int64 `parquet:"unique_providers"`
	RxFills          int64 `parquet:"rx_fills"`
}

// DiagnosisRanking is one ranked diagnosis row for a member-year. Rank is
// dense by summed payment descending; equal payments share a rank and are
// ordered by diagnosis code ascending.
type DiagnosisRanking struct {
	BeneID                string `parquet:"bene_id"`
	Year                  int32  `parquet:"year"`
	DiagnosisCode         string `parquet:"diagnosis_code"`
	DiagnosisDescription  string `parquet:"diagnosis_description"`
	DiagnosisPaymentCents int64  `parquet:"diagnosis_payment_cents"`
	DiagnosisRank         int32  `parquet:"diagnosis_rank"`
}

// PatientMetric is the slim metrics component of patient_api_view, row-aligned
// with PatientDiagnosis by (bene_id, year).
type PatientMetric struct {
	BeneID string `parquet:"bene_id"`
	Year   int32  `parquet:"year"`

	TotalAllowedCents int64 `parquet:"total_allowed_cents"`
	TotalPaidCents    int64 `parquet:"total_paid_cents"`
	InpatientStays    int64 `parquet:"inpatient_stays"`
	OutpatientVisits  int64 `parquet:"outpatient_visits"`
	RxFills           int64 `parquet:"rx_fills"`
	UniqueProviders   int64 `parquet:"unique_providers"`
}

// PatientDiagnosis is the top-diagnoses component of patient_api_view.
type PatientDiagnosis struct {
	BeneID                string `parquet:"bene_id"`
	Year                  int32  `parquet:"year"`
	DiagnosisCode         string `parquet:"diagnosis_code"`
	DiagnosisDescription  string `parquet:"diagnosis_description"`
	DiagnosisPaymentCents int64  `parquet:"diagnosis_payment_cents"`
	DiagnosisRank         int32  `parquet:"diagnosis_rank"`
}
