package model

// Claim type discriminator values for ClaimFact and ClaimDiagnosisFact.
const (
	ClaimTypeInpatient  = "inpatient"
	ClaimTypeOutpatient = "outpatient"
	ClaimTypeCarrier    = "carrier"
)

// Unknown is the generic sentinel for identifying fields with no usable
// source value.
const Unknown = "Unknown"

// UnknownProvider is the sentinel used when a provider identifier, state, or
// type cannot be derived from any source column.
const UnknownProvider = Unknown

// BeneficiaryDim is one beneficiary dimension row, keyed by (bene_id, year).
// The nine raw payment components are carried alongside the five derived
// totals; missing components are stored as zero.
type BeneficiaryDim struct {
	BeneID    string  `parquet:"bene_id"`
	Year      int32   `parquet:"year"`
	BirthDate *string `parquet:"birth_date,optional"`
	DeathDate *string `parquet:"death_date,optional"`
	Sex       *string `parquet:"gender,optional"`
	Race      *string `parquet:"race,optional"`
	State     *string `parquet:"state,optional"`

	IPMedicareCents     int64 `parquet:"ip_medicare_cents"`
	IPBeneficiaryCents  int64 `parquet:"ip_beneficiary_cents"`
	IPThirdPartyCents   int64 `parquet:"ip_third_party_cents"`
	OPMedicareCents     int64 `parquet:"op_medicare_cents"`
	OPBeneficiaryCents  int64 `parquet:"op_beneficiary_cents"`
	OPThirdPartyCents   int64 `parquet:"op_third_party_cents"`
	CarMedicareCents    int64 `parquet:"car_medicare_cents"`
	CarBeneficiaryCents int64 `parquet:"car_beneficiary_cents"`
	CarThirdPartyCents  int64 `parquet:"car_third_party_cents"`

	TotalMedicareCents    int64 `parquet:"total_medicare_cents"`
	TotalBeneficiaryCents int64 `parquet:"total_beneficiary_cents"`
	TotalThirdPartyCents  int64 `parquet:"total_third_party_cents"`
	TotalAllowedCents     int64 `parquet:"total_allowed_cents"`
	TotalPaidCents        int64 `parquet:"total_paid_cents"`

	BeneIDPrefix string `parquet:"bene_id_prefix"`
}

// ProviderDim is one deduplicated provider row, keyed by provider_id.
type ProviderDim struct {
	ProviderID   string `parquet:"provider_id"`
	State        string `parquet:"state"`
	ProviderType string `parquet:"provider_type"`
}

// ClaimFact is one unified claim row, keyed by claim_id.
// TotalCents is always MedicareCents + ThirdPartyCents + PatientCents.
type ClaimFact struct {
	ClaimID   string  `parquet:"claim_id"`
	BeneID    string  `parquet:"bene_id"`
	ClaimType string  `parquet:"claim_type"`
	FromDate  *string `parquet:"claim_from_date,optional"`
	ThruDate  *string `parquet:"claim_thru_date,optional"`

	ProviderID string `parquet:"provider_id"`

	MedicareCents   int64 `parquet:"medicare_cents"`
	ThirdPartyCents int64 `parquet:"third_party_cents"`
	PatientCents    int64 `parquet:"patient_cents"`
	TotalCents      int64 `parquet:"total_cents"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}

// ClaimDiagnosisFact is one (claim, diagnosis position) row. PaymentCents is
// the owning claim's total payment replicated to every diagnosis row of that
// claim, not divided across them.
type ClaimDiagnosisFact struct {
	BeneID               string `parquet:"bene_id"`
	ClaimID              string `parquet:"claim_id"`
	DiagnosisCode        string `parquet:"diagnosis_code"`
	DiagnosisDescription string `parquet:"diagnosis_description"`
	DiagnosisPosition    int32  `parquet:"diagnosis_position"`
	PaymentCents         int64  `parquet:"payment_cents"`
	ClaimType            string `parquet:"claim_type"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}

// PrescriptionFact is one prescription drug event row, keyed by
// prescription_id. MedicareCents = max(TotalCostCents-PatientCents, 0).
type PrescriptionFact struct {
	PrescriptionID string  `parquet:"prescription_id"`
	BeneID         string  `parquet:"bene_id"`
	ServiceDate    *string `parquet:"service_date,optional"`
	ProductID      string  `parquet:"product_id"`
	ProviderID     string  `parquet:"provider_id"`

	QuantityDispensed float64 `parquet:"quantity_dispensed"`
	DaysSupply        int32   `parquet:"days_supply"`
	PatientCents      int64   `parquet:"patient_cents"`
	TotalCostCents    int64   `parquet:"total_cost_cents"`
	MedicareCents     int64   `parquet:"medicare_cents"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}
