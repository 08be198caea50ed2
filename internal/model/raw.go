// Package model defines the typed rows carried through the bronze, silver,
// and gold layers of the claims lake. All monetary amounts are int64 cents so
// that derived totals are exact sums of their components.
package model

// RecordType identifies one of the five raw source schemas.
type RecordType string

const (
	RecordBeneficiary  RecordType = "beneficiary"
	RecordInpatient    RecordType = "inpatient"
	RecordOutpatient   RecordType = "outpatient"
	RecordCarrier      RecordType = "carrier"
	RecordPrescription RecordType = "prescription"
)

// RecordTypes lists all raw record types in ingestion order.
var RecordTypes = []RecordType{
	RecordBeneficiary,
	RecordInpatient,
	RecordOutpatient,
	RecordCarrier,
	RecordPrescription,
}

// BeneficiaryRaw is one normalized beneficiary summary row (bronze).
// Payment component columns are nil when the source value was missing or
// malformed; downstream totals treat nil as zero.
type BeneficiaryRaw struct {
	BeneID    string  `parquet:"bene_id"`
	BirthDate *string `parquet:"birth_date,optional"`
	DeathDate *string `parquet:"death_date,optional"`
	Sex       *string `parquet:"sex,optional"`
	Race      *string `parquet:"race,optional"`
	State     *string `parquet:"state,optional"`

	IPMedicareCents     *int64 `parquet:"ip_medicare_cents,optional"`
	IPBeneficiaryCents  *int64 `parquet:"ip_beneficiary_cents,optional"`
	IPThirdPartyCents   *int64 `parquet:"ip_third_party_cents,optional"`
	OPMedicareCents     *int64 `parquet:"op_medicare_cents,optional"`
	OPBeneficiaryCents  *int64 `parquet:"op_beneficiary_cents,optional"`
	OPThirdPartyCents   *int64 `parquet:"op_third_party_cents,optional"`
	CarMedicareCents    *int64 `parquet:"car_medicare_cents,optional"`
	CarBeneficiaryCents *int64 `parquet:"car_beneficiary_cents,optional"`
	CarThirdPartyCents  *int64 `parquet:"car_third_party_cents,optional"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}

// InstitutionalClaimRaw is one normalized inpatient or outpatient claim row
// (bronze). The two source types share a column layout; the table they were
// read from determines the claim type downstream.
type InstitutionalClaimRaw struct {
	BeneID   string  `parquet:"bene_id"`
	ClaimID  string  `parquet:"claim_id"`
	FromDate *string `parquet:"claim_from_date,optional"`
	ThruDate *string `parquet:"claim_thru_date,optional"`

	ProviderNum   *string `parquet:"provider_num,optional"`
	AttendingNPI  *string `parquet:"attending_npi,optional"`
	OperatingNPI  *string `parquet:"operating_npi,optional"`
	OtherNPI      *string `parquet:"other_npi,optional"`
	ProviderState *string `parquet:"provider_state,optional"`

	MedicareCents   *int64 `parquet:"medicare_cents,optional"`
	ThirdPartyCents *int64 `parquet:"third_party_cents,optional"`

	Dx1  *string `parquet:"dx_1,optional"`
	Dx2  *string `parquet:"dx_2,optional"`
	Dx3  *string `parquet:"dx_3,optional"`
	Dx4  *string `parquet:"dx_4,optional"`
	Dx5  *string `parquet:"dx_5,optional"`
	Dx6  *string `parquet:"dx_6,optional"`
	Dx7  *string `parquet:"dx_7,optional"`
	Dx8  *string `parquet:"dx_8,optional"`
	Dx9  *string `parquet:"dx_9,optional"`
	Dx10 *string `parquet:"dx_10,optional"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}

// DiagnosisCodes returns the fixed wide diagnosis columns in column order.
// Index i corresponds to 1-based diagnosis position i+1.
func (r *InstitutionalClaimRaw) DiagnosisCodes() []*string {
	return []*string{r.Dx1, r.Dx2, r.Dx3, r.Dx4, r.Dx5, r.Dx6, r.Dx7, r.Dx8, r.Dx9, r.Dx10}
}

// CarrierClaimRaw is one normalized carrier (Part B) claim row (bronze).
// Claim-level payment columns are frequently absent from carrier extracts;
// the 13 per-line columns are kept so the fact builder can fall back to
// summing them.
type CarrierClaimRaw struct {
	BeneID   string  `parquet:"bene_id"`
	ClaimID  string  `parquet:"claim_id"`
	FromDate *string `parquet:"claim_from_date,optional"`
	ThruDate *string `parquet:"claim_thru_date,optional"`

	ProviderState *string `parquet:"provider_state,optional"`

	MedicareCents   *int64 `parquet:"medicare_cents,optional"`
	ThirdPartyCents *int64 `parquet:"third_party_cents,optional"`

	Dx1 *string `parquet:"dx_1,optional"`
	Dx2 *string `parquet:"dx_2,optional"`
	Dx3 *string `parquet:"dx_3,optional"`
	Dx4 *string `parquet:"dx_4,optional"`
	Dx5 *string `parquet:"dx_5,optional"`
	Dx6 *string `parquet:"dx_6,optional"`
	Dx7 *string `parquet:"dx_7,optional"`
	Dx8 *string `parquet:"dx_8,optional"`

	PerformingNPI1  *string `parquet:"performing_npi_1,optional"`
	PerformingNPI2  *string `parquet:"performing_npi_2,optional"`
	PerformingNPI3  *string `parquet:"performing_npi_3,optional"`
	PerformingNPI4  *string `parquet:"performing_npi_4,optional"`
	PerformingNPI5  *string `parquet:"performing_npi_5,optional"`
	PerformingNPI6  *string `parquet:"performing_npi_6,optional"`
	PerformingNPI7  *string `parquet:"performing_npi_7,optional"`
	PerformingNPI8  *string `parquet:"performing_npi_8,optional"`
	PerformingNPI9  *string `parquet:"performing_npi_9,optional"`
	PerformingNPI10 *string `parquet:"performing_npi_10,optional"`
	PerformingNPI11 *string `parquet:"performing_npi_11,optional"`
	PerformingNPI12 *string `parquet:"performing_npi_12,optional"`
	PerformingNPI13 *string `parquet:"performing_npi_13,optional"`

	LinePmtCents1  *int64 `parquet:"line_pmt_cents_1,optional"`
	LinePmtCents2  *int64 `parquet:"line_pmt_cents_2,optional"`
	LinePmtCents3  *int64 `parquet:"line_pmt_cents_3,optional"`
	LinePmtCents4  *int64 `parquet:"line_pmt_cents_4,optional"`
	LinePmtCents5  *int64 `parquet:"line_pmt_cents_5,optional"`
	LinePmtCents6  *int64 `parquet:"line_pmt_cents_6,optional"`
	LinePmtCents7  *int64 `parquet:"line_pmt_cents_7,optional"`
	LinePmtCents8  *int64 `parquet:"line_pmt_cents_8,optional"`
	LinePmtCents9  *int64 `parquet:"line_pmt_cents_9,optional"`
	LinePmtCents10 *int64 `parquet:"line_pmt_cents_10,optional"`
	LinePmtCents11 *int64 `parquet:"line_pmt_cents_11,optional"`
	LinePmtCents12 *int64 `parquet:"line_pmt_cents_12,optional"`
	LinePmtCents13 *int64 `parquet:"line_pmt_cents_13,optional"`

	LineThirdPartyCents1  *int64 `parquet:"line_third_party_cents_1,optional"`
	LineThirdPartyCents2  *int64 `parquet:"line_third_party_cents_2,optional"`
	LineThirdPartyCents3  *int64 `parquet:"line_third_party_cents_3,optional"`
	LineThirdPartyCents4  *int64 `parquet:"line_third_party_cents_4,optional"`
	LineThirdPartyCents5  *int64 `parquet:"line_third_party_cents_5,optional"`
	LineThirdPartyCents6  *int64 `parquet:"line_third_party_cents_6,optional"`
	LineThirdPartyCents7  *int64 `parquet:"line_third_party_cents_7,optional"`
	LineThirdPartyCents8  *int64 `parquet:"line_third_party_cents_8,optional"`
	LineThirdPartyCents9  *int64 `parquet:"line_third_party_cents_9,optional"`
	LineThirdPartyCents10 *int64 `parquet:"line_third_party_cents_10,optional"`
	LineThirdPartyCents11 *int64 `parquet:"line_third_party_cents_11,optional"`
	LineThirdPartyCents12 *int64 `parquet:"line_third_party_cents_12,optional"`
	LineThirdPartyCents13 *int64 `parquet:"line_third_party_cents_13,optional"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}

// DiagnosisCodes returns the 8 wide diagnosis columns in column order.
func (r *CarrierClaimRaw) DiagnosisCodes() []*string {
	return []*string{r.Dx1, r.Dx2, r.Dx3, r.Dx4, r.Dx5, r.Dx6, r.Dx7, r.Dx8}
}

// PerformingNPIs returns the 13 per-line performing-physician columns in
// column order.
func (r *CarrierClaimRaw) PerformingNPIs() []*string {
	return []*string{
		r.PerformingNPI1, r.PerformingNPI2, r.PerformingNPI3, r.PerformingNPI4,
		r.PerformingNPI5, r.PerformingNPI6, r.PerformingNPI7, r.PerformingNPI8,
		r.PerformingNPI9, r.PerformingNPI10, r.PerformingNPI11, r.PerformingNPI12,
		r.PerformingNPI13,
	}
}

// LinePaymentCents returns the 13 per-line NCH payment columns in column order.
func (r *CarrierClaimRaw) LinePaymentCents() []*int64 {
	return []*int64{
		r.LinePmtCents1, r.LinePmtCents2, r.LinePmtCents3, r.LinePmtCents4,
		r.LinePmtCents5, r.LinePmtCents6, r.LinePmtCents7, r.LinePmtCents8,
		r.LinePmtCents9, r.LinePmtCents10, r.LinePmtCents11, r.LinePmtCents12,
		r.LinePmtCents13,
	}
}

// LineThirdPartyPaymentCents returns the 13 per-line primary-payer columns in
// column order.
func (r *CarrierClaimRaw) LineThirdPartyPaymentCents() []*int64 {
	return []*int64{
		r.LineThirdPartyCents1, r.LineThirdPartyCents2, r.LineThirdPartyCents3,
		r.LineThirdPartyCents4, r.LineThirdPartyCents5, r.LineThirdPartyCents6,
		r.LineThirdPartyCents7, r.LineThirdPartyCents8, r.LineThirdPartyCents9,
		r.LineThirdPartyCents10, r.LineThirdPartyCents11, r.LineThirdPartyCents12,
		r.LineThirdPartyCents13,
	}
}

// PrescriptionRaw is one normalized prescription drug event row (bronze).
type PrescriptionRaw struct {
	BeneID      string  `parquet:"bene_id"`
	EventID     string  `parquet:"event_id"`
	ServiceDate *string `parquet:"service_date,optional"`
	ProductID   *string `parquet:"product_id,optional"`
	ProviderID  *string `parquet:"provider_id,optional"`

	QuantityDispensed *float64 `parquet:"quantity_dispensed,optional"`
	DaysSupply        *int32   `parquet:"days_supply,optional"`
	PatientPayCents   *int64   `parquet:"patient_pay_cents,optional"`
	TotalCostCents    *int64   `parquet:"total_cost_cents,optional"`

	Year         int32  `parquet:"year"`
	BeneIDPrefix string `parquet:"bene_id_prefix"`
}
