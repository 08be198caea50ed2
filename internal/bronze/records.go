package bronze

import (
	"fmt"
	"strings"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// requiredColumns is the minimum column set a file must carry to be accepted
// as a given record type. A file matching none of these sets is a fatal
// configuration error, not a row-level reject.
var requiredColumns = map[model.RecordType][]string{
	model.RecordBeneficiary:  {"DESYNPUF_ID", "MEDREIMB_IP", "BENRES_IP"},
	model.RecordInpatient:    {"DESYNPUF_ID", "CLM_ID", "CLM_FROM_DT", "ICD9_DGNS_CD_1"},
	model.RecordOutpatient:   {"DESYNPUF_ID", "CLM_ID", "CLM_FROM_DT", "ICD9_DGNS_CD_1"},
	model.RecordCarrier:      {"DESYNPUF_ID", "CLM_ID", "ICD9_DGNS_CD_1"},
	model.RecordPrescription: {"DESYNPUF_ID", "PDE_ID", "SRVC_DT", "TOT_RX_CST_AMT"},
}

// matchSchema verifies the file's column set against the declared record
// type's required columns.
func matchSchema(f *csvFile, rt model.RecordType) error {
	required, ok := requiredColumns[rt]
	if !ok {
		return fmt.Errorf("unknown record type %q", rt)
	}
	var missing []string
	for _, col := range required {
		if !f.hasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("file does not match record type %s: missing columns %s",
			rt, strings.Join(missing, ", "))
	}
	return nil
}

// DetectRecordType infers the record type from a source file name, matching
// the acquisition collaborator's naming convention.
func DetectRecordType(name string) (model.RecordType, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "beneficiary"):
		return model.RecordBeneficiary, nil
	case strings.Contains(lower, "inpatient"):
		return model.RecordInpatient, nil
	case strings.Contains(lower, "outpatient"):
		return model.RecordOutpatient, nil
	case strings.Contains(lower, "carrier"):
		return model.RecordCarrier, nil
	case strings.Contains(lower, "prescription"):
		return model.RecordPrescription, nil
	}
	return "", fmt.Errorf("cannot infer record type from file name %q", name)
}

// BeneIDPrefix returns the two-character partition prefix for a beneficiary
// id, "00" when the id is too short.
func BeneIDPrefix(beneID string) string {
	if len(beneID) >= 2 {
		return beneID[:2]
	}
	return "00"
}

// One parse function per record-type tag. Each returns ok=false when the
// row's primary key is unusable, in which case the row is rejected.

func parseBeneficiary(row []string, idx map[string]int, coerced *int64) (model.BeneficiaryRaw, bool) {
	beneID := valAt(row, idx, "DESYNPUF_ID")
	if beneID == "" {
		return model.BeneficiaryRaw{}, false
	}

	r := model.BeneficiaryRaw{
		BeneID:    beneID,
		BirthDate: optDate(row, idx, "BENE_BIRTH_DT", coerced),
		DeathDate: optDate(row, idx, "BENE_DEATH_DT", coerced),

		IPMedicareCents:     optCents(row, idx, "MEDREIMB_IP", coerced),
		IPBeneficiaryCents:  optCents(row, idx, "BENRES_IP", coerced),
		IPThirdPartyCents:   optCents(row, idx, "PPPYMT_IP", coerced),
		OPMedicareCents:     optCents(row, idx, "MEDREIMB_OP", coerced),
		OPBeneficiaryCents:  optCents(row, idx, "BENRES_OP", coerced),
		OPThirdPartyCents:   optCents(row, idx, "PPPYMT_OP", coerced),
		CarMedicareCents:    optCents(row, idx, "MEDREIMB_CAR", coerced),
		CarBeneficiaryCents: optCents(row, idx, "BENRES_CAR", coerced),
		CarThirdPartyCents:  optCents(row, idx, "PPPYMT_CAR", coerced),

		BeneIDPrefix: BeneIDPrefix(beneID),
	}

	// Demographic codes decode to labels; unmapped codes coerce to null.
	if s := valAt(row, idx, "BENE_SEX_IDENT_CD"); s != "" {
		if r.Sex = model.DecodeSex(s); r.Sex == nil {
			*coerced++
		}
	}
	if s := valAt(row, idx, "BENE_RACE_CD"); s != "" {
		if r.Race = model.DecodeRace(s); r.Race == nil {
			*coerced++
		}
	}
	if s := valAt(row, idx, "SP_STATE_CODE"); s != "" {
		if r.State = model.DecodeState(s); r.State == nil {
			*coerced++
		}
	}

	return r, true
}

func parseInstitutional(row []string, idx map[string]int, coerced *int64) (model.InstitutionalClaimRaw, bool) {
	beneID := valAt(row, idx, "DESYNPUF_ID")
	claimID := valAt(row, idx, "CLM_ID")
	if beneID == "" || claimID == "" {
		return model.InstitutionalClaimRaw{}, false
	}

	r := model.InstitutionalClaimRaw{
		BeneID:   beneID,
		ClaimID:  claimID,
		FromDate: optDate(row, idx, "CLM_FROM_DT", coerced),
		ThruDate: optDate(row, idx, "CLM_THRU_DT", coerced),

		ProviderNum:   optStr(row, idx, "PRVDR_NUM"),
		AttendingNPI:  optStr(row, idx, "AT_PHYSN_NPI"),
		OperatingNPI:  optStr(row, idx, "OP_PHYSN_NPI"),
		OtherNPI:      optStr(row, idx, "OT_PHYSN_NPI"),
		ProviderState: optStr(row, idx, "PRVDR_STATE_CD"),

		MedicareCents:   optCents(row, idx, "CLM_PMT_AMT", coerced),
		ThirdPartyCents: optCents(row, idx, "NCH_PRMRY_PYR_CLM_PD_AMT", coerced),

		BeneIDPrefix: BeneIDPrefix(beneID),
	}

	dst := []**string{&r.Dx1, &r.Dx2, &r.Dx3, &r.Dx4, &r.Dx5, &r.Dx6, &r.Dx7, &r.Dx8, &r.Dx9, &r.Dx10}
	for i, d := range dst {
		*d = optStr(row, idx, fmt.Sprintf("ICD9_DGNS_CD_%d", i+1))
	}

	return r, true
}

func parseCarrier(row []string, idx map[string]int, coerced *int64) (model.CarrierClaimRaw, bool) {
	beneID := valAt(row, idx, "DESYNPUF_ID")
	claimID := valAt(row, idx, "CLM_ID")
	if beneID == "" || claimID == "" {
		return model.CarrierClaimRaw{}, false
	}

	r := model.CarrierClaimRaw{
		BeneID:   beneID,
		ClaimID:  claimID,
		FromDate: optDate(row, idx, "CLM_FROM_DT", coerced),
		ThruDate: optDate(row, idx, "CLM_THRU_DT", coerced),

		ProviderState: optStr(row, idx, "PRVDR_STATE_CD"),

		// Claim-level payment columns are optional in carrier extracts; the
		// fact builder falls back to the line columns when absent.
		MedicareCents:   optCents(row, idx, "CLM_PMT_AMT", coerced),
		ThirdPartyCents: optCents(row, idx, "CLM_OP_PRVDR_PMT_AMT", coerced),

		BeneIDPrefix: BeneIDPrefix(beneID),
	}

	dx := []**string{&r.Dx1, &r.Dx2, &r.Dx3, &r.Dx4, &r.Dx5, &r.Dx6, &r.Dx7, &r.Dx8}
	for i, d := range dx {
		*d = optStr(row, idx, fmt.Sprintf("ICD9_DGNS_CD_%d", i+1))
	}

	npi := []**string{
		&r.PerformingNPI1, &r.PerformingNPI2, &r.PerformingNPI3, &r.PerformingNPI4,
		&r.PerformingNPI5, &r.PerformingNPI6, &r.PerformingNPI7, &r.PerformingNPI8,
		&r.PerformingNPI9, &r.PerformingNPI10, &r.PerformingNPI11, &r.PerformingNPI12,
		&r.PerformingNPI13,
	}
	for i, d := range npi {
		*d = optStr(row, idx, fmt.Sprintf("PRF_PHYSN_NPI_%d", i+1))
	}

	pmt := []**int64{
		&r.LinePmtCents1, &r.LinePmtCents2, &r.LinePmtCents3, &r.LinePmtCents4,
		&r.LinePmtCents5, &r.LinePmtCents6, &r.LinePmtCents7, &r.LinePmtCents8,
		&r.LinePmtCents9, &r.LinePmtCents10, &r.LinePmtCents11, &r.LinePmtCents12,
		&r.LinePmtCents13,
	}
	for i, d := range pmt {
		*d = optCents(row, idx, fmt.Sprintf("LINE_NCH_PMT_AMT_%d", i+1), coerced)
	}

	tp := []**int64{
		&r.LineThirdPartyCents1, &r.LineThirdPartyCents2, &r.LineThirdPartyCents3,
		&r.LineThirdPartyCents4, &r.LineThirdPartyCents5, &r.LineThirdPartyCents6,
		&r.LineThirdPartyCents7, &r.LineThirdPartyCents8, &r.LineThirdPartyCents9,
		&r.LineThirdPartyCents10, &r.LineThirdPartyCents11, &r.LineThirdPartyCents12,
		&r.LineThirdPartyCents13,
	}
	for i, d := range tp {
		*d = optCents(row, idx, fmt.Sprintf("LINE_BENE_PRMRY_PYR_PD_AMT_%d", i+1), coerced)
	}

	return r, true
}

func parsePrescription(row []string, idx map[string]int, coerced *int64) (model.PrescriptionRaw, bool) {
	beneID := valAt(row, idx, "DESYNPUF_ID")
	eventID := valAt(row, idx, "PDE_ID")
	if eventID == "" {
		eventID = valAt(row, idx, "CLM_ID")
	}
	if beneID == "" || eventID == "" {
		return model.PrescriptionRaw{}, false
	}

	r := model.PrescriptionRaw{
		BeneID:      beneID,
		EventID:     eventID,
		ServiceDate: optDate(row, idx, "SRVC_DT", coerced),
		ProductID:   optStr(row, idx, "PROD_SRVC_ID"),

		QuantityDispensed: optFloat(row, idx, "QTY_DSPNSD_NUM", coerced),
		DaysSupply:        optInt32(row, idx, "DAYS_SUPLY_NUM", coerced),
		PatientPayCents:   optCents(row, idx, "PTNT_PAY_AMT", coerced),
		TotalCostCents:    optCents(row, idx, "TOT_RX_CST_AMT", coerced),

		BeneIDPrefix: BeneIDPrefix(beneID),
	}

	// Prescriber id shows up under a few different names across extracts.
	for _, col := range []string{"PRVDR_ID", "PRSCRBR_ID", "PHRMCY_ID"} {
		if v := optStr(row, idx, col); v != nil {
			r.ProviderID = v
			break
		}
	}

	return r, true
}
