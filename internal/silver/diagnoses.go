package silver

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// BuildInstitutionalDiagnoses unpivots the 10 wide diagnosis columns of
// inpatient or outpatient rows into long-format diagnosis facts.
func BuildInstitutionalDiagnoses(rows []model.InstitutionalClaimRaw, claimType string) []model.ClaimDiagnosisFact {
	var out []model.ClaimDiagnosisFact
	for i := range rows {
		r := &rows[i]
		total := centsOrZero(r.MedicareCents) + centsOrZero(r.ThirdPartyCents)
		out = unpivotDiagnoses(out, r.DiagnosisCodes(), model.ClaimDiagnosisFact{
			BeneID:       r.BeneID,
			ClaimID:      r.ClaimID,
			PaymentCents: total,
			ClaimType:    claimType,
			Year:         r.Year,
			BeneIDPrefix: r.BeneIDPrefix,
		})
	}
	sortDiagnoses(out)
	return out
}

// BuildCarrierDiagnoses unpivots the 8 wide diagnosis columns of carrier
// rows. Payment carries the claim total after the per-line fallback, the same
// value the claim fact reports.
func BuildCarrierDiagnoses(rows []model.CarrierClaimRaw) []model.ClaimDiagnosisFact {
	var out []model.ClaimDiagnosisFact
	for i := range rows {
		r := &rows[i]
		total := resolveCarrierComponent(r.MedicareCents, r.LinePaymentCents()) +
			resolveCarrierComponent(r.ThirdPartyCents, r.LineThirdPartyPaymentCents())
		out = unpivotDiagnoses(out, r.DiagnosisCodes(), model.ClaimDiagnosisFact{
			BeneID:       r.BeneID,
			ClaimID:      r.ClaimID,
			PaymentCents: total,
			ClaimType:    model.ClaimTypeCarrier,
			Year:         r.Year,
			BeneIDPrefix: r.BeneIDPrefix,
		})
	}
	sortDiagnoses(out)
	return out
}

// unpivotDiagnoses emits one row per non-null code. The 1-based column index
// becomes diagnosis_position; null intermediate columns leave gaps rather
// than compacting the positions. Every row carries the claim's full payment.
func unpivotDiagnoses(out []model.ClaimDiagnosisFact, codes []*string, base model.ClaimDiagnosisFact) []model.ClaimDiagnosisFact {
	for pos, code := range codes {
		if code == nil || *code == "" {
			continue
		}
		row := base
		row.DiagnosisCode = *code
		row.DiagnosisDescription = model.DiagnosisDescription(*code)
		row.DiagnosisPosition = int32(pos + 1)
		out = append(out, row)
	}
	return out
}

func sortDiagnoses(rows []model.ClaimDiagnosisFact) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ClaimID != rows[j].ClaimID {
			return rows[i].ClaimID < rows[j].ClaimID
		}
		return rows[i].DiagnosisPosition < rows[j].DiagnosisPosition
	})
}
