// Package silver builds the dimensional model out of bronze rows: the
// beneficiary and provider dimensions and the claim, diagnosis, and
// prescription facts. Builders are pure functions of their input rows and
// emit rows in a fixed sort order so that recomputing an unchanged partition
// reproduces its output exactly.
package silver

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

func centsOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// BuildBeneficiaryDim converts beneficiary rows into dimension rows, filling
// missing payment components with zero and deriving the five totals. The
// natural key (bene_id, year) is already unique in the source, so this is a
// rename-and-derive pass, not a dedup.
func BuildBeneficiaryDim(rows []model.BeneficiaryRaw) []model.BeneficiaryDim {
	out := make([]model.BeneficiaryDim, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		d := model.BeneficiaryDim{
			BeneID:    r.BeneID,
			Year:      r.Year,
			BirthDate: r.BirthDate,
			DeathDate: r.DeathDate,
			Sex:       r.Sex,
			Race:      r.Race,
			State:     r.State,

			IPMedicareCents:     centsOrZero(r.IPMedicareCents),
			IPBeneficiaryCents:  centsOrZero(r.IPBeneficiaryCents),
			IPThirdPartyCents:   centsOrZero(r.IPThirdPartyCents),
			OPMedicareCents:     centsOrZero(r.OPMedicareCents),
			OPBeneficiaryCents:  centsOrZero(r.OPBeneficiaryCents),
			OPThirdPartyCents:   centsOrZero(r.OPThirdPartyCents),
			CarMedicareCents:    centsOrZero(r.CarMedicareCents),
			CarBeneficiaryCents: centsOrZero(r.CarBeneficiaryCents),
			CarThirdPartyCents:  centsOrZero(r.CarThirdPartyCents),

			BeneIDPrefix: r.BeneIDPrefix,
		}
		d.TotalMedicareCents = d.IPMedicareCents + d.OPMedicareCents + d.CarMedicareCents
		d.TotalBeneficiaryCents = d.IPBeneficiaryCents + d.OPBeneficiaryCents + d.CarBeneficiaryCents
		d.TotalThirdPartyCents = d.IPThirdPartyCents + d.OPThirdPartyCents + d.CarThirdPartyCents
		d.TotalAllowedCents = d.TotalMedicareCents + d.TotalBeneficiaryCents + d.TotalThirdPartyCents
		d.TotalPaidCents = d.TotalMedicareCents + d.TotalBeneficiaryCents
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BeneID != out[j].BeneID {
			return out[i].BeneID < out[j].BeneID
		}
		return out[i].Year < out[j].Year
	})
	return out
}
