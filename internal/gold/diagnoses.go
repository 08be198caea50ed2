package gold

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// TopDiagnoses is the number of ranked diagnoses kept per member-year.
const TopDiagnoses = 5

// RankDiagnoses groups diagnosis facts by (bene_id, year, code), sums their
// payments, and dense-ranks each member-year's codes by summed payment
// descending. Tied payments share a rank and order by code ascending. Only
// rows ranked in the top 5 are returned; ranks are computed over the full
// group first so a tie straddling the cutoff truncates correctly.
func RankDiagnoses(facts []model.ClaimDiagnosisFact) []model.DiagnosisRanking {
	type codeKey struct {
		beneID string
		year   int32
		code   string
	}
	sums := make(map[codeKey]int64)
	descs := make(map[codeKey]string)
	for i := range facts {
		f := &facts[i]
		k := codeKey{f.BeneID, f.Year, f.DiagnosisCode}
		sums[k] += f.PaymentCents
		descs[k] = f.DiagnosisDescription
	}

	groups := make(map[memberYear][]model.DiagnosisRanking)
	for k, total := range sums {
		my := memberYear{k.beneID, k.year}
		groups[my] = append(groups[my], model.DiagnosisRanking{
			BeneID:                k.beneID,
			Year:                  k.year,
			DiagnosisCode:         k.code,
			DiagnosisDescription:  descs[k],
			DiagnosisPaymentCents: total,
		})
	}

	var out []model.DiagnosisRanking
	for _, rows := range groups {
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].DiagnosisPaymentCents != rows[j].DiagnosisPaymentCents {
				return rows[i].DiagnosisPaymentCents > rows[j].DiagnosisPaymentCents
			}
			return rows[i].DiagnosisCode < rows[j].DiagnosisCode
		})
		rank := int32(0)
		var prev int64
		for i := range rows {
			if i == 0 || rows[i].DiagnosisPaymentCents != prev {
				rank++
				prev = rows[i].DiagnosisPaymentCents
			}
			rows[i].DiagnosisRank = rank
			if rank > TopDiagnoses {
				break
			}
			out = append(out, rows[i])
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].BeneID != out[j].BeneID {
			return out[i].BeneID < out[j].BeneID
		}
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].DiagnosisRank != out[j].DiagnosisRank {
			return out[i].DiagnosisRank < out[j].DiagnosisRank
		}
		return out[i].DiagnosisCode < out[j].DiagnosisCode
	})
	return out
}
