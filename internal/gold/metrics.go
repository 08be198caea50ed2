// Package gold computes the serving-layer aggregates: per-member-per-year
// metrics, ranked top diagnoses, and the combined patient view. All
// aggregation is grouped by (bene_id, year) and emitted in a fixed sort order.
package gold

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

type memberYear struct {
	beneID string
	year   int32
}

// BuildMemberYearMetrics left-joins the beneficiary dimension with
// distinct-count aggregates over claims and prescriptions. Every dimension
// row appears in the output; member-years with no claim or prescription
// activity keep zero counts.
func BuildMemberYearMetrics(
	dims []model.BeneficiaryDim,
	claims []model.ClaimFact,
	prescriptions []model.PrescriptionFact,
) []model.MemberYearMetric {
	type counters struct {
		claimIDs  map[string]map[string]struct{} // claim_type → distinct claim ids
		providers map[string]struct{}
		rxIDs     map[string]struct{}
	}
	agg := make(map[memberYear]*counters)
	get := func(k memberYear) *counters {
		c, ok := agg[k]
		if !ok {
			c = &counters{
				claimIDs:  make(map[string]map[string]struct{}),
				providers: make(map[string]struct{}),
				rxIDs:     make(map[string]struct{}),
			}
			agg[k] = c
		}
		return c
	}

	for i := range claims {
		f := &claims[i]
		c := get(memberYear{f.BeneID, f.Year})
		ids, ok := c.claimIDs[f.ClaimType]
		if !ok {
			ids = make(map[string]struct{})
			c.claimIDs[f.ClaimType] = ids
		}
		ids[f.ClaimID] = struct{}{}
		if f.ProviderID != "" {
			c.providers[f.ProviderID] = struct{}{}
		}
	}
	for i := range prescriptions {
		f := &prescriptions[i]
		c := get(memberYear{f.BeneID, f.Year})
		c.rxIDs[f.PrescriptionID] = struct{}{}
		if f.ProviderID != "" {
			c.providers[f.ProviderID] = struct{}{}
		}
	}

	out := make([]model.MemberYearMetric, 0, len(dims))
	for i := range dims {
		d := &dims[i]
		m := model.MemberYearMetric{
			BeneID:            d.BeneID,
			Year:              d.Year,
			Sex:               d.Sex,
			Race:              d.Race,
			State:             d.State,
			TotalAllowedCents: d.TotalAllowedCents,
			TotalPaidCents:    d.TotalPaidCents,
		}
		if c, ok := agg[memberYear{d.BeneID, d.Year}]; ok {
			m.InpatientStays = int64(len(c.claimIDs[model.ClaimTypeInpatient]))
			m.OutpatientVisits = int64(len(c.claimIDs[model.ClaimTypeOutpatient]))
			m.CarrierClaims = int64(len(c.claimIDs[model.ClaimTypeCarrier]))
			m.UniqueProviders = int64(len(c.providers))
			m.RxFills = int64(len(c.rxIDs))
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BeneID != out[j].BeneID {
			return out[i].BeneID < out[j].BeneID
		}
		return out[i].Year < out[j].Year
	})
	return out
}
