package silver

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// BuildInstitutionalClaims unifies inpatient or outpatient rows into claim
// facts; claimType tags which source table the rows came from.
func BuildInstitutionalClaims(rows []model.InstitutionalClaimRaw, claimType string) []model.ClaimFact {
	out := make([]model.ClaimFact, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		f := model.ClaimFact{
			ClaimID:      r.ClaimID,
			BeneID:       r.BeneID,
			ClaimType:    claimType,
			FromDate:     r.FromDate,
			ThruDate:     r.ThruDate,
			ProviderID:   firstProvider(r.ProviderNum, r.AttendingNPI),
			Year:         r.Year,
			BeneIDPrefix: r.BeneIDPrefix,
		}
		f.MedicareCents = centsOrZero(r.MedicareCents)
		f.ThirdPartyCents = centsOrZero(r.ThirdPartyCents)
		f.TotalCents = f.MedicareCents + f.ThirdPartyCents + f.PatientCents
		out = append(out, f)
	}
	sortClaims(out)
	return out
}

// BuildCarrierClaims unifies carrier rows into claim facts. Carrier extracts
// often omit the claim-level payment columns; when one is null the component
// falls back to the sum of its 13 per-line columns, nulls as zero. The two
// components fall back independently.
func BuildCarrierClaims(rows []model.CarrierClaimRaw) []model.ClaimFact {
	out := make([]model.ClaimFact, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		f := model.ClaimFact{
			ClaimID:      r.ClaimID,
			BeneID:       r.BeneID,
			ClaimType:    model.ClaimTypeCarrier,
			FromDate:     r.FromDate,
			ThruDate:     r.ThruDate,
			ProviderID:   firstProvider(r.PerformingNPIs()...),
			Year:         r.Year,
			BeneIDPrefix: r.BeneIDPrefix,
		}
		f.MedicareCents = resolveCarrierComponent(r.MedicareCents, r.LinePaymentCents())
		f.ThirdPartyCents = resolveCarrierComponent(r.ThirdPartyCents, r.LineThirdPartyPaymentCents())
		f.TotalCents = f.MedicareCents + f.ThirdPartyCents + f.PatientCents
		out = append(out, f)
	}
	sortClaims(out)
	return out
}

func resolveCarrierComponent(claimLevel *int64, lines []*int64) int64 {
	if claimLevel != nil {
		return *claimLevel
	}
	var sum int64
	for _, v := range lines {
		sum += centsOrZero(v)
	}
	return sum
}

func firstProvider(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return model.UnknownProvider
}

func sortClaims(facts []model.ClaimFact) {
	sort.Slice(facts, func(i, j int) bool { return facts[i].ClaimID < facts[j].ClaimID })
}
