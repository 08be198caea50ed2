package silver

import (
	"sort"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// stateVotes tallies candidate states seen alongside one provider id, keeping
// arrival order so ties resolve to the first state observed.
type stateVotes struct {
	counts map[string]int
	order  []string
}

// ProviderAccumulator collects provider-like identifiers from every claim and
// prescription source across all partitions. Deduplication is global: the
// same NPI appearing on an inpatient claim in one partition and a carrier
// line in another collapses into one row.
type ProviderAccumulator struct {
	order []string
	byID  map[string]*stateVotes
}

func NewProviderAccumulator() *ProviderAccumulator {
	return &ProviderAccumulator{byID: make(map[string]*stateVotes)}
}

// observe records one provider occurrence with an optional candidate state.
func (a *ProviderAccumulator) observe(id *string, state *string) {
	if id == nil || *id == "" {
		return
	}
	v, ok := a.byID[*id]
	if !ok {
		v = &stateVotes{counts: make(map[string]int)}
		a.byID[*id] = v
		a.order = append(a.order, *id)
	}
	if state == nil || *state == "" {
		return
	}
	if _, seen := v.counts[*state]; !seen {
		v.order = append(v.order, *state)
	}
	v.counts[*state]++
}

// ObserveInstitutional records the institution number and the three physician
// NPI columns of one inpatient or outpatient claim.
func (a *ProviderAccumulator) ObserveInstitutional(rows []model.InstitutionalClaimRaw) {
	for i := range rows {
		r := &rows[i]
		a.observe(r.ProviderNum, r.ProviderState)
		a.observe(r.AttendingNPI, r.ProviderState)
		a.observe(r.OperatingNPI, r.ProviderState)
		a.observe(r.OtherNPI, r.ProviderState)
	}
}

// ObserveCarrier records the 13 per-line performing-physician NPI columns.
func (a *ProviderAccumulator) ObserveCarrier(rows []model.CarrierClaimRaw) {
	for i := range rows {
		r := &rows[i]
		for _, npi := range r.PerformingNPIs() {
			a.observe(npi, r.ProviderState)
		}
	}
}

// ObservePrescriptions records prescriber ids. Prescription events carry no
// state column, so these occurrences never vote.
func (a *ProviderAccumulator) ObservePrescriptions(rows []model.PrescriptionRaw) {
	for i := range rows {
		a.observe(rows[i].ProviderID, nil)
	}
}

// Finalize resolves each provider's state by majority vote, first-seen state
// winning ties, and returns the dimension sorted by provider id. Providers
// with no state votes get the "Unknown" sentinel, as does provider_type,
// which no source column can populate.
func (a *ProviderAccumulator) Finalize() []model.ProviderDim {
	out := make([]model.ProviderDim, 0, len(a.order))
	for _, id := range a.order {
		v := a.byID[id]
		state := model.UnknownProvider
		best := 0
		for _, s := range v.order {
			if v.counts[s] > best {
				state = s
				best = v.counts[s]
			}
		}
		out = append(out, model.ProviderDim{
			ProviderID:   id,
			State:        state,
			ProviderType: model.UnknownProvider,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out
}
