package silver

import (
	"testing"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

func TestProviderStateMajorityVote(t *testing.T) {
	acc := NewProviderAccumulator()

	// X1 seen 9 times with state 33 and once with state 12.
	var rows []model.InstitutionalClaimRaw
	for i := 0; i < 9; i++ {
		rows = append(rows, model.InstitutionalClaimRaw{
			BeneID: "AA01", ClaimID: "C", ProviderNum: strp("X1"), ProviderState: strp("33"),
		})
	}
	rows = append(rows, model.InstitutionalClaimRaw{
		BeneID: "AA01", ClaimID: "C", ProviderNum: strp("X1"), ProviderState: strp("12"),
	})
	acc.ObserveInstitutional(rows)

	dims := acc.Finalize()
	if len(dims) != 1 {
		t.Fatalf("providers = %d, want 1", len(dims))
	}
	if dims[0].ProviderID != "X1" {
		t.Errorf("provider_id = %q", dims[0].ProviderID)
	}
	if dims[0].State != "33" {
		t.Errorf("state = %q, want majority 33", dims[0].State)
	}
	if dims[0].ProviderType != model.UnknownProvider {
		t.Errorf("provider_type = %q, want Unknown", dims[0].ProviderType)
	}
}

func TestProviderStateTieFirstSeenWins(t *testing.T) {
	acc := NewProviderAccumulator()
	acc.ObserveInstitutional([]model.InstitutionalClaimRaw{
		{ProviderNum: strp("X2"), ProviderState: strp("44")},
		{ProviderNum: strp("X2"), ProviderState: strp("05")},
	})

	dims := acc.Finalize()
	if dims[0].State != "44" {
		t.Errorf("state = %q, want first-seen 44 on tie", dims[0].State)
	}
}

func TestProviderGlobalDedupAcrossSources(t *testing.T) {
	acc := NewProviderAccumulator()
	acc.ObserveInstitutional([]model.InstitutionalClaimRaw{
		{ProviderNum: strp("HOSP1"), AttendingNPI: strp("801234"), ProviderState: strp("33")},
	})
	acc.ObserveCarrier([]model.CarrierClaimRaw{
		{PerformingNPI1: strp("801234"), PerformingNPI2: strp("809999"), ProviderState: strp("33")},
	})
	acc.ObservePrescriptions([]model.PrescriptionRaw{
		{ProviderID: strp("809999")},
		{ProviderID: strp("PHARM1")},
	})

	dims := acc.Finalize()
	if len(dims) != 4 {
		t.Fatalf("providers = %d, want 4 distinct ids (HOSP1, 801234, 809999, PHARM1)", len(dims))
	}

	byID := make(map[string]model.ProviderDim)
	for _, d := range dims {
		byID[d.ProviderID] = d
	}
	if byID["801234"].State != "33" {
		t.Errorf("801234 state = %q, want 33", byID["801234"].State)
	}
	if byID["PHARM1"].State != model.UnknownProvider {
		t.Errorf("PHARM1 state = %q, want Unknown (prescriptions carry no state)", byID["PHARM1"].State)
	}

	for i := 1; i < len(dims); i++ {
		if dims[i].ProviderID <= dims[i-1].ProviderID {
			t.Errorf("dimension not sorted by provider_id: %q then %q",
				dims[i-1].ProviderID, dims[i].ProviderID)
		}
	}
}
