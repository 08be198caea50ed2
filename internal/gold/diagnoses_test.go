package gold

import (
	"testing"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

func diag(bene string, year int32, code string, cents int64) model.ClaimDiagnosisFact {
	return model.ClaimDiagnosisFact{
		BeneID:        bene,
		Year:          year,
		DiagnosisCode: code,
		PaymentCents:  cents,
	}
}

func TestRankDiagnosesDenseTies(t *testing.T) {
	rankings := RankDiagnoses([]model.ClaimDiagnosisFact{
		diag("AA01", 2009, "A", 50000),
		diag("AA01", 2009, "B", 50000),
		diag("AA01", 2009, "C", 30000),
	})

	if len(rankings) != 3 {
		t.Fatalf("rankings = %d, want 3", len(rankings))
	}
	byCode := make(map[string]model.DiagnosisRanking)
	for _, r := range rankings {
		byCode[r.DiagnosisCode] = r
	}
	if byCode["A"].DiagnosisRank != 1 || byCode["B"].DiagnosisRank != 1 {
		t.Errorf("tied codes A=%d B=%d, want both rank 1",
			byCode["A"].DiagnosisRank, byCode["B"].DiagnosisRank)
	}
	if byCode["C"].DiagnosisRank != 2 {
		t.Errorf("C rank = %d, want dense rank 2", byCode["C"].DiagnosisRank)
	}

	// Tie order is code ascending.
	if rankings[0].DiagnosisCode != "A" || rankings[1].DiagnosisCode != "B" {
		t.Errorf("tie order = %s, %s, want A then B",
			rankings[0].DiagnosisCode, rankings[1].DiagnosisCode)
	}
}

func TestRankDiagnosesTopFiveCutoff(t *testing.T) {
	var facts []model.ClaimDiagnosisFact
	codes := []string{"D1", "D2", "D3", "D4", "D5", "D6", "D7"}
	for i, code := range codes {
		facts = append(facts, diag("AA01", 2009, code, int64(70000-i*10000)))
	}

	rankings := RankDiagnoses(facts)
	if len(rankings) != 5 {
		t.Fatalf("rankings = %d, want 5 (ranks 6 and 7 dropped)", len(rankings))
	}
	for _, r := range rankings {
		if r.DiagnosisRank > TopDiagnoses {
			t.Errorf("code %s rank %d exceeds cutoff", r.DiagnosisCode, r.DiagnosisRank)
		}
	}
}

func TestRankDiagnosesTieStraddlingCutoff(t *testing.T) {
	// Six codes tied at rank 5 all survive: the cutoff is on rank, not row
	// count.
	facts := []model.ClaimDiagnosisFact{
		diag("AA01", 2009, "A", 90000),
		diag("AA01", 2009, "B", 80000),
		diag("AA01", 2009, "C", 70000),
		diag("AA01", 2009, "D", 60000),
		diag("AA01", 2009, "E1", 50000),
		diag("AA01", 2009, "E2", 50000),
	}

	rankings := RankDiagnoses(facts)
	if len(rankings) != 6 {
		t.Fatalf("rankings = %d, want 6 (both rank-5 codes kept)", len(rankings))
	}
	last := rankings[len(rankings)-1]
	if last.DiagnosisRank != 5 {
		t.Errorf("last rank = %d, want 5", last.DiagnosisRank)
	}
}

func TestRankDiagnosesSumsAcrossClaims(t *testing.T) {
	rankings := RankDiagnoses([]model.ClaimDiagnosisFact{
		diag("AA01", 2009, "25000", 20000),
		diag("AA01", 2009, "25000", 15000),
		diag("AA01", 2008, "25000", 99999),
		diag("BB01", 2009, "25000", 1),
	})

	for _, r := range rankings {
		if r.BeneID == "AA01" && r.Year == 2009 {
			if r.DiagnosisPaymentCents != 35000 {
				t.Errorf("AA01/2009 payment = %d, want 35000 summed", r.DiagnosisPaymentCents)
			}
			if r.DiagnosisRank != 1 {
				t.Errorf("AA01/2009 rank = %d, want 1", r.DiagnosisRank)
			}
		}
	}
	if len(rankings) != 3 {
		t.Errorf("rankings = %d, want 3 member-year groups", len(rankings))
	}
}
