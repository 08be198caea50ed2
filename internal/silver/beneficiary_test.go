package silver

import (
	"testing"

	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

func TestBuildBeneficiaryDimTotals(t *testing.T) {
	rows := []model.BeneficiaryRaw{
		{
			BeneID: "AA01", Year: 2008, BeneIDPrefix: "AA",
			IPMedicareCents:    centsp(500000),
			IPBeneficiaryCents: centsp(106800),
			// IP third-party null: treated as zero.
			OPMedicareCents:     centsp(4000),
			OPBeneficiaryCents:  centsp(2000),
			OPThirdPartyCents:   centsp(0),
			CarMedicareCents:    centsp(50000),
			CarBeneficiaryCents: centsp(13000),
			CarThirdPartyCents:  centsp(1000),
		},
	}

	dims := BuildBeneficiaryDim(rows)
	if len(dims) != 1 {
		t.Fatalf("dims = %d, want 1", len(dims))
	}
	d := dims[0]

	if d.IPThirdPartyCents != 0 {
		t.Errorf("null component = %d, want 0", d.IPThirdPartyCents)
	}
	if d.TotalMedicareCents != 554000 {
		t.Errorf("total medicare = %d, want 554000", d.TotalMedicareCents)
	}
	if d.TotalBeneficiaryCents != 121800 {
		t.Errorf("total beneficiary = %d, want 121800", d.TotalBeneficiaryCents)
	}
	if d.TotalThirdPartyCents != 1000 {
		t.Errorf("total third party = %d, want 1000", d.TotalThirdPartyCents)
	}
	if d.TotalAllowedCents != 676800 {
		t.Errorf("total allowed = %d, want sum of all nine components", d.TotalAllowedCents)
	}
	if d.TotalPaidCents != 675800 {
		t.Errorf("total paid = %d, want medicare + beneficiary", d.TotalPaidCents)
	}
	if d.TotalAllowedCents < d.TotalPaidCents {
		t.Error("total_allowed < total_paid with non-negative components")
	}
}

func TestBuildBeneficiaryDimSortedByKey(t *testing.T) {
	dims := BuildBeneficiaryDim([]model.BeneficiaryRaw{
		{BeneID: "BB01", Year: 2009},
		{BeneID: "AA01", Year: 2009},
		{BeneID: "AA01", Year: 2008},
	})
	want := []struct {
		id   string
		year int32
	}{{"AA01", 2008}, {"AA01", 2009}, {"BB01", 2009}}
	for i, w := range want {
		if dims[i].BeneID != w.id || dims[i].Year != w.year {
			t.Errorf("dims[%d] = (%s, %d), want (%s, %d)",
				i, dims[i].BeneID, dims[i].Year, w.id, w.year)
		}
	}
}
