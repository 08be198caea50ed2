package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/lake"
	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

func TestInspectCountsAndFingerprints(t *testing.T) {
	lakeRoot := t.TempDir()

	claims := []model.ClaimFact{
		{ClaimID: "C1", BeneID: "AA01", ClaimType: model.ClaimTypeInpatient, ProviderID: "P1", TotalCents: 100, Year: 2009, BeneIDPrefix: "AA"},
		{ClaimID: "C2", BeneID: "AA02", ClaimType: model.ClaimTypeCarrier, ProviderID: "P1", TotalCents: 200, Year: 2009, BeneIDPrefix: "AA"},
	}
	dir := lake.PartitionDir(lake.TableDir(lakeRoot, lake.Silver, lake.TableClaims), 2009, "AA")
	if err := lake.ReplacePartition(dir, lake.TableClaims, claims); err != nil {
		t.Fatalf("write claims: %v", err)
	}

	report, err := Inspect(lakeRoot, zap.NewNop())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Status != StatusValid {
		t.Errorf("status = %q, want valid", report.Status)
	}
	if len(report.Tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(report.Tables))
	}

	tr := report.Tables[0]
	if tr.Layer != "silver" || tr.Table != lake.TableClaims {
		t.Errorf("table = %s/%s", tr.Layer, tr.Table)
	}
	if tr.Rows != 2 {
		t.Errorf("rows = %d, want 2", tr.Rows)
	}
	if tr.Files != 1 {
		t.Errorf("files = %d, want 1", tr.Files)
	}
	if tr.SchemaFingerprint == "" {
		t.Error("missing schema fingerprint")
	}
	if len(tr.Columns) == 0 {
		t.Error("missing column list")
	}
	if len(tr.Samples) != 2 {
		t.Errorf("samples = %d, want 2", len(tr.Samples))
	}
	if tr.Samples[0]["claim_id"] != "C1" {
		t.Errorf("sample claim_id = %q, want C1", tr.Samples[0]["claim_id"])
	}
	if tr.MissingBeneIDs != 0 {
		t.Errorf("missing bene ids = %d, want 0", tr.MissingBeneIDs)
	}
}

func TestInspectFlagsMissingBeneIDs(t *testing.T) {
	lakeRoot := t.TempDir()

	claims := []model.ClaimFact{
		{ClaimID: "C1", BeneID: "", ClaimType: model.ClaimTypeInpatient, ProviderID: "P1", Year: 2009, BeneIDPrefix: "00"},
		{ClaimID: "C2", BeneID: "AA02", ClaimType: model.ClaimTypeInpatient, ProviderID: "P1", Year: 2009, BeneIDPrefix: "AA"},
	}
	dir := lake.PartitionDir(lake.TableDir(lakeRoot, lake.Silver, lake.TableClaims), 2009, "00")
	if err := lake.ReplacePartition(dir, lake.TableClaims, claims); err != nil {
		t.Fatalf("write claims: %v", err)
	}

	report, err := Inspect(lakeRoot, zap.NewNop())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Status != StatusWarning {
		t.Errorf("status = %q, want warning", report.Status)
	}
	if report.Tables[0].MissingBeneIDs != 1 {
		t.Errorf("missing bene ids = %d, want 1", report.Tables[0].MissingBeneIDs)
	}
}

func TestWriteReportJSON(t *testing.T) {
	report := &Report{Status: StatusValid, LakeRoot: "/tmp/lake"}
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := WriteReport(report, path); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("parse report: %v", err)
	}
	if got.Status != StatusValid {
		t.Errorf("status = %q", got.Status)
	}
}
