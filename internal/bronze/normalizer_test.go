package bronze

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/lake"
	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const beneficiaryCSV = `DESYNPUF_ID,BENE_BIRTH_DT,BENE_DEATH_DT,BENE_SEX_IDENT_CD,BENE_RACE_CD,SP_STATE_CODE,MEDREIMB_IP,BENRES_IP,PPPYMT_IP,MEDREIMB_OP,BENRES_OP,PPPYMT_OP,MEDREIMB_CAR,BENRES_CAR,PPPYMT_CAR
AA013D2EFD8E45D1,19360901,,1,1,33,5000.00,1068.00,0.00,40.00,20.00,0.00,500.00,130.00,0.00
BB022E3FA1C55D2B,19430101,,2,2,12,0,0,0,0,0,0,0,0,0
,19500101,,1,1,33,0,0,0,0,0,0,0,0,0
`

func TestIngestBeneficiaryFile(t *testing.T) {
	raw := t.TempDir()
	lakeRoot := t.TempDir()

	path := writeSourceFile(t, raw, "DE1_0_2008_Beneficiary_Summary_File_Sample_1.csv", beneficiaryCSV)
	n := NewNormalizer(lakeRoot, zap.NewNop())

	summary, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordBeneficiary})
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if summary.Year != 2008 {
		t.Errorf("year = %d, want 2008 from file name", summary.Year)
	}
	if summary.Rows != 2 {
		t.Errorf("rows = %d, want 2", summary.Rows)
	}
	if summary.Rejected != 1 {
		t.Errorf("rejected = %d, want 1 (empty DESYNPUF_ID)", summary.Rejected)
	}

	rows, err := lake.ReadTable[model.BeneficiaryRaw](lake.TableDir(lakeRoot, lake.Bronze, "beneficiary"))
	if err != nil {
		t.Fatalf("read bronze: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("bronze rows = %d, want 2", len(rows))
	}

	var first *model.BeneficiaryRaw
	for i := range rows {
		if rows[i].BeneID == "AA013D2EFD8E45D1" {
			first = &rows[i]
		}
	}
	if first == nil {
		t.Fatal("AA013D2EFD8E45D1 not found in bronze")
	}
	if first.BeneIDPrefix != "AA" {
		t.Errorf("prefix = %q, want AA", first.BeneIDPrefix)
	}
	if first.BirthDate == nil || *first.BirthDate != "1936-09-01" {
		t.Errorf("birth date = %v, want 1936-09-01", first.BirthDate)
	}
	if first.Sex == nil || *first.Sex != "Male" {
		t.Errorf("sex = %v, want Male", first.Sex)
	}
	if first.State == nil || *first.State != "NY" {
		t.Errorf("state = %v, want NY", first.State)
	}
	if first.IPMedicareCents == nil || *first.IPMedicareCents != 500000 {
		t.Errorf("ip medicare = %v, want 500000 cents", first.IPMedicareCents)
	}
}

const inpatientCSV = `DESYNPUF_ID,CLM_ID,CLM_FROM_DT,CLM_THRU_DT,PRVDR_NUM,AT_PHYSN_NPI,CLM_PMT_AMT,NCH_PRMRY_PYR_CLM_PD_AMT,ICD9_DGNS_CD_1,ICD9_DGNS_CD_2,ICD9_DGNS_CD_3,ICD9_DGNS_CD_4,ICD9_DGNS_CD_5,ICD9_DGNS_CD_6,ICD9_DGNS_CD_7,ICD9_DGNS_CD_8,ICD9_DGNS_CD_9,ICD9_DGNS_CD_10
AA013D2EFD8E45D1,CLM001,20090112,20090118,2900XX,801234,4000.00,0.00,25000,,4280,,,,,,,
AA013D2EFD8E45D1,CLM002,20090301,20090305,2900XX,801234,notanamount,0.00,4019,,,,,,,,,
ZZ99,CLM003,20090601,20090604,3100YY,809999,900.00,0.00,7245,,,,,,,,,
`

func TestIngestInpatientDerivesModalYear(t *testing.T) {
	raw := t.TempDir()
	lakeRoot := t.TempDir()

	path := writeSourceFile(t, raw, "DE1_0_Inpatient_Claims_Sample_1.csv", inpatientCSV)
	n := NewNormalizer(lakeRoot, zap.NewNop())

	summary, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordInpatient})
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if summary.Year != 2009 {
		t.Errorf("year = %d, want 2009 from modal claim date", summary.Year)
	}
	if summary.Rows != 3 {
		t.Errorf("rows = %d, want 3", summary.Rows)
	}
	if summary.Coerced != 1 {
		t.Errorf("coerced = %d, want 1 (malformed CLM_PMT_AMT)", summary.Coerced)
	}
	if len(summary.Partitions) != 2 {
		t.Errorf("partitions = %v, want AA and ZZ under year 2009", summary.Partitions)
	}

	aa, err := lake.ReadTable[model.InstitutionalClaimRaw](
		lake.PartitionDir(lake.TableDir(lakeRoot, lake.Bronze, "inpatient"), 2009, "AA"))
	if err != nil {
		t.Fatalf("read AA partition: %v", err)
	}
	if len(aa) != 2 {
		t.Fatalf("AA partition rows = %d, want 2", len(aa))
	}
	for _, r := range aa {
		if r.Year != 2009 {
			t.Errorf("claim %s year = %d, want 2009", r.ClaimID, r.Year)
		}
	}

	var clm2 *model.InstitutionalClaimRaw
	for i := range aa {
		if aa[i].ClaimID == "CLM002" {
			clm2 = &aa[i]
		}
	}
	if clm2 == nil {
		t.Fatal("CLM002 not found")
	}
	if clm2.MedicareCents != nil {
		t.Errorf("CLM002 medicare = %d, want nil after coercion", *clm2.MedicareCents)
	}
}

func TestReingestDropsPrefixesRemovedFromFile(t *testing.T) {
	raw := t.TempDir()
	lakeRoot := t.TempDir()

	path := writeSourceFile(t, raw, "DE1_0_Inpatient_Claims_Sample_1.csv", inpatientCSV)
	n := NewNormalizer(lakeRoot, zap.NewNop())
	if _, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordInpatient}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	// A corrected re-delivery of the same file without the ZZ99 claim.
	corrected := `DESYNPUF_ID,CLM_ID,CLM_FROM_DT,CLM_THRU_DT,PRVDR_NUM,AT_PHYSN_NPI,CLM_PMT_AMT,NCH_PRMRY_PYR_CLM_PD_AMT,ICD9_DGNS_CD_1,ICD9_DGNS_CD_2,ICD9_DGNS_CD_3,ICD9_DGNS_CD_4,ICD9_DGNS_CD_5,ICD9_DGNS_CD_6,ICD9_DGNS_CD_7,ICD9_DGNS_CD_8,ICD9_DGNS_CD_9,ICD9_DGNS_CD_10
AA013D2EFD8E45D1,CLM001,20090112,20090118,2900XX,801234,4000.00,0.00,25000,,4280,,,,,,,
`
	path = writeSourceFile(t, raw, "DE1_0_Inpatient_Claims_Sample_1.csv", corrected)
	summary, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordInpatient})
	if err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if len(summary.Partitions) != 1 {
		t.Errorf("partitions = %v, want only AA", summary.Partitions)
	}

	rows, err := lake.ReadTable[model.InstitutionalClaimRaw](lake.TableDir(lakeRoot, lake.Bronze, "inpatient"))
	if err != nil {
		t.Fatalf("read bronze: %v", err)
	}
	if len(rows) != 1 || rows[0].ClaimID != "CLM001" {
		t.Fatalf("bronze rows = %+v, want only CLM001 after re-delivery", rows)
	}

	stale := filepath.Join(
		lake.PartitionDir(lake.TableDir(lakeRoot, lake.Bronze, "inpatient"), 2009, "ZZ"),
		"DE1_0_Inpatient_Claims_Sample_1.parquet")
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale ZZ partition file still present: %v", err)
	}
}

func TestIngestSchemaMismatchIsFatal(t *testing.T) {
	raw := t.TempDir()
	lakeRoot := t.TempDir()

	// Prescription columns declared as a beneficiary file.
	content := "DESYNPUF_ID,PDE_ID,SRVC_DT,TOT_RX_CST_AMT\nAA01,P1,20080101,10.00\n"
	path := writeSourceFile(t, raw, "DE1_0_2008_Beneficiary_Summary_File_Sample_1.csv", content)

	n := NewNormalizer(lakeRoot, zap.NewNop())
	if _, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordBeneficiary}); err == nil {
		t.Fatal("IngestFile: want schema mismatch error")
	}
}

func TestIngestBeneficiaryWithoutYearFails(t *testing.T) {
	raw := t.TempDir()
	lakeRoot := t.TempDir()

	path := writeSourceFile(t, raw, "beneficiary_summary.csv", beneficiaryCSV)
	n := NewNormalizer(lakeRoot, zap.NewNop())
	if _, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordBeneficiary}); err == nil {
		t.Fatal("IngestFile: want year derivation error")
	}

	// An explicit year rescues the same file.
	summary, err := n.IngestFile(FileIngest{Path: path, Type: model.RecordBeneficiary, Year: 2010})
	if err != nil {
		t.Fatalf("IngestFile with explicit year: %v", err)
	}
	if summary.Year != 2010 {
		t.Errorf("year = %d, want 2010", summary.Year)
	}
}
