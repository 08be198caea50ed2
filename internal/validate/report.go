// Package validate inspects the persisted lake and produces the report the
// validation side consumes: per-table row counts, schema fingerprints, sample
// rows, and a missing-bene_id check.
package validate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/lake"
)

const sampleRows = 2

// StatusValid and StatusWarning are the two report outcomes. Warnings flag
// empty tables and rows with a missing bene_id; they do not fail the step.
const (
	StatusValid   = "valid"
	StatusWarning = "warning"
)

// TableReport describes one table of one layer.
type TableReport struct {
	Layer             string              `json:"layer"`
	Table             string              `json:"table"`
	Files             int                 `json:"files"`
	Rows              int64               `json:"rows"`
	SchemaFingerprint string              `json:"schema_fingerprint,omitempty"`
	Columns           []string            `json:"columns,omitempty"`
	Samples           []map[string]string `json:"samples,omitempty"`
	MissingBeneIDs    int64               `json:"missing_bene_ids"`
	Status            string              `json:"status"`
	Warnings          []string            `json:"warnings,omitempty"`
}

// Report is the full lake inspection result.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	LakeRoot    string        `json:"lake_root"`
	Status      string        `json:"status"`
	Tables      []TableReport `json:"tables"`
}

// Inspect walks every layer's tables and builds the report.
func Inspect(lakeRoot string, log *zap.Logger) (*Report, error) {
	log = log.Named("validate")
	report := &Report{
		GeneratedAt: time.Now().UTC(),
		LakeRoot:    lakeRoot,
		Status:      StatusValid,
	}

	for _, layer := range lake.Layers {
		layerDir := filepath.Join(lakeRoot, string(layer))
		entries, err := os.ReadDir(layerDir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read layer %s: %w", layer, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			tr, err := inspectTable(string(layer), lake.TableDir(lakeRoot, layer, e.Name()), e.Name())
			if err != nil {
				return nil, err
			}
			if tr.Status == StatusWarning {
				report.Status = StatusWarning
			}
			report.Tables = append(report.Tables, *tr)
		}
	}

	sort.Slice(report.Tables, func(i, j int) bool {
		if report.Tables[i].Layer != report.Tables[j].Layer {
			return report.Tables[i].Layer < report.Tables[j].Layer
		}
		return report.Tables[i].Table < report.Tables[j].Table
	})

	log.Info("lake inspected",
		zap.String("status", report.Status),
		zap.Int("tables", len(report.Tables)))
	return report, nil
}

func inspectTable(layer, tableDir, table string) (*TableReport, error) {
	tr := &TableReport{Layer: layer, Table: table, Status: StatusValid}

	files, err := lake.ListPartitionedFiles(tableDir)
	if err != nil {
		return nil, err
	}
	tr.Files = len(files)

	for i, path := range files {
		pf, closeFile, err := openParquet(path)
		if err != nil {
			return nil, err
		}
		tr.Rows += pf.NumRows()
		if i == 0 {
			tr.Columns, tr.SchemaFingerprint = fingerprintSchema(pf.Schema())
			tr.Samples, err = readSamples(pf, sampleRows)
			if err != nil {
				closeFile()
				return nil, fmt.Errorf("sample %s: %w", path, err)
			}
		}
		missing, err := countMissingBeneIDs(pf)
		if err != nil {
			closeFile()
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		tr.MissingBeneIDs += missing
		closeFile()
	}

	if tr.Rows == 0 {
		tr.Status = StatusWarning
		tr.Warnings = append(tr.Warnings, "table has no rows")
	}
	if tr.MissingBeneIDs > 0 {
		tr.Status = StatusWarning
		tr.Warnings = append(tr.Warnings, fmt.Sprintf("%d rows missing bene_id", tr.MissingBeneIDs))
	}
	return tr, nil
}

func openParquet(path string) (*parquet.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("parquet %s: %w", path, err)
	}
	return pf, func() { f.Close() }, nil
}

// fingerprintSchema returns the leaf column names and a stable hash of the
// schema text, so any column or type drift shows up as a new fingerprint.
func fingerprintSchema(schema *parquet.Schema) ([]string, string) {
	var cols []string
	for _, path := range schema.Columns() {
		cols = append(cols, strings.Join(path, "."))
	}
	sum := sha256.Sum256([]byte(schema.String()))
	return cols, hex.EncodeToString(sum[:8])
}

// readSamples decodes up to n leading rows into column-name → value maps.
func readSamples(pf *parquet.File, n int) ([]map[string]string, error) {
	cols := pf.Schema().Columns()
	var samples []map[string]string

	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, n-len(samples))
		count, err := rows.ReadRows(buf)
		for _, row := range buf[:count] {
			sample := make(map[string]string, len(cols))
			for _, v := range row {
				if v.IsNull() {
					continue
				}
				col := int(v.Column())
				if col < len(cols) {
					sample[strings.Join(cols[col], ".")] = v.String()
				}
			}
			samples = append(samples, sample)
		}
		rows.Close()
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(samples) >= n {
			break
		}
	}
	return samples, nil
}

// countMissingBeneIDs counts rows whose bene_id column is null or empty.
// Tables without a bene_id column (the provider dim) report zero.
func countMissingBeneIDs(pf *parquet.File) (int64, error) {
	beneCol := -1
	for i, path := range pf.Schema().Columns() {
		if len(path) == 1 && path[0] == "bene_id" {
			beneCol = i
			break
		}
	}
	if beneCol == -1 {
		return 0, nil
	}

	var missing int64
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 256)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				for _, v := range row {
					if int(v.Column()) != beneCol {
						continue
					}
					if v.IsNull() || v.String() == "" {
						missing++
					}
					break
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return 0, err
			}
		}
		rows.Close()
	}
	return missing, nil
}

// WriteReport writes the report as indented JSON.
func WriteReport(report *Report, path string) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
