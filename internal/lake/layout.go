// Package lake implements the partitioned parquet layout shared by the
// bronze, silver, and gold layers: directory paths encode the partition keys
// (year, and bene_id_prefix for event-grained tables), and partition writes
// are full replacements staged through a temp file and rename.
package lake

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
)

// Layer names the three refinement layers on disk.
type Layer string

const (
	Bronze Layer = "bronze"
	Silver Layer = "silver"
	Gold   Layer = "gold"
)

// Layers lists all layers in refinement order.
var Layers = []Layer{Bronze, Silver, Gold}

// Silver and gold table names.
const (
	TableBeneficiaryDim   = "dim_beneficiary"
	TableProviderDim      = "dim_provider"
	TableClaims           = "fact_claims"
	TableClaimDiagnoses   = "fact_claim_diagnoses"
	TablePrescriptions    = "fact_prescription"
	TableMemberYearMetric = "member_year_metrics"
	TableTopDiagnoses     = "top_diagnoses_by_member"
	TablePatientView      = "patient_api_view"
)

// TableDir returns the directory holding all partitions of one table.
func TableDir(root string, layer Layer, table string) string {
	return filepath.Join(root, string(layer), table)
}

// YearDir returns the year=Y partition directory of a table.
func YearDir(tableDir string, year int32) string {
	return filepath.Join(tableDir, fmt.Sprintf("year=%d", year))
}

// PartitionDir returns the year=Y/bene_id_prefix=P partition directory.
func PartitionDir(tableDir string, year int32, prefix string) string {
	return filepath.Join(YearDir(tableDir, year), "bene_id_prefix="+prefix)
}

// ListPartitionedFiles walks a table directory and returns every parquet file
// under it, sorted by path for deterministic iteration. A missing table
// directory yields an empty list, not an error.
func ListPartitionedFiles(tableDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(tableDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".parquet") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk %s: %w", tableDir, err)
	}
	return files, nil
}

// ParsePartitionPath extracts the year and bene_id_prefix encoded in a
// partition file path. The prefix is empty for year-only partitions.
func ParsePartitionPath(path string) (year int32, prefix string, err error) {
	year = -1
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if v, ok := strings.CutPrefix(seg, "year="); ok {
			y, perr := strconv.Atoi(v)
			if perr != nil {
				return 0, "", fmt.Errorf("bad year segment %q in %s", seg, path)
			}
			year = int32(y)
		}
		if v, ok := strings.CutPrefix(seg, "bene_id_prefix="); ok {
			prefix = v
		}
	}
	if year < 0 {
		return 0, "", fmt.Errorf("no year segment in %s", path)
	}
	return year, prefix, nil
}
