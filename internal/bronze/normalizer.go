package bronze

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/lake"
	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// FileIngest describes one raw source file to normalize. Year is optional;
// when zero it is derived from the file name (beneficiary extracts) or from
// the modal year of the rows' service dates (event extracts).
type FileIngest struct {
	Path string
	Type model.RecordType
	Year int32
}

// IngestSummary is the per-file report consumed by the validation
// collaborator.
type IngestSummary struct {
	File       string           `json:"file"`
	RecordType model.RecordType `json:"record_type"`
	Year       int32            `json:"year"`
	Rows       int64            `json:"rows"`
	Rejected   int64            `json:"rejected_rows"`
	Coerced    int64            `json:"coerced_fields"`
	Partitions []string         `json:"partitions"`
}

// Normalizer converts raw extracts into the bronze layer under the lake root.
type Normalizer struct {
	root string
	log  *zap.Logger
}

func NewNormalizer(lakeRoot string, log *zap.Logger) *Normalizer {
	return &Normalizer{root: lakeRoot, log: log.Named("bronze")}
}

// IngestFile normalizes one raw file into partitioned bronze parquet and
// returns its ingestion summary. The declared record type is trusted but its
// column set is verified; a mismatch aborts the file.
func (n *Normalizer) IngestFile(req FileIngest) (*IngestSummary, error) {
	f, err := openCSV(req.Path)
	if err != nil {
		return nil, err
	}
	defer f.close()

	if err := matchSchema(f, req.Type); err != nil {
		return nil, fmt.Errorf("%s: %w", req.Path, err)
	}

	summary := &IngestSummary{
		File:       filepath.Base(req.Path),
		RecordType: req.Type,
	}

	switch req.Type {
	case model.RecordBeneficiary:
		// Birth dates say nothing about the coverage year, so beneficiary
		// files must carry the year in their name or the ingest request.
		err = ingestRows(n, f, req, summary, parseBeneficiary,
			func(r *model.BeneficiaryRaw) *string { return nil },
			func(r *model.BeneficiaryRaw, y int32) { r.Year = y },
			func(r *model.BeneficiaryRaw) string { return r.BeneIDPrefix })
	case model.RecordInpatient, model.RecordOutpatient:
		err = ingestRows(n, f, req, summary, parseInstitutional,
			func(r *model.InstitutionalClaimRaw) *string { return r.FromDate },
			func(r *model.InstitutionalClaimRaw, y int32) { r.Year = y },
			func(r *model.InstitutionalClaimRaw) string { return r.BeneIDPrefix })
	case model.RecordCarrier:
		err = ingestRows(n, f, req, summary, parseCarrier,
			func(r *model.CarrierClaimRaw) *string { return r.FromDate },
			func(r *model.CarrierClaimRaw, y int32) { r.Year = y },
			func(r *model.CarrierClaimRaw) string { return r.BeneIDPrefix })
	case model.RecordPrescription:
		err = ingestRows(n, f, req, summary, parsePrescription,
			func(r *model.PrescriptionRaw) *string { return r.ServiceDate },
			func(r *model.PrescriptionRaw, y int32) { r.Year = y },
			func(r *model.PrescriptionRaw) string { return r.BeneIDPrefix })
	default:
		return nil, fmt.Errorf("unknown record type %q", req.Type)
	}
	if err != nil {
		return nil, err
	}

	n.log.Info("ingested file",
		zap.String("file", summary.File),
		zap.String("record_type", string(summary.RecordType)),
		zap.Int32("year", summary.Year),
		zap.Int64("rows", summary.Rows),
		zap.Int64("rejected", summary.Rejected),
		zap.Int64("coerced", summary.Coerced),
		zap.Int("partitions", len(summary.Partitions)))

	return summary, nil
}

// ingestRows drives one file: parse every row with the type's normalization
// function, resolve the partition year, group rows by bene_id_prefix, and
// replace the per-prefix bronze files.
func ingestRows[T any](
	n *Normalizer,
	f *csvFile,
	req FileIngest,
	summary *IngestSummary,
	parse func([]string, map[string]int, *int64) (T, bool),
	dateOf func(*T) *string,
	setYear func(*T, int32),
	prefixOf func(*T) string,
) error {
	var rows []T
	for {
		rec, err := f.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s row %d: %w", req.Path, f.rowNum, err)
		}

		row, ok := parse(rec, f.colIdx, &summary.Coerced)
		if !ok {
			summary.Rejected++
			continue
		}
		rows = append(rows, row)
	}
	summary.Rows = int64(len(rows))

	year := req.Year
	if year == 0 {
		year = yearFromFileName(req.Path)
	}
	if year == 0 {
		year = modalYear(rows, dateOf)
	}
	if year == 0 {
		return fmt.Errorf("%s: cannot determine batch year from file name or row dates", req.Path)
	}
	summary.Year = year

	byPrefix := make(map[string][]T)
	for i := range rows {
		setYear(&rows[i], year)
		p := prefixOf(&rows[i])
		byPrefix[p] = append(byPrefix[p], rows[i])
	}

	stem := strings.TrimSuffix(filepath.Base(req.Path), filepath.Ext(req.Path))
	tableDir := lake.TableDir(n.root, lake.Bronze, string(req.Type))

	prefixes := make([]string, 0, len(byPrefix))
	for p := range byPrefix {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	written := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		dir := lake.PartitionDir(tableDir, year, p)
		path := filepath.Join(dir, stem+".parquet")
		if err := lake.WriteRows(path, byPrefix[p]); err != nil {
			return err
		}
		written[path] = true
		summary.Partitions = append(summary.Partitions, fmt.Sprintf("year=%d/bene_id_prefix=%s", year, p))
	}
	return removeStaleBatch(n, tableDir, stem, written)
}

// removeStaleBatch deletes per-prefix files a prior ingest of the same source
// file wrote but this ingest did not. A re-delivered file replaces its whole
// prior batch; a prefix it no longer touches must not keep serving the old
// rows.
func removeStaleBatch(n *Normalizer, tableDir, stem string, written map[string]bool) error {
	existing, err := lake.ListPartitionedFiles(tableDir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		if filepath.Base(path) != stem+".parquet" || written[path] {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale %s: %w", path, err)
		}
		n.log.Warn("removed stale partition file from earlier delivery", zap.String("path", path))
	}
	return nil
}

// yearFromFileName picks the first 4-digit token out of the file stem, the
// convention used by beneficiary summary extracts.
func yearFromFileName(path string) int32 {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, part := range strings.Split(stem, "_") {
		if len(part) == 4 {
			if y, err := strconv.Atoi(part); err == nil && y >= 1990 && y <= 2100 {
				return int32(y)
			}
		}
	}
	return 0
}

// modalYear returns the most frequent year across the rows' primary date
// column, ties broken by the smaller year.
func modalYear[T any](rows []T, dateOf func(*T) *string) int32 {
	counts := make(map[int32]int)
	for i := range rows {
		d := dateOf(&rows[i])
		if d == nil || len(*d) < 4 {
			continue
		}
		y, err := strconv.Atoi((*d)[:4])
		if err != nil {
			continue
		}
		counts[int32(y)]++
	}
	var best int32
	bestCount := 0
	for y, c := range counts {
		if c > bestCount || (c == bestCount && best != 0 && y < best) {
			best, bestCount = y, c
		}
	}
	return best
}
