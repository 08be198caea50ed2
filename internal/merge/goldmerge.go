package merge

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/bronze"
	"github.com/johnwalz97/medicare-pipeline/internal/gold"
	"github.com/johnwalz97/medicare-pipeline/internal/lake"
	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

// Component file names of the patient view. The view is two row-aligned
// tables in one directory so the serving side reads both with one key.
const (
	patientMetricsFile   = "patient_metrics"
	patientDiagnosesFile = "patient_diagnoses"
)

// mergeGold recomputes gold aggregates for the member-years touched by the
// recomputed partitions and upserts them into the existing year files. Rows
// belonging to unaffected prefixes are carried through untouched; a full
// table rebuild never happens here.
func (c *Coordinator) mergeGold(affected []PartitionKey) error {
	if len(affected) == 0 {
		return nil
	}

	byYear := make(map[int32]map[string]bool)
	for _, k := range affected {
		if byYear[k.Year] == nil {
			byYear[k.Year] = make(map[string]bool)
		}
		byYear[k.Year][k.Prefix] = true
	}
	years := make([]int32, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	allDims, err := lake.ReadTable[model.BeneficiaryDim](lake.TableDir(c.root, lake.Silver, lake.TableBeneficiaryDim))
	if err != nil {
		return err
	}

	for _, year := range years {
		prefixes := byYear[year]

		var dims []model.BeneficiaryDim
		for i := range allDims {
			if allDims[i].Year == year && prefixes[allDims[i].BeneIDPrefix] {
				dims = append(dims, allDims[i])
			}
		}

		var (
			claims    []model.ClaimFact
			diagnoses []model.ClaimDiagnosisFact
			rx        []model.PrescriptionFact
		)
		sorted := make([]string, 0, len(prefixes))
		for p := range prefixes {
			sorted = append(sorted, p)
		}
		sort.Strings(sorted)
		for _, p := range sorted {
			pc, err := lake.ReadTable[model.ClaimFact](lake.PartitionDir(lake.TableDir(c.root, lake.Silver, lake.TableClaims), year, p))
			if err != nil {
				return err
			}
			claims = append(claims, pc...)
			pd, err := lake.ReadTable[model.ClaimDiagnosisFact](lake.PartitionDir(lake.TableDir(c.root, lake.Silver, lake.TableClaimDiagnoses), year, p))
			if err != nil {
				return err
			}
			diagnoses = append(diagnoses, pd...)
			pr, err := lake.ReadTable[model.PrescriptionFact](lake.PartitionDir(lake.TableDir(c.root, lake.Silver, lake.TablePrescriptions), year, p))
			if err != nil {
				return err
			}
			rx = append(rx, pr...)
		}

		metrics := gold.BuildMemberYearMetrics(dims, claims, rx)
		rankings := gold.RankDiagnoses(diagnoses)
		patientMetrics, patientDiagnoses := gold.BuildPatientView(metrics, rankings)

		if err := upsertYear(c, lake.TableMemberYearMetric, lake.TableMemberYearMetric, year, prefixes, metrics,
			func(m *model.MemberYearMetric) string { return m.BeneID },
			sortMetrics); err != nil {
			return err
		}
		if err := upsertYear(c, lake.TableTopDiagnoses, lake.TableTopDiagnoses, year, prefixes, rankings,
			func(r *model.DiagnosisRanking) string { return r.BeneID },
			sortRankings); err != nil {
			return err
		}
		if err := upsertYear(c, lake.TablePatientView, patientMetricsFile, year, prefixes, patientMetrics,
			func(m *model.PatientMetric) string { return m.BeneID },
			func(rows []model.PatientMetric) {
				sort.Slice(rows, func(i, j int) bool { return rows[i].BeneID < rows[j].BeneID })
			}); err != nil {
			return err
		}
		if err := upsertYear(c, lake.TablePatientView, patientDiagnosesFile, year, prefixes, patientDiagnoses,
			func(d *model.PatientDiagnosis) string { return d.BeneID },
			func(rows []model.PatientDiagnosis) {
				sort.Slice(rows, func(i, j int) bool {
					if rows[i].BeneID != rows[j].BeneID {
						return rows[i].BeneID < rows[j].BeneID
					}
					if rows[i].DiagnosisRank != rows[j].DiagnosisRank {
						return rows[i].DiagnosisRank < rows[j].DiagnosisRank
					}
					return rows[i].DiagnosisCode < rows[j].DiagnosisCode
				})
			}); err != nil {
			return err
		}

		c.log.Info("merged gold year",
			zap.Int32("year", year),
			zap.Int("prefixes", len(prefixes)),
			zap.Int("member_years", len(metrics)),
			zap.Int("ranked_diagnoses", len(rankings)))
	}
	return nil
}

// upsertYear replaces the affected members' rows inside one gold year file,
// keeping rows whose bene_id_prefix was not recomputed.
func upsertYear[T any](
	c *Coordinator,
	table, file string,
	year int32,
	prefixes map[string]bool,
	fresh []T,
	beneID func(*T) string,
	sortRows func([]T),
) error {
	dir := lake.YearDir(lake.TableDir(c.root, lake.Gold, table), year)
	path := filepath.Join(dir, file+".parquet")

	existing, err := lake.ReadRows[T](path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	merged := make([]T, 0, len(existing)+len(fresh))
	for i := range existing {
		if !prefixes[bronze.BeneIDPrefix(beneID(&existing[i]))] {
			merged = append(merged, existing[i])
		}
	}
	merged = append(merged, fresh...)
	sortRows(merged)

	return lake.ReplacePartition(dir, file, merged)
}

func sortMetrics(rows []model.MemberYearMetric) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].BeneID < rows[j].BeneID })
}

func sortRankings(rows []model.DiagnosisRanking) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BeneID != rows[j].BeneID {
			return rows[i].BeneID < rows[j].BeneID
		}
		if rows[i].DiagnosisRank != rows[j].DiagnosisRank {
			return rows[i].DiagnosisRank < rows[j].DiagnosisRank
		}
		return rows[i].DiagnosisCode < rows[j].DiagnosisCode
	})
}
