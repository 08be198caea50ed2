package merge

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnwalz97/medicare-pipeline/internal/lake"
	"github.com/johnwalz97/medicare-pipeline/internal/model"
	"github.com/johnwalz97/medicare-pipeline/internal/silver"
)

// Coordinator drives silver and gold recomputation over dirty partitions.
// At most one writer is active per partition key; separate partitions run in
// parallel up to the worker limit.
type Coordinator struct {
	root    string
	workers int
	log     *zap.Logger

	wmMu  sync.Mutex
	locks sync.Map // PartitionKey → *sync.Mutex
}

func NewCoordinator(lakeRoot string, workers int, log *zap.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{root: lakeRoot, workers: workers, log: log.Named("merge")}
}

// RunReport summarizes one coordinator run.
type RunReport struct {
	Partitions int      `json:"partitions"`
	Recomputed int      `json:"recomputed"`
	Skipped    int      `json:"skipped"`
	Failed     []string `json:"failed,omitempty"`
	Recovered  []string `json:"recovered,omitempty"`
	Remerged   []string `json:"remerged,omitempty"`
}

// partitionLock returns the mutex serializing writers of one partition.
func (c *Coordinator) partitionLock(k PartitionKey) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(k, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// transition persists a single partition state change immediately, so a crash
// mid-run leaves Processing markers behind for the next run to recover.
func (c *Coordinator) transition(wm *Watermarks, k PartitionKey, s State, checksum string) error {
	c.wmMu.Lock()
	defer c.wmMu.Unlock()
	wm.Set(k, s, checksum)
	return wm.Save(c.root)
}

// Run detects dirty partitions, recomputes their silver outputs, rebuilds the
// global dimensions, and merges the affected member-years into gold. Failed
// partitions stay dirty and are reported; they never abort the run. A
// partition whose gold merge did not commit on a previous run is in Merging
// and gets its merge finished without a silver recompute.
func (c *Coordinator) Run(ctx context.Context) (*RunReport, error) {
	wm, err := LoadWatermarks(c.root)
	if err != nil {
		return nil, err
	}
	report := &RunReport{Recovered: wm.RecoverProcessing()}
	for _, key := range report.Recovered {
		c.log.Warn("recovered partition left processing by a previous run", zap.String("partition", key))
	}

	sources, err := c.discoverSources()
	if err != nil {
		return nil, err
	}
	report.Partitions = len(sources)

	keys := make([]PartitionKey, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Prefix < keys[j].Prefix
	})

	type dirtyPartition struct {
		key      PartitionKey
		checksum string
	}
	var dirty, affected []dirtyPartition
	for _, k := range keys {
		sum, err := SourceChecksum(sources[k])
		if err != nil {
			return nil, err
		}
		ps := wm.Get(k)
		if ps != nil && ps.Checksum == sum {
			switch ps.State {
			case StateClean:
				report.Skipped++
				continue
			case StateMerging:
				// Silver is committed from an earlier run whose gold
				// merge never finished; only the merge is owed.
				report.Remerged = append(report.Remerged, k.String())
				affected = append(affected, dirtyPartition{key: k, checksum: sum})
				continue
			}
		}
		dirty = append(dirty, dirtyPartition{key: k, checksum: sum})
	}

	if len(dirty) == 0 && len(affected) == 0 {
		c.log.Info("no dirty partitions", zap.Int("partitions", report.Partitions))
		return report, wm.Save(c.root)
	}

	if len(dirty) > 0 {
		// Dimensions are global: the beneficiary dim is one unpartitioned
		// file and provider dedup is a single reduction across every
		// partition's candidate rows. Rebuilt once per run before the
		// partition fan-out.
		if err := c.rebuildDimensions(); err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, d := range dirty {
		d := d
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lock := c.partitionLock(d.key)
			lock.Lock()
			defer lock.Unlock()

			if err := c.transition(wm, d.key, StateProcessing, d.checksum); err != nil {
				return err
			}
			if err := c.recomputePartition(d.key); err != nil {
				c.log.Error("partition failed",
					zap.String("partition", d.key.String()),
					zap.Error(err))
				mu.Lock()
				report.Failed = append(report.Failed, d.key.String())
				mu.Unlock()
				return c.transition(wm, d.key, StateDirty, d.checksum)
			}
			if err := c.transition(wm, d.key, StateMerging, d.checksum); err != nil {
				return err
			}
			mu.Lock()
			affected = append(affected, d)
			report.Recomputed++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	sort.Strings(report.Failed)

	affectedKeys := make([]PartitionKey, len(affected))
	for i, a := range affected {
		affectedKeys[i] = a.key
	}
	if err := c.mergeGold(affectedKeys); err != nil {
		return report, err
	}
	// Clean only once the gold merge has committed; a crash before this
	// point leaves the partitions in Merging for the next run to finish.
	for _, a := range affected {
		if err := c.transition(wm, a.key, StateClean, a.checksum); err != nil {
			return report, err
		}
	}
	if err := wm.Save(c.root); err != nil {
		return report, err
	}

	c.log.Info("merge run complete",
		zap.Int("partitions", report.Partitions),
		zap.Int("recomputed", report.Recomputed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// RebuildGold recomputes gold aggregates for every bronze partition,
// regardless of watermark state. The silver layer is read as-is; use Run
// first when silver may be stale.
func (c *Coordinator) RebuildGold(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sources, err := c.discoverSources()
	if err != nil {
		return err
	}
	keys := make([]PartitionKey, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Prefix < keys[j].Prefix
	})
	return c.mergeGold(keys)
}

// discoverSources lists every bronze file grouped by partition key, across
// all five record types.
func (c *Coordinator) discoverSources() (map[PartitionKey][]string, error) {
	sources := make(map[PartitionKey][]string)
	for _, rt := range model.RecordTypes {
		files, err := lake.ListPartitionedFiles(lake.TableDir(c.root, lake.Bronze, string(rt)))
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			year, prefix, err := lake.ParsePartitionPath(path)
			if err != nil {
				return nil, fmt.Errorf("bronze layout: %w", err)
			}
			k := PartitionKey{Year: year, Prefix: prefix}
			sources[k] = append(sources[k], path)
		}
	}
	return sources, nil
}

// rebuildDimensions recomputes dim_beneficiary and dim_provider from the full
// bronze layer and writes each as a single file.
func (c *Coordinator) rebuildDimensions() error {
	bene, err := lake.ReadTable[model.BeneficiaryRaw](lake.TableDir(c.root, lake.Bronze, string(model.RecordBeneficiary)))
	if err != nil {
		return err
	}
	inpatient, err := lake.ReadTable[model.InstitutionalClaimRaw](lake.TableDir(c.root, lake.Bronze, string(model.RecordInpatient)))
	if err != nil {
		return err
	}
	outpatient, err := lake.ReadTable[model.InstitutionalClaimRaw](lake.TableDir(c.root, lake.Bronze, string(model.RecordOutpatient)))
	if err != nil {
		return err
	}
	carrier, err := lake.ReadTable[model.CarrierClaimRaw](lake.TableDir(c.root, lake.Bronze, string(model.RecordCarrier)))
	if err != nil {
		return err
	}
	rx, err := lake.ReadTable[model.PrescriptionRaw](lake.TableDir(c.root, lake.Bronze, string(model.RecordPrescription)))
	if err != nil {
		return err
	}

	dims := silver.BuildBeneficiaryDim(bene)
	if err := lake.ReplacePartition(lake.TableDir(c.root, lake.Silver, lake.TableBeneficiaryDim), lake.TableBeneficiaryDim, dims); err != nil {
		return err
	}

	acc := silver.NewProviderAccumulator()
	acc.ObserveInstitutional(inpatient)
	acc.ObserveInstitutional(outpatient)
	acc.ObserveCarrier(carrier)
	acc.ObservePrescriptions(rx)
	providers := acc.Finalize()
	if err := lake.ReplacePartition(lake.TableDir(c.root, lake.Silver, lake.TableProviderDim), lake.TableProviderDim, providers); err != nil {
		return err
	}

	c.log.Info("rebuilt dimensions",
		zap.Int("beneficiaries", len(dims)),
		zap.Int("providers", len(providers)))
	return nil
}

// recomputePartition rebuilds every partitioned silver table of one
// (year, bene_id_prefix) from its bronze rows, replacing prior output.
func (c *Coordinator) recomputePartition(k PartitionKey) error {
	inpatient, err := readBronzePartition[model.InstitutionalClaimRaw](c, model.RecordInpatient, k)
	if err != nil {
		return err
	}
	outpatient, err := readBronzePartition[model.InstitutionalClaimRaw](c, model.RecordOutpatient, k)
	if err != nil {
		return err
	}
	carrier, err := readBronzePartition[model.CarrierClaimRaw](c, model.RecordCarrier, k)
	if err != nil {
		return err
	}
	rx, err := readBronzePartition[model.PrescriptionRaw](c, model.RecordPrescription, k)
	if err != nil {
		return err
	}

	claims := silver.BuildInstitutionalClaims(inpatient, model.ClaimTypeInpatient)
	claims = append(claims, silver.BuildInstitutionalClaims(outpatient, model.ClaimTypeOutpatient)...)
	claims = append(claims, silver.BuildCarrierClaims(carrier)...)
	sort.Slice(claims, func(i, j int) bool { return claims[i].ClaimID < claims[j].ClaimID })

	diagnoses := silver.BuildInstitutionalDiagnoses(inpatient, model.ClaimTypeInpatient)
	diagnoses = append(diagnoses, silver.BuildInstitutionalDiagnoses(outpatient, model.ClaimTypeOutpatient)...)
	diagnoses = append(diagnoses, silver.BuildCarrierDiagnoses(carrier)...)
	sort.Slice(diagnoses, func(i, j int) bool {
		if diagnoses[i].ClaimID != diagnoses[j].ClaimID {
			return diagnoses[i].ClaimID < diagnoses[j].ClaimID
		}
		return diagnoses[i].DiagnosisPosition < diagnoses[j].DiagnosisPosition
	})

	prescriptions := silver.BuildPrescriptionFacts(rx)

	claimDir := lake.PartitionDir(lake.TableDir(c.root, lake.Silver, lake.TableClaims), k.Year, k.Prefix)
	if err := lake.ReplacePartition(claimDir, lake.TableClaims, claims); err != nil {
		return err
	}
	diagDir := lake.PartitionDir(lake.TableDir(c.root, lake.Silver, lake.TableClaimDiagnoses), k.Year, k.Prefix)
	if err := lake.ReplacePartition(diagDir, lake.TableClaimDiagnoses, diagnoses); err != nil {
		return err
	}
	rxDir := lake.PartitionDir(lake.TableDir(c.root, lake.Silver, lake.TablePrescriptions), k.Year, k.Prefix)
	if err := lake.ReplacePartition(rxDir, lake.TablePrescriptions, prescriptions); err != nil {
		return err
	}

	c.log.Info("recomputed partition",
		zap.String("partition", k.String()),
		zap.Int("claims", len(claims)),
		zap.Int("diagnoses", len(diagnoses)),
		zap.Int("prescriptions", len(prescriptions)))
	return nil
}

func readBronzePartition[T any](c *Coordinator, rt model.RecordType, k PartitionKey) ([]T, error) {
	dir := lake.PartitionDir(lake.TableDir(c.root, lake.Bronze, string(rt)), k.Year, k.Prefix)
	return lake.ReadTable[T](dir)
}
