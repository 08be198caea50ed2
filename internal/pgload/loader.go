// Package pgload publishes gold tables into PostgreSQL for the read-only
// serving side. Loads are idempotent upserts keyed the same way as the gold
// tables, so reloading after a pipeline run converges instead of duplicating.
package pgload

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/johnwalz97/medicare-pipeline/internal/lake"
	"github.com/johnwalz97/medicare-pipeline/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS member_year_metrics (
    bene_id             TEXT   NOT NULL,
    year                INT    NOT NULL,
    gender              TEXT,
    race                TEXT,
    state               TEXT,
    total_allowed_cents BIGINT NOT NULL,
    total_paid_cents    BIGINT NOT NULL,
    inpatient_stays     BIGINT NOT NULL,
    outpatient_visits   BIGINT NOT NULL,
    carrier_claims      BIGINT NOT NULL,
    unique_providers    BIGINT NOT NULL,
    rx_fills            BIGINT NOT NULL,
    PRIMARY KEY (bene_id, year)
);

CREATE TABLE IF NOT EXISTS top_diagnoses_by_member (
    bene_id                 TEXT   NOT NULL,
    year                    INT    NOT NULL,
    diagnosis_code          TEXT   NOT NULL,
    diagnosis_description   TEXT   NOT NULL,
    diagnosis_payment_cents BIGINT NOT NULL,
    diagnosis_rank          INT    NOT NULL,
    PRIMARY KEY (bene_id, year, diagnosis_code)
);
`

const upsertMetric = `
INSERT INTO member_year_metrics (
    bene_id, year, gender, race, state,
    total_allowed_cents, total_paid_cents,
    inpatient_stays, outpatient_visits, carrier_claims,
    unique_providers, rx_fills
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (bene_id, year) DO UPDATE SET
    gender = EXCLUDED.gender,
    race = EXCLUDED.race,
    state = EXCLUDED.state,
    total_allowed_cents = EXCLUDED.total_allowed_cents,
    total_paid_cents = EXCLUDED.total_paid_cents,
    inpatient_stays = EXCLUDED.inpatient_stays,
    outpatient_visits = EXCLUDED.outpatient_visits,
    carrier_claims = EXCLUDED.carrier_claims,
    unique_providers = EXCLUDED.unique_providers,
    rx_fills = EXCLUDED.rx_fills
`

const upsertDiagnosis = `
INSERT INTO top_diagnoses_by_member (
    bene_id, year, diagnosis_code, diagnosis_description,
    diagnosis_payment_cents, diagnosis_rank
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (bene_id, year, diagnosis_code) DO UPDATE SET
    diagnosis_description = EXCLUDED.diagnosis_description,
    diagnosis_payment_cents = EXCLUDED.diagnosis_payment_cents,
    diagnosis_rank = EXCLUDED.diagnosis_rank
`

const batchSize = 500

// Loader owns the serving database connection.
type Loader struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// Connect opens the pool, verifies the connection, and ensures the serving
// schema exists.
func Connect(ctx context.Context, connStr string, log *zap.Logger) (*Loader, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Loader{pool: pool, log: log.Named("pgload")}, nil
}

func (l *Loader) Close() {
	l.pool.Close()
}

// LoadAll loads both serving tables from the gold layer and returns the total
// number of upserted rows.
func (l *Loader) LoadAll(ctx context.Context, lakeRoot string) (int64, error) {
	metrics, err := l.LoadMetrics(ctx, lakeRoot)
	if err != nil {
		return 0, err
	}
	diagnoses, err := l.LoadTopDiagnoses(ctx, lakeRoot)
	if err != nil {
		return metrics, err
	}
	return metrics + diagnoses, nil
}

// LoadMetrics upserts every member_year_metrics row.
func (l *Loader) LoadMetrics(ctx context.Context, lakeRoot string) (int64, error) {
	rows, err := lake.ReadTable[model.MemberYearMetric](lake.TableDir(lakeRoot, lake.Gold, lake.TableMemberYearMetric))
	if err != nil {
		return 0, err
	}
	n, err := upsertBatched(ctx, l.pool, rows, func(b *pgx.Batch, m *model.MemberYearMetric) {
		b.Queue(upsertMetric,
			m.BeneID, m.Year, m.Sex, m.Race, m.State,
			m.TotalAllowedCents, m.TotalPaidCents,
			m.InpatientStays, m.OutpatientVisits, m.CarrierClaims,
			m.UniqueProviders, m.RxFills)
	})
	if err != nil {
		return n, fmt.Errorf("load member_year_metrics: %w", err)
	}
	l.log.Info("loaded member_year_metrics", zap.Int64("rows", n))
	return n, nil
}

// LoadTopDiagnoses upserts every top_diagnoses_by_member row.
func (l *Loader) LoadTopDiagnoses(ctx context.Context, lakeRoot string) (int64, error) {
	rows, err := lake.ReadTable[model.DiagnosisRanking](lake.TableDir(lakeRoot, lake.Gold, lake.TableTopDiagnoses))
	if err != nil {
		return 0, err
	}
	n, err := upsertBatched(ctx, l.pool, rows, func(b *pgx.Batch, r *model.DiagnosisRanking) {
		b.Queue(upsertDiagnosis,
			r.BeneID, r.Year, r.DiagnosisCode, r.DiagnosisDescription,
			r.DiagnosisPaymentCents, r.DiagnosisRank)
	})
	if err != nil {
		return n, fmt.Errorf("load top_diagnoses_by_member: %w", err)
	}
	l.log.Info("loaded top_diagnoses_by_member", zap.Int64("rows", n))
	return n, nil
}

// upsertBatched queues rows into pgx batches inside one transaction, so a
// partial load never becomes visible to the serving side.
func upsertBatched[T any](ctx context.Context, pool *pgxpool.Pool, rows []T, queue func(*pgx.Batch, *T)) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var total int64
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(batch, &rows[i])
		}
		br := tx.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return total, err
			}
			total++
		}
		if err := br.Close(); err != nil {
			return total, err
		}
	}
	return total, tx.Commit(ctx)
}
