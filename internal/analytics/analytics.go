// Package analytics aggregates the sqlite event log into per-phase duration
// and quality statistics for the analytics CLI.
package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"
)

// DB is the interface for database access used by analytics.
type DB interface {
	Conn() *sql.DB
}

// PhaseDuration holds duration stats for one phase across runs.
type PhaseDuration struct {
	Phase string  `json:"phase"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg_seconds"`
	P50   float64 `json:"p50_seconds"`
	P95   float64 `json:"p95_seconds"`
}

// GatePassRate holds gate outcomes for one phase across runs.
type GatePassRate struct {
	Phase       string  `json:"phase"`
	Evaluations int     `json:"evaluations"`
	PassRate    float64 `json:"pass_rate"`
	AvgScore    float64 `json:"avg_score"`
	Remediated  int     `json:"remediated"`
}

// timestampFormats to try when parsing timestamps from the database.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, f := range timestampFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// QueryPhaseDurations pairs each phase_succeeded/phase_failed event with the
// most recent prior phase_started event for the same namespace and phase.
func QueryPhaseDurations(database DB, since string) ([]PhaseDuration, error) {
	query := `
		SELECT pe1.namespace, pe1.phase, pe1.timestamp as end_ts,
			(SELECT MAX(pe2.timestamp) FROM pipeline_events pe2
			 WHERE pe2.namespace = pe1.namespace
			 AND pe2.phase = pe1.phase
			 AND pe2.event = 'phase_started'
			 AND pe2.id < pe1.id) as start_ts
		FROM pipeline_events pe1
		WHERE pe1.event IN ('phase_succeeded', 'phase_failed')
		AND pe1.phase != ''`

	args := []interface{}{}
	if since != "" {
		query += ` AND pe1.timestamp >= ?`
		args = append(args, since)
	}

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query phase durations: %w", err)
	}
	defer rows.Close()

	durations := make(map[string][]float64)
	for rows.Next() {
		var namespace, phase, endTS string
		var startTS sql.NullString
		if err := rows.Scan(&namespace, &phase, &endTS, &startTS); err != nil {
			return nil, fmt.Errorf("scan phase duration: %w", err)
		}
		if !startTS.Valid {
			continue
		}
		start, err := parseTimestamp(startTS.String)
		if err != nil {
			continue
		}
		end, err := parseTimestamp(endTS)
		if err != nil {
			continue
		}
		seconds := end.Sub(start).Seconds()
		if seconds >= 0 {
			durations[phase] = append(durations[phase], seconds)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var results []PhaseDuration
	for phase, vals := range durations {
		sort.Float64s(vals)
		results = append(results, PhaseDuration{
			Phase: phase,
			Count: len(vals),
			Avg:   avg(vals),
			P50:   percentile(vals, 50),
			P95:   percentile(vals, 95),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Phase < results[j].Phase
	})
	return results, nil
}

// QueryGatePassRates aggregates gate_results per phase, counting re-runs
// (attempt > 1) as remediations.
func QueryGatePassRates(database DB, since string) ([]GatePassRate, error) {
	query := `
		SELECT phase,
			COUNT(*) as total,
			SUM(CASE WHEN passed THEN 1 ELSE 0 END) as passed,
			AVG(score) as avg_score,
			SUM(CASE WHEN attempt > 1 THEN 1 ELSE 0 END) as remediated
		FROM gate_results`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE timestamp >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY phase ORDER BY phase`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query gate pass rates: %w", err)
	}
	defer rows.Close()

	var results []GatePassRate
	for rows.Next() {
		var r GatePassRate
		var passed int
		if err := rows.Scan(&r.Phase, &r.Evaluations, &passed, &r.AvgScore, &r.Remediated); err != nil {
			return nil, fmt.Errorf("scan gate pass rate: %w", err)
		}
		if r.Evaluations > 0 {
			r.PassRate = float64(passed) / float64(r.Evaluations)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RunOutcome summarises terminal events per namespace.
type RunOutcome struct {
	Namespace string `json:"namespace"`
	Outcome   string `json:"outcome"`
	Timestamp string `json:"timestamp"`
}

// QueryRunOutcomes lists the latest terminal event per namespace.
func QueryRunOutcomes(database DB) ([]RunOutcome, error) {
	rows, err := database.Conn().Query(`
		SELECT pe.namespace, pe.event, pe.timestamp
		FROM pipeline_events pe
		WHERE pe.event IN ('run_succeeded', 'run_failed', 'run_cancelled')
		AND pe.id = (SELECT MAX(id) FROM pipeline_events
			WHERE namespace = pe.namespace
			AND event IN ('run_succeeded', 'run_failed', 'run_cancelled'))
		ORDER BY pe.namespace`)
	if err != nil {
		return nil, fmt.Errorf("query run outcomes: %w", err)
	}
	defer rows.Close()

	var results []RunOutcome
	for rows.Next() {
		var r RunOutcome
		if err := rows.Scan(&r.Namespace, &r.Outcome, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run outcome: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// percentile computes the p-th percentile of sorted vals using
// nearest-rank.
func percentile(vals []float64, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	rank := int(math.Ceil(p/100*float64(len(vals)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(vals) {
		rank = len(vals) - 1
	}
	return vals[rank]
}
