package db

import (
	"fmt"
	"strings"
)

// PipelineEvent represents a row in the pipeline_events table.
type PipelineEvent struct {
	ID        int
	Namespace string
	Event     string
	Phase     string
	Attempt   int
	Detail    string
	Timestamp string
}

// GateRow represents a row in the gate_results table.
type GateRow struct {
	ID        int
	Namespace string
	Phase     string
	Attempt   int
	Passed    bool
	Score     float64
	Threshold float64
	Issues    string
	Timestamp string
}

// AgentMetricRow represents a row in the agent_metrics table.
type AgentMetricRow struct {
	ID             int
	Namespace      string
	AgentID        string
	AgentType      string
	TasksCompleted int
	QualityScore   float64
	Efficiency     float64
	AvgDurationMs  float64
	Timestamp      string
}

// LogPipelineEvent inserts a pipeline event.
func (d *DB) LogPipelineEvent(namespace, event, phase string, attempt int, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO pipeline_events (namespace, event, phase, attempt, detail) VALUES (?, ?, ?, ?, ?)`,
		namespace, event, phase, attempt, detail,
	)
	if err != nil {
		return fmt.Errorf("log pipeline event: %w", err)
	}
	return nil
}

// LogGateResult inserts a quality gate evaluation.
func (d *DB) LogGateResult(namespace, phase string, attempt int, passed bool, score, threshold float64, issues []string) error {
	_, err := d.conn.Exec(
		`INSERT INTO gate_results (namespace, phase, attempt, passed, score, threshold, issues) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		namespace, phase, attempt, passed, score, threshold, strings.Join(issues, "; "),
	)
	if err != nil {
		return fmt.Errorf("log gate result: %w", err)
	}
	return nil
}

// LogAgentMetrics inserts a final agent performance snapshot.
func (d *DB) LogAgentMetrics(namespace, agentID, agentType string, tasksCompleted int, quality, efficiency, avgDurationMs float64) error {
	_, err := d.conn.Exec(
		`INSERT INTO agent_metrics (namespace, agent_id, agent_type, tasks_completed, quality_score, efficiency, avg_duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		namespace, agentID, agentType, tasksCompleted, quality, efficiency, avgDurationMs,
	)
	if err != nil {
		return fmt.Errorf("log agent metrics: %w", err)
	}
	return nil
}

// RecentEvents returns the most recent events for a namespace, newest first.
func (d *DB) RecentEvents(namespace string, limit int) ([]PipelineEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(
		`SELECT id, namespace, event, COALESCE(phase, ''), COALESCE(attempt, 0), COALESCE(detail, ''), timestamp
		 FROM pipeline_events WHERE namespace = ? ORDER BY id DESC LIMIT ?`,
		namespace, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []PipelineEvent
	for rows.Next() {
		var e PipelineEvent
		if err := rows.Scan(&e.ID, &e.Namespace, &e.Event, &e.Phase, &e.Attempt, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GateResults returns all gate evaluations for a namespace in insert order.
func (d *DB) GateResults(namespace string) ([]GateRow, error) {
	rows, err := d.conn.Query(
		`SELECT id, namespace, phase, attempt, passed, score, threshold, COALESCE(issues, ''), timestamp
		 FROM gate_results WHERE namespace = ? ORDER BY id`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("query gate results: %w", err)
	}
	defer rows.Close()

	var results []GateRow
	for rows.Next() {
		var g GateRow
		if err := rows.Scan(&g.ID, &g.Namespace, &g.Phase, &g.Attempt, &g.Passed, &g.Score, &g.Threshold, &g.Issues, &g.Timestamp); err != nil {
			return nil, fmt.Errorf("scan gate result: %w", err)
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// LatestAgentMetrics returns the newest metric snapshot per agent for a
// namespace.
func (d *DB) LatestAgentMetrics(namespace string) ([]AgentMetricRow, error) {
	rows, err := d.conn.Query(
		`SELECT am.id, am.namespace, am.agent_id, am.agent_type, am.tasks_completed,
		        am.quality_score, am.efficiency, am.avg_duration_ms, am.timestamp
		 FROM agent_metrics am
		 WHERE am.namespace = ?
		   AND am.id = (SELECT MAX(id) FROM agent_metrics WHERE agent_id = am.agent_id AND namespace = am.namespace)
		 ORDER BY am.agent_type`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("query agent metrics: %w", err)
	}
	defer rows.Close()

	var metrics []AgentMetricRow
	for rows.Next() {
		var m AgentMetricRow
		if err := rows.Scan(&m.ID, &m.Namespace, &m.AgentID, &m.AgentType, &m.TasksCompleted,
			&m.QualityScore, &m.Efficiency, &m.AvgDurationMs, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan agent metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
