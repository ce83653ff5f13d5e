package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/chriserin/tap14/internal/report"
	"github.com/chriserin/tap14/tap"
)

type Run struct {
	ID         int64
	Source     string
	Version    string
	Plan       tap.Plan
	Passed     int
	Failed     int
	Skipped    int
	Todo       int
	BailedOut  bool
	RecordedAt string
}

// Result is one stored test point. Path joins the enclosing subtest names
// with "/" and Depth counts them, unnamed ones included.
type Result struct {
	Seq         int
	Path        string
	Depth       int
	OK          bool
	Number      *int
	Description *string
	Directive   *string
	Reason      *string
	YAML        []string
}

// RecordRun stores doc and every test it contains, nested ones included,
// in a single transaction. It returns the new run's id.
func RecordRun(db *sql.DB, source string, doc *tap.Document) (int64, error) {
	tally := report.Count(doc)

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (source, version, plan_first, plan_last, plan_reason, passed, failed, skipped, todo, bailed_out)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, source, doc.Preamble.Version, doc.Plan.First, doc.Plan.Last, doc.Plan.Reason,
		tally.Passed, tally.Failed, tally.Skipped, tally.Todo, tally.BailedOut)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (run_id, seq, path, depth, ok, number, description, directive, reason, yaml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	seq := 0
	err = tap.Walk(doc.Body, func(path []string, s tap.Statement) error {
		t, ok := s.(*tap.Test)
		if !ok {
			return nil
		}
		seq++
		var directive, reason, yaml *string
		if t.Directive != nil {
			key := t.Directive.Key.String()
			directive, reason = &key, t.Directive.Reason
		}
		if len(t.YAML) > 0 {
			joined := strings.Join(t.YAML, "\n")
			yaml = &joined
		}
		if _, err := stmt.Exec(runID, seq, strings.Join(path, "/"), len(path), t.Result, t.Number, t.Description, directive, reason, yaml); err != nil {
			return fmt.Errorf("inserting result %d: %w", seq, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

func ListRuns(db *sql.DB) ([]Run, error) {
	rows, err := db.Query(`
		SELECT id, source, version, plan_first, plan_last, plan_reason,
			passed, failed, skipped, todo, bailed_out, recorded_at
		FROM runs
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var reason sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.Version, &r.Plan.First, &r.Plan.Last, &reason,
			&r.Passed, &r.Failed, &r.Skipped, &r.Todo, &r.BailedOut, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if reason.Valid {
			r.Plan.Reason = &reason.String
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Results returns the stored tests of a run in source order. It fails if
// the run does not exist.
func Results(db *sql.DB, runID int64) ([]Result, error) {
	var exists int64
	if err := db.QueryRow(`SELECT id FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("run %d not found", runID)
	}

	rows, err := db.Query(`
		SELECT seq, path, depth, ok, number, description, directive, reason, yaml
		FROM results
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var number sql.NullInt64
		var desc, directive, reason, yaml sql.NullString
		if err := rows.Scan(&r.Seq, &r.Path, &r.Depth, &r.OK, &number, &desc, &directive, &reason, &yaml); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if number.Valid {
			n := int(number.Int64)
			r.Number = &n
		}
		r.Description = nullable(desc)
		r.Directive = nullable(directive)
		r.Reason = nullable(reason)
		if yaml.Valid {
			r.YAML = strings.Split(yaml.String, "\n")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
