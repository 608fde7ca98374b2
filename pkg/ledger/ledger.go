// Package ledger records training set runs in a SQLite database: one row per
// processed document and one row per line, written or skipped, with the
// reason and what the sanitize stages did.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gardar/ocrtrain/pkg/document"
	"github.com/gardar/ocrtrain/pkg/trainingset"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	dialect     TEXT NOT NULL,
	image_path  TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	written     INTEGER NOT NULL DEFAULT 0,
	error       TEXT
);
CREATE TABLE IF NOT EXISTS lines (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	line_id          TEXT NOT NULL,
	status           TEXT NOT NULL CHECK (status IN ('written', 'skipped')),
	reason           TEXT,
	text             TEXT,
	image_path       TEXT,
	intruders_top    INTEGER NOT NULL DEFAULT 0,
	intruders_bottom INTEGER NOT NULL DEFAULT 0,
	skew_angle       REAL,
	rotated          INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, line_id)
);
CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document_id);
`

// Line statuses.
const (
	StatusWritten = "written"
	StatusSkipped = "skipped"
)

// Ledger is a trainingset.Observer backed by SQLite. It is safe for
// concurrent use.
type Ledger struct {
	db  *sql.DB
	log *slog.Logger

	mu   sync.Mutex
	runs map[string]uuid.UUID // document id -> active run
}

var _ trainingset.Observer = (*Ledger)(nil)

// Open opens or creates the ledger database at path.
func Open(path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer, lines of concurrent documents queue up behind it
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Ledger{db: db, log: logger, runs: map[string]uuid.UUID{}}, nil
}

// Close closes the database.
func (l *Ledger) Close() error { return l.db.Close() }

// DocumentStarted opens a run for doc.
func (l *Ledger) DocumentStarted(doc *document.Document, imagePath string) {
	id := uuid.Must(uuid.NewV7())
	_, err := l.db.Exec(
		`INSERT INTO runs (id, document_id, dialect, image_path, started_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), doc.ID, doc.Dialect.String(), imagePath, time.Now().UnixMilli(),
	)
	if err != nil {
		l.log.Error("ledger: failed to record run", "document", doc.ID, "error", err)
		return
	}
	l.mu.Lock()
	l.runs[doc.ID] = id
	l.mu.Unlock()
}

// LineWritten records a written pair.
func (l *Ledger) LineWritten(docID string, p trainingset.Pair) {
	run, ok := l.run(docID)
	if !ok {
		return
	}
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO lines
			(run_id, line_id, status, text, image_path, intruders_top, intruders_bottom, skew_angle, rotated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.String(), p.LineID, StatusWritten, p.Text, p.ImagePath,
		p.Report.IntrudersTop, p.Report.IntrudersBottom, skewAngle(p), p.Report.Skew.Rotated,
	)
	if err != nil {
		l.log.Error("ledger: failed to record line", "document", docID, "line", p.LineID, "error", err)
	}
}

// LineSkipped records a line that produced no pair.
func (l *Ledger) LineSkipped(docID, lineID string, reason error) {
	run, ok := l.run(docID)
	if !ok {
		return
	}
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO lines (run_id, line_id, status, reason) VALUES (?, ?, ?, ?)`,
		run.String(), lineID, StatusSkipped, errorText(reason),
	)
	if err != nil {
		l.log.Error("ledger: failed to record line", "document", docID, "line", lineID, "error", err)
	}
}

// DocumentFinished closes the run of docID.
func (l *Ledger) DocumentFinished(docID string, written int, runErr error) {
	l.mu.Lock()
	run, ok := l.runs[docID]
	delete(l.runs, docID)
	l.mu.Unlock()
	if !ok {
		return
	}
	_, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, written = ?, error = ? WHERE id = ?`,
		time.Now().UnixMilli(), written, errorText(runErr), run.String(),
	)
	if err != nil {
		l.log.Error("ledger: failed to finish run", "document", docID, "error", err)
	}
}

func (l *Ledger) run(docID string) (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.runs[docID]
	return id, ok
}

// Run is one recorded document run.
type Run struct {
	ID         uuid.UUID
	DocumentID string
	Dialect    string
	Started    time.Time
	Finished   time.Time // zero while running
	Written    int
	Skipped    map[string]string // line id -> reason
	Error      string
}

// ErrNoRun is returned when a document has no recorded run.
var ErrNoRun = errors.New("no run recorded")

// LastRun returns the most recent run of a document with its skipped lines.
func (l *Ledger) LastRun(ctx context.Context, docID string) (Run, error) {
	var (
		r        Run
		id       string
		started  int64
		finished sql.NullInt64
		runErr   sql.NullString
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT id, document_id, dialect, started_at, finished_at, written, error
		 FROM runs WHERE document_id = ? ORDER BY id DESC LIMIT 1`, docID,
	).Scan(&id, &r.DocumentID, &r.Dialect, &started, &finished, &r.Written, &runErr)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w for %s", ErrNoRun, docID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to query run: %w", err)
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	r.Started = time.UnixMilli(started)
	if finished.Valid {
		r.Finished = time.UnixMilli(finished.Int64)
	}
	r.Error = runErr.String

	rows, err := l.db.QueryContext(ctx,
		`SELECT line_id, COALESCE(reason, '') FROM lines WHERE run_id = ? AND status = ? ORDER BY line_id`,
		id, StatusSkipped)
	if err != nil {
		return Run{}, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()
	r.Skipped = map[string]string{}
	for rows.Next() {
		var lineID, reason string
		if err := rows.Scan(&lineID, &reason); err != nil {
			return Run{}, err
		}
		r.Skipped[lineID] = reason
	}
	return r, rows.Err()
}

func skewAngle(p trainingset.Pair) any {
	if !p.Report.Skew.Detected {
		return nil
	}
	return p.Report.Skew.Angle
}

func errorText(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
