package view

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Registers the sqlite3 driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/sarchlab/devscore/atomicmodel"
	"github.com/sarchlab/devscore/devsevent"
	"github.com/sarchlab/devscore/devstime"
	"github.com/tebeka/atexit"
)

// observationRow is one buffered row awaiting a batch Flush.
type observationRow struct {
	target devsevent.SimulatorID
	port   string
	view   string
	time   devstime.Time
	kind   atomicmodel.ValueKind
	value  string
}

// SQLiteStreamWriter is the local StreamWriter backend, grounded on
// tracing's SQLiteTraceWriter: a single SQLite table, batched inserts
// flushed on Close.
type SQLiteStreamWriter struct {
	db        *sql.DB
	statement *sql.Stmt

	location  string
	table     string
	batch     []observationRow
	batchSize int
}

// NewSQLiteStreamWriter creates an unopened SQLiteStreamWriter. Call
// Open before Process.
func NewSQLiteStreamWriter() *SQLiteStreamWriter {
	w := &SQLiteStreamWriter{batchSize: 10000}

	atexit.Register(func() { _ = w.flush() })

	return w
}

// Open establishes the database connection and creates the observation
// table, named file, at location.
func (w *SQLiteStreamWriter) Open(
	plugin, location, file string,
	data map[string]string,
	t0 devstime.Time,
) error {
	_ = plugin
	_ = data
	_ = t0

	w.location = location
	w.table = file

	if w.table == "" {
		w.table = "observations"
	}

	db, err := sql.Open("sqlite3", location)
	if err != nil {
		return fmt.Errorf("opening sqlite database %q: %w", location, err)
	}

	w.db = db

	if err := w.createTable(); err != nil {
		return err
	}

	return w.prepareStatement()
}

func (w *SQLiteStreamWriter) createTable() error {
	stmt := fmt.Sprintf(`
		create table if not exists %s (
			sim_id  varchar(200) not null,
			port    varchar(200) not null,
			view    varchar(200) not null,
			time    float        not null,
			kind    integer      not null,
			value   text         not null
		);
	`, w.table)

	if _, err := w.db.Exec(stmt); err != nil {
		return fmt.Errorf("creating observation table: %w", err)
	}

	return nil
}

func (w *SQLiteStreamWriter) prepareStatement() error {
	sqlStr := fmt.Sprintf(
		`insert into %s (sim_id, port, view, time, kind, value) values (?, ?, ?, ?, ?, ?)`,
		w.table,
	)

	stmt, err := w.db.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}

	w.statement = stmt

	return nil
}

// Process buffers one observation, flushing the batch once it reaches
// batchSize.
func (w *SQLiteStreamWriter) Process(evt devsevent.ObservationEvent, value atomicmodel.Value) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}

	w.batch = append(w.batch, observationRow{
		target: evt.Target,
		port:   evt.Port,
		view:   evt.View,
		time:   evt.Time,
		kind:   value.Kind(),
		value:  encoded,
	})

	if len(w.batch) >= w.batchSize {
		return w.flush()
	}

	return nil
}

func (w *SQLiteStreamWriter) flush() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt := tx.Stmt(w.statement)

	for _, row := range w.batch {
		if _, err := stmt.Exec(
			string(row.target), row.port, row.view,
			float64(row.time), int(row.kind), row.value,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting observation row: %w", err)
		}
	}

	w.batch = nil

	return tx.Commit()
}

// Close flushes any buffered rows and releases the database handle.
func (w *SQLiteStreamWriter) Close(tEnd devstime.Time) error {
	_ = tEnd

	if err := w.flush(); err != nil {
		return err
	}

	if w.statement != nil {
		_ = w.statement.Close()
	}

	if w.db != nil {
		return w.db.Close()
	}

	return nil
}

func encodeValue(value atomicmodel.Value) (string, error) {
	switch v := value.(type) {
	case atomicmodel.BoolValue:
		return fmt.Sprintf("%t", bool(v)), nil
	case atomicmodel.IntValue:
		return fmt.Sprintf("%d", int64(v)), nil
	case atomicmodel.DoubleValue:
		return fmt.Sprintf("%g", float64(v)), nil
	case atomicmodel.StringValue:
		return string(v), nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encoding observation value: %w", err)
		}

		return string(raw), nil
	}
}
