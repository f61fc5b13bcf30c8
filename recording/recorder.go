// Package recording persists bus traffic into an SQLite database. Tables
// are created reflectively from sample entry structs, inserts are batched,
// and a process-exit hook flushes whatever is still buffered.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Registers the SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A Recorder stores structured trace entries.
type Recorder interface {
	// CreateTable creates a table whose columns mirror the fields of the
	// sample entry struct.
	CreateTable(tableName string, sampleEntry any)

	// Insert buffers one entry for the named table.
	Insert(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

type table struct {
	entryType reflect.Type
	pending   []any
}

type sqliteRecorder struct {
	db        *sql.DB
	tables    map[string]*table
	batchSize int
}

// New creates a Recorder backed by an SQLite database file at path (the
// .sqlite3 extension is appended). An empty path picks a unique name. The
// file must not already exist.
func New(path string) Recorder {
	if path == "" {
		path = "ambasim_trace_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	return NewWithDB(db)
}

// NewWithDB creates a Recorder on an already-open database.
func NewWithDB(db *sql.DB) Recorder {
	r := &sqliteRecorder{
		db:        db,
		tables:    make(map[string]*table),
		batchSize: 4096,
	}

	atexit.Register(func() { r.Flush() })

	return r
}

func (r *sqliteRecorder) CreateTable(tableName string, sampleEntry any) {
	if _, ok := r.tables[tableName]; ok {
		panic(fmt.Errorf("table %s already exists", tableName))
	}

	fields := structs.Fields(sampleEntry)
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		mustBeStorableKind(f.Kind())
		columns = append(columns, f.Name())
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (%s)",
		tableName, strings.Join(columns, ", "))
	if _, err := r.db.Exec(stmt); err != nil {
		panic(err)
	}

	r.tables[tableName] = &table{
		entryType: reflect.TypeOf(sampleEntry),
	}
}

func (r *sqliteRecorder) Insert(tableName string, entry any) {
	t, ok := r.tables[tableName]
	if !ok {
		panic(fmt.Errorf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.entryType {
		panic(fmt.Errorf("table %s stores %s entries",
			tableName, t.entryType))
	}

	t.pending = append(t.pending, entry)
	if len(t.pending) >= r.batchSize {
		r.flushTable(tableName, t)
	}
}

func (r *sqliteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *sqliteRecorder) Flush() {
	for name, t := range r.tables {
		r.flushTable(name, t)
	}
}

func (r *sqliteRecorder) flushTable(name string, t *table) {
	if len(t.pending) == 0 {
		return
	}

	tx, err := r.db.Begin()
	if err != nil {
		panic(err)
	}

	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", t.entryType.NumField()), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s VALUES (%s)", name, placeholders))
	if err != nil {
		panic(err)
	}

	for _, entry := range t.pending {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	t.pending = t.pending[:0]
}

func mustBeStorableKind(kind reflect.Kind) {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
	default:
		panic(fmt.Errorf("field kind %s cannot be recorded", kind))
	}
}
