package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"file_search_go/logger"
	"file_search_go/models"
)

// ErrStoreNotExist is returned by OpenExisting when the store file is missing.
var ErrStoreNotExist = errors.New("store does not exist")

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS files (
		path VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		mtime DOUBLE,
		size BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS index_metadata (
		key VARCHAR PRIMARY KEY,
		value VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_files_name ON files(name)`,
}

const upsertFileSQL = `
	INSERT INTO files (path, name, mtime, size)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (path) DO UPDATE SET
	name = excluded.name,
	mtime = excluded.mtime,
	size = excluded.size
`

// Database is one record store: a single file holding the index of one root.
type Database struct {
	db     *sql.DB
	path   string
	driver string
}

// Open opens (creating if needed) the store at path with the given engine.
// The schema is not touched; call Init for a new store.
func Open(driver, path string) (*Database, error) {
	eng, err := lookupEngine(driver)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating store directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(eng.driverName, eng.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if eng.singleConn {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	for _, pragma := range eng.pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("error configuring database: %w", err)
		}
	}

	return &Database{db: sqlDB, path: path, driver: driver}, nil
}

// OpenExisting opens a store file that must already exist, detecting its engine.
func OpenExisting(path string) (*Database, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotExist, path)
		}
		return nil, fmt.Errorf("error accessing store %s: %w", path, err)
	}
	driver, err := DetectDriver(path)
	if err != nil {
		return nil, err
	}
	return Open(driver, path)
}

// Create opens the store and initializes its schema.
func Create(driver, path string) (*Database, error) {
	d, err := Open(driver, path)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// OpenForIndexing returns a store ready to receive records. With rebuild set,
// any existing store file at path is removed first. An existing store is
// otherwise reopened with the engine it was created with.
func OpenForIndexing(driver, path string, rebuild bool) (*Database, error) {
	if rebuild {
		if err := Remove(path); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		detected, err := DetectDriver(path)
		if err != nil {
			return nil, err
		}
		driver = detected
	}
	return Create(driver, path)
}

// Remove deletes a store file and the journal files its engine keeps beside it.
func Remove(path string) error {
	for _, p := range []string{path, path + ".wal", path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error removing store file %s: %w", p, err)
		}
	}
	return nil
}

// MarkIndexed records the indexed root and the current time.
func (d *Database) MarkIndexed(root string) error {
	if err := d.SetMetadata(MetaRootPath, root); err != nil {
		return err
	}
	return d.SetMetadata(MetaIndexed, time.Now().Format(time.RFC3339))
}

// Init creates the tables and indexes if they are missing.
func (d *Database) Init() error {
	for _, stmt := range schemaStatements {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}

	logger.Info("database initialized", "path", d.path, "driver", d.driver)
	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the store file path.
func (d *Database) Path() string {
	return d.path
}

// Name returns the identifying name of the store (its file name).
func (d *Database) Name() string {
	return filepath.Base(d.path)
}

// Driver returns the engine name.
func (d *Database) Driver() string {
	return d.driver
}

// ClearData clears all existing data from the database.
func (d *Database) ClearData() error {
	if _, err := d.db.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("error clearing existing data: %w", err)
	}
	if _, err := d.db.Exec("DELETE FROM index_metadata"); err != nil {
		return fmt.Errorf("error clearing metadata: %w", err)
	}
	return nil
}

// SetMetadata sets a metadata key-value pair, replacing any previous value.
func (d *Database) SetMetadata(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO index_metadata (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("error setting %s: %w", key, err)
	}
	return nil
}

// GetMetadata returns a metadata value, or "" when unset.
func (d *Database) GetMetadata(key string) (string, error) {
	var value sql.NullString
	err := d.db.QueryRow("SELECT value FROM index_metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", key, err)
	}
	return value.String, nil
}

// UpsertFile inserts a record or replaces the record with the same path.
func (d *Database) UpsertFile(ctx context.Context, file models.FileRecord) error {
	_, err := d.db.ExecContext(ctx, upsertFileSQL, fileArgs(file)...)
	if err != nil {
		return fmt.Errorf("error inserting file %s: %w", file.Path, err)
	}
	return nil
}

// UpsertFiles writes all records in one transaction: either every record is
// stored or none is.
func (d *Database) UpsertFiles(ctx context.Context, files []models.FileRecord) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertFileSQL)
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, file := range files {
		if _, err := stmt.ExecContext(ctx, fileArgs(file)...); err != nil {
			return fmt.Errorf("error inserting file %s: %w", file.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing batch: %w", err)
	}
	return nil
}

func fileArgs(file models.FileRecord) []any {
	return []any{file.Path, file.Name, nullable(file.Mtime), nullable(file.Size)}
}

// nullable unwraps optional values; drivers receive plain values or nil.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// FieldSelector chooses the columns a substring query matches against.
type FieldSelector int

const (
	// FieldName matches the file name only.
	FieldName FieldSelector = iota
	// FieldNameOrPath matches the file name or the full path.
	FieldNameOrPath
)

// SubstringQuery describes a literal substring lookup.
type SubstringQuery struct {
	Fields        FieldSelector
	Pattern       string
	CaseSensitive bool
	Limit         int
}

// QuerySubstring returns records whose selected fields contain the pattern,
// ordered by path ascending and capped at Limit rows.
func (d *Database) QuerySubstring(ctx context.Context, q SubstringQuery) ([]models.SearchResult, error) {
	pattern := q.Pattern
	match := func(col string) string { return fmt.Sprintf("instr(%s, ?) > 0", col) }
	if !q.CaseSensitive {
		pattern = strings.ToLower(pattern)
		lower := d.lowerFunc()
		match = func(col string) string { return fmt.Sprintf("instr(%s(%s), ?) > 0", lower, col) }
	}

	where := match("name")
	args := []any{pattern}
	if q.Fields == FieldNameOrPath {
		where += " OR " + match("path")
		args = append(args, pattern)
	}

	query := fmt.Sprintf("SELECT path, name FROM files WHERE %s ORDER BY path LIMIT %d", where, q.Limit)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching files: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Path, &r.Name); err != nil {
			return nil, fmt.Errorf("error scanning search row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error searching files: %w", err)
	}
	return results, nil
}

func (d *Database) lowerFunc() string {
	if eng, err := lookupEngine(d.driver); err == nil && eng.lower != "" {
		return eng.lower
	}
	return "lower"
}

// Count returns the number of records in the store.
func (d *Database) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count); err != nil {
		return 0, fmt.Errorf("error getting file count: %w", err)
	}
	return count, nil
}

// GetFile retrieves a record by path. It returns nil when no record exists.
func (d *Database) GetFile(ctx context.Context, path string) (*models.FileRecord, error) {
	row := d.db.QueryRowContext(ctx, "SELECT path, name, mtime, size FROM files WHERE path = ?", path)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning file info: %w", err)
	}
	return &file, nil
}

// ListFiles retrieves all records ordered by path.
func (d *Database) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT path, name, mtime, size FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	defer rows.Close()

	var files []models.FileRecord
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning file row: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (models.FileRecord, error) {
	var (
		file  models.FileRecord
		mtime sql.NullFloat64
		size  sql.NullInt64
	)
	if err := row.Scan(&file.Path, &file.Name, &mtime, &size); err != nil {
		return file, err
	}
	if mtime.Valid {
		file.Mtime = &mtime.Float64
	}
	if size.Valid {
		file.Size = &size.Int64
	}
	return file, nil
}

// Stats summarizes the contents of a store.
type Stats struct {
	TotalFiles  int64
	TotalSize   int64
	RootPath    string
	IndexedTime time.Time
	FileTypes   map[string]int
}

// GetStats retrieves statistics from the database.
func (d *Database) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{FileTypes: make(map[string]int)}

	total, err := d.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalFiles = total

	err = d.db.QueryRowContext(ctx, "SELECT CAST(COALESCE(SUM(size), 0) AS BIGINT) FROM files").Scan(&stats.TotalSize)
	if err != nil {
		return nil, fmt.Errorf("error getting total size: %w", err)
	}

	if indexed, err := d.GetMetadata(MetaIndexed); err == nil && indexed != "" {
		if t, err := time.Parse(time.RFC3339, indexed); err == nil {
			stats.IndexedTime = t
		}
	}
	if root, err := d.GetMetadata(MetaRootPath); err == nil {
		stats.RootPath = root
	}

	rows, err := d.db.QueryContext(ctx, "SELECT name FROM files")
	if err != nil {
		logger.Warn("error getting file types", "err", err)
		return stats, nil
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			ext = "no_extension"
		}
		stats.FileTypes[ext]++
	}

	return stats, nil
}

// Metadata keys written by the indexing commands.
const (
	MetaRootPath = "root_path"
	MetaIndexed  = "indexed"
)

// ExecuteSQL executes a custom read query and prints the rows as a table.
func (d *Database) ExecuteSQL(ctx context.Context, w io.Writer, sqlQuery string) error {
	rows, err := d.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return fmt.Errorf("error executing SQL: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("error getting columns: %w", err)
	}

	fmt.Fprintln(w, strings.Join(columns, " | "))
	sep := make([]string, len(columns))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(w, strings.Join(sep, " | "))

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]string, len(columns))
		for i, val := range values {
			if val == nil {
				row[i] = "NULL"
			} else {
				row[i] = fmt.Sprintf("%v", val)
			}
		}
		fmt.Fprintln(w, strings.Join(row, " | "))
	}
	return rows.Err()
}
