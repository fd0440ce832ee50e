package db

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
	"modernc.org/sqlite" // Pure Go SQLite driver
)

// unicodeLower is registered with SQLite, whose built-in lower() only folds ASCII.
const unicodeLower = "unicode_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(unicodeLower, 1, sqliteLower); err != nil {
		panic(fmt.Sprintf("registering %s: %v", unicodeLower, err))
	}
}

func sqliteLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", unicodeLower, v)
	}
}

// ErrUnknownDriver is returned for an unsupported engine or an unrecognized store file.
var ErrUnknownDriver = errors.New("unknown store driver")

type engine struct {
	driverName string
	dsn        func(path string) string
	// singleConn limits the pool to one connection; SQLite allows a single writer.
	singleConn bool
	pragmas    []string
	// lower names a SQL function that lowercases the full Unicode range.
	lower string
}

var engines = map[string]engine{
	"duckdb": {
		driverName: "duckdb",
		dsn:        func(path string) string { return path },
		lower:      "lower",
	},
	"sqlite": {
		driverName: "sqlite",
		dsn: func(path string) string {
			return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		},
		singleConn: true,
		lower:      unicodeLower,
		pragmas: []string{
			"PRAGMA synchronous=NORMAL",
			"PRAGMA temp_store=MEMORY",
		},
	},
}

// Drivers lists the supported engine names.
func Drivers() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupEngine(driver string) (engine, error) {
	eng, ok := engines[driver]
	if !ok {
		return engine{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return eng, nil
}

var (
	sqliteMagic = []byte("SQLite format 3\x00")
	duckdbMagic = []byte("DUCK")
)

// DetectDriver identifies the engine of an existing store file from its header.
func DetectDriver(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening store %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading store header %s: %w", path, err)
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, sqliteMagic):
		return "sqlite", nil
	case len(header) >= 12 && bytes.Equal(header[8:12], duckdbMagic):
		return "duckdb", nil
	}
	return "", fmt.Errorf("%w: unrecognized store file %s", ErrUnknownDriver, path)
}
