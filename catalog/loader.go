package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/assessrec/core"
)

// Column names expected in the catalog header.
const (
	ColumnName                 = "name"
	ColumnDescription          = "description"
	ColumnDuration             = "duration"
	ColumnTestType             = "test_type"
	ColumnRemoteTestingSupport = "remote_testing_support"
	ColumnURL                  = "url"
)

// RequiredColumns lists every column the loader needs. Extra columns are ignored.
var RequiredColumns = []string{
	ColumnName,
	ColumnDescription,
	ColumnDuration,
	ColumnTestType,
	ColumnRemoteTestingSupport,
	ColumnURL,
}

const utf8BOM = "\ufeff"

// Load reads a CSV catalog from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogLoad, err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a CSV catalog from r.
// The first row must be a header naming at least RequiredColumns.
func Read(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", core.ErrCatalogLoad)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogLoad, err)
	}

	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var assessments []core.Assessment
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCatalogLoad, err)
		}

		minutes, err := parseDuration(fields[columns[ColumnDuration]])
		if err != nil {
			return nil, newLoadError(row, err)
		}

		assessments = append(assessments, core.Assessment{
			Name:                 fields[columns[ColumnName]],
			URL:                  fields[columns[ColumnURL]],
			Duration:             minutes,
			TestType:             fields[columns[ColumnTestType]],
			RemoteTestingSupport: fields[columns[ColumnRemoteTestingSupport]],
			Description:          fields[columns[ColumnDescription]],
		})
	}

	return New(assessments)
}

// indexColumns maps each required column to its position in the header.
func indexColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := positions[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", core.ErrCatalogLoad, strings.Join(missing, ", "))
	}
	return positions, nil
}

// parseDuration coerces a duration cell to whole minutes.
// Integral decimals such as "30.0" are accepted; fractional, empty or negative values are not.
func parseDuration(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		if err := core.ValidateDuration(n); err != nil {
			return 0, err
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("duration %q is not an integer", raw)
	}
	n := int(f)
	if err := core.ValidateDuration(n); err != nil {
		return 0, err
	}
	return n, nil
}

func newLoadError(row int, err error) error {
	return fmt.Errorf("%w: row %d: %w", core.ErrCatalogLoad, row, err)
}
