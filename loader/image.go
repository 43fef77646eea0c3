package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/xitongsys/parquet-go-source/local"
)

// Memory image column names.
const (
	AddressColumn = "address"
	ValueColumn   = "value"
)

// Error definitions
var (
	ErrEmptyImage     = errors.New("empty memory image")
	ErrMissingColumn  = errors.New("memory image column missing")
	ErrBadValue       = errors.New("bad memory image value")
	ErrUnknownFormat  = errors.New("unknown memory image format")
	ErrDuplicateEntry = errors.New("duplicate memory image address")
)

// LoadMemoryImage reads an address→value table from a CSV (.csv), JSON lines
// (.json, .jsonl) or Parquet (.parquet) file. The table must have an
// "address" and a "value" column. Integers may be decimal or 0x-prefixed.
func LoadMemoryImage(path string) (map[int32]int32, error) {
	var (
		df  *dataframe.DataFrame
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		df, err = loadCSV(path)
	case ".json", ".jsonl":
		df, err = loadJSON(path)
	case ".parquet":
		df, err = loadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load memory image %s: %w", path, err)
	}

	image, err := ImageFromDataFrame(df)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return image, nil
}

func loadCSV(path string) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	df, err := imports.LoadFromCSV(context.Background(), file, imports.CSVLoadOptions{
		InferDataTypes:   true,
		TrimLeadingSpace: true,
		Comment:          '#',
	})
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyImage
	}

	return df, nil
}

func loadJSON(path string) (*dataframe.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyImage
	}

	// Columns load as strings so a column mixing numbers and hex strings
	// reaches toWord instead of failing type inference.
	df, err := imports.LoadFromJSON(context.Background(), bytes.NewReader(data),
		imports.JSONLoadOptions{
			DictateDataType: map[string]interface{}{
				AddressColumn: "",
				ValueColumn:   "",
			},
		})
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyImage
	}

	return df, nil
}

func loadParquet(path string) (*dataframe.DataFrame, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	df, err := imports.LoadFromParquet(context.Background(), fr)
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyImage
	}

	return df, nil
}

// ImageFromDataFrame converts a table with address and value columns into a
// memory image. Column names are matched case-insensitively.
func ImageFromDataFrame(df *dataframe.DataFrame) (map[int32]int32, error) {
	addrCol, err := findColumn(df, AddressColumn)
	if err != nil {
		return nil, err
	}
	valCol, err := findColumn(df, ValueColumn)
	if err != nil {
		return nil, err
	}

	if df.NRows() == 0 {
		return nil, ErrEmptyImage
	}

	image := make(map[int32]int32, df.NRows())
	for row := 0; row < df.NRows(); row++ {
		addr, err := toWord(addrCol.Value(row))
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", row+1, AddressColumn, err)
		}
		val, err := toWord(valCol.Value(row))
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", row+1, ValueColumn, err)
		}
		if _, dup := image[addr]; dup {
			return nil, fmt.Errorf("row %d: %w: %d", row+1, ErrDuplicateEntry, addr)
		}
		image[addr] = val
	}

	return image, nil
}

func findColumn(df *dataframe.DataFrame, name string) (dataframe.Series, error) {
	for _, s := range df.Series {
		if strings.EqualFold(strings.TrimSpace(s.Name()), name) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

// toWord converts a cell to a 32-bit word. Values in [2^31, 2^32) are taken
// as their two's-complement bit pattern.
func toWord(v interface{}) (int32, error) {
	var n int64

	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: empty cell", ErrBadValue)
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int:
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v", ErrBadValue, x)
		}
		n = int64(x)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadValue, x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrBadValue, v, v)
	}

	if n < math.MinInt32 || n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d out of 32-bit range", ErrBadValue, n)
	}

	return int32(uint32(n)), nil
}

// MemoryFrame builds an address/value table from a memory snapshot, sorted by
// address.
func MemoryFrame(image map[int32]int32) *dataframe.DataFrame {
	addrs := sortedAddresses(image)

	addrVals := make([]interface{}, len(addrs))
	valVals := make([]interface{}, len(addrs))
	for i, a := range addrs {
		addrVals[i] = int64(a)
		valVals[i] = int64(image[a])
	}

	return dataframe.NewDataFrame(
		dataframe.NewSeriesInt64(AddressColumn, nil, addrVals...),
		dataframe.NewSeriesInt64(ValueColumn, nil, valVals...),
	)
}

// SaveMemoryImage writes a memory snapshot as CSV, in the format
// LoadMemoryImage reads back.
func SaveMemoryImage(path string, image map[int32]int32) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory image file: %w", err)
	}
	defer file.Close()

	if err := exports.ExportToCSV(context.Background(), file, MemoryFrame(image)); err != nil {
		return fmt.Errorf("failed to write memory image: %w", err)
	}

	return nil
}

func sortedAddresses(image map[int32]int32) []int32 {
	addrs := make([]int32, 0, len(image))
	for a := range image {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
