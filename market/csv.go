package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// CSVRepository reads daily bars from a CSV dataset on disk.
//
// Rows are "date,symbol,open,high,low,close,volume" with dates formatted as
// 2006-01-02. A leading header row is skipped. Datasets may be plain .csv,
// xz-compressed (.csv.xz) or a .zip archive containing one or more CSV
// files.
type CSVRepository struct {
	Path string
}

// NewCSVRepository creates a repository over the dataset at path.
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{Path: path}
}

// Query loads the dataset and returns bars matching the symbols and the
// inclusive date range, sorted by date then symbol. An empty result is not
// an error.
func (r *CSVRepository) Query(symbols []string, start, end time.Time) ([]Bar, error) {
	bars, err := r.load()
	if err != nil {
		return nil, err
	}

	mem := NewMemoryRepository(bars...)
	return mem.Query(symbols, start, end)
}

func (r *CSVRepository) load() ([]Bar, error) {
	switch {
	case strings.HasSuffix(r.Path, ".zip"):
		return r.loadZip()
	case strings.HasSuffix(r.Path, ".xz"):
		return r.loadXZ()
	default:
		return r.loadPlain(r.Path)
	}
}

func (r *CSVRepository) loadPlain(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return readBars(f, path)
}

func (r *CSVRepository) loadXZ() ([]Bar, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("xz reader %s: %w", r.Path, err)
	}

	return readBars(xr, r.Path)
}

// loadZip extracts the archive into a temp dir and reads every CSV inside,
// so one archive can hold a file per symbol.
func (r *CSVRepository) loadZip() ([]Bar, error) {
	dir, err := os.MkdirTemp("", "backtester-dataset-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(r.Path, dir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", r.Path, err)
	}

	var bars []Bar
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".csv") {
			return err
		}
		fileBars, err := r.loadPlain(path)
		if err != nil {
			return err
		}
		bars = append(bars, fileBars...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bars, nil
}

func readBars(src io.Reader, name string) ([]Bar, error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true

	var bars []Bar
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		line++

		if line == 1 && strings.EqualFold(rec[0], "date") {
			continue
		}
		if len(rec) < 7 {
			return nil, fmt.Errorf("%s line %d: want 7 fields, got %d", name, line, len(rec))
		}

		b, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, line, err)
		}
		bars = append(bars, b)
	}

	return bars, nil
}

func parseBar(rec []string) (Bar, error) {
	date, err := time.Parse("2006-01-02", rec[0])
	if err != nil {
		return Bar{}, fmt.Errorf("bad date %q: %w", rec[0], err)
	}

	vals := make([]float64, 5)
	for i, field := range rec[2:7] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad number %q: %w", field, err)
		}
		vals[i] = v
	}

	return Bar{
		Symbol: rec[1],
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
