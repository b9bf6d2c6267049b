package tradelog

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"stocklog/internal/types"
)

const DefaultMetadataFile = "metadata.csv"

var DefaultTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

var (
	ErrNoMetadata = errors.New("partition has no metadata file")
	ErrBadTime    = errors.New("unparseable Time value")
	ErrBadPrice   = errors.New("unparseable Stock Price value")
)

// record mirrors the metadata.csv header. Everything is decoded as text
// so blank cells can be handled per column.
type record struct {
	Time           string `csv:"Time"`
	StockPrice     string `csv:"Stock Price"`
	Recommendation string `csv:"AI Recommendation"`
	Reason         string `csv:"Reason"`
	Note           string `csv:"Note"`
	Confidence     string `csv:"Confidence"`
	ScreenshotPath string `csv:"Screenshot Path"`
}

// Reader loads partitions from a data folder. It holds no state besides
// its settings; every call goes back to disk.
type Reader struct {
	Root         string
	MetadataFile string
	TimeLayouts  []string
}

func NewReader(root, metadataFile string, layouts []string) *Reader {
	if metadataFile == "" {
		metadataFile = DefaultMetadataFile
	}
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}
	return &Reader{Root: root, MetadataFile: metadataFile, TimeLayouts: layouts}
}

// Partitions lists the sub-directories of Root in chronological order.
func (r *Reader) Partitions() ([]types.Partition, error) {
	return ListPartitions(r.Root)
}

// ListPartitions returns the directories directly under root ordered by
// their dash-separated name components. That is only chronological when
// names are zero-padded YYYY-MM-DD, which callers are expected to ensure.
func ListPartitions(root string) ([]types.Partition, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read data folder %s: %w", root, err)
	}
	out := make([]types.Partition, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		out = append(out, types.Partition{Name: e.Name(), Dir: filepath.Join(root, e.Name())})
	}
	slices.SortStableFunc(out, func(a, b types.Partition) int {
		return ComparePartitionNames(a.Name, b.Name)
	})
	return out, nil
}

// ComparePartitionNames orders names by comparing their "-" separated
// components as strings, left to right; a name that is a prefix of
// another sorts first.
func ComparePartitionNames(a, b string) int {
	return slices.Compare(strings.Split(a, "-"), strings.Split(b, "-"))
}

// MetadataPath returns the metadata file for p, falling back to a
// gzip-compressed copy when only that exists.
func (r *Reader) MetadataPath(p types.Partition) (string, error) {
	plain := filepath.Join(p.Dir, r.MetadataFile)
	if _, err := os.Stat(plain); err == nil {
		return plain, nil
	}
	gz := plain + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return gz, nil
	}
	return "", fmt.Errorf("%s: %w", plain, ErrNoMetadata)
}

// Load parses every row of p's metadata file in file order.
func (r *Reader) Load(p types.Partition) ([]types.LogRow, error) {
	path, err := r.MetadataPath(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var in io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer gr.Close()
		in = gr
	}
	return r.decode(in, path)
}

func (r *Reader) decode(in io.Reader, path string) ([]types.LogRow, error) {
	var recs []*record
	if err := gocsv.Unmarshal(in, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rows := make([]types.LogRow, 0, len(recs))
	for i, rec := range recs {
		row, err := r.toRow(rec)
		if err != nil {
			// header is line 1
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *Reader) toRow(rec *record) (types.LogRow, error) {
	ts, err := r.parseTime(rec.Time)
	if err != nil {
		return types.LogRow{}, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(rec.StockPrice), 64)
	if err != nil {
		return types.LogRow{}, fmt.Errorf("%w %q", ErrBadPrice, rec.StockPrice)
	}
	// Confidence is informational only; blanks and junk read as zero.
	conf, _ := strconv.ParseFloat(strings.TrimSpace(rec.Confidence), 64)
	return types.LogRow{
		Time:           ts,
		Price:          price,
		Recommendation: rec.Recommendation,
		Reason:         rec.Reason,
		Note:           rec.Note,
		Confidence:     conf,
		ScreenshotPath: rec.ScreenshotPath,
	}, nil
}

func (r *Reader) parseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range r.TimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrBadTime, v)
}

// Compress gzips the metadata file of every partition whose name sorts
// strictly before cutoff. The plain copy is removed only once an archive
// holding the same bytes is in place. Load reads either form.
func (r *Reader) Compress(cutoff string) (int, error) {
	parts, err := r.Partitions()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range parts {
		if ComparePartitionNames(p.Name, cutoff) >= 0 {
			continue
		}
		plain := filepath.Join(p.Dir, r.MetadataFile)
		if _, err := os.Stat(plain); err != nil {
			continue
		}
		if err := gzipFile(plain); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// gzipFile archives p to p.gz and then removes p. An existing p.gz is
// kept only when it decodes to exactly p's content; otherwise it is
// replaced. The archive is written to a temp file and renamed into place.
func gzipFile(p string) error {
	gz := p + ".gz"
	want, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	if got, err := readGzip(gz); err == nil && bytes.Equal(got, want) {
		return os.Remove(p)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), filepath.Base(gz)+".*.tmp")
	if err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := writeGzip(tmp, want); err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}
	if got, err := readGzip(tmp.Name()); err != nil || !bytes.Equal(got, want) {
		return fmt.Errorf("compress %s: archive does not round-trip", p)
	}
	if err := os.Rename(tmp.Name(), gz); err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}
	renamed = true
	return os.Remove(p)
}

// writeGzip compresses data into f, syncs and closes it.
func writeGzip(f *os.File, data []byte) error {
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readGzip(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}
