package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AngelCh415/campaign-ab/internal/config"
	"github.com/AngelCh415/campaign-ab/internal/models"
	"github.com/AngelCh415/campaign-ab/internal/store"
)

var (
	ErrMissingColumn  = errors.New("missing column")
	ErrMalformedValue = errors.New("malformed value")
	ErrWindow         = errors.New("invalid observation window")
)

type Loader struct {
	st  *store.MemoryStore
	log *zap.Logger
	cfg config.InputConfig
}

func NewLoader(st *store.MemoryStore, log *zap.Logger, cfg config.InputConfig) *Loader {
	return &Loader{st: st, log: log, cfg: cfg}
}

// Run loads both variants into the store.
func (l *Loader) Run(ctx context.Context) (map[models.Variant]models.VariantDataset, error) {
	paths := map[models.Variant]string{
		models.Control: l.cfg.ControlPath,
		models.Test:    l.cfg.TestPath,
	}
	out := make(map[models.Variant]models.VariantDataset, len(paths))
	for _, v := range models.Variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, err := l.Load(v, paths[v])
		if err != nil {
			return nil, err
		}
		out[v] = ds
	}
	return out, nil
}

// Load reads one variant file, upserts its rows and validates the resulting window.
func (l *Loader) Load(v models.Variant, path string) (models.VariantDataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.VariantDataset{}, fmt.Errorf("%s input: %w", v, err)
	}
	recs, err := l.Parse(raw)
	if err != nil {
		return models.VariantDataset{}, fmt.Errorf("%s input %s: %w", v, path, err)
	}

	for _, r := range recs {
		key := string(v) + "|" + r.Date.Format("2006-01-02")
		if !l.st.MarkSeen(key) {
			l.log.Warn("duplicate date skipped", zap.String("variant", string(v)), zap.String("date", r.Date.Format("2006-01-02")))
			continue
		} // idempotencia
		l.st.Upsert(v, r)
	}

	ds := l.st.Dataset(v)
	if err := ValidateWindow(ds, l.cfg.WindowDays); err != nil {
		return models.VariantDataset{}, fmt.Errorf("%s input %s: %w", v, path, err)
	}
	l.log.Info("input loaded", zap.String("variant", string(v)), zap.String("path", path), zap.Int("rows", ds.Len()))
	return ds, nil
}

// Parse turns raw CSV bytes into records in file order.
func (l *Loader) Parse(raw []byte) ([]models.CampaignRecord, error) {
	comma, err := l.cfg.Comma()
	if err != nil {
		return nil, err
	}
	if comma == 0 {
		comma = sniffDelimiter(raw)
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.WithDelimiter(comma),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	cols := map[string][]string{}
	for _, name := range df.Names() {
		n := NormalizeColumn(name)
		if _, dup := cols[n]; dup {
			return nil, fmt.Errorf("%w: column %q appears twice", ErrMalformedValue, n)
		}
		cols[n] = df.Col(name).Records()
	}
	for _, c := range Schema {
		if _, ok := cols[c]; ok {
			continue
		}
		if !optional[c] {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
		l.log.Warn("optional column absent, using 0", zap.String("column", c))
		cols[c] = make([]string, df.Nrow())
	}

	layout := l.cfg.DateLayout
	recs := make([]models.CampaignRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		p := rowParser{row: i, cols: cols, log: l.log}
		d, err := time.Parse(layout, strings.TrimSpace(cols[colDate][i]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d date %q", ErrMalformedValue, i+1, cols[colDate][i])
		}
		r := models.CampaignRecord{
			Date:          d,
			Spend:         p.money(colSpend),
			Impressions:   p.count(colImpressions),
			Reach:         p.count(colReach),
			WebsiteClicks: p.count(colWebsiteClicks),
			Searches:      p.count(colSearches),
			ViewContent:   p.count(colViewContent),
			AddToCart:     p.count(colAddToCart),
			Checkout:      p.count(colCheckout),
			Purchases:     p.count(colPurchases),
		}
		if p.err != nil {
			return nil, p.err
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// ValidateWindow checks length (window 0 disables it) and that dates are consecutive days.
func ValidateWindow(ds models.VariantDataset, window int) error {
	if ds.Len() == 0 {
		return fmt.Errorf("%w: no rows", ErrWindow)
	}
	if window > 0 && ds.Len() != window {
		return fmt.Errorf("%w: %d rows, want %d", ErrWindow, ds.Len(), window)
	}
	for i := 1; i < ds.Len(); i++ {
		prev, cur := ds.Records[i-1].Date, ds.Records[i].Date
		if !cur.Equal(prev.AddDate(0, 0, 1)) {
			return fmt.Errorf("%w: gap between %s and %s", ErrWindow, prev.Format("2006-01-02"), cur.Format("2006-01-02"))
		}
	}
	return nil
}

// rowParser keeps the first error so a row can be read field by field.
type rowParser struct {
	row  int
	cols map[string][]string
	log  *zap.Logger
	err  error
}

func (p *rowParser) cell(col string) (string, bool) {
	s := strings.TrimSpace(p.cols[col][p.row])
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		if !optional[col] || s != "" {
			p.log.Warn("missing value, using 0", zap.Int("row", p.row+1), zap.String("column", col))
		}
		return "", false
	}
	return s, true
}

func (p *rowParser) fail(col, s string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: row %d %s %q", ErrMalformedValue, p.row+1, col, s)
	}
}

func (p *rowParser) count(col string) int64 {
	s, ok := p.cell(col)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// pandas escribe conteos como float cuando hubo NaN
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			p.fail(col, s)
			return 0
		}
		n = int64(f)
	}
	if n < 0 {
		p.fail(col, s)
		return 0
	}
	return n
}

func (p *rowParser) money(col string) decimal.Decimal {
	s, ok := p.cell(col)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		p.fail(col, s)
		return decimal.Zero
	}
	return d
}
