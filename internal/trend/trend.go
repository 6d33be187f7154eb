package trend

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"finagent/internal/domain"
)

var (
	revenueKeywords = []string{
		"revenue", "net revenue", "total revenue", "sales", "net sales",
	}
	incomeKeywords = []string{
		"operating income", "income from operations", "net income",
		"operating profit", "gross profit", "gross margin",
	}

	fiscalYearRe = regexp.MustCompile(`(?i)FY(\d{2,4})`)
	numericRe    = regexp.MustCompile(`[^\d.\-]`)
)

const maxDiagnosticColumns = 20

// Analyzer computes year-over-year metric trends from structured tabular
// extracts on disk.
type Analyzer struct {
	dir string
	log *zap.Logger
}

func NewAnalyzer(dir string, log *zap.Logger) *Analyzer {
	return &Analyzer{dir: dir, log: log}
}

// table is one loaded CSV file: column headers plus string rows.
type table struct {
	sourceFile string
	columns    []string
	rows       [][]string
}

// Analyze runs the trend analysis for a query and returns a normalised
// tool output. The metric vocabulary is picked from the query text:
// income/profit/operating terms select the income vocabulary, everything
// else selects revenue.
func (a *Analyzer) Analyze(query string) domain.ToolOutput {
	tables, err := a.loadTables()
	if err != nil {
		return domain.ToolOutput{Status: domain.StatusError, Message: err.Error()}
	}

	metricLabel, keywords := MetricForQuery(query)

	matching := matchColumns(tables, keywords)
	if len(matching) == 0 {
		return domain.ToolOutput{
			Status:  domain.StatusNoData,
			Message: fmt.Sprintf("no columns matching %q found in structured data", metricLabel),
			Trend: &domain.TrendResult{
				MetricLabel:      metricLabel,
				AvailableColumns: availableColumns(tables, maxDiagnosticColumns),
			},
		}
	}

	valuesByYear := collectValues(tables, keywords)
	if len(valuesByYear) == 0 {
		return domain.ToolOutput{
			Status:  domain.StatusNoNumericData,
			Message: "could not parse numeric values from matching columns",
			Trend: &domain.TrendResult{
				MetricLabel:     metricLabel,
				MatchingColumns: matching,
			},
		}
	}

	yoy := computeYoY(valuesByYear)
	a.log.Info("trend analysis complete",
		zap.String("metric", metricLabel),
		zap.Int("years", len(valuesByYear)),
		zap.Strings("columns", matching),
	)
	return domain.ToolOutput{
		Status: domain.StatusOK,
		Trend: &domain.TrendResult{
			MetricLabel:  metricLabel,
			ValuesByYear: roundValues(valuesByYear),
			YoYGrowthPct: yoy,
			ColumnsUsed:  matching,
		},
	}
}

// Collect returns the per-year metric values for a query without the YoY
// computation. The plot path uses it to feed the chart renderer.
func (a *Analyzer) Collect(query string) (string, map[string]float64, error) {
	tables, err := a.loadTables()
	if err != nil {
		return "", nil, err
	}
	metricLabel, keywords := MetricForQuery(query)
	return metricLabel, collectValues(tables, keywords), nil
}

// MetricForQuery selects the metric label and its column vocabulary by
// inspecting the query text.
func MetricForQuery(query string) (string, []string) {
	lower := strings.ToLower(query)
	for _, kw := range []string{"income", "profit", "operating"} {
		if strings.Contains(lower, kw) {
			return "Operating Income", incomeKeywords
		}
	}
	return "Revenue", revenueKeywords
}

func (a *Analyzer) loadTables() ([]table, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s; run ingestion first", a.dir)
	}
	sort.Strings(paths)

	var tables []table
	for _, p := range paths {
		t, err := readCSV(p)
		if err != nil {
			a.log.Warn("could not load CSV", zap.String("file", p), zap.Error(err))
			continue
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("all CSV files in %s failed to load", a.dir)
	}
	return tables, nil
}

func readCSV(path string) (table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return table{}, err
	}
	if len(records) == 0 {
		return table{}, fmt.Errorf("empty CSV %s", path)
	}
	return table{
		sourceFile: filepath.Base(path),
		columns:    records[0],
		rows:       records[1:],
	}, nil
}

// matchColumns returns unique column names across all tables that contain
// any keyword, case-insensitive.
func matchColumns(tables []table, keywords []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range tables {
		for _, col := range t.columns {
			if seen[col] {
				continue
			}
			if columnMatches(col, keywords) {
				seen[col] = true
				out = append(out, col)
			}
		}
	}
	sort.Strings(out)
	return out
}

func columnMatches(col string, keywords []string) bool {
	lower := strings.ToLower(col)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// collectValues aggregates one value per fiscal year across all tables.
// The year comes from the source filename; rows without a derivable year
// are skipped. Non-positive parses are treated as noise; the maximum per
// year wins over duplicated subtotal rows.
func collectValues(tables []table, keywords []string) map[string]float64 {
	values := map[string]float64{}
	for _, t := range tables {
		year := YearFromFilename(t.sourceFile)
		if year == "" {
			continue
		}
		for ci, col := range t.columns {
			if !columnMatches(col, keywords) {
				continue
			}
			for _, row := range t.rows {
				if ci >= len(row) {
					continue
				}
				val, ok := ParseNumeric(row[ci])
				if !ok || val <= 0 {
					continue
				}
				if cur, exists := values[year]; !exists || val > cur {
					values[year] = val
				}
			}
		}
	}
	return values
}

// YearFromFilename derives the fiscal year from a filename like
// MSFT_FY23Q4_10K.csv. Two-digit years get a 20 prefix.
func YearFromFilename(name string) string {
	m := fiscalYearRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	y := m[1]
	if len(y) == 2 {
		return "20" + y
	}
	return y
}

// ParseNumeric parses a possibly locale-formatted number string such as
// "211,915" or "$123.4M" by stripping every character except digits,
// '.' and '-'.
func ParseNumeric(value string) (float64, bool) {
	cleaned := numericRe.ReplaceAllString(value, "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// computeYoY computes year-over-year growth percentages over ascending
// years. The earliest year is always nil; growth is nil whenever the
// previous year's value is zero or missing.
func computeYoY(valuesByYear map[string]float64) map[string]*float64 {
	years := make([]string, 0, len(valuesByYear))
	for y := range valuesByYear {
		years = append(years, y)
	}
	sort.Strings(years)

	yoy := make(map[string]*float64, len(years))
	for i, year := range years {
		if i == 0 {
			yoy[year] = nil
			continue
		}
		prev, prevOK := valuesByYear[years[i-1]]
		curr := valuesByYear[year]
		if !prevOK || prev == 0 {
			yoy[year] = nil
			continue
		}
		pct := round2((curr - prev) / math.Abs(prev) * 100)
		yoy[year] = &pct
	}
	return yoy
}

func availableColumns(tables []table, limit int) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range tables {
		for _, col := range t.columns {
			if seen[col] {
				continue
			}
			seen[col] = true
			out = append(out, col)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func roundValues(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = round2(v)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
