package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/solana-price-report/internal/pricing"
)

// Format is the report output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Render writes the report in the given format. precision is the number of
// fractional digits of every derived or oracle value.
func Render(w io.Writer, r *Report, format Format, precision int32) error {
	switch format {
	case FormatText:
		return renderText(w, r, precision)
	case FormatJSON:
		return renderJSON(w, r, precision)
	case FormatCSV:
		return renderCSV(w, r, precision)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFile renders the report into path, creating the parent directory.
func WriteFile(path string, r *Report, format Format, precision int32) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Render(file, r, format, precision); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// textStyles are bound to the output writer, so styling is dropped when it is
// not a terminal.
type textStyles struct {
	section lipgloss.Style
	alias   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	renderer := lipgloss.NewRenderer(w)
	return textStyles{
		section: renderer.NewStyle().Foreground(lipgloss.Color("#00E5FF")).Bold(true),
		alias:   renderer.NewStyle().Foreground(lipgloss.Color("#FF1B6B")).Bold(true),
		value:   renderer.NewStyle().Foreground(lipgloss.Color("#2AFFAA")),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("#6C7280")),
	}
}

func renderText(w io.Writer, r *Report, precision int32) error {
	st := newTextStyles(w)
	fmtd := func(d decimal.Decimal) string { return pricing.FormatDecimal(d, precision) }
	quote := r.QuoteAlias

	var prices []string
	prices = append(prices, st.section.Render("Pyth oracle prices (USD):"))
	for _, line := range r.Prices {
		prices = append(prices, fmt.Sprintf("  %s: %s  %s",
			st.alias.Render(line.Alias),
			st.value.Render("$"+fmtd(line.Price)),
			st.muted.Render(fmt.Sprintf("(status=%s, ±%s)", line.Status, fmtd(line.Confidence)))))
	}

	snapshot := []string{
		st.section.Render("Pool snapshot:"),
		fmt.Sprintf("  Token vault: %s units (decimals=%d)", r.Snapshot.TokenBalance, r.Snapshot.TokenDecimals),
		fmt.Sprintf("  Quote vault: %s %s (decimals=%d)", r.Snapshot.QuoteBalance, quote, r.Snapshot.QuoteDecimals),
		fmt.Sprintf("  Derived token price: %s %s", st.value.Render(fmtd(r.Valuation.TokenInQuote)), quote),
		fmt.Sprintf("  Token price in USD: %s", st.value.Render("$"+fmtd(r.Valuation.TokenUSD))),
	}

	conversions := []string{st.section.Render("Token value via USD conversions:")}
	for _, rate := range r.Valuation.CrossRates {
		conversions = append(conversions, fmt.Sprintf("  In %s: %s %s",
			rate.Asset, st.value.Render(fmtd(rate.Rate)), rate.Asset))
	}

	blocks := []string{
		strings.Join(prices, "\n"),
		strings.Join(snapshot, "\n"),
		strings.Join(conversions, "\n"),
	}
	_, err := fmt.Fprintln(w, strings.Join(blocks, "\n\n"))
	return err
}

type jsonPrice struct {
	Alias       string `json:"alias"`
	Symbol      string `json:"symbol"`
	Price       string `json:"price"`
	Confidence  string `json:"confidence"`
	Status      string `json:"status"`
	PublishSlot uint64 `json:"publish_slot"`
}

type jsonPool struct {
	TokenBalance  string `json:"token_balance"`
	TokenDecimals uint8  `json:"token_decimals"`
	QuoteBalance  string `json:"quote_balance"`
	QuoteDecimals uint8  `json:"quote_decimals"`
}

type jsonCrossRate struct {
	Asset string `json:"asset"`
	Rate  string `json:"rate"`
}

type jsonValuation struct {
	TokenInQuote string          `json:"token_in_quote"`
	TokenUSD     string          `json:"token_usd"`
	CrossRates   []jsonCrossRate `json:"cross_rates"`
}

func renderJSON(w io.Writer, r *Report, precision int32) error {
	fmtd := func(d decimal.Decimal) string { return pricing.FormatDecimal(d, precision) }

	prices := make([]jsonPrice, 0, len(r.Prices))
	for _, line := range r.Prices {
		prices = append(prices, jsonPrice{
			Alias:       line.Alias,
			Symbol:      line.Symbol,
			Price:       fmtd(line.Price),
			Confidence:  fmtd(line.Confidence),
			Status:      line.Status.String(),
			PublishSlot: line.PublishSlot,
		})
	}
	rates := make([]jsonCrossRate, 0, len(r.Valuation.CrossRates))
	for _, rate := range r.Valuation.CrossRates {
		rates = append(rates, jsonCrossRate{Asset: rate.Asset, Rate: fmtd(rate.Rate)})
	}

	data := struct {
		GeneratedAt time.Time     `json:"generated_at"`
		Quote       string        `json:"quote"`
		Precision   int32         `json:"precision"`
		Prices      []jsonPrice   `json:"prices"`
		Pool        jsonPool      `json:"pool"`
		Valuation   jsonValuation `json:"valuation"`
	}{
		GeneratedAt: r.GeneratedAt,
		Quote:       r.QuoteAlias,
		Precision:   precision,
		Prices:      prices,
		Pool: jsonPool{
			TokenBalance:  r.Snapshot.TokenBalance.String(),
			TokenDecimals: r.Snapshot.TokenDecimals,
			QuoteBalance:  r.Snapshot.QuoteBalance.String(),
			QuoteDecimals: r.Snapshot.QuoteDecimals,
		},
		Valuation: jsonValuation{
			TokenInQuote: fmtd(r.Valuation.TokenInQuote),
			TokenUSD:     fmtd(r.Valuation.TokenUSD),
			CrossRates:   rates,
		},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// CSVHeaders returns the column names of the CSV report
func CSVHeaders() []string {
	return []string{"section", "name", "value", "unit", "status", "confidence"}
}

func renderCSV(w io.Writer, r *Report, precision int32) error {
	fmtd := func(d decimal.Decimal) string { return pricing.FormatDecimal(d, precision) }

	rows := [][]string{CSVHeaders()}
	for _, line := range r.Prices {
		rows = append(rows, []string{"price", line.Alias, fmtd(line.Price), "USD", line.Status.String(), fmtd(line.Confidence)})
	}
	rows = append(rows,
		[]string{"pool", "token_vault", r.Snapshot.TokenBalance.String(), "units", "", ""},
		[]string{"pool", "token_decimals", strconv.Itoa(int(r.Snapshot.TokenDecimals)), "", "", ""},
		[]string{"pool", "quote_vault", r.Snapshot.QuoteBalance.String(), r.QuoteAlias, "", ""},
		[]string{"pool", "quote_decimals", strconv.Itoa(int(r.Snapshot.QuoteDecimals)), "", "", ""},
		[]string{"valuation", "token_in_quote", fmtd(r.Valuation.TokenInQuote), r.QuoteAlias, "", ""},
		[]string{"valuation", "token_usd", fmtd(r.Valuation.TokenUSD), "USD", "", ""},
	)
	for _, rate := range r.Valuation.CrossRates {
		rows = append(rows, []string{"cross_rate", rate.Asset, fmtd(rate.Rate), rate.Asset, "", ""})
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
