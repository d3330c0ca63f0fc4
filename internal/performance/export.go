package performance

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Header returns the column labels of Row.
func (r *ReturnRecord) Header() []string {
	return []string{"date", "initial_value", "final_value", "return_pct", "return_value"}
}

// Row returns the record as one line of values.
func (r *ReturnRecord) Row() []string {
	return []string{
		formatDate(r.Date),
		formatFloat(r.InitialValue),
		formatFloat(r.FinalValue),
		formatFloat(r.ReturnPercent),
		formatFloat(r.ReturnValue),
	}
}

// String returns "<bps> bps | <money>".
func (r *ReturnRecord) String() string {
	return summary(r.ReturnPercent, r.ReturnValue, "")
}

// Header returns the column labels of Row.
func (p *Performance) Header() []string {
	return []string{"initial_date", "final_date", "return_pct", "return_value", "days"}
}

// Row returns the performance as one line of values.
func (p *Performance) Row() []string {
	return []string{
		formatDate(p.InitialDate),
		formatDate(p.FinalDate),
		formatFloat(p.ReturnPercent),
		formatFloat(p.ReturnValue),
		strconv.Itoa(len(p.Returns)),
	}
}

// String returns "<bps> bps | <money>".
func (p *Performance) String() string {
	return summary(p.ReturnPercent, p.ReturnValue, "")
}

var resultHeader = []string{
	"portfolio", "holding_id", "holding", "isin", "currency", "source",
	"initial_date", "final_date",
	"total_pct", "total_value",
	"price_pct", "price_value",
	"fx_pct", "fx_value",
}

// Header returns the column labels shared by holding and portfolio rows.
func (h *HoldingPerformance) Header() []string { return resultHeader }

// Row returns the holding performance as one line of values.
func (h *HoldingPerformance) Row(portfolio string) []string {
	return []string{
		portfolio, h.Holding.ID, h.Holding.Name, h.Holding.ISIN, h.Currency, h.Source,
		formatDate(h.Total.InitialDate), formatDate(h.Total.FinalDate),
		formatFloat(h.Total.ReturnPercent), formatFloat(h.Total.ReturnValue),
		formatFloat(h.Price.ReturnPercent), formatFloat(h.Price.ReturnValue),
		formatFloat(h.Fx.ReturnPercent), formatFloat(h.Fx.ReturnValue),
	}
}

// String summarises the total return followed by the price and currency parts.
func (h *HoldingPerformance) String() string {
	return fmt.Sprintf("%s: %s (price %s, fx %s)",
		h.Holding.Name,
		summary(h.Total.ReturnPercent, h.Total.ReturnValue, h.Currency),
		summary(h.Price.ReturnPercent, h.Price.ReturnValue, h.Currency),
		summary(h.Fx.ReturnPercent, h.Fx.ReturnValue, h.Currency),
	)
}

// Header returns the column labels shared by holding and portfolio rows.
func (p *PortfolioPerformance) Header() []string { return resultHeader }

// Row returns the aggregate as one line of values. Holding and attribution
// columns are left empty.
func (p *PortfolioPerformance) Row() []string {
	return []string{
		p.Portfolio, "", "", "", p.Currency, p.Source,
		formatDate(p.Total.InitialDate), formatDate(p.Total.FinalDate),
		formatFloat(p.Total.ReturnPercent), formatFloat(p.Total.ReturnValue),
		"", "", "", "",
	}
}

// String returns "<portfolio>: <bps> bps | <money>".
func (p *PortfolioPerformance) String() string {
	return fmt.Sprintf("%s: %s", p.Portfolio, summary(p.Total.ReturnPercent, p.Total.ReturnValue, p.Currency))
}

// WriteCSV writes the header, the aggregate row and one row per holding.
func (p *PortfolioPerformance) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(p.Header()); err != nil {
		return err
	}
	if err := cw.Write(p.Row()); err != nil {
		return err
	}
	for _, h := range p.Holdings {
		if err := cw.Write(h.Row(p.Portfolio)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the header and the holding row.
func (h *HoldingPerformance) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(h.Header()); err != nil {
		return err
	}
	if err := cw.Write(h.Row("")); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteReturnsCSV writes one row per date of p.
func WriteReturnsCSV(w io.Writer, p *Performance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write((&ReturnRecord{}).Header()); err != nil {
		return err
	}
	for _, r := range p.Returns {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summary(pct, value float64, currency string) string {
	return fmt.Sprintf("%s bps | %s", formatBps(pct), FormatMoney(value, currency))
}

func formatBps(pct float64) string {
	if math.IsNaN(pct) {
		return "NaN"
	}
	return strconv.FormatFloat(pct*10000, 'f', 1, 64)
}

// FormatMoney renders value in currency, falling back to two decimals when the
// currency is unknown or the value undefined.
func FormatMoney(value float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', 2, 64)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(value).Mul(factor).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
