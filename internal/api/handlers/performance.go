package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ndewijer/portfolio-performance/internal/api/request"
	"github.com/ndewijer/portfolio-performance/internal/model"
	"github.com/ndewijer/portfolio-performance/internal/performance"
)

// PerformanceResponse is a compounded return over a period. Percent returns
// are fractions (0.01 is 1%). Undefined values are null.
type PerformanceResponse struct {
	InitialDate   string           `json:"initial_date"`
	FinalDate     string           `json:"final_date"`
	ReturnPercent *float64         `json:"return_pct"`
	ReturnValue   *float64         `json:"return_value"`
	Days          int              `json:"days"`
	Returns       []ReturnResponse `json:"returns,omitempty"`
}

// ReturnResponse is the return of a single date.
type ReturnResponse struct {
	Date          string   `json:"date"`
	InitialValue  *float64 `json:"initial_value"`
	FinalValue    *float64 `json:"final_value"`
	ReturnPercent *float64 `json:"return_pct"`
	ReturnValue   *float64 `json:"return_value"`
}

// HoldingPerformanceResponse is the return of one holding split into its
// price and currency parts.
type HoldingPerformanceResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Isin         string               `json:"isin"`
	Currency     string               `json:"currency"`
	Source       string               `json:"source"`
	Summary      string               `json:"summary"`
	Total        PerformanceResponse  `json:"total"`
	Price        PerformanceResponse  `json:"price"`
	Fx           PerformanceResponse  `json:"fx"`
	Contribution *PerformanceResponse `json:"contribution,omitempty"`
}

// PortfolioPerformanceResponse is the aggregate return of a portfolio and
// the return of every holding it held in the period.
type PortfolioPerformanceResponse struct {
	ID       string                       `json:"id"`
	Name     string                       `json:"name"`
	Currency string                       `json:"currency"`
	Source   string                       `json:"source"`
	Summary  string                       `json:"summary"`
	Total    PerformanceResponse          `json:"total"`
	Holdings []HoldingPerformanceResponse `json:"holdings"`
}

// FactorPerformanceResponse is the compounded return of a risk factor.
type FactorPerformanceResponse struct {
	Factor  string              `json:"factor"`
	Summary string              `json:"summary"`
	Total   PerformanceResponse `json:"total"`
}

// parsePerformanceQuery reads start_date, end_date, currency and source.
func parsePerformanceQuery(r *http.Request) (model.PerformanceQuery, error) {
	q := r.URL.Query()
	return request.ParsePerformanceQuery(
		q.Get("start_date"),
		q.Get("end_date"),
		q.Get("currency"),
		q.Get("source"),
		time.Now(),
	)
}

// wantsDaily reports whether ?daily=true asks for per-date returns.
func wantsDaily(r *http.Request) bool {
	daily, err := strconv.ParseBool(r.URL.Query().Get("daily"))
	return err == nil && daily
}

func newPerformanceResponse(p *performance.Performance, daily bool) PerformanceResponse {
	resp := PerformanceResponse{
		InitialDate:   p.InitialDate.Format(time.DateOnly),
		FinalDate:     p.FinalDate.Format(time.DateOnly),
		ReturnPercent: number(p.ReturnPercent),
		ReturnValue:   amount(p.ReturnValue),
		Days:          len(p.Returns),
	}
	if daily {
		resp.Returns = make([]ReturnResponse, len(p.Returns))
		for i, r := range p.Returns {
			resp.Returns[i] = ReturnResponse{
				Date:          r.Date.Format(time.DateOnly),
				InitialValue:  number(r.InitialValue),
				FinalValue:    number(r.FinalValue),
				ReturnPercent: number(r.ReturnPercent),
				ReturnValue:   amount(r.ReturnValue),
			}
		}
	}
	return resp
}

func newHoldingPerformanceResponse(h *performance.HoldingPerformance, daily bool) HoldingPerformanceResponse {
	resp := HoldingPerformanceResponse{
		ID:       h.Holding.ID,
		Name:     h.Holding.Name,
		Isin:     h.Holding.ISIN,
		Currency: h.Currency,
		Source:   h.Source,
		Summary:  h.String(),
		Total:    newPerformanceResponse(&h.Total, daily),
		Price:    newPerformanceResponse(&h.Price, daily),
		Fx:       newPerformanceResponse(&h.Fx, daily),
	}
	if h.Contribution != nil {
		c := newPerformanceResponse(h.Contribution, daily)
		resp.Contribution = &c
	}
	return resp
}

func newPortfolioPerformanceResponse(id string, p *performance.PortfolioPerformance, daily bool) PortfolioPerformanceResponse {
	resp := PortfolioPerformanceResponse{
		ID:       id,
		Name:     p.Portfolio,
		Currency: p.Currency,
		Source:   p.Source,
		Summary:  p.String(),
		Total:    newPerformanceResponse(&p.Total, daily),
		Holdings: make([]HoldingPerformanceResponse, len(p.Holdings)),
	}
	for i, h := range p.Holdings {
		resp.Holdings[i] = newHoldingPerformanceResponse(h, daily)
	}
	return resp
}
