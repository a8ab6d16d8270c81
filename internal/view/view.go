package view

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/mwilkes/arcadia/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// Renderer holds the parsed template set. Templates are embedded so the
// binary and the tests run from any working directory.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Renderer {
	tmpl := template.Must(template.ParseFS(files, "templates/*.html"))
	return &Renderer{templates: tmpl, logger: logger}
}

// Render executes the named template as a full page response.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		r.logger.Error("render template", "template", name, "error", err)
	}
}

// RewardCard is a catalog reward with the caller-relative display flags.
// Affordability and stock are derived here only; eligibility is re-checked
// inside the redemption transaction.
type RewardCard struct {
	model.Reward
	CanAfford bool
	InStock   bool
}

func NewRewardCard(r model.Reward, balance int) RewardCard {
	return RewardCard{
		Reward:    r,
		CanAfford: balance >= r.PointsCost,
		InStock:   r.Stock.Available(),
	}
}

// GameCard is a dashboard game with the form token for its play button.
type GameCard struct {
	model.Game
	CSRFToken string
}

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

func NewPagination(page, pageSize, total int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total}
}

func (p Pagination) TotalPages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }
func (p Pagination) PrevPage() int { return p.Page - 1 }
func (p Pagination) NextPage() int { return p.Page + 1 }

// Label is the "Page x of y" caption under paginated lists.
func (p Pagination) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages())
}
