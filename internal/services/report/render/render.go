// Package render produces the personalized report email from the ordered
// row set
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	perr "oppwatch/internal/platform/errors"
	pstr "oppwatch/internal/platform/strings"
	"oppwatch/internal/services/report/domain"
)

// hotTouches is where the touch count gets visual emphasis in the table
const hotTouches = 5

// Renderer implements domain.RendererPort with a single parsed template
type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
}

// New parses the report template once
func New() *Renderer {
	return &Renderer{
		tmpl:    template.Must(template.New("report").Parse(reportTemplate)),
		printer: message.NewPrinter(language.English),
	}
}

type rowView struct {
	Name        string
	URL         string
	Account     string
	Email       string
	Language    string
	Stage       string
	Amount      string
	LastTouched string
	Touches     int
	Hot         bool
	Shaded      bool
}

type sectionView struct {
	Title      string
	TitleColor string
	HeaderBG   string
	Rows       []rowView
}

type pageView struct {
	AsOf       string
	OwnerName  string
	Total      int
	StaleCount int
	Sections   []sectionView
}

// Render implements domain.RendererPort. Subject carries the row count so
// recipients can triage from the inbox list
func (r *Renderer) Render(
	rows []domain.Row, asOfDate, baseURL, ownerName string,
) (subject, html, text string, err error) {
	subject = fmt.Sprintf("Weekly Opportunity Report - %s (%d opportunities)", asOfDate, len(rows))

	page := pageView{
		AsOf:      asOfDate,
		OwnerName: pstr.OrDefault(ownerName, "there"),
		Total:     len(rows),
	}

	var stale, active []domain.Row
	for _, row := range rows {
		if row.Stats.Stale {
			stale = append(stale, row)
		} else {
			active = append(active, row)
		}
	}
	page.StaleCount = len(stale)
	if len(stale) > 0 {
		page.Sections = append(page.Sections, sectionView{
			Title:      fmt.Sprintf("Needs Attention — No activity in 2+ months (%d)", len(stale)),
			TitleColor: "#c0392b",
			HeaderBG:   "#c0392b",
			Rows:       r.rowViews(stale, baseURL),
		})
	}
	if len(active) > 0 {
		page.Sections = append(page.Sections, sectionView{
			Title:      fmt.Sprintf("Active Opportunities (%d)", len(active)),
			TitleColor: "#333",
			HeaderBG:   "#34495e",
			Rows:       r.rowViews(active, baseURL),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return "", "", "", perr.Wrap(err, perr.ErrorCodeUnknown, "report template failed")
	}
	return subject, buf.String(), r.textBody(page), nil
}

func (r *Renderer) rowViews(rows []domain.Row, baseURL string) []rowView {
	views := make([]rowView, 0, len(rows))
	for i, row := range rows {
		views = append(views, rowView{
			Name:        pstr.OrDefault(row.Opp.Name, "—"),
			URL:         baseURL + "/lightning/r/Opportunity/" + row.Opp.ID + "/view",
			Account:     pstr.OrDefault(row.Opp.Account.Name, "—"),
			Email:       pstr.OrDefault(row.Opp.Account.Email, "—"),
			Language:    pstr.OrDefault(row.Opp.Account.Language, "—"),
			Stage:       pstr.OrDefault(row.Opp.Stage, "—"),
			Amount:      r.formatAmount(row.Opp.Amount),
			LastTouched: formatLastTouch(row.Stats.LastTouch),
			Touches:     row.Stats.Count,
			Hot:         row.Stats.Count >= hotTouches,
			Shaded:      i%2 == 0,
		})
	}
	return views
}

// formatAmount renders a nullable currency with thousands separators
func (r *Renderer) formatAmount(amount *float64) string {
	if amount == nil {
		return "N/A"
	}
	return r.printer.Sprintf("$%.0f", *amount)
}

// formatLastTouch keeps the date part of the stamp, "Never" for zero touches
func formatLastTouch(stamp string) string {
	if stamp == "" {
		return "Never"
	}
	if len(stamp) > 10 {
		return stamp[:10]
	}
	return stamp
}

// textBody is the plain-text alternative for clients that skip HTML
func (r *Renderer) textBody(page pageView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly Opportunity Activity Report\nGenerated: %s\n\nHi %s,\n\n", page.AsOf, page.OwnerName)
	if page.Total == 0 {
		b.WriteString("You have no open opportunities with human activity this week.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "You have %d open opportunities with human activity", page.Total)
	if page.StaleCount > 0 {
		fmt.Fprintf(&b, "; %d need attention", page.StaleCount)
	}
	b.WriteString(".\n")
	for _, sec := range page.Sections {
		fmt.Fprintf(&b, "\n%s\n", sec.Title)
		for _, row := range sec.Rows {
			fmt.Fprintf(&b, "  - %s | %s | %s | %s | last touched %s | %d touches\n    %s\n",
				row.Name, row.Account, row.Stage, row.Amount, row.LastTouched, row.Touches, row.URL)
		}
	}
	return b.String()
}

const reportTemplate = `<div style="font-family: Arial, sans-serif; max-width: 900px; margin: 0 auto;">
  <h2 style="color: #333;">Weekly Opportunity Activity Report</h2>
  <p style="color: #666;">Generated: {{.AsOf}}</p>
  <p style="color: #555;">Hi {{.OwnerName}},</p>
  <p style="color: #888; font-size: 13px; font-style: italic; margin-bottom: 16px;">
    This report shows all open opportunities created in the past 6 months.
    Touch counts reflect human interactions (tasks) only; automated system activity is excluded.
  </p>
{{- if eq .Total 0}}
  <div style="background: #f0f7ff; border: 1px solid #cce0ff; border-radius: 6px; padding: 20px; text-align: center; margin: 20px 0;">
    <p style="color: #555; font-size: 16px; margin: 0;">
      You have no open opportunities with human activity this week.
    </p>
  </div>
{{- else}}
  <p style="color: #555; font-size: 14px; margin-bottom: 16px;">
    You have <strong>{{.Total}}</strong> open opportunities with human activity.
    {{- if .StaleCount}} <span style="color: #c0392b; font-weight: bold;">{{.StaleCount}} need attention.</span>{{end}}
  </p>
{{- range .Sections}}
  <h3 style="color: {{.TitleColor}}; margin-top: 24px;">{{.Title}}</h3>
  <table style="width: 100%; border-collapse: collapse; font-size: 14px;">
    <thead>
      <tr style="background: {{.HeaderBG}}; color: #fff;">
        <th style="padding: 10px 12px; text-align: left;">Opportunity</th>
        <th style="padding: 10px 12px; text-align: left;">Account</th>
        <th style="padding: 10px 12px; text-align: left;">Email</th>
        <th style="padding: 10px 12px; text-align: left;">Language</th>
        <th style="padding: 10px 12px; text-align: left;">Stage</th>
        <th style="padding: 10px 12px; text-align: right;">Amount</th>
        <th style="padding: 10px 12px; text-align: left;">Last Touched</th>
        <th style="padding: 10px 12px; text-align: center;">Touches</th>
      </tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr style="background: {{if .Shaded}}#f9f9f9{{else}}#ffffff{{end}};">
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee;">
          <a href="{{.URL}}" style="color: #2a6496; text-decoration: none;">{{.Name}}</a>
        </td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee;">{{.Account}}</td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee;">{{.Email}}</td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee;">{{.Language}}</td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee;">{{.Stage}}</td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee; text-align: right;">{{.Amount}}</td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee;">{{.LastTouched}}</td>
        <td style="padding: 8px 12px; border-bottom: 1px solid #eee; text-align: center;{{if .Hot}} font-weight: bold; color: #d35400;{{end}}">{{.Touches}}</td>
      </tr>
{{- end}}
    </tbody>
  </table>
{{- end}}
{{- end}}
  <p style="color: #999; font-size: 12px; margin-top: 24px; border-top: 1px solid #eee; padding-top: 12px;">
    You received this report because you are the owner of the listed opportunities.
    Contact your administrator to unsubscribe.
  </p>
</div>`
