// Package terminal renders the dashboard as styled terminal output.
package terminal

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/utils"
)

const (
	cardWidth = 72
	barWidth  = 20
)

// Renderer formats controller state and cards for a terminal
type Renderer struct {
	text *utils.TextProcessor

	header  lipgloss.Style
	muted   lipgloss.Style
	bold    lipgloss.Style
	danger  lipgloss.Style
	safe    lipgloss.Style
	warn    lipgloss.Style
	tag     lipgloss.Style
	message lipgloss.Style
	card    lipgloss.Style
}

// NewRenderer creates a renderer whose color support follows out
func NewRenderer(out io.Writer, text *utils.TextProcessor) *Renderer {
	lr := lipgloss.NewRenderer(out)

	return &Renderer{
		text:    text,
		header:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb")).Background(lipgloss.Color("#111827")).Padding(0, 1),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		bold:    lr.NewStyle().Bold(true),
		danger:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc2626")),
		safe:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#16a34a")),
		warn:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("#d97706")),
		tag:     lr.NewStyle().Foreground(lipgloss.Color("#92400e")),
		message: lr.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#7dd3fc")).Padding(0, 1),
		card:    lr.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(cardWidth),
	}
}

// Page renders the header, the message panel and every card in order
func (r *Renderer) Page(snap core.Snapshot, cards []*core.ResultCard) string {
	var b strings.Builder

	b.WriteString(r.header.Render("Autonomous Phishing Agent"))
	b.WriteString("\n")
	b.WriteString(r.muted.Render("AI-powered inbox defense against phishing & social engineering"))
	b.WriteString("\n")
	if snap.Loading {
		b.WriteString(r.muted.Render("Scanning…"))
		b.WriteString("\n")
	}

	if !snap.Loading && snap.Message != "" {
		b.WriteString(r.message.Render(r.text.Clean(snap.Message)))
		b.WriteString("\n")
	}

	for _, card := range cards {
		b.WriteString(r.Card(card))
		b.WriteString("\n")
	}
	return b.String()
}

// Card renders one result card
func (r *Renderer) Card(card *core.ResultCard) string {
	item := card.Item()
	subject := r.text.TruncateText(r.text.Subject(item.Email.Subject), cardWidth-12)

	if card.Malformed() {
		lines := []string{
			r.warn.Render("MALFORMED") + "  " + r.bold.Render(subject),
			r.text.Clean(item.Error),
		}
		return r.card.BorderForeground(lipgloss.Color("#d97706")).Render(strings.Join(lines, "\n"))
	}

	verdict, border := r.safe, lipgloss.Color("#16a34a")
	if card.Verdict() == core.VerdictPhishing {
		verdict, border = r.danger, lipgloss.Color("#dc2626")
	}

	lines := []string{
		verdict.Render(card.Badge()) + "  " + r.bold.Render(subject),
		r.muted.Render(fmt.Sprintf("From: %s · %s",
			r.text.ProcessLine(item.Email.From, cardWidth/2),
			r.text.ProcessLine(item.Email.Date, cardWidth/3))),
		r.muted.Render("Threat Confidence"),
		verdict.Render(confidenceBar(card.Confidence(), barWidth)) + " " + card.ConfidenceText() + "%",
	}
	if summary := r.text.Clean(item.AIAnalysis.Summary); summary != "" {
		lines = append(lines, summary)
	}
	if tactics := r.text.CleanAll(card.Tactics()); len(tactics) > 0 {
		tags := make([]string, len(tactics))
		for i, t := range tactics {
			tags[i] = r.tag.Render("[" + t + "]")
		}
		lines = append(lines, strings.Join(tags, " "))
	}

	if !card.Expanded() {
		lines = append(lines, r.muted.Render("▸ "+card.ToggleLabel()))
		return r.card.BorderForeground(border).Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, r.muted.Render("▾ "+card.ToggleLabel()), "")
	lines = append(lines, r.bold.Render("AI Explanation"), r.text.Clean(item.AIAnalysis.Explanation), "")
	lines = append(lines, r.bold.Render("Heuristic Signals"))
	for i, reason := range r.text.CleanAll(item.Heuristic.Reasons) {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, reason))
	}
	if item.Heuristic.Score != nil {
		lines = append(lines, "Heuristic score: "+strconv.FormatFloat(*item.Heuristic.Score, 'f', -1, 64))
	}
	if urls := r.text.CleanAll(item.Heuristic.URLs); len(urls) > 0 {
		lines = append(lines, r.bold.Render("Detected URLs"))
		for _, u := range urls {
			lines = append(lines, "  - "+u)
		}
	}
	lines = append(lines, "", r.bold.Render("Action Taken"), r.text.Clean(item.Action))

	return r.card.BorderForeground(border).Render(strings.Join(lines, "\n"))
}

// confidenceBar draws pct (0-100) as a bar of width cells
func confidenceBar(pct float64, width int) string {
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
