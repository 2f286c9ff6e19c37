package web

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/mikey/phishdash/internal/core"
	"github.com/mikey/phishdash/internal/utils"
)

const (
	pageTitle    = "Autonomous Phishing Agent"
	pageSubtitle = "AI-powered inbox defense against phishing & social engineering"

	labelScan     = "Scan Inbox"
	labelScanning = "Scanning…"

	maxLineRunes = 120
)

type pageView struct {
	Title          string
	Subtitle       string
	Loading        bool
	ButtonLabel    string
	ShowMessage    bool
	Message        string
	RefreshSeconds int
	Generation     uint64
	ScannedAt      string
	Cards          []cardView
}

type cardView struct {
	Index       int
	Malformed   bool
	Error       string
	StyleClass  string
	Badge       string
	Subject     string
	From        string
	Date        string
	Confidence  string
	BarStyle    template.CSS
	Summary     string
	Tactics     []string
	Expanded    bool
	ToggleLabel string
	Explanation string
	Reasons     []string
	Action      string
	Score       string
	URLs        []string
}

func newPageView(snap core.Snapshot, cards []*core.ResultCard, gen uint64, text *utils.TextProcessor, refresh time.Duration) pageView {
	view := pageView{
		Title:          pageTitle,
		Subtitle:       pageSubtitle,
		Loading:        snap.Loading,
		ButtonLabel:    labelScan,
		ShowMessage:    !snap.Loading && snap.Message != "",
		Message:        text.Clean(snap.Message),
		RefreshSeconds: refreshSeconds(refresh),
		Generation:     gen,
		Cards:          make([]cardView, len(cards)),
	}
	if snap.Loading {
		view.ButtonLabel = labelScanning
	}
	if !snap.ScannedAt.IsZero() {
		view.ScannedAt = snap.ScannedAt.Format(time.RFC1123)
	}

	for i, card := range cards {
		view.Cards[i] = newCardView(i, card, text)
	}
	return view
}

func newCardView(index int, card *core.ResultCard, text *utils.TextProcessor) cardView {
	item := card.Item()
	view := cardView{
		Index:       index,
		Malformed:   card.Malformed(),
		Error:       item.Error,
		StyleClass:  card.StyleClass(),
		Badge:       card.Badge(),
		Subject:     text.Subject(item.Email.Subject),
		From:        text.ProcessLine(item.Email.From, maxLineRunes),
		Date:        text.ProcessLine(item.Email.Date, maxLineRunes),
		Confidence:  card.ConfidenceText(),
		BarStyle:    template.CSS(fmt.Sprintf("width: %s%%", card.ConfidenceText())),
		Summary:     text.Clean(item.AIAnalysis.Summary),
		Tactics:     text.CleanAll(card.Tactics()),
		Expanded:    card.Expanded(),
		ToggleLabel: card.ToggleLabel(),
	}

	if view.Expanded {
		view.Explanation = text.Clean(item.AIAnalysis.Explanation)
		view.Reasons = text.CleanAll(item.Heuristic.Reasons)
		view.Action = text.Clean(item.Action)
		view.URLs = text.CleanAll(item.Heuristic.URLs)
		if item.Heuristic.Score != nil {
			view.Score = strconv.FormatFloat(*item.Heuristic.Score, 'f', -1, 64)
		}
	}
	return view
}

// refreshSeconds rounds the auto-refresh interval up to whole seconds
func refreshSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
