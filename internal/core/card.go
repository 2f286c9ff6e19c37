package core

import (
	"math"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Verdict is the binary outcome shown on a card
type Verdict string

// Verdicts
const (
	VerdictPhishing Verdict = "phishing"
	VerdictSafe     Verdict = "safe"
)

// Toggle labels
const (
	LabelCollapsed = "View Full Analysis"
	LabelExpanded  = "Hide Analysis"
)

// ResultCard is the display state of one scan result. The expanded flag is
// local to the card; toggling one card never touches another.
type ResultCard struct {
	item       ScanResultItem
	confidence float64

	mu       sync.Mutex
	expanded bool
}

// NewResultCard creates a collapsed card for item. Confidence values outside
// [0,100] are clamped and reported to logger.
func NewResultCard(item ScanResultItem, logger *zap.Logger) *ResultCard {
	raw := item.AIAnalysis.Confidence
	clamped := clampPercent(raw)
	if !item.Malformed() && clamped != raw && logger != nil {
		logger.Warn("Confidence out of range, clamping",
			zap.Float64("confidence", raw),
			zap.Float64("clamped", clamped),
			zap.String("subject", item.Email.Subject))
	}

	return &ResultCard{
		item:       item,
		confidence: clamped,
	}
}

// NewResultCards creates one card per item, in order
func NewResultCards(items []ScanResultItem, logger *zap.Logger) []*ResultCard {
	cards := make([]*ResultCard, len(items))
	for i, item := range items {
		cards[i] = NewResultCard(item, logger)
	}
	return cards
}

func clampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Item returns the result the card displays
func (c *ResultCard) Item() ScanResultItem {
	return c.item
}

// Malformed reports whether the card stands in for an undecodable result
func (c *ResultCard) Malformed() bool {
	return c.item.Malformed()
}

// Verdict returns the phishing/safe outcome
func (c *ResultCard) Verdict() Verdict {
	if c.item.AIAnalysis.IsPhishing {
		return VerdictPhishing
	}
	return VerdictSafe
}

// StyleClass returns the visual style of the card
func (c *ResultCard) StyleClass() string {
	switch {
	case c.Malformed():
		return "malformed"
	case c.Verdict() == VerdictPhishing:
		return "danger"
	default:
		return "safe"
	}
}

// Badge returns the status badge label
func (c *ResultCard) Badge() string {
	if c.Verdict() == VerdictPhishing {
		return "PHISHING"
	}
	return "SAFE"
}

// Subject returns the email subject or its placeholder
func (c *ResultCard) Subject() string {
	return c.item.Email.DisplaySubject()
}

// Confidence returns the confidence clamped to [0,100]
func (c *ResultCard) Confidence() float64 {
	return c.confidence
}

// ConfidenceText formats the clamped confidence without trailing zeros
func (c *ResultCard) ConfidenceText() string {
	return strconv.FormatFloat(c.confidence, 'f', -1, 64)
}

// Tactics returns the detected tactics, or nil when there are none
func (c *ResultCard) Tactics() []string {
	if len(c.item.AIAnalysis.Tactics) == 0 {
		return nil
	}
	return c.item.AIAnalysis.Tactics
}

// Expanded reports whether the detail region is shown
func (c *ResultCard) Expanded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}

// Toggle flips the expanded state and returns the new value
func (c *ResultCard) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = !c.expanded
	return c.expanded
}

// ToggleLabel returns the label of the expand control for the current state
func (c *ResultCard) ToggleLabel() string {
	if c.Expanded() {
		return LabelExpanded
	}
	return LabelCollapsed
}
