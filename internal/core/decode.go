package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wire types mirror the agent's JSON with pointers on the fields whose
// absence makes an item unusable
type wireItem struct {
	Email      *EmailMeta     `json:"email"`
	AIAnalysis *wireAnalysis  `json:"ai_analysis"`
	Heuristic  *wireHeuristic `json:"heuristic"`
	Action     *string        `json:"action"`
}

type wireAnalysis struct {
	IsPhishing  *bool    `json:"is_phishing"`
	Confidence  *float64 `json:"confidence"`
	Summary     string   `json:"summary"`
	Explanation string   `json:"explanation"`
	Tactics     []string `json:"tactics"`
}

type wireHeuristic struct {
	Reasons      *[]string `json:"reasons"`
	Score        *float64  `json:"score"`
	URLs         []string  `json:"urls"`
	IsSuspicious *bool     `json:"is_suspicious"`
}

type wireSentinel struct {
	Status  *string `json:"status"`
	Message string  `json:"message"`
}

// ParseScanResponse decodes the body of GET /agent/run.
//
// An object is accepted only as the idle sentinel. An array is decoded item by
// item; an item that lacks required fields is kept in place with its Error set
// so that it degrades only its own card.
func ParseScanResponse(body []byte) (*ScanResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	switch trimmed[0] {
	case '{':
		var sentinel wireSentinel
		if err := json.Unmarshal(trimmed, &sentinel); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if sentinel.Status == nil || *sentinel.Status != StatusIdle {
			return nil, fmt.Errorf("%w: object without idle status", ErrMalformedResponse)
		}
		return &ScanResponse{Idle: true, Message: sentinel.Message}, nil

	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		items := make([]ScanResultItem, 0, len(raw))
		for _, r := range raw {
			items = append(items, parseItem(r))
		}
		return &ScanResponse{Items: items}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected JSON value", ErrMalformedResponse)
	}
}

func parseItem(raw json.RawMessage) ScanResultItem {
	var w wireItem
	if err := json.Unmarshal(raw, &w); err != nil {
		return ScanResultItem{Error: fmt.Errorf("%w: %v", ErrMalformedItem, err).Error()}
	}

	var missing string
	switch {
	case w.Email == nil:
		missing = "email"
	case w.AIAnalysis == nil:
		missing = "ai_analysis"
	case w.AIAnalysis.IsPhishing == nil:
		missing = "ai_analysis.is_phishing"
	case w.AIAnalysis.Confidence == nil:
		missing = "ai_analysis.confidence"
	case w.Heuristic == nil:
		missing = "heuristic"
	case w.Heuristic.Reasons == nil:
		missing = "heuristic.reasons"
	case w.Action == nil:
		missing = "action"
	}
	if missing != "" {
		item := ScanResultItem{Error: fmt.Errorf("%w: missing %s", ErrMalformedItem, missing).Error()}
		if w.Email != nil {
			item.Email = *w.Email
		}
		return item
	}

	return ScanResultItem{
		Email: *w.Email,
		AIAnalysis: AIAnalysis{
			IsPhishing:  *w.AIAnalysis.IsPhishing,
			Confidence:  *w.AIAnalysis.Confidence,
			Summary:     w.AIAnalysis.Summary,
			Explanation: w.AIAnalysis.Explanation,
			Tactics:     w.AIAnalysis.Tactics,
		},
		Heuristic: HeuristicResult{
			Reasons:      *w.Heuristic.Reasons,
			Score:        w.Heuristic.Score,
			URLs:         w.Heuristic.URLs,
			IsSuspicious: w.Heuristic.IsSuspicious,
		},
		Action: *w.Action,
	}
}
