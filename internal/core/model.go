package core

import (
	"time"
)

// StatusIdle is the status value of the agent's "nothing to review" sentinel
const StatusIdle = "idle"

// DefaultSubject is shown for emails without a subject
const DefaultSubject = "No subject"

// FallbackMessage is shown for every failure to reach the agent
const FallbackMessage = "Failed to connect to agent."

// EmailMeta describes the scanned email
type EmailMeta struct {
	ID        string `json:"id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	From      string `json:"from"`
	Date      string `json:"date"`
}

// DisplaySubject returns the subject, or DefaultSubject when it is absent or empty
func (e EmailMeta) DisplaySubject() string {
	if e.Subject == "" {
		return DefaultSubject
	}
	return e.Subject
}

// AIAnalysis is the model verdict for one email
type AIAnalysis struct {
	IsPhishing  bool     `json:"is_phishing"`
	Confidence  float64  `json:"confidence"`
	Summary     string   `json:"summary"`
	Explanation string   `json:"explanation"`
	Tactics     []string `json:"tactics,omitempty"`
}

// HeuristicResult holds the rule-based findings for one email
type HeuristicResult struct {
	Reasons      []string `json:"reasons"`
	Score        *float64 `json:"score,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	IsSuspicious *bool    `json:"is_suspicious,omitempty"`
}

// ScanResultItem is one analysed email as reported by the agent
type ScanResultItem struct {
	Email      EmailMeta       `json:"email"`
	AIAnalysis AIAnalysis      `json:"ai_analysis"`
	Heuristic  HeuristicResult `json:"heuristic"`
	Action     string          `json:"action"`

	// Error is non-empty when the agent sent this item without its required fields.
	Error string `json:"error,omitempty"`
}

// Malformed reports whether the item could not be decoded completely
func (i ScanResultItem) Malformed() bool {
	return i.Error != ""
}

// ScanResponse is the decoded body of a scan request: either the idle
// sentinel or an ordered list of results
type ScanResponse struct {
	Idle    bool
	Message string
	Items   []ScanResultItem
}

// AgentStatus is the agent's self-description served on its root route
type AgentStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Snapshot is a copy of the scan controller state
type Snapshot struct {
	Emails     []ScanResultItem `json:"emails"`
	Loading    bool             `json:"loading"`
	Message    string           `json:"message"`
	Generation uint64           `json:"generation"`
	ScannedAt  time.Time        `json:"scanned_at"`
}
