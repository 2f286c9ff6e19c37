package core

import (
	"context"
)

// AgentClient defines the interface for talking to the scanning agent
type AgentClient interface {
	// RunScan asks the agent to scan the inbox and returns its classified answer
	RunScan(ctx context.Context) (*ScanResponse, error)

	// Status returns the agent's self-description
	Status(ctx context.Context) (*AgentStatus, error)
}
