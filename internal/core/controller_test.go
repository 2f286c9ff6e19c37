package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// reply is one scripted answer of fakeAgent. When gate is set the call blocks
// until the gate closes or the request context ends.
type reply struct {
	resp *ScanResponse
	err  error
	gate chan struct{}
}

type fakeAgent struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

func (f *fakeAgent) RunScan(ctx context.Context) (*ScanResponse, error) {
	f.mu.Lock()
	r := f.replies[f.calls]
	f.calls++
	f.mu.Unlock()

	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.resp, r.err
}

func (f *fakeAgent) Status(ctx context.Context) (*AgentStatus, error) {
	return &AgentStatus{Status: "running", Service: "fake"}, nil
}

func (f *fakeAgent) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func items(subjects ...string) []ScanResultItem {
	out := make([]ScanResultItem, len(subjects))
	for i, s := range subjects {
		out[i] = ScanResultItem{
			Email:      EmailMeta{Subject: s, From: "a@x.com"},
			AIAnalysis: AIAnalysis{Confidence: 50},
			Heuristic:  HeuristicResult{Reasons: []string{}},
			Action:     "No action",
		}
	}
	return out
}

// waitCalls blocks until the agent has received n requests so scripted
// replies are handed out in scan order
func waitCalls(t *testing.T, agent *fakeAgent, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return agent.Calls() >= n }, time.Second, time.Millisecond)
}

var errRefused = errors.New("connection refused")

func TestScanController_InitialState(t *testing.T) {
	c := NewScanController(&fakeAgent{}, zap.NewNop(), time.Second)

	snap := c.Snapshot()
	assert.Empty(t, snap.Emails)
	assert.NotNil(t, snap.Emails)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Message)
	assert.Zero(t, snap.Generation)
}

func TestScanController_Items(t *testing.T) {
	agent := &fakeAgent{replies: []reply{{resp: &ScanResponse{Items: items("one", "two", "three")}}}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	c.ScanInbox(context.Background())

	snap := c.Snapshot()
	require.Len(t, snap.Emails, 3)
	assert.Equal(t, "one", snap.Emails[0].Email.Subject)
	assert.Equal(t, "two", snap.Emails[1].Email.Subject)
	assert.Equal(t, "three", snap.Emails[2].Email.Subject)
	assert.Empty(t, snap.Message)
	assert.False(t, snap.Loading)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.False(t, snap.ScannedAt.IsZero())
	assert.Equal(t, 1, agent.Calls())
}

func TestScanController_IdleClearsResults(t *testing.T) {
	agent := &fakeAgent{replies: []reply{
		{resp: &ScanResponse{Items: items("old")}},
		{resp: &ScanResponse{Idle: true, Message: "No new emails to scan."}},
	}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	c.ScanInbox(context.Background())
	c.ScanInbox(context.Background())

	snap := c.Snapshot()
	assert.Empty(t, snap.Emails)
	assert.Equal(t, "No new emails to scan.", snap.Message)
	assert.False(t, snap.Loading)
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestScanController_FailureKeepsLastGoodState(t *testing.T) {
	agent := &fakeAgent{replies: []reply{
		{resp: &ScanResponse{Items: items("kept", "also kept")}},
		{err: errRefused},
		{err: errRefused},
	}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	c.ScanInbox(context.Background())
	before := c.Snapshot()

	c.ScanInbox(context.Background())
	once := c.Snapshot()

	assert.Equal(t, FallbackMessage, once.Message)
	assert.Equal(t, before.Emails, once.Emails)
	assert.Equal(t, before.Generation, once.Generation)
	assert.False(t, once.Loading)

	c.ScanInbox(context.Background())
	twice := c.Snapshot()
	assert.Equal(t, once, twice)
}

func TestScanController_FailureOnFreshController(t *testing.T) {
	agent := &fakeAgent{replies: []reply{{err: errRefused}}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	c.ScanInbox(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, FallbackMessage, snap.Message)
	assert.Empty(t, snap.Emails)
}

func TestScanController_NilResponseIsFailure(t *testing.T) {
	agent := &fakeAgent{replies: []reply{{}}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	c.ScanInbox(context.Background())

	assert.Equal(t, FallbackMessage, c.Snapshot().Message)
}

func TestScanController_LoadingOnlyWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	agent := &fakeAgent{replies: []reply{{resp: &ScanResponse{Items: items("a")}, gate: gate}}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	assert.False(t, c.Loading())

	done := c.ScanInboxAsync(context.Background())
	assert.True(t, c.Loading())
	assert.Empty(t, c.Snapshot().Message)

	close(gate)
	<-done

	assert.False(t, c.Loading())
	assert.Len(t, c.Snapshot().Emails, 1)
}

func TestScanController_ClearsMessageWhenScanStarts(t *testing.T) {
	gate := make(chan struct{})
	agent := &fakeAgent{replies: []reply{
		{err: errRefused},
		{resp: &ScanResponse{Items: items("a")}, gate: gate},
	}}
	c := NewScanController(agent, zap.NewNop(), time.Second)

	c.ScanInbox(context.Background())
	require.Equal(t, FallbackMessage, c.Snapshot().Message)

	done := c.ScanInboxAsync(context.Background())
	assert.Empty(t, c.Snapshot().Message)

	close(gate)
	<-done
}

func TestScanController_TimeoutFallsBack(t *testing.T) {
	agent := &fakeAgent{replies: []reply{{resp: &ScanResponse{Items: items("late")}, gate: make(chan struct{})}}}
	c := NewScanController(agent, zap.NewNop(), 20*time.Millisecond)

	c.ScanInbox(context.Background())

	snap := c.Snapshot()
	assert.Equal(t, FallbackMessage, snap.Message)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Emails)
}

func TestScanController_NewerScanSupersedesOlder(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	agent := &fakeAgent{replies: []reply{
		// never released: only the cancellation ends it
		{resp: &ScanResponse{Items: items("stale")}, gate: make(chan struct{})},
		{resp: &ScanResponse{Items: items("fresh")}},
	}}
	c := NewScanController(agent, zap.New(obs), time.Minute)

	first := c.ScanInboxAsync(context.Background())
	waitCalls(t, agent, 1)
	second := c.ScanInboxAsync(context.Background())
	<-first
	<-second

	snap := c.Snapshot()
	require.Len(t, snap.Emails, 1)
	assert.Equal(t, "fresh", snap.Emails[0].Email.Subject)
	assert.Empty(t, snap.Message)
	assert.False(t, snap.Loading)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Equal(t, 1, logs.FilterMessage("Discarding superseded scan result").Len())
}

func TestScanController_StaleResultDoesNotEndLoading(t *testing.T) {
	staleGate := make(chan struct{})
	freshGate := make(chan struct{})
	agent := &fakeAgent{replies: []reply{
		{resp: &ScanResponse{Items: items("stale")}, gate: staleGate},
		{resp: &ScanResponse{Items: items("fresh")}, gate: freshGate},
	}}
	c := NewScanController(agent, zap.NewNop(), time.Minute)

	first := c.ScanInboxAsync(context.Background())
	waitCalls(t, agent, 1)
	second := c.ScanInboxAsync(context.Background())
	<-first

	assert.True(t, c.Loading())
	assert.Empty(t, c.Snapshot().Emails)

	close(freshGate)
	<-second
	close(staleGate)

	assert.False(t, c.Loading())
	assert.Equal(t, "fresh", c.Snapshot().Emails[0].Email.Subject)
}

func TestScanController_CloseAbortsAndRejects(t *testing.T) {
	agent := &fakeAgent{replies: []reply{{resp: &ScanResponse{Items: items("never")}, gate: make(chan struct{})}}}
	c := NewScanController(agent, zap.NewNop(), time.Minute)

	done := c.ScanInboxAsync(context.Background())
	c.Close()
	<-done

	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Emails)

	c.ScanInbox(context.Background())
	assert.Equal(t, 1, agent.Calls())
}

func TestScanController_SnapshotIsACopy(t *testing.T) {
	agent := &fakeAgent{replies: []reply{{resp: &ScanResponse{Items: items("a", "b")}}}}
	c := NewScanController(agent, zap.NewNop(), time.Second)
	c.ScanInbox(context.Background())

	snap := c.Snapshot()
	snap.Emails[0].Email.Subject = "mutated"

	assert.Equal(t, "a", c.Snapshot().Emails[0].Email.Subject)
}
