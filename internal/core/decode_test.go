package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prizeScan = `[{
	"email": {"subject": "Win a prize", "from": "a@x.com", "date": "2024-01-01"},
	"ai_analysis": {"is_phishing": true, "confidence": 92, "summary": "Suspicious urgency",
		"explanation": "...", "tactics": ["urgency", "spoofed sender"]},
	"heuristic": {"reasons": ["mismatched reply-to", "shortened URL"]},
	"action": "quarantined"
}]`

func TestParseScanResponse_Idle(t *testing.T) {
	resp, err := ParseScanResponse([]byte(`{"status":"idle","message":"No new emails to scan.","results":[]}`))
	require.NoError(t, err)

	assert.True(t, resp.Idle)
	assert.Equal(t, "No new emails to scan.", resp.Message)
	assert.Empty(t, resp.Items)
}

func TestParseScanResponse_Items(t *testing.T) {
	resp, err := ParseScanResponse([]byte(prizeScan))
	require.NoError(t, err)

	require.False(t, resp.Idle)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	assert.False(t, item.Malformed())
	assert.Equal(t, "Win a prize", item.Email.Subject)
	assert.Equal(t, "a@x.com", item.Email.From)
	assert.True(t, item.AIAnalysis.IsPhishing)
	assert.Equal(t, 92.0, item.AIAnalysis.Confidence)
	assert.Equal(t, []string{"urgency", "spoofed sender"}, item.AIAnalysis.Tactics)
	assert.Equal(t, []string{"mismatched reply-to", "shortened URL"}, item.Heuristic.Reasons)
	assert.Equal(t, "quarantined", item.Action)
	assert.Nil(t, item.Heuristic.Score)
}

func TestParseScanResponse_EmptyArray(t *testing.T) {
	resp, err := ParseScanResponse([]byte(` [] `))
	require.NoError(t, err)
	assert.False(t, resp.Idle)
	assert.Empty(t, resp.Items)
}

func TestParseScanResponse_Malformed(t *testing.T) {
	bodies := map[string]string{
		"empty":            "",
		"html":             "<html>oops</html>",
		"string":           `"idle"`,
		"non-idle object":  `{"status":"running","service":"agent"}`,
		"object no status": `{"message":"hi"}`,
		"broken array":     `[{"email":`,
		"message type":     `{"status":"idle","message":42}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScanResponse([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestParseScanResponse_MalformedItemIsIsolated(t *testing.T) {
	body := `[
		{"email":{"from":"ok@x.com","date":"d"},"ai_analysis":{"is_phishing":false,"confidence":10},"heuristic":{"reasons":[]},"action":"No action"},
		{"email":{"subject":"Broken","from":"b@x.com"},"heuristic":{"reasons":[]},"action":"No action"},
		"not an object",
		{"email":{"from":"c@x.com"},"ai_analysis":{"is_phishing":"yes","confidence":1},"heuristic":{"reasons":[]},"action":""},
		{"email":{"from":"d@x.com"},"ai_analysis":{"is_phishing":true,"confidence":80},"heuristic":{"reasons":null},"action":"Alert sent"}
	]`

	resp, err := ParseScanResponse([]byte(body))
	require.NoError(t, err)
	require.Len(t, resp.Items, 5)

	assert.False(t, resp.Items[0].Malformed())
	assert.Equal(t, "ok@x.com", resp.Items[0].Email.From)

	assert.True(t, resp.Items[1].Malformed())
	assert.Contains(t, resp.Items[1].Error, "missing ai_analysis")
	assert.Equal(t, "Broken", resp.Items[1].Email.Subject)

	assert.True(t, resp.Items[2].Malformed())
	assert.True(t, resp.Items[3].Malformed())

	assert.True(t, resp.Items[4].Malformed())
	assert.Contains(t, resp.Items[4].Error, "missing heuristic.reasons")
}

func TestParseScanResponse_OriginalAgentFields(t *testing.T) {
	body := `[{
		"email": {"id":"17","message_id":"<m@x>","from":"x@evil.test","subject":"","date":null,"body":"..."},
		"ai_analysis": {"is_phishing":false,"confidence":20,"summary":"s","explanation":"e","tactics":[]},
		"heuristic": {"score":3,"urls":["http://evil.test/a"],"reasons":["Contains URL(s)","Contains URL(s)"],"is_suspicious":true},
		"action": "No action"
	}]`

	resp, err := ParseScanResponse([]byte(body))
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	require.False(t, item.Malformed(), item.Error)
	assert.Equal(t, "17", item.Email.ID)
	assert.Equal(t, DefaultSubject, item.Email.DisplaySubject())
	assert.Equal(t, "", item.Email.Date)
	require.NotNil(t, item.Heuristic.Score)
	assert.Equal(t, 3.0, *item.Heuristic.Score)
	assert.Equal(t, []string{"http://evil.test/a"}, item.Heuristic.URLs)
	assert.Equal(t, []string{"Contains URL(s)", "Contains URL(s)"}, item.Heuristic.Reasons)
	require.NotNil(t, item.Heuristic.IsSuspicious)
	assert.True(t, *item.Heuristic.IsSuspicious)
}
