package statement

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedModel replays canned answers in order and records every prompt.
type scriptedModel struct {
	mu      sync.Mutex
	answers []scriptedAnswer
	prompts []Prompt
}

type scriptedAnswer struct {
	text string
	err  error
}

func (m *scriptedModel) Generate(ctx context.Context, prompt Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if len(m.answers) == 0 {
		return "", &UpstreamError{Provider: "scripted", Body: "no answer scripted"}
	}
	next := m.answers[0]
	m.answers = m.answers[1:]
	return next.text, next.err
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockDetector and mockExtractor follow the function-field mock pattern.
type mockDetector struct {
	DetectAccountTypeFunc func(ctx context.Context, doc Document) (AccountTypeVerdict, error)
	calls                 int
}

func (m *mockDetector) DetectAccountType(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
	m.calls++
	return m.DetectAccountTypeFunc(ctx, doc)
}

type mockExtractor struct {
	ExtractTransactionsFunc func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error)
	calls                   int
	lastVerdict             AccountTypeVerdict
}

func (m *mockExtractor) ExtractTransactions(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
	m.calls++
	m.lastVerdict = verdict
	return m.ExtractTransactionsFunc(ctx, doc, verdict)
}

func testDocument(t *testing.T) Document {
	t.Helper()
	doc, err := NewDocument([]byte("%PDF-1.4 fake statement"), "")
	require.NoError(t, err)
	return doc
}
