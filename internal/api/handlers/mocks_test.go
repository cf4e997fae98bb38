package handlers

import (
	"context"

	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/stretchr/testify/mock"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, doc statement.Document) (*statement.AnalysisResult, error) {
	args := m.Called(ctx, doc)
	result, _ := args.Get(0).(*statement.AnalysisResult)
	return result, args.Error(1)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchDocument(ctx context.Context, uri string) (statement.Document, error) {
	args := m.Called(ctx, uri)
	doc, _ := args.Get(0).(statement.Document)
	return doc, args.Error(1)
}
