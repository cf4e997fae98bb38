package statement

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_StampsVerdictOverExtractorReport(t *testing.T) {
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{AccountCategory: CreditCard, InstitutionName: "X", Confidence: 90}, nil
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			return &AnalysisResult{
				Confidence:      80,
				InstitutionName: "Y",
				AccountCategory: DebitAccount,
				Transactions:    []Transaction{},
				Summary:         &AnalysisSummary{},
			}, nil
		},
	}

	result, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(context.Background(), testDocument(t))
	require.NoError(t, err)

	assert.Equal(t, "X", result.InstitutionName)
	assert.Equal(t, CreditCard, result.AccountCategory)
	assert.Equal(t, Confidence(80), result.Confidence, "confidence comes from extraction")
	assert.Equal(t, CreditCard, extractor.lastVerdict.AccountCategory)
}

func TestAnalyzer_MissingSummary(t *testing.T) {
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{AccountCategory: DebitAccount, InstitutionName: "Banorte", Confidence: 70}, nil
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			return &AnalysisResult{Transactions: []Transaction{}}, nil
		},
	}

	result, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(context.Background(), testDocument(t))
	assert.Nil(t, result)

	var incomplete *IncompleteResultError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"summary"}, incomplete.Missing)
}

func TestAnalyzer_DetectorFailureSkipsExtraction(t *testing.T) {
	upstream := &UpstreamError{Provider: "anthropic", StatusCode: 500, Body: "boom"}
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{}, upstream
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			t.Fatal("extractor must not be called")
			return nil, nil
		},
	}

	_, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(context.Background(), testDocument(t))

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 500, upstreamErr.StatusCode)
	assert.Equal(t, 1, detector.calls)
	assert.Zero(t, extractor.calls)
}

func TestAnalyzer_NilResultIsIncomplete(t *testing.T) {
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{AccountCategory: CreditCard}, nil
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			return nil, nil
		},
	}

	_, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(context.Background(), testDocument(t))
	var incomplete *IncompleteResultError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"transactions", "summary"}, incomplete.Missing)
}

func TestAnalyzer_DebitStatementEndToEnd(t *testing.T) {
	model := &scriptedModel{answers: []scriptedAnswer{
		{text: `{"accountCategory":"DEBIT_ACCOUNT","institutionName":"BBVA México","confidence":92}`},
		{text: "```json\n" + `{
  "confidence": 88,
  "transactions": [
    {"date":"2024-01-15","description":"COMPRA OXXO CENTRO DF","category":"Alimentación","amount":-150.50,"kind":"expense"},
    {"date":"2024-01-16","description":"DEPOSITO NOMINA","category":"Transferencias","amount":15000,"kind":"income"}
  ],
  "summary": {"totalIncome":15000,"totalExpenses":-150.50,"netBalance":14849.50,"transactionCount":2,"period":"Enero 2024"},
  "categoryBreakdown": {"Alimentación": -150.50, "Transferencias": 15000}
}` + "\n```"},
	}}

	buf := &bytes.Buffer{}
	result, err := NewModelAnalyzer(model, logger.NewWithWriter(buf)).Analyze(context.Background(), testDocument(t))
	require.NoError(t, err)

	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[1].Instruction, "DÉBITO")
	assert.Contains(t, model.prompts[1].Instruction, "BBVA México")

	assert.Equal(t, DebitAccount, result.AccountCategory)
	assert.Equal(t, "BBVA México", result.InstitutionName)
	assert.Equal(t, Confidence(88), result.Confidence)
	require.Len(t, result.Transactions, 2)

	oxxo := result.Transactions[0]
	assert.Equal(t, CategoryFood, oxxo.Category)
	assert.Equal(t, KindExpense, oxxo.Kind)
	assert.True(t, oxxo.Amount.Equal(decimal.RequireFromString("-150.50")))
	assert.Equal(t, "2024-01-15", oxxo.Date.String())

	require.NotNil(t, result.Summary)
	assert.True(t, result.Summary.NetBalance.Equal(decimal.RequireFromString("14849.50")))
	assert.True(t, result.CategoryBreakdown[CategoryFood].Equal(decimal.RequireFromString("-150.50")))

	assert.Contains(t, buf.String(), "Account type detected")
	assert.Contains(t, buf.String(), "Statement analysis completed")
}

func TestAnalyzer_ProseWrappedPartialAnswer(t *testing.T) {
	model := &scriptedModel{answers: []scriptedAnswer{
		{text: `{"accountCategory":"CREDIT_CARD","institutionName":"HSBC","confidence":75}`},
		{text: "Sure! ```json\n{\"confidence\":10}```"},
	}}

	_, err := NewModelAnalyzer(model, zerolog.Nop()).Analyze(context.Background(), testDocument(t))

	var incomplete *IncompleteResultError
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t, []string{"transactions", "summary"}, incomplete.Missing)
}

func TestAnalyzer_MalformedDetectionStopsPipeline(t *testing.T) {
	model := &scriptedModel{answers: []scriptedAnswer{
		{text: "no puedo leer el documento"},
		{text: `{"transactions":[],"summary":{}}`},
	}}

	_, err := NewModelAnalyzer(model, zerolog.Nop()).Analyze(context.Background(), testDocument(t))

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, stageDetection, malformed.Stage)
	assert.Equal(t, 1, model.calls())
}

func TestAnalyzer_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{}, &UpstreamError{Provider: "test", Err: ctx.Err()}
		},
	}
	extractor := &mockExtractor{}

	_, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(ctx, testDocument(t))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, extractor.calls)
}

func TestAnalyzer_LogsReviewWarnings(t *testing.T) {
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{AccountCategory: CreditCard, InstitutionName: "Santander", Confidence: 90}, nil
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			return &AnalysisResult{
				Confidence: 30,
				Transactions: []Transaction{
					{Description: "NETFLIX", Category: "Streaming", Amount: decimal.NewFromInt(199), Kind: KindExpense},
				},
				Summary: &AnalysisSummary{},
			}, nil
		},
	}

	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	result, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(ctx, testDocument(t))
	require.NoError(t, err)

	assert.Equal(t, Category("Streaming"), result.Transactions[0].Category, "model output is not rewritten")
	assert.Contains(t, buf.String(), "Suspicious transaction in model output")
	assert.Contains(t, buf.String(), "Model reported low extraction confidence")
}

func TestAnalyzer_LogsVerdictThroughAnalyzerLogger(t *testing.T) {
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{AccountCategory: DebitAccount, InstitutionName: "Banorte", Confidence: 77}, nil
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			return &AnalysisResult{Confidence: 80, Transactions: []Transaction{}, Summary: &AnalysisSummary{}}, nil
		},
	}

	buf := &bytes.Buffer{}
	_, err := NewAnalyzer(detector, extractor, logger.NewWithWriter(buf)).Analyze(context.Background(), testDocument(t))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Account type detected")
	assert.Contains(t, buf.String(), `"institution":"Banorte"`)
}

func TestAnalyzer_RejectsOutOfRangeExtractionConfidence(t *testing.T) {
	detector := &mockDetector{
		DetectAccountTypeFunc: func(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
			return AccountTypeVerdict{AccountCategory: CreditCard, Confidence: 90}, nil
		},
	}
	extractor := &mockExtractor{
		ExtractTransactionsFunc: func(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
			return &AnalysisResult{Confidence: 150, Transactions: []Transaction{}, Summary: &AnalysisSummary{}}, nil
		},
	}

	result, err := NewAnalyzer(detector, extractor, zerolog.Nop()).Analyze(context.Background(), testDocument(t))
	assert.Nil(t, result)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, stageExtraction, malformed.Stage)
}
