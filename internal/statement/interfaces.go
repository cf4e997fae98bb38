package statement

import "context"

// Prompt is one request to the document model: the statement plus an instruction.
type Prompt struct {
	Document    Document
	Instruction string
}

// DocumentModel is the upstream AI document-understanding service.
// Generate returns the model's raw text answer. Implementations report transport
// failures and non-success statuses as *UpstreamError.
type DocumentModel interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// AccountTypeDetector classifies a statement as credit card or debit account.
type AccountTypeDetector interface {
	DetectAccountType(ctx context.Context, doc Document) (AccountTypeVerdict, error)
}

// TransactionExtractor extracts transactions using the template chosen by verdict.
type TransactionExtractor interface {
	ExtractTransactions(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error)
}
