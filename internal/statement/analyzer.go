package statement

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/rs/zerolog"
)

// AnalysisStep is a single stage of a statement analysis.
type AnalysisStep interface {
	Name() string
	Execute(ctx context.Context, state *AnalysisState) error
}

// AnalysisState is owned by one Analyze call and never shared.
type AnalysisState struct {
	Document Document
	Verdict  AccountTypeVerdict
	Result   *AnalysisResult
}

// DetectStep classifies the account.
type DetectStep struct {
	Detector AccountTypeDetector
}

func (s *DetectStep) Name() string { return "detect" }

func (s *DetectStep) Execute(ctx context.Context, state *AnalysisState) error {
	verdict, err := s.Detector.DetectAccountType(ctx, state.Document)
	if err != nil {
		return err
	}
	state.Verdict = verdict

	log := logger.FromContext(ctx)
	log.Info().
		Str("account_category", string(verdict.AccountCategory)).
		Str("institution", verdict.InstitutionName).
		Int("confidence", int(verdict.Confidence)).
		Msg("Account type detected")
	return nil
}

// ExtractStep extracts transactions with the template picked by the verdict.
type ExtractStep struct {
	Extractor TransactionExtractor
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) Execute(ctx context.Context, state *AnalysisState) error {
	result, err := s.Extractor.ExtractTransactions(ctx, state.Document, state.Verdict)
	if err != nil {
		return err
	}
	if result == nil {
		result = &AnalysisResult{}
	}
	state.Result = result
	return nil
}

// StampStep overwrites the extractor's self-reported account fields with the verdict.
type StampStep struct{}

func (s *StampStep) Name() string { return "stamp" }

func (s *StampStep) Execute(_ context.Context, state *AnalysisState) error {
	state.Result.AccountCategory = state.Verdict.AccountCategory
	state.Result.InstitutionName = state.Verdict.InstitutionName
	return nil
}

// ValidateStep rejects results missing transactions or summary, or whose
// confidence lies outside 0-100.
type ValidateStep struct{}

func (s *ValidateStep) Name() string { return "validate" }

func (s *ValidateStep) Execute(_ context.Context, state *AnalysisState) error {
	if !state.Result.Confidence.Valid() {
		return newMalformed(stageExtraction, "", fmt.Errorf("confidence %d outside 0-100", state.Result.Confidence))
	}

	var missing []string
	if state.Result.Transactions == nil {
		missing = append(missing, "transactions")
	}
	if state.Result.Summary == nil {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return &IncompleteResultError{Missing: missing}
	}
	return nil
}

// Analyzer sequences detection and extraction. It keeps no state between calls
// and is safe for concurrent use.
type Analyzer struct {
	steps     []AnalysisStep
	validator *CategoryValidator
	log       zerolog.Logger
}

// NewAnalyzer wires the standard detect -> extract -> stamp -> validate sequence.
func NewAnalyzer(detector AccountTypeDetector, extractor TransactionExtractor, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		steps: []AnalysisStep{
			&DetectStep{Detector: detector},
			&ExtractStep{Extractor: extractor},
			&StampStep{},
			&ValidateStep{},
		},
		validator: NewCategoryValidator(Catalog),
		log:       log,
	}
}

// NewModelAnalyzer builds an Analyzer whose detector and extractor share model.
func NewModelAnalyzer(model DocumentModel, log zerolog.Logger) *Analyzer {
	return NewAnalyzer(NewDetector(model), NewExtractor(model), log)
}

// Analyze runs the full analysis. Either a validated result or an error is
// returned, never a partial result.
func (a *Analyzer) Analyze(ctx context.Context, doc Document) (*AnalysisResult, error) {
	log := logger.FromContextOr(ctx, a.log)
	ctx = logger.WithContext(ctx, log)
	state := &AnalysisState{Document: doc}

	for _, step := range a.steps {
		if err := step.Execute(ctx, state); err != nil {
			log.Error().Err(err).Str("step", step.Name()).Msg("Statement analysis failed")
			return nil, fmt.Errorf("analysis step %s: %w", step.Name(), err)
		}
	}

	for _, issue := range a.validator.ReviewTransactions(state.Result.Transactions) {
		log.Warn().Int("index", issue.Index).Str("reason", issue.Reason).Msg("Suspicious transaction in model output")
	}
	if state.Result.Confidence < LowConfidenceThreshold {
		log.Warn().Int("confidence", int(state.Result.Confidence)).Msg("Model reported low extraction confidence")
	}

	log.Info().
		Int("transactions", len(state.Result.Transactions)).
		Int("confidence", int(state.Result.Confidence)).
		Msg("Statement analysis completed")

	return state.Result, nil
}
