package statement

import (
	"context"
	"encoding/json"
	"fmt"
)

const stageExtraction = "extraction"

// unknownInstitution stands in for an issuer the detector could not name.
const unknownInstitution = "institución no identificada"

// Extractor pulls transactions out of a statement with the template for its category.
type Extractor struct {
	model DocumentModel
}

// NewExtractor returns an Extractor backed by model.
func NewExtractor(model DocumentModel) *Extractor {
	return &Extractor{model: model}
}

// ExtractionInstruction builds the instruction text for verdict's account category.
func ExtractionInstruction(verdict AccountTypeVerdict) (string, error) {
	build, ok := extractionTemplates[verdict.AccountCategory]
	if !ok {
		return "", fmt.Errorf("ExtractionInstruction: no template for account category %q", verdict.AccountCategory)
	}
	institution := verdict.InstitutionName
	if institution == "" {
		institution = unknownInstitution
	}
	return build(institution), nil
}

// ExtractTransactions sends the document with the category-specific template and
// parses the answer. Required-field checks are left to the Analyzer.
func (e *Extractor) ExtractTransactions(ctx context.Context, doc Document, verdict AccountTypeVerdict) (*AnalysisResult, error) {
	instruction, err := ExtractionInstruction(verdict)
	if err != nil {
		return nil, err
	}

	raw, err := e.model.Generate(ctx, Prompt{Document: doc, Instruction: instruction})
	if err != nil {
		return nil, err
	}

	return parseResult(raw)
}

func parseResult(raw string) (*AnalysisResult, error) {
	clean := Sanitize(raw)

	var result AnalysisResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, newMalformed(stageExtraction, raw, fmt.Errorf("unmarshal result: %w", err))
	}
	return &result, nil
}
