package statement

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const stageDetection = "detection"

// Detector classifies statements with one call to the document model.
type Detector struct {
	model DocumentModel
}

// NewDetector returns a Detector backed by model.
func NewDetector(model DocumentModel) *Detector {
	return &Detector{model: model}
}

// verdictPayload is the wire shape of the detection answer.
type verdictPayload struct {
	AccountCategory string     `json:"accountCategory"`
	InstitutionName string     `json:"institutionName"`
	Confidence      Confidence `json:"confidence"`
}

// DetectAccountType asks the model for the account category, issuer and confidence.
// Parse failures are not retried.
func (d *Detector) DetectAccountType(ctx context.Context, doc Document) (AccountTypeVerdict, error) {
	raw, err := d.model.Generate(ctx, Prompt{Document: doc, Instruction: DetectionInstruction()})
	if err != nil {
		return AccountTypeVerdict{}, err
	}
	return parseVerdict(raw)
}

func parseVerdict(raw string) (AccountTypeVerdict, error) {
	clean := Sanitize(raw)

	var payload verdictPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return AccountTypeVerdict{}, newMalformed(stageDetection, raw, fmt.Errorf("unmarshal verdict: %w", err))
	}

	category, err := ParseAccountCategory(payload.AccountCategory)
	if err != nil {
		return AccountTypeVerdict{}, newMalformed(stageDetection, raw, err)
	}
	if !payload.Confidence.Valid() {
		return AccountTypeVerdict{}, newMalformed(stageDetection, raw, fmt.Errorf("confidence %d outside 0-100", payload.Confidence))
	}

	return AccountTypeVerdict{
		AccountCategory: category,
		InstitutionName: strings.TrimSpace(payload.InstitutionName),
		Confidence:      payload.Confidence,
	}, nil
}
