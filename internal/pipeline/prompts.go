package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahrav/go-recon/internal/domain"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

// Request builders for the four stages. Each stage sends the run context
// plus the outputs of the stages that ran before it, and constrains the
// response to its payload schema (Report excepted, which is free text).

const (
	stageMaxTokens   = 2048
	reportMaxTokens  = 4096
	stageTemperature = 0.2
)

func validationRequest(rc domain.RunContext) *transport.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "User intent: %s\n\n", rc.Intent)
	fmt.Fprintf(&b, "Reconciliation payload:\n%s\n", mustJSON(rc.Payload))

	return &transport.Request{
		Operation: transport.OpValidation,
		SystemPrompt: "You are a reconciliation data-quality reviewer. Judge the " +
			"supplied balances and transactions for completeness, duplicates, " +
			"suspicious dates, and inconsistent signs. Do not recompute balances.",
		Prompt:         b.String(),
		ResponseSchema: validationSchema(),
		MaxTokens:      stageMaxTokens,
		Temperature:    stageTemperature,
		RunID:          rc.RunID,
	}
}

func analysisRequest(rc domain.RunContext, validation *domain.ValidationAssessment) *transport.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "User intent: %s\n\n", rc.Intent)
	fmt.Fprintf(&b, "Materiality threshold: %.2f\n\n", rc.Summary.MaterialityThreshold)
	fmt.Fprintf(&b, "Per-account variances:\n%s\n\n", mustJSON(rc.Summary.Variances))
	fmt.Fprintf(&b, "Roll-forward entries:\n%s\n\n", mustJSON(rc.Summary.RollForward))
	if validation != nil {
		fmt.Fprintf(&b, "Data-quality assessment:\n%s\n", mustJSON(validation))
	}

	return &transport.Request{
		Operation: transport.OpAnalysis,
		SystemPrompt: "You are a reconciliation risk analyst. Classify the overall " +
			"risk level and list exactly the variances whose absolute value exceeds " +
			"the materiality threshold. Never invent variances not present in the input.",
		Prompt:         b.String(),
		ResponseSchema: analysisSchema(),
		MaxTokens:      stageMaxTokens,
		Temperature:    stageTemperature,
		RunID:          rc.RunID,
	}
}

func investigationRequest(rc domain.RunContext, analysis *domain.RiskAnalysis) *transport.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Material findings to investigate:\n%s\n\n", mustJSON(analysis.MaterialFindings))
	fmt.Fprintf(&b, "Transaction excerpt for context:\n%s\n", mustJSON(rc.Summary.TransactionSample))

	return &transport.Request{
		Operation: transport.OpInvestigation,
		SystemPrompt: "You are a reconciliation investigator. For each material " +
			"finding, propose the most plausible cause supported by the transaction " +
			"excerpt and a concrete next action. Flag anything you cannot explain " +
			"for manual review.",
		Prompt:         b.String(),
		ResponseSchema: investigationSchema(),
		MaxTokens:      stageMaxTokens,
		Temperature:    stageTemperature,
		RunID:          rc.RunID,
	}
}

func reportRequest(
	rc domain.RunContext,
	validation *domain.ValidationAssessment,
	analysis *domain.RiskAnalysis,
	findings []domain.InvestigationFinding,
) *transport.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "User intent: %s\n\n", rc.Intent)
	fmt.Fprintf(&b, "Numeric summary:\n%s\n\n", mustJSON(rc.Summary))
	fmt.Fprintf(&b, "Data-quality assessment:\n%s\n\n", mustJSON(validation))
	fmt.Fprintf(&b, "Risk analysis:\n%s\n\n", mustJSON(analysis))
	fmt.Fprintf(&b, "Investigation findings:\n%s\n", mustJSON(findings))

	return &transport.Request{
		Operation: transport.OpReport,
		SystemPrompt: "You are drafting a closing reconciliation report for a " +
			"finance reviewer. Summarize the outcome in plain language, lead with " +
			"whether the books reconcile, and mention every material variance and " +
			"its explanation. Cite only figures present in the input.",
		Prompt:      b.String(),
		MaxTokens:   reportMaxTokens,
		Temperature: 0.4,
		RunID:       rc.RunID,
	}
}

// mustJSON renders a value for prompt embedding. The domain types are all
// marshalable; a failure here indicates a programming error.
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

// Response schemas in the backend's constrained-output format.

func validationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status":     map[string]any{"type": "string", "enum": []string{"pass", "warn", "fail"}},
			"confidence": map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
			"issues":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"notes":      map[string]any{"type": "string"},
		},
		"required": []string{"status", "confidence"},
	}
}

func analysisSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"risk_level": map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
			"material_findings": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"account":   map[string]any{"type": "string"},
						"variance":  map[string]any{"type": "number"},
						"threshold": map[string]any{"type": "number"},
						"note":      map[string]any{"type": "string"},
					},
					"required": []string{"account", "variance"},
				},
			},
			"rationale": map[string]any{"type": "string"},
		},
		"required": []string{"risk_level", "material_findings"},
	}
}

func investigationSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"account":             map[string]any{"type": "string"},
				"variance":            map[string]any{"type": "number"},
				"probable_cause":      map[string]any{"type": "string"},
				"suggested_action":    map[string]any{"type": "string"},
				"needs_manual_review": map[string]any{"type": "boolean"},
			},
			"required": []string{"account", "variance", "probable_cause"},
		},
	}
}
