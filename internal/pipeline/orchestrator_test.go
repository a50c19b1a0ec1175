package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-recon/internal/domain"
	"github.com/ahrav/go-recon/internal/inference"
	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/retry"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

// scriptedClient is a Client whose per-operation behavior is scripted.
// Operations without a script return a well-formed default reply.
type scriptedClient struct {
	mu      sync.Mutex
	scripts map[transport.StageOperation][]scriptStep
	calls   []transport.StageOperation

	// afterCall runs after each Submit with the operation just served.
	afterCall func(op transport.StageOperation)
}

type scriptStep struct {
	content string
	err     error
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{scripts: make(map[transport.StageOperation][]scriptStep)}
}

func (c *scriptedClient) script(op transport.StageOperation, steps ...scriptStep) {
	c.scripts[op] = append(c.scripts[op], steps...)
}

func (c *scriptedClient) Configured() bool { return true }

func (c *scriptedClient) Submit(_ context.Context, req *transport.Request) (*transport.Response, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req.Operation)
	var step scriptStep
	if steps := c.scripts[req.Operation]; len(steps) > 0 {
		step = steps[0]
		c.scripts[req.Operation] = steps[1:]
	} else {
		step = scriptStep{content: defaultContent(req.Operation)}
	}
	after := c.afterCall
	c.mu.Unlock()

	if after != nil {
		defer after(req.Operation)
	}

	if step.err != nil {
		return nil, step.err
	}
	return &transport.Response{Content: step.content, FinishReason: "STOP"}, nil
}

func (c *scriptedClient) callsFor(op transport.StageOperation) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call == op {
			n++
		}
	}
	return n
}

func defaultContent(op transport.StageOperation) string {
	switch op {
	case transport.OpValidation:
		return `{"status":"pass","confidence":"high","issues":[]}`
	case transport.OpAnalysis:
		return `{"risk_level":"medium","material_findings":[{"account":"cash","variance":150,"threshold":100,"note":"exceeds threshold"}],"rationale":"one variance is material"}`
	case transport.OpInvestigation:
		return `[{"account":"cash","variance":150,"probable_cause":"timing difference","suggested_action":"confirm with bank","needs_manual_review":false}]`
	case transport.OpReport:
		return "Books reconcile with one material variance\nThe cash account shows a 150.00 timing difference."
	default:
		return "{}"
	}
}

// emptyFindingsAnalysis is a successful Analysis reply with no material
// findings, which makes the orchestrator skip Investigation.
const emptyFindingsAnalysis = `{"risk_level":"low","material_findings":[],"rationale":"nothing material"}`

func testRunContext() domain.RunContext {
	return domain.NewRunContext("reconcile month end",
		domain.ReconciliationPayload{
			Balances: []domain.AccountBalance{
				{Account: "cash", Opening: 1000, Closing: 1250},
			},
			Transactions: []domain.Transaction{
				{ID: "t1", Account: "cash", Amount: 100},
			},
		},
		domain.ComputedSummary{
			MaterialityThreshold: 100,
			Variances: []domain.AccountVariance{
				{Account: "cash", Expected: 1100, Actual: 1250, Variance: 150},
			},
			RollForward: []domain.RollForwardEntry{
				{Account: "cash", Opening: 1000, Activity: 100, ComputedClosing: 1100, ReportedClosing: 1250},
			},
		})
}

func newTestOrchestrator(client inference.Client, opts ...Option) *Orchestrator {
	base := []Option{WithRetryPolicy(retry.Policy{Default: time.Millisecond})}
	return NewOrchestrator(client, append(base, opts...)...)
}

func TestRunAllStagesSucceed(t *testing.T) {
	client := newScriptedClient()
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)
	require.NotNil(t, result)

	for stage, status := range result.Statuses() {
		assert.True(t, status.Success, "stage %s should succeed", stage)
		assert.False(t, status.UsedFallback, "stage %s should not fall back", stage)
		assert.Zero(t, status.RetryCount, "stage %s should not retry", stage)
		assert.Empty(t, status.Error)
	}

	assert.False(t, result.Degraded())
	assert.Equal(t, 1, client.callsFor(transport.OpValidation))
	assert.Equal(t, 1, client.callsFor(transport.OpAnalysis))
	assert.Equal(t, 1, client.callsFor(transport.OpInvestigation))
	assert.Equal(t, 1, client.callsFor(transport.OpReport))

	require.NotNil(t, result.Validation.Data)
	assert.Equal(t, domain.ValidationPass, result.Validation.Data.Status)
	require.NotNil(t, result.Investigation.Data)
	require.Len(t, *result.Investigation.Data, 1)
	require.NotNil(t, result.Report.Data)
	assert.True(t, result.Report.Data.Generated)
	assert.Equal(t, "Books reconcile with one material variance", result.Report.Data.Headline)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
}

func TestRunUnconfiguredClientFallsBackEverywhere(t *testing.T) {
	o := newTestOrchestrator(inference.Unconfigured())

	start := time.Now()
	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	for stage, status := range result.Statuses() {
		assert.True(t, status.UsedFallback, "stage %s should fall back", stage)
		assert.False(t, status.Success, "stage %s should not report success", stage)
		assert.Zero(t, status.RetryCount, "stage %s must not retry when unconfigured", stage)
		assert.NotEmpty(t, status.Error)
	}

	assert.True(t, result.Degraded())
	// Unconfigured failures are not retryable, so the run must complete
	// without any backoff waits.
	assert.Less(t, time.Since(start), 2*time.Second)

	// The analysis fallback still surfaces the material subset from the
	// numeric summary, so Investigation ran (and fell back) rather than skip.
	require.NotNil(t, result.Analysis.Data)
	require.Len(t, result.Analysis.Data.MaterialFindings, 1)
	assert.Equal(t, domain.RiskIndeterminate, result.Analysis.Data.RiskLevel)

	require.NotNil(t, result.Investigation.Data)
	require.Len(t, *result.Investigation.Data, 1)
	assert.True(t, (*result.Investigation.Data)[0].NeedsManualReview)

	require.NotNil(t, result.Report.Data)
	assert.False(t, result.Report.Data.Generated)
}

func TestRunSkipsInvestigationWithoutMaterialFindings(t *testing.T) {
	client := newScriptedClient()
	client.script(transport.OpAnalysis, scriptStep{content: emptyFindingsAnalysis})
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	status := result.Investigation.Status
	assert.True(t, status.Success)
	assert.False(t, status.UsedFallback)
	assert.Zero(t, status.RetryCount)
	assert.Zero(t, status.DurationMs)
	assert.Empty(t, status.Error)

	require.NotNil(t, result.Investigation.Data, "skip still yields a well-formed collection")
	assert.Empty(t, *result.Investigation.Data)

	assert.Zero(t, client.callsFor(transport.OpInvestigation), "skip must not touch the backend")
	assert.Equal(t, 1, client.callsFor(transport.OpReport), "report still runs after a skip")
	assert.False(t, result.Degraded())
}

func TestRunRetriesRateLimitedStage(t *testing.T) {
	client := newScriptedClient()
	client.script(transport.OpInvestigation,
		scriptStep{err: &inferrors.RateLimitError{Provider: "google", RetryHint: "1ms"}},
		scriptStep{err: &inferrors.RateLimitError{Provider: "google", RetryHint: "1ms"}},
		scriptStep{content: defaultContent(transport.OpInvestigation)},
	)
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	status := result.Investigation.Status
	assert.True(t, status.Success)
	assert.False(t, status.UsedFallback)
	assert.Equal(t, 2, status.RetryCount)
	assert.Equal(t, 3, client.callsFor(transport.OpInvestigation))
	assert.False(t, result.Degraded())
}

func TestRunFallsBackAfterRetryExhaustion(t *testing.T) {
	client := newScriptedClient()
	rateLimited := scriptStep{err: &inferrors.RateLimitError{Provider: "google", RetryHint: "1ms"}}
	client.script(transport.OpValidation, rateLimited, rateLimited, rateLimited)
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	status := result.Validation.Status
	assert.True(t, status.UsedFallback)
	assert.Equal(t, DefaultMaxRetries, status.RetryCount)
	assert.NotEmpty(t, status.Error)
	assert.Equal(t, 3, client.callsFor(transport.OpValidation))

	// The rest of the pipeline continues on the fallback assessment.
	assert.True(t, result.Analysis.Status.Success)
	assert.True(t, result.Report.Status.Success)
	assert.True(t, result.Degraded())
}

func TestRunNegativeMaxRetriesMeansSingleAttempt(t *testing.T) {
	client := newScriptedClient()
	client.script(transport.OpValidation,
		scriptStep{err: &inferrors.RateLimitError{Provider: "google", RetryHint: "1ms"}})
	o := newTestOrchestrator(client, WithMaxRetries(-1))

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	status := result.Validation.Status
	assert.True(t, status.UsedFallback)
	assert.Zero(t, status.RetryCount)
	assert.Equal(t, 1, client.callsFor(transport.OpValidation),
		"a negative cap clamps to a single attempt instead of retrying forever")
}

func TestRunNonRateLimitFailureUsesSingleAttempt(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"timeout", &inferrors.ProviderError{Provider: "google", Type: inferrors.ErrorTypeTimeout, Message: "deadline exceeded"}},
		{"connection", &inferrors.ProviderError{Provider: "google", Type: inferrors.ErrorTypeConnection, Message: "dial failed"}},
		{"malformed", inferrors.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newScriptedClient()
			client.script(transport.OpAnalysis, scriptStep{err: tt.err})
			o := newTestOrchestrator(client)

			result, err := o.Run(context.Background(), testRunContext())
			require.NoError(t, err)

			status := result.Analysis.Status
			assert.True(t, status.UsedFallback)
			assert.Zero(t, status.RetryCount, "non-rate-limit failures must not retry")
			assert.Equal(t, 1, client.callsFor(transport.OpAnalysis))
		})
	}
}

func TestRunMalformedReplyFallsBack(t *testing.T) {
	client := newScriptedClient()
	client.script(transport.OpValidation, scriptStep{content: "not json"})
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	status := result.Validation.Status
	assert.True(t, status.UsedFallback)
	assert.Zero(t, status.RetryCount)
	require.NotNil(t, result.Validation.Data)
	assert.Equal(t, domain.ConfidenceLow, result.Validation.Data.Confidence)
}

func TestRunCancelledAfterValidation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := newScriptedClient()
	client.afterCall = func(op transport.StageOperation) {
		if op == transport.OpValidation {
			cancel()
		}
	}
	o := newTestOrchestrator(client)

	result, err := o.Run(ctx, testRunContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRunCancelled)
	assert.Nil(t, result, "a cancelled run never returns a partial result")

	assert.Equal(t, 1, client.callsFor(transport.OpValidation))
	assert.Zero(t, client.callsFor(transport.OpAnalysis), "later stages must never be attempted")
	assert.Zero(t, client.callsFor(transport.OpInvestigation))
	assert.Zero(t, client.callsFor(transport.OpReport))
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newScriptedClient()
	o := newTestOrchestrator(client)

	result, err := o.Run(ctx, testRunContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRunCancelled)
	assert.Nil(t, result)
	assert.Empty(t, client.calls)
}

func TestRunRejectsInvalidRunContext(t *testing.T) {
	client := newScriptedClient()
	o := newTestOrchestrator(client)

	rc := testRunContext()
	rc.RunID = "not-a-uuid"

	result, err := o.Run(context.Background(), rc)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRunCancelled)
	assert.Nil(t, result)
	assert.Empty(t, client.calls, "invalid input must not reach the backend")
}

func TestRunRecordsStageDurations(t *testing.T) {
	client := newScriptedClient()
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	for stage, status := range result.Statuses() {
		assert.GreaterOrEqual(t, status.DurationMs, int64(0), "stage %s duration", stage)
	}
}

var _ inference.Client = (*scriptedClient)(nil)

func TestErrRunCancelledIdentity(t *testing.T) {
	err := cancelled(errors.New("context canceled"))
	assert.ErrorIs(t, err, domain.ErrRunCancelled)
}
