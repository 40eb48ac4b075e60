// Package api implements the decision API boundary.
//
// Thin orchestration layer: transport-agnostic service methods delegating to
// the registry and the evaluator, plus the chi handlers that map them onto
// JSON/HTTP. Every response carries the request_id the transport generated.
package api

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/riskgate/riskgate/internal/catalog"
	"github.com/riskgate/riskgate/internal/engine"
	"github.com/riskgate/riskgate/internal/observability"
	"github.com/riskgate/riskgate/internal/registry"
	"github.com/riskgate/riskgate/internal/types"
)

// Service exposes the engine's boundary operations.
type Service struct {
	registry  *registry.Registry
	evaluator *engine.Evaluator
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewService creates the service with its dependencies. metrics may be nil
// (tests); registry and evaluator may not.
func NewService(reg *registry.Registry, evaluator *engine.Evaluator, logger *zap.Logger, metrics *observability.Metrics) (*Service, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  reg,
		evaluator: evaluator,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// EvaluateRequest is the evaluation input: the raw payload fields plus the
// precomputed per-field validation results.
type EvaluateRequest struct {
	types.Payload
	ValidationResults types.ValidationResults `json:"validation_results,omitempty"`
}

// EvaluateResponse echoes the validation results and carries the per-rule
// trace and the final decision.
type EvaluateResponse struct {
	Results         types.ValidationResults `json:"results"`
	RuleEvaluations []types.RuleEvaluation  `json:"rule_evaluations"`
	FinalDecision   types.FinalDecision     `json:"final_decision"`
	RequestID       types.RequestID         `json:"request_id"`
}

// Evaluate runs the tenant's active rule set against one request.
// Evaluation is best-effort by contract: it always produces a decision,
// even with malformed custom rules or missing fields.
func (s *Service) Evaluate(ctx context.Context, tenantID string, requestID types.RequestID, req EvaluateRequest) EvaluateResponse {
	start := time.Now()
	rules := s.registry.SnapshotFor(tenantID)
	outcome := s.evaluator.Evaluate(rules, req.Payload, req.ValidationResults)

	if s.metrics != nil {
		s.metrics.EvaluationsTotal.Inc()
		s.metrics.DecisionsTotal.WithLabelValues(string(outcome.Decision.Action)).Inc()
		s.metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
		for _, eval := range outcome.Evaluations {
			if eval.Triggered {
				s.metrics.RuleTriggeredTotal.WithLabelValues(eval.RuleID).Inc()
			}
		}
	}

	s.logger.Info("evaluated request",
		zap.String("tenant_id", tenantID),
		zap.String("request_id", string(requestID)),
		zap.String("action", string(outcome.Decision.Action)),
		zap.String("risk_level", string(outcome.Decision.RiskLevel)))

	return EvaluateResponse{
		Results:         outcome.Results,
		RuleEvaluations: outcome.Evaluations,
		FinalDecision:   outcome.Decision,
		RequestID:       requestID,
	}
}

// RegisterRulesRequest carries a batch of rule drafts.
type RegisterRulesRequest struct {
	Rules []types.RuleDraft `json:"rules"`
}

// RegisterRules registers a batch atomically for one tenant.
func (s *Service) RegisterRules(ctx context.Context, tenantID string, req RegisterRulesRequest) error {
	err := s.registry.Register(ctx, tenantID, req.Rules)
	if s.metrics != nil {
		outcome := "accepted"
		if err != nil {
			outcome = "rejected"
		} else {
			s.metrics.ActiveRules.Add(float64(len(req.Rules)))
		}
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
	return err
}

// ListRules returns the tenant's visible rules (builtins plus its own).
func (s *Service) ListRules(tenantID string) []types.RuleInfo {
	return s.registry.ListRules(tenantID)
}

// ReasonCodes returns the static reason-code catalog.
func (s *Service) ReasonCodes() []catalog.Code {
	return catalog.ReasonCodes()
}

// ErrorCodes returns the static error-code catalog.
func (s *Service) ErrorCodes() []catalog.Code {
	return catalog.ErrorCodes()
}
