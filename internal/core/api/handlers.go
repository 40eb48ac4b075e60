package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/riskgate/riskgate/internal/types"
)

/*
 * HTTP handlers.
 *
 * Maps the boundary operations onto JSON routes. Error mapping: the
 * registration taxonomy (caller fault) becomes 400 with a catalog error
 * code; anything else is 500 with INTERNAL_ERROR. Evaluation never maps to
 * an error: per-rule failures are absorbed inside the engine.
 */

// Routes mounts the service's endpoints on a chi router.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/evaluate", s.handleEvaluate)
	r.Post("/rules", s.handleRegisterRules)
	r.Get("/rules", s.handleListRules)
	r.Get("/reason-codes", s.handleReasonCodes)
	r.Get("/error-codes", s.handleErrorCodes)
	return r
}

func (s *Service) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	resp := s.Evaluate(r.Context(), TenantIDFromContext(r.Context()), requestID, req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleRegisterRules(w http.ResponseWriter, r *http.Request) {
	requestID := RequestIDFromContext(r.Context())

	var req RegisterRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON")
		return
	}

	tenantID := TenantIDFromContext(r.Context())
	if err := s.RegisterRules(r.Context(), tenantID, req); err != nil {
		if types.IsRegistrationError(err) {
			writeError(w, requestID, http.StatusBadRequest, registrationErrorCode(err), err.Error())
			return
		}
		s.logger.Error("rule registration failed",
			zap.String("tenant_id", tenantID),
			zap.String("request_id", string(requestID)),
			zap.Error(err))
		writeError(w, requestID, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "rules registered",
		"request_id": requestID,
	})
}

func (s *Service) handleListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rules":      s.ListRules(TenantIDFromContext(r.Context())),
		"request_id": RequestIDFromContext(r.Context()),
	})
}

func (s *Service) handleReasonCodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"reason_codes": s.ReasonCodes(),
		"request_id":   RequestIDFromContext(r.Context()),
	})
}

func (s *Service) handleErrorCodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"error_codes": s.ErrorCodes(),
		"request_id":  RequestIDFromContext(r.Context()),
	})
}

// registrationErrorCode maps registration sentinels to catalog error codes.
func registrationErrorCode(err error) string {
	switch {
	case errors.Is(err, types.ErrEmptyRuleBatch):
		return "EMPTY_RULE_BATCH"
	case errors.Is(err, types.ErrBatchTooLarge):
		return "BATCH_TOO_LARGE"
	case errors.Is(err, types.ErrMissingRuleField):
		return "MISSING_REQUIRED_FIELD"
	case errors.Is(err, types.ErrDuplicateRuleID):
		return "DUPLICATE_RULE_ID"
	case errors.Is(err, types.ErrInvalidActions):
		return "INVALID_ACTIONS"
	case errors.Is(err, types.ErrMissingCondition):
		return "MISSING_CONDITION"
	case errors.Is(err, types.ErrAmbiguousCondition):
		return "AMBIGUOUS_CONDITION"
	case errors.Is(err, types.ErrUnknownOperator):
		return "UNKNOWN_OPERATOR"
	case errors.Is(err, types.ErrConditionTooDeep):
		return "CONDITION_TOO_DEEP"
	case errors.Is(err, types.ErrTooManyInValues):
		return "TOO_MANY_IN_VALUES"
	case errors.Is(err, types.ErrInvalidCondition), errors.Is(err, types.ErrFieldPathTooDeep), errors.Is(err, types.ErrExpressionTooLong):
		return "INVALID_CONDITION"
	default:
		return "INTERNAL_ERROR"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, requestID types.RequestID, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":      message,
		"code":       code,
		"request_id": requestID,
	})
}
