package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"securedeal/internal/validation/audit"
	"securedeal/internal/validation/models"
	"securedeal/internal/validation/sink"
	id "securedeal/pkg/domain"
)

// ============================================================================
// Fake service
// ============================================================================

type fakeService struct {
	validated  []models.InputRecord
	previewed  []models.InputRecord
	runs       map[id.RunID]models.RunResult
	events     map[id.RunID][]audit.Event
	rules      []models.Rule
	hash       string
	reloadErr  error
	serviceErr error
}

func newFakeService() *fakeService {
	return &fakeService{
		runs:   map[id.RunID]models.RunResult{},
		events: map[id.RunID][]audit.Event{},
		hash:   "abc123",
		rules: []models.Rule{{
			ID: "VEH-001", Name: "VIN Match", Version: 1, Enabled: true,
			Source:     models.FieldRef{Entity: models.EntityVehicle, Field: "vin"},
			Target:     models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "vin"},
			Comparison: models.Comparison{Type: models.CompareExact},
			Severity:   models.SeverityCritical,
		}},
	}
}

func (f *fakeService) Validate(_ context.Context, record models.InputRecord) (models.RunResult, error) {
	if f.serviceErr != nil {
		return models.RunResult{}, f.serviceErr
	}
	f.validated = append(f.validated, record)
	result := models.RunResult{ID: "run-1", OpportunityID: record.OpportunityID, OverallStatus: models.StatusGreen}
	f.runs[result.ID] = result
	return result, nil
}

func (f *fakeService) Preview(_ context.Context, record models.InputRecord, candidates []models.Rule, _ *models.EngineConfig) (models.RunResult, error) {
	if f.serviceErr != nil {
		return models.RunResult{}, f.serviceErr
	}
	f.previewed = append(f.previewed, record)
	return models.RunResult{ID: "preview-1", OverallStatus: models.StatusOrange}, nil
}

func (f *fakeService) Run(_ context.Context, runID id.RunID) (models.RunResult, error) {
	run, ok := f.runs[runID]
	if !ok {
		return models.RunResult{}, sink.ErrNotFound
	}
	return run, nil
}

func (f *fakeService) RunsByOpportunity(_ context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error) {
	var out []models.RunResult
	for _, run := range f.runs {
		if run.OpportunityID == opportunityID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (f *fakeService) Rules() ([]models.Rule, string, error) {
	if f.hash == "" {
		return nil, "", fmt.Errorf("no rule snapshot loaded")
	}
	return f.rules, f.hash, nil
}

func (f *fakeService) ReloadRules(context.Context) (string, error) {
	if f.reloadErr != nil {
		return "", f.reloadErr
	}
	return f.hash, nil
}

func (f *fakeService) AuditTrail(_ context.Context, runID id.RunID) ([]audit.Event, error) {
	return f.events[runID], nil
}

// ============================================================================
// Suite
// ============================================================================

type HandlerSuite struct {
	suite.Suite

	service *fakeService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = newFakeService()
	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.7:51234"
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestValidate() {
	body := map[string]any{
		"opportunityId": "opp-1",
		"entities": map[string]any{
			"vehicle":         map[string]any{"vin": "TMB123"},
			"ocr_vehicle_reg": map[string]any{"vin": "TMB123"},
		},
	}

	rec := s.do(http.MethodPost, "/v1/validations", body)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var result models.RunResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(id.RunID("run-1"), result.ID)
	s.Equal(models.StatusGreen, result.OverallStatus)

	s.Require().Len(s.service.validated, 1)
	s.Equal(id.OpportunityID("opp-1"), s.service.validated[0].OpportunityID)
}

func (s *HandlerSuite) TestValidateRejectsMissingOpportunity() {
	body := map[string]any{
		"entities": map[string]any{"vehicle": map[string]any{"vin": "TMB123"}},
	}

	rec := s.do(http.MethodPost, "/v1/validations", body)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.service.validated)
}

func (s *HandlerSuite) TestValidateRejectsMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/v1/validations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestPreviewAllowsAnonymousRecord() {
	body := map[string]any{
		"entities": map[string]any{"vehicle": map[string]any{"vin": "TMB123"}},
		"rules":    s.service.rules,
	}

	rec := s.do(http.MethodPost, "/v1/validations/preview", body)
	s.Require().Equal(http.StatusOK, rec.Code)

	var result models.RunResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(id.RunID("preview-1"), result.ID)
	s.Require().Len(s.service.previewed, 1)
	s.Empty(s.service.validated)
}

func (s *HandlerSuite) TestGetRun() {
	s.service.runs["run-9"] = models.RunResult{ID: "run-9", OverallStatus: models.StatusRed}

	rec := s.do(http.MethodGet, "/v1/validations/run-9", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var result models.RunResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(models.StatusRed, result.OverallStatus)
}

func (s *HandlerSuite) TestGetRunNotFound() {
	rec := s.do(http.MethodGet, "/v1/validations/nope", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	var resp errorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("run not found", resp.Error)
	s.NotEmpty(resp.RequestID)
}

func (s *HandlerSuite) TestListRunsEmpty() {
	rec := s.do(http.MethodGet, "/v1/opportunities/opp-404/validations", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq("[]", rec.Body.String())
}

func (s *HandlerSuite) TestGetRules() {
	rec := s.do(http.MethodGet, "/v1/rules", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp rulesResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("abc123", resp.SnapshotHash)
	s.Len(resp.Rules, 1)
}

func (s *HandlerSuite) TestGetRulesWithoutSnapshot() {
	s.service.hash = ""

	rec := s.do(http.MethodGet, "/v1/rules", nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *HandlerSuite) TestReloadRules() {
	rec := s.do(http.MethodPost, "/v1/rules/reload", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp reloadResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("abc123", resp.SnapshotHash)
}

func (s *HandlerSuite) TestReloadRulesFailure() {
	s.service.reloadErr = fmt.Errorf("rule VEH-001: unknown transform")

	rec := s.do(http.MethodPost, "/v1/rules/reload", nil)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerSuite) TestAuditTrail() {
	s.service.events["run-1"] = []audit.Event{{RunID: "run-1", Action: audit.ActionRunFinished}}

	rec := s.do(http.MethodGet, "/v1/validations/run-1/audit", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var events []audit.Event
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &events))
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRunFinished, events[0].Action)
}
