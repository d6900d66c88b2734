package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"securedeal/internal/validation/audit"
	"securedeal/internal/validation/engine"
	"securedeal/internal/validation/gateway"
	"securedeal/internal/validation/models"
	"securedeal/internal/validation/rules"
	"securedeal/internal/validation/sink"
	id "securedeal/pkg/domain"
	"securedeal/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite

	service    *Service
	runStore   *sink.InMemoryStore
	auditStore *audit.InMemoryStore
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	defs := []models.Rule{{
		ID: "VEH-001", Name: "VIN Match", Version: 1, Enabled: true,
		Source:      models.FieldRef{Entity: models.EntityVehicle, Field: "vin", Transforms: []string{"SPZ_NORMALIZE"}},
		Target:      models.FieldRef{Entity: models.EntityOCRVehicleReg, Field: "vin", Transforms: []string{"SPZ_NORMALIZE"}},
		Comparison:  models.Comparison{Type: models.CompareExact},
		Severity:    models.SeverityCritical,
		BlockOnFail: true,
	}}
	cfg := models.DefaultEngineConfig()
	cfg.ExecutionOrder = []id.RuleID{"VEH-001"}
	cfg.ParallelGroups = [][]id.RuleID{{"VEH-001"}}

	registry := rules.NewRegistry(rules.NewInMemoryStore(defs...), cfg, logger)
	_, err := registry.Reload(context.Background())
	s.Require().NoError(err)

	gw := gateway.New(nil, gateway.NewMemoryCache(), cfg, logger, nil)
	eng := engine.New(registry, gw, logger, nil)

	s.runStore = sink.NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	s.service = New(eng, registry,
		sink.New(s.runStore, logger),
		audit.NewPublisher(s.auditStore),
		logger)
}

func record() models.InputRecord {
	return models.InputRecord{
		OpportunityID: "opp-1",
		Entities: map[models.EntityKind]models.Fields{
			models.EntityVehicle:       {"vin": "TMB123"},
			models.EntityOCRVehicleReg: {"vin": "tmb 123"},
			models.EntityVendor:        {"vendor_type": "PHYSICAL_PERSON"},
		},
	}
}

func (s *ServiceSuite) TestValidatePersistsAndAudits() {
	ctx := requestcontext.WithTriggerSource(context.Background(), requestcontext.TriggerUI)
	ctx = requestcontext.WithClientIP(ctx, "10.0.0.7")

	result, err := s.service.Validate(ctx, record())
	s.Require().NoError(err)
	s.Equal(models.StatusGreen, result.OverallStatus)

	stored, err := s.service.Run(ctx, result.ID)
	s.Require().NoError(err)
	s.Equal(result.ID, stored.ID)

	events, err := s.service.AuditTrail(ctx, result.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRunFinished, events[0].Action)
	s.Equal("UI", events[0].TriggerSource)
	s.Equal("10.0.0.7", events[0].ClientIP)
	s.Equal("GREEN", events[0].Status)
}

func (s *ServiceSuite) TestPreviewDoesNotPersist() {
	result, err := s.service.Preview(context.Background(), record(), nil, nil)
	s.Require().NoError(err)

	_, err = s.service.Run(context.Background(), result.ID)
	s.ErrorIs(err, sink.ErrNotFound)

	events, err := s.service.AuditTrail(context.Background(), result.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRunPreviewed, events[0].Action)
}

func (s *ServiceSuite) TestRulesExposesSnapshot() {
	defs, hash, err := s.service.Rules()
	s.Require().NoError(err)
	s.Len(defs, 1)
	s.NotEmpty(hash)
}

func (s *ServiceSuite) TestRunsByOpportunity() {
	_, err := s.service.Validate(context.Background(), record())
	s.Require().NoError(err)
	_, err = s.service.Validate(context.Background(), record())
	s.Require().NoError(err)

	runs, err := s.service.RunsByOpportunity(context.Background(), "opp-1")
	s.Require().NoError(err)
	s.Len(runs, 2)
}
