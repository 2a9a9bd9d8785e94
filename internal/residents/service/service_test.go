package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civic/internal/residents/metrics"
	"civic/internal/residents/models"
	"civic/internal/residents/service/mocks"
	"civic/internal/residents/store"
	dErrors "civic/pkg/domain-errors"
	"civic/pkg/requestcontext"
	"civic/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	metrics   *metrics.Metrics
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = NewService(
		s.mockStore,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithMetrics(s.metrics),
	)
	s.ctx = requestcontext.WithTime(context.Background(), testutil.FixtureDate)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestQuery_ResolvesCriteriaAgainstRequestClock() {
	seniors, _ := models.ResolveAge("seniors")
	want := models.Filter{Sector: "S1", Age: &seniors, AsOf: testutil.FixtureDate}
	records := []models.Record{{"id": testutil.FixtureSenior60S1}}

	s.mockStore.EXPECT().Find(gomock.Any(), want).Return(records, nil)

	got, err := s.service.Query(s.ctx, models.Criteria{Sector: "S1", Age: "seniors"})
	s.Require().NoError(err)
	s.Equal(records, got)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.QueriesTotal.WithLabelValues("query", metrics.OutcomeOK)))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.CriteriaApplied.WithLabelValues("age")))
}

func (s *ServiceSuite) TestQuery_UnknownAgeTokenIsDropped() {
	want := models.Filter{AsOf: testutil.FixtureDate}
	s.mockStore.EXPECT().Find(gomock.Any(), want).Return([]models.Record{}, nil)

	got, err := s.service.Query(s.ctx, models.Criteria{Age: "not_a_token"})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *ServiceSuite) TestQuery_StoreErrors() {
	s.T().Run("driver failure maps to internal without leaking cause text", func(t *testing.T) {
		s.mockStore.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, errors.New("pq: relation residents does not exist"))

		got, err := s.service.Query(s.ctx, models.Criteria{})
		require.Error(t, err)
		assert.Nil(t, got)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Equal(t, "failed to query residents", err.Error())
	})

	s.T().Run("deadline maps to timeout", func(t *testing.T) {
		s.mockStore.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("query residents: %w", context.DeadlineExceeded))

		_, err := s.service.Query(s.ctx, models.Criteria{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	s.Equal(2.0, promtestutil.ToFloat64(s.metrics.QueriesTotal.WithLabelValues("query", metrics.OutcomeError)))
}

func (s *ServiceSuite) TestBreakdown_RejectsUnknownColumns() {
	for _, by := range []string{"", "birthdate", "sector_code; DROP TABLE residents"} {
		_, err := s.service.Breakdown(s.ctx, models.Criteria{}, by)
		s.Require().Error(err, by)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), by)
	}
}

func (s *ServiceSuite) TestBreakdown_PassesFilterAndColumn() {
	want := models.Filter{EmploymentStatus: "employed", AsOf: testutil.FixtureDate}
	groups := []models.Group{{Value: "S1", Population: 2}}
	s.mockStore.EXPECT().Breakdown(gomock.Any(), want, models.GroupSectorCode).Return(groups, nil)

	got, err := s.service.Breakdown(s.ctx, models.Criteria{EmploymentStatus: "employed"}, "sector_code")
	s.Require().NoError(err)
	s.Equal(groups, got)
}

func (s *ServiceSuite) TestBreakdown_StoreError() {
	s.mockStore.EXPECT().Breakdown(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	_, err := s.service.Breakdown(s.ctx, models.Criteria{}, "gender")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestBrackets() {
	brackets := s.service.Brackets()
	s.Require().Len(brackets, 7)
	s.Equal(models.BracketInfantsToddlers, brackets[0].Token)
	s.Nil(brackets[6].Max)
}

func TestQueryAgainstSQLite(t *testing.T) {
	pool := testutil.NewSQLitePool(t)
	st := store.NewSQL(pool.DB(), store.DialectSQLite)
	require.NoError(t, st.InsertBatch(context.Background(), testutil.Residents()))

	svc := NewService(st, nil)
	ctx := requestcontext.WithTime(context.Background(), testutil.FixtureDate)

	records, err := svc.Query(ctx, models.Criteria{Sector: "S1", EmploymentStatus: "employed"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "S1", r["sector_code"])
		assert.Equal(t, "employed", r["employment_status"])
	}

	groups, err := svc.Breakdown(ctx, models.Criteria{Age: "seniors"}, "sector_code")
	require.NoError(t, err)
	assert.Equal(t, []models.Group{{Value: "S1", Population: 1}, {Value: "S3", Population: 1}}, groups)
}
