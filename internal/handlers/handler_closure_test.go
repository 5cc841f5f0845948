package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/core/domain"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/dto"
)

type ClosureHandlerTestSuite struct {
	handlerSuite
}

func (s *ClosureHandlerTestSuite) TestCloseMeeting_MoveToSeries() {
	closedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	expectedReq := domain.ClosureRequest{
		Entity: domain.EntityRef{Type: domain.EntityMeeting, ID: "M1"},
		Mode:   domain.ClosureModeMove,
		Target: &domain.EntityRef{Type: domain.EntitySeries, ID: "S1"},
	}
	s.mockClosureService.On("CloseEntity", mock.Anything, "lead", expectedReq).Return(&domain.ClosureResult{
		EntityType:         domain.EntityMeeting,
		EntityID:           "M1",
		NewStatus:          domain.StatusClosed,
		ClosedAt:           closedAt,
		Mode:               domain.ClosureModeMove,
		AffectedPointCount: 3,
		Target:             expectedReq.Target,
		InvalidationKeys:   []string{"meeting:M1", "series:S1", domain.CacheKeyPoints},
	}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/meetings/M1/close", "lead",
		`{"mode":"move","target":{"type":"series","id":"S1"}}`)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ClosureResultResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("M1", resp.EntityID)
	s.Equal("closed", resp.NewStatus)
	s.Equal(3, resp.AffectedPointCount)
	s.True(closedAt.Equal(resp.ClosedAt))
	s.Require().NotNil(resp.Target)
	s.Equal(dto.EntityRefResponse{Type: "series", ID: "S1"}, *resp.Target)
	s.Contains(resp.InvalidationKeys, "series:S1")
	s.mockClosureService.AssertExpectations(s.T())
}

func (s *ClosureHandlerTestSuite) TestCloseSeries_RouteSetsEntityType() {
	expectedReq := domain.ClosureRequest{
		Entity: domain.EntityRef{Type: domain.EntitySeries, ID: "S9"},
		Mode:   domain.ClosureModeClose,
	}
	s.mockClosureService.On("CloseEntity", mock.Anything, "lead", expectedReq).Return(&domain.ClosureResult{
		EntityType: domain.EntitySeries,
		EntityID:   "S9",
		NewStatus:  domain.StatusClosed,
		ClosedAt:   time.Now().UTC(),
	}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/series/S9/close", "lead", `{"mode":"close"}`)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.mockClosureService.AssertExpectations(s.T())
}

func (s *ClosureHandlerTestSuite) TestClose_RejectsInvalidBodies() {
	cases := map[string]string{
		"missing mode":        `{}`,
		"unknown mode":        `{"mode":"archive"}`,
		"unknown target type": `{"mode":"move","target":{"type":"project","id":"P1"}}`,
		"target without id":   `{"mode":"move","target":{"type":"meeting"}}`,
		"not json":            `mode=close`,
	}
	for name, body := range cases {
		s.Run(name, func() {
			w := s.do(http.MethodPost, "/api/v1/meetings/M1/close", "lead", body)
			s.Equal(http.StatusBadRequest, w.Code)
		})
	}
	s.mockClosureService.AssertNotCalled(s.T(), "CloseEntity", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClosureHandlerTestSuite) TestClose_MapsServiceErrors() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		retryable  bool
	}{
		{"forbidden with reason", fmt.Errorf("%w: you are not allowed to close this meeting", apperrors.ErrForbidden), http.StatusForbidden, "you are not allowed to close this meeting", false},
		{"bare forbidden", apperrors.ErrForbidden, http.StatusForbidden, "Forbidden", false},
		{"forbidden wrapped twice", fmt.Errorf("close: %w", apperrors.ErrForbidden), http.StatusForbidden, "Forbidden", false},
		{"already closed", fmt.Errorf("%w: meeting:M1", apperrors.ErrAlreadyClosed), http.StatusConflict, "already closed: meeting:M1", false},
		{"invalid target", fmt.Errorf("%w: target is in another project", apperrors.ErrInvalidTarget), http.StatusBadRequest, "invalid target: target is in another project", false},
		{"missing entity", apperrors.ErrNotFound, http.StatusNotFound, "resource not found", false},
		{"store failure", fmt.Errorf("%w: commit: connection reset", apperrors.ErrPersistence), http.StatusServiceUnavailable, "Failed to close meeting, please retry", true},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Failed to close meeting", false},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.mockClosureService.On("CloseEntity", mock.Anything, "lead", mock.Anything).Return(nil, tc.err).Once()

			w := s.do(http.MethodPost, "/api/v1/meetings/M1/close", "lead", `{"mode":"close"}`)

			s.Equal(tc.wantStatus, w.Code)
			var resp dto.ErrorResponse
			s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			s.Equal(tc.wantBody, resp.Error)
			s.Equal(tc.retryable, resp.Retryable)
		})
	}
}

func (s *ClosureHandlerTestSuite) TestClose_RequiresToken() {
	w := s.do(http.MethodPost, "/api/v1/meetings/M1/close", "", `{"mode":"close"}`)
	s.Equal(http.StatusUnauthorized, w.Code)

	// wrong issuer
	req := httptest.NewRequest(http.MethodGet, "/api/v1/meetings/M1/close-preview", nil)
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken("lead", "someone-else"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	s.mockClosureService.AssertNotCalled(s.T(), "CloseEntity", mock.Anything, mock.Anything, mock.Anything)
	s.mockClosureService.AssertNotCalled(s.T(), "GetClosurePreview", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClosureHandlerTestSuite) TestListCloseTargets() {
	ref := domain.EntityRef{Type: domain.EntityMeeting, ID: "M1"}
	s.mockClosureService.On("ListCloseTargets", mock.Anything, "lead", ref).Return(&domain.OpenEntities{
		Meetings: []domain.Entity{{Ref: domain.EntityRef{Type: domain.EntityMeeting, ID: "M2"}, ProjectID: strPtr("P1"), Title: "Design review", Status: domain.StatusScheduled}},
		Series:   []domain.Entity{},
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/meetings/M1/close-targets", "lead", "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.CloseTargetsResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Meetings, 1)
	s.Equal("M2", resp.Meetings[0].ID)
	s.Equal("P1", *resp.Meetings[0].ProjectID)
	s.NotNil(resp.Series)
	s.Empty(resp.Series)
	s.mockClosureService.AssertExpectations(s.T())
}

func (s *ClosureHandlerTestSuite) TestGetClosurePreview() {
	ref := domain.EntityRef{Type: domain.EntitySeries, ID: "S1"}
	s.mockClosureService.On("GetClosurePreview", mock.Anything, "lead", ref).Return(&domain.ClosurePreview{
		Entity:         domain.Entity{Ref: ref, Title: "Weekly coordination", Status: domain.StatusActive},
		OpenPointCount: 4,
		NeedsDecision:  true,
		CanClose:       true,
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/series/S1/close-preview", "lead", "")

	s.Equal(http.StatusOK, w.Code)
	var resp dto.ClosurePreviewResponse
	s.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("series", resp.Entity.Type)
	s.Equal(4, resp.OpenPointCount)
	s.True(resp.NeedsDecision)
	s.mockClosureService.AssertExpectations(s.T())
}

func (s *ClosureHandlerTestSuite) TestGetClosurePreview_NotFound() {
	s.mockClosureService.On("GetClosurePreview", mock.Anything, "lead", mock.Anything).Return(nil, apperrors.ErrNotFound).Once()

	w := s.do(http.MethodGet, "/api/v1/meetings/ghost/close-preview", "lead", "")

	s.Equal(http.StatusNotFound, w.Code)
}

func TestClosureHandler(t *testing.T) {
	suite.Run(t, new(ClosureHandlerTestSuite))
}
