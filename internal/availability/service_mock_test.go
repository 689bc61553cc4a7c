package availability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/availability/internal/availability"
	"github.com/tejusbharadwaj/availability/internal/availability/mocks"
	"github.com/tejusbharadwaj/availability/internal/cache"
	"github.com/tejusbharadwaj/availability/internal/models"
)

var errBoom = errors.New("boom")

func at(h int) time.Time {
	return time.Date(2021, time.March, 1, h, 0, 0, 0, time.UTC)
}

func newService(store availability.Store, config availability.Config) *availability.Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return availability.NewService(store, cache.NewFromOfferings(nil), nil, config, logger)
}

func twoSeries() []models.Series {
	return []models.Series{
		{ID: 1, Procedure: "P", ObservedProperty: "OP", FeatureOfInterest: "F1"},
		{ID: 2, Procedure: "P", ObservedProperty: "OP", FeatureOfInterest: "F2"},
	}
}

func TestGetDataAvailability_StoreFailures(t *testing.T) {
	tests := []struct {
		name      string
		config    availability.Config
		req       *models.Request
		setupMock func(sess *mocks.MockSession)
		wantErr   error
	}{
		{
			name: "find series fails",
			setupMock: func(sess *mocks.MockSession) {
				sess.EXPECT().SupportsSeriesAccess().Return(true)
				sess.EXPECT().FindSeries(gomock.Any(), gomock.Any()).Return(nil, errBoom)
			},
			wantErr: availability.ErrDataAccess,
		},
		{
			name: "second series fails",
			setupMock: func(sess *mocks.MockSession) {
				sess.EXPECT().SupportsSeriesAccess().Return(true)
				sess.EXPECT().FindSeries(gomock.Any(), gomock.Any()).Return(twoSeries(), nil)
				sess.EXPECT().SupportsTimingTable(gomock.Any()).Return(true, nil)
				first := sess.EXPECT().
					TimingTableExtents(gomock.Any(), availability.ExtentQuery{SeriesID: 1}).
					Return([]models.OfferingMinMaxTime{{Extent: models.NewTimeExtent(at(1), at(2))}}, nil)
				sess.EXPECT().
					TimingTableExtents(gomock.Any(), availability.ExtentQuery{SeriesID: 2}).
					Return(nil, errBoom).
					After(first)
			},
			wantErr: availability.ErrDataAccess,
		},
		{
			name:   "precompiled query disappears",
			config: availability.Config{PrecompiledQuery: "series_time_extrema"},
			setupMock: func(sess *mocks.MockSession) {
				sess.EXPECT().SupportsSeriesAccess().Return(true)
				sess.EXPECT().FindSeries(gomock.Any(), gomock.Any()).Return(twoSeries(), nil)
				sess.EXPECT().SupportsPrecompiledQuery(gomock.Any(), "series_time_extrema").Return(true, nil)
				sess.EXPECT().
					PrecompiledExtents(gomock.Any(), "series_time_extrema", gomock.Any()).
					Return(nil, availability.ErrUnknownQuery)
			},
			wantErr: availability.ErrUnsupportedCapability,
		},
		{
			name: "count fails",
			req:  &models.Request{Extensions: models.Extensions{ShowCount: true}},
			setupMock: func(sess *mocks.MockSession) {
				sess.EXPECT().SupportsSeriesAccess().Return(true)
				sess.EXPECT().FindSeries(gomock.Any(), gomock.Any()).Return(twoSeries()[:1], nil)
				sess.EXPECT().SupportsTimingTable(gomock.Any()).Return(false, nil)
				sess.EXPECT().
					ObservationExtents(gomock.Any(), gomock.Any()).
					Return([]models.OfferingMinMaxTime{{Extent: models.NewTimeExtent(at(1), at(2))}}, nil)
				sess.EXPECT().CountObservations(gomock.Any(), int64(1)).Return(int64(0), errBoom)
			},
			wantErr: availability.ErrDataAccess,
		},
		{
			name: "result times fail",
			req:  &models.Request{Extensions: models.Extensions{IncludeResultTimes: true}},
			setupMock: func(sess *mocks.MockSession) {
				sess.EXPECT().SupportsSeriesAccess().Return(true)
				sess.EXPECT().FindSeries(gomock.Any(), gomock.Any()).Return(twoSeries()[:1], nil)
				sess.EXPECT().SupportsTimingTable(gomock.Any()).Return(false, nil)
				sess.EXPECT().
					ObservationExtents(gomock.Any(), gomock.Any()).
					Return([]models.OfferingMinMaxTime{{Extent: models.NewTimeExtent(at(1), at(2))}}, nil)
				sess.EXPECT().ResultTimes(gomock.Any(), int64(1), gomock.Nil(), gomock.Nil()).Return(nil, errBoom)
			},
			wantErr: availability.ErrDataAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mocks.NewMockStore(ctrl)
			sess := mocks.NewMockSession(ctrl)
			store.EXPECT().Open(gomock.Any()).Return(sess, nil)
			tt.setupMock(sess)
			sess.EXPECT().Close().Return(nil)

			req := tt.req
			if req == nil {
				req = &models.Request{}
			}
			resp, err := newService(store, tt.config).GetDataAvailability(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, errBoomOr(tt.wantErr))
			assert.Nil(t, resp)
		})
	}
}

// errBoomOr returns the error expected at the bottom of the chain.
func errBoomOr(want error) error {
	if want == availability.ErrUnsupportedCapability {
		return availability.ErrUnknownQuery
	}
	return errBoom
}

func TestGetDataAvailability_OpenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Open(gomock.Any()).Return(nil, errBoom)

	_, err := newService(store, availability.Config{}).GetDataAvailability(context.Background(), &models.Request{})
	assert.ErrorIs(t, err, availability.ErrDataAccess)
	assert.ErrorIs(t, err, errBoom)
}

func TestGetDataAvailability_CloseErrorDoesNotFailRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	sess := mocks.NewMockSession(ctrl)
	store.EXPECT().Open(gomock.Any()).Return(sess, nil)
	sess.EXPECT().SupportsSeriesAccess().Return(true)
	sess.EXPECT().FindSeries(gomock.Any(), models.SeriesFilter{Procedures: []string{"P"}}).Return(nil, nil)
	sess.EXPECT().SupportsTimingTable(gomock.Any()).Return(false, nil)
	sess.EXPECT().Close().Return(errBoom)

	resp, err := newService(store, availability.Config{}).GetDataAvailability(context.Background(), &models.Request{
		Procedures: []string{"P"},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.DataAvailabilities)
}
