package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/farelane/farelane/internal/geo"
	"github.com/farelane/farelane/internal/tenantctx"
	tripdomain "github.com/farelane/farelane/internal/trip/domain"
	"github.com/farelane/farelane/internal/trip/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testTenantID int64 = 42

type tripFixture struct {
	svc  tripdomain.Service
	db   *gorm.DB
	node *snowflake.Node
	ctx  context.Context
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&tripdomain.Station{},
		&tripdomain.Route{},
		&tripdomain.RouteStation{},
		&tripdomain.Bus{},
		&tripdomain.Trip{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:   conn,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})

	return &tripFixture{
		svc:  svc,
		db:   conn,
		node: node,
		ctx:  tenantctx.WithTenantID(context.Background(), testTenantID),
	}
}

func coord(v float64) *float64 { return &v }

func (f *tripFixture) createStation(t *testing.T, name string, lat, lon *float64) tripdomain.Station {
	t.Helper()
	station := tripdomain.Station{
		ID:        f.node.Generate(),
		TenantID:  snowflake.ID(testTenantID),
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
	}
	require.NoError(t, f.db.Create(&station).Error)
	return station
}

func (f *tripFixture) createRoute(t *testing.T, name string, stations ...tripdomain.Station) tripdomain.Route {
	t.Helper()
	route := tripdomain.Route{
		ID:       f.node.Generate(),
		TenantID: snowflake.ID(testTenantID),
		Name:     name,
		Active:   true,
	}
	require.NoError(t, f.db.Create(&route).Error)
	for i, station := range stations {
		require.NoError(t, f.db.Create(&tripdomain.RouteStation{
			ID:        f.node.Generate(),
			RouteID:   route.ID,
			StationID: station.ID,
			Sequence:  i + 1,
		}).Error)
	}
	return route
}

func (f *tripFixture) createTrip(t *testing.T, route tripdomain.Route) tripdomain.Trip {
	t.Helper()
	bus := tripdomain.Bus{
		ID:          f.node.Generate(),
		TenantID:    snowflake.ID(testTenantID),
		PlateNumber: "B 1234 XY",
		Capacity:    40,
	}
	require.NoError(t, f.db.Create(&bus).Error)

	trip := tripdomain.Trip{
		ID:             f.node.Generate(),
		TenantID:       snowflake.ID(testTenantID),
		RouteID:        route.ID,
		BusID:          bus.ID,
		Status:         tripdomain.TripStatusScheduled,
		DepartureTime:  time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		TotalSeats:     40,
		AvailableSeats: 40,
	}
	require.NoError(t, f.db.Create(&trip).Error)
	return trip
}

func TestGetTripContextAssemblesRouteAndStations(t *testing.T) {
	f := newTripFixture(t)

	a := f.createStation(t, "Central", coord(-6.2), coord(106.8))
	b := f.createStation(t, "North", coord(-6.1), coord(106.8))
	route := f.createRoute(t, "North Line", a, b)
	trip := f.createTrip(t, route)

	tc, err := f.svc.GetTripContext(f.ctx, trip.ID.String())
	require.NoError(t, err)

	assert.Equal(t, trip.ID, tc.Trip.ID)
	assert.Equal(t, route.ID, tc.Route.ID)
	require.Len(t, tc.Stations, 2)
	assert.Equal(t, a.ID, tc.Stations[0].StationID)
	assert.Equal(t, b.ID, tc.Stations[1].StationID)
}

func TestGetTripContextUnknownTrip(t *testing.T) {
	f := newTripFixture(t)

	_, err := f.svc.GetTripContext(f.ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, tripdomain.ErrTripNotFound)
}

func TestGetTripContextRejectsOtherTenant(t *testing.T) {
	f := newTripFixture(t)

	a := f.createStation(t, "Central", nil, nil)
	b := f.createStation(t, "North", nil, nil)
	route := f.createRoute(t, "North Line", a, b)
	trip := f.createTrip(t, route)

	other := tenantctx.WithTenantID(context.Background(), testTenantID+1)
	_, err := f.svc.GetTripContext(other, trip.ID.String())
	assert.ErrorIs(t, err, tripdomain.ErrTripNotFound)
}

func TestRecomputeRouteDistance(t *testing.T) {
	f := newTripFixture(t)

	a := f.createStation(t, "Central", coord(-6.2), coord(106.8))
	b := f.createStation(t, "North", coord(-6.1), coord(106.8))
	c := f.createStation(t, "Terminal", coord(-6.0), coord(106.9))
	route := f.createRoute(t, "North Line", a, b, c)

	want := geo.Distance(-6.2, 106.8, -6.1, 106.8) + geo.Distance(-6.1, 106.8, -6.0, 106.9)

	got, err := f.svc.RecomputeRouteDistance(f.ctx, route.ID.String())
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)

	var stored tripdomain.Route
	require.NoError(t, f.db.First(&stored, "id = ?", route.ID).Error)
	assert.InDelta(t, want, stored.DistanceKm, 1e-9)
}

func TestRecomputeRouteDistanceSkipsUnmappedStops(t *testing.T) {
	f := newTripFixture(t)

	a := f.createStation(t, "Central", coord(-6.2), coord(106.8))
	b := f.createStation(t, "Unmapped", nil, nil)
	c := f.createStation(t, "Terminal", coord(-6.0), coord(106.9))
	route := f.createRoute(t, "Patchy Line", a, b, c)

	got, err := f.svc.RecomputeRouteDistance(f.ctx, route.ID.String())
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestRecomputeRouteDistanceUnknownRoute(t *testing.T) {
	f := newTripFixture(t)

	_, err := f.svc.RecomputeRouteDistance(f.ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, tripdomain.ErrRouteNotFound)
}
