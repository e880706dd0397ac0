// Package domain contains persistence models for routes, stations, buses
// and trips.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TripStatus represents lifecycle states for a trip.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "SCHEDULED"
	TripStatusBoarding  TripStatus = "BOARDING"
	TripStatusDeparted  TripStatus = "DEPARTED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Station is a named stop with optional coordinates.
type Station struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID  snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Code      string       `json:"code" gorm:"type:text"`
	Latitude  *float64     `json:"latitude,omitempty" gorm:"type:numeric"`
	Longitude *float64     `json:"longitude,omitempty" gorm:"type:numeric"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Station) TableName() string { return "stations" }

// Route is an ordered sequence of stations with a precomputed distance.
type Route struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	TenantID   snowflake.ID      `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name       string            `json:"name" gorm:"type:text;not null"`
	DistanceKm float64           `json:"distance_km" gorm:"not null;default:0"`
	Active     bool              `json:"active" gorm:"not null;default:true"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	Stations   []RouteStation    `json:"stations,omitempty" gorm:"foreignKey:RouteID"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Route) TableName() string { return "routes" }

// RouteStation pins a station to a position along a route.
type RouteStation struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	RouteID   snowflake.ID `json:"route_id" gorm:"not null;index"`
	StationID snowflake.ID `json:"station_id" gorm:"not null;index"`
	Sequence  int          `json:"sequence" gorm:"not null"`
	Station   *Station     `json:"station,omitempty" gorm:"foreignKey:StationID"`
}

func (RouteStation) TableName() string { return "route_stations" }

// Bus carries the seat capacity used as an occupancy fallback.
type Bus struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	PlateNumber string       `json:"plate_number" gorm:"type:text;not null"`
	Capacity    int          `json:"capacity" gorm:"not null;default:0"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bus) TableName() string { return "buses" }

// Trip is a scheduled departure of a bus along a route.
type Trip struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID       snowflake.ID `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	RouteID        snowflake.ID `json:"route_id" gorm:"not null;index"`
	BusID          snowflake.ID `json:"bus_id" gorm:"not null;index"`
	Status         TripStatus   `json:"status" gorm:"type:text;not null"`
	DepartureTime  time.Time    `json:"departure_time" gorm:"not null"`
	TotalSeats     int          `json:"total_seats" gorm:"not null;default:0"`
	AvailableSeats int          `json:"available_seats" gorm:"not null;default:0"`
	Route          *Route       `json:"route,omitempty" gorm:"foreignKey:RouteID"`
	Bus            *Bus         `json:"bus,omitempty" gorm:"foreignKey:BusID"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Trip) TableName() string { return "trips" }
