// Package reader loads the demand and fleet input files of a simulation run.
package reader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/openfleet/dispatchsim/core/model"
)

// StopRecord is one planned stop of a vehicle itinerary.
type StopRecord struct {
	StopID           string   `json:"stop_id"`
	ArrivalTime      float64  `json:"arrival_time"`
	DepartureTime    float64  `json:"departure_time"`
	MinDepartureTime *float64 `json:"min_departure_time,omitempty"`
}

// VehicleRecord is the input description of one vehicle.
type VehicleRecord struct {
	ID          string       `json:"id"`
	StartTime   float64      `json:"start_time"`
	EndTime     float64      `json:"end_time"`
	Capacity    int          `json:"capacity"`
	ReleaseTime float64      `json:"release_time"`
	Mode        string       `json:"mode"`
	Reusable    bool         `json:"reusable"`
	StartStop   string       `json:"start_stop"`
	Stops       []StopRecord `json:"stops,omitempty"`
}

// TripRecord is the input description of one transportation request.
type TripRecord struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	NbPassengers int     `json:"nb_passengers"`
	ReleaseTime  float64 `json:"release_time"`
	ReadyTime    float64 `json:"ready_time"`
	DueTime      float64 `json:"due_time"`
}

// ReadVehicles loads the fleet file and builds one vehicle and one route per
// record. A record without stops yields an empty route at the start stop.
func ReadVehicles(path string) ([]*model.Vehicle, map[string]*model.Route, error) {
	var records []VehicleRecord
	if err := readJSON(path, &records); err != nil {
		return nil, nil, fmt.Errorf("read vehicles: %w", err)
	}

	vehicles := make([]*model.Vehicle, 0, len(records))
	routes := make(map[string]*model.Route, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			return nil, nil, fmt.Errorf("read vehicles: record without id in %s", path)
		}
		if rec.Capacity <= 0 {
			return nil, nil, fmt.Errorf("read vehicles: vehicle %s has capacity %d", rec.ID, rec.Capacity)
		}
		startStop := model.NewStop(rec.StartTime, rec.StartTime, model.NewLabelLocation(rec.StartStop))
		vehicle := model.NewVehicle(rec.ID, rec.StartTime, rec.EndTime, startStop,
			rec.Capacity, rec.ReleaseTime, rec.Mode, rec.Reusable)

		stops := make([]*model.Stop, 0, len(rec.Stops))
		for _, s := range rec.Stops {
			stop, err := buildStop(s)
			if err != nil {
				return nil, nil, fmt.Errorf("read vehicles: vehicle %s: %w", rec.ID, err)
			}
			stops = append(stops, stop)
		}

		vehicles = append(vehicles, vehicle)
		routes[rec.ID] = model.NewRoute(vehicle, stops...)
	}
	return vehicles, routes, nil
}

// ReadTrips loads the demand file. Each trip starts with a single leg from
// origin to destination; the optimizer may split it later.
func ReadTrips(path string) ([]*model.Trip, error) {
	var records []TripRecord
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("read trips: %w", err)
	}

	trips := make([]*model.Trip, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.NbPassengers <= 0 {
			rec.NbPassengers = 1
		}
		req := model.Request{
			ID:           rec.ID,
			Origin:       model.NewLabelLocation(rec.Origin),
			Destination:  model.NewLabelLocation(rec.Destination),
			NbPassengers: rec.NbPassengers,
			ReleaseTime:  rec.ReleaseTime,
			ReadyTime:    rec.ReadyTime,
			DueTime:      rec.DueTime,
			Name:         rec.Name,
		}
		trip := model.NewTrip(req)

		legReq := req
		legReq.ID = uuid.NewString()
		trip.AssignLegs([]*model.Leg{model.NewLeg(legReq, trip.ID)})

		trips = append(trips, trip)
	}
	return trips, nil
}

// ReadTravelTimes loads a duration matrix keyed by origin then destination
// label.
func ReadTravelTimes(path string) (map[string]map[string]float64, error) {
	var matrix map[string]map[string]float64
	if err := readJSON(path, &matrix); err != nil {
		return nil, fmt.Errorf("read travel times: %w", err)
	}
	return matrix, nil
}

func buildStop(rec StopRecord) (*model.Stop, error) {
	loc := model.NewLabelLocation(rec.StopID)
	if rec.MinDepartureTime != nil {
		return model.NewStopWithMinDeparture(rec.ArrivalTime, rec.DepartureTime, *rec.MinDepartureTime, loc)
	}
	return model.NewStop(rec.ArrivalTime, rec.DepartureTime, loc), nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
