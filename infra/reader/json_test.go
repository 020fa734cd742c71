package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/dispatchsim/core/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadVehicles(t *testing.T) {
	path := writeFile(t, "vehicles.json", `[
		{
			"id": "v1", "start_time": 0, "end_time": 3600, "capacity": 4,
			"mode": "shuttle", "start_stop": "depot",
			"stops": [
				{"stop_id": "A", "arrival_time": 100, "departure_time": 120},
				{"stop_id": "B", "arrival_time": 300, "departure_time": 320, "min_departure_time": 310}
			]
		},
		{"id": "v2", "start_time": 60, "end_time": 3600, "capacity": 2, "start_stop": "depot", "reusable": true}
	]`)

	vehicles, routes, err := ReadVehicles(path)
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	require.Len(t, routes, 2)

	v1 := vehicles[0]
	assert.Equal(t, "v1", v1.ID())
	assert.Equal(t, 4, v1.Capacity())
	assert.False(t, v1.Reusable())
	assert.True(t, vehicles[1].Reusable())

	r1 := routes["v1"]
	require.NotNil(t, r1.CurrentStop())
	assert.Equal(t, model.NewLabelLocation("depot"), r1.CurrentStop().Location())
	require.Len(t, r1.NextStops(), 2)
	min, ok := r1.NextStops()[1].MinDepartureTime()
	require.True(t, ok)
	assert.Equal(t, 310.0, min)

	assert.Empty(t, routes["v2"].NextStops())
}

func TestReadVehiclesRejectsBadRecords(t *testing.T) {
	_, _, err := ReadVehicles(writeFile(t, "vehicles.json",
		`[{"start_time": 0, "capacity": 4, "start_stop": "depot"}]`))
	assert.Error(t, err, "record without id")

	_, _, err = ReadVehicles(writeFile(t, "vehicles.json",
		`[{"id": "v1", "capacity": 0, "start_stop": "depot"}]`))
	assert.Error(t, err, "non-positive capacity")

	_, _, err = ReadVehicles(writeFile(t, "vehicles.json", `[
		{"id": "v1", "capacity": 4, "start_stop": "depot",
		 "stops": [{"stop_id": "A", "arrival_time": 100, "departure_time": 120, "min_departure_time": 200}]}
	]`))
	assert.Error(t, err, "min departure above departure")
}

func TestReadTrips(t *testing.T) {
	path := writeFile(t, "trips.json", `[
		{"id": "t1", "origin": "A", "destination": "B", "nb_passengers": 2,
		 "release_time": 10, "ready_time": 20, "due_time": 600},
		{"origin": "C", "destination": "D"}
	]`)

	trips, err := ReadTrips(path)
	require.NoError(t, err)
	require.Len(t, trips, 2)

	t1 := trips[0]
	assert.Equal(t, "t1", t1.ID)
	assert.Equal(t, 2, t1.NbPassengers)
	require.Len(t, t1.NextLegs(), 1)
	leg := t1.NextLegs()[0]
	assert.Equal(t, "t1", leg.TripID())
	assert.NotEmpty(t, leg.ID)
	assert.Equal(t, model.NewLabelLocation("A"), leg.Origin)

	anon := trips[1]
	assert.NotEmpty(t, anon.ID, "generated id expected")
	assert.Equal(t, 1, anon.NbPassengers, "default party size")
}

func TestReadTravelTimes(t *testing.T) {
	path := writeFile(t, "durations.json",
		`{"depot": {"A": 100}, "A": {"B": 200}}`)
	matrix, err := ReadTravelTimes(path)
	require.NoError(t, err)
	assert.Equal(t, 200.0, matrix["A"]["B"])
}

func TestReadErrors(t *testing.T) {
	_, err := ReadTrips(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ReadTrips(writeFile(t, "trips.json", "not json"))
	assert.Error(t, err)
}
