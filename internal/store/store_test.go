package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/floodwatch/water-level-service/internal/domain"
	"github.com/floodwatch/water-level-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

var base = time.Date(2026, time.August, 28, 7, 0, 0, 0, time.UTC)

func record(sensorID int, offset time.Duration, height float64) domain.Measurement {
	return domain.Measurement{
		SensorID:    sensorID,
		SensorName:  "Test",
		Timestamp:   base.Add(offset),
		Samples:     []float64{40},
		AvgDistance: 40,
		WaterHeight: height,
		Severity:    domain.SeverityNormal,
	}
}

func TestStore_AppendAndLatest(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Append(record(1, 0, 10)))
	require.NoError(t, s.Append(record(1, time.Minute, 12)))

	latest := s.Latest(1)
	require.NotNil(t, latest)
	assert.InDelta(t, 12.0, latest.WaterHeight, 1e-9)
	assert.Equal(t, base.Add(time.Minute), latest.Timestamp)
}

func TestStore_LatestAbsentForUnknownSensor(t *testing.T) {
	s := store.New()
	assert.Nil(t, s.Latest(42))
}

func TestStore_AppendOutOfOrderFailsAndDoesNotMutate(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Append(record(1, time.Minute, 10)))

	err := s.Append(record(1, time.Minute, 11)) // equal timestamp
	require.Error(t, err)
	assert.True(t, domain.IsOrdering(err))

	err = s.Append(record(1, 0, 11)) // earlier timestamp
	require.Error(t, err)
	assert.True(t, domain.IsOrdering(err))

	assert.Len(t, s.Recent(0, nil), 1)
	assert.InDelta(t, 10.0, s.Latest(1).WaterHeight, 1e-9)
}

func TestStore_RecentMostRecentFirst(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Append(record(1, 0, 1)))
	require.NoError(t, s.Append(record(2, 30*time.Second, 2)))
	require.NoError(t, s.Append(record(1, time.Minute, 3)))

	all := s.Recent(0, nil)
	require.Len(t, all, 3)
	assert.InDelta(t, 3.0, all[0].WaterHeight, 1e-9)
	assert.InDelta(t, 2.0, all[1].WaterHeight, 1e-9)
	assert.InDelta(t, 1.0, all[2].WaterHeight, 1e-9)
}

func TestStore_RecentFilterAndLimit(t *testing.T) {
	s := store.New()
	for i := range 5 {
		require.NoError(t, s.Append(record(1, time.Duration(i)*time.Minute, float64(i))))
	}
	require.NoError(t, s.Append(record(2, 0, 99)))

	sensor1 := 1
	got := s.Recent(3, &sensor1)
	require.Len(t, got, 3)
	assert.InDelta(t, 4.0, got[0].WaterHeight, 1e-9)
	assert.InDelta(t, 2.0, got[2].WaterHeight, 1e-9)
	for _, m := range got {
		assert.Equal(t, 1, m.SensorID)
	}
}

func TestStore_Clear(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Append(record(1, 0, 10)))
	require.NoError(t, s.Append(record(2, 0, 20)))

	s.Clear(1)

	assert.Nil(t, s.Latest(1))
	assert.Empty(t, s.Recent(0, intPtr(1)))
	// Other sensors untouched.
	require.NotNil(t, s.Latest(2))

	// A cleared stream accepts timestamps older than its erased history.
	require.NoError(t, s.Append(record(1, -time.Hour, 5)))
	assert.InDelta(t, 5.0, s.Latest(1).WaterHeight, 1e-9)
}

func TestStore_ClearDuringAppends(t *testing.T) {
	s := store.New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 500 {
			// Source timestamps stay monotonic across clears, so every
			// append either lands or loses the race to a clear.
			_ = s.Append(record(1, time.Duration(i)*time.Second, float64(i)))
		}
	}()

	for range 50 {
		s.Clear(1)
	}
	wg.Wait()

	// The final clear must leave nothing behind, however the race resolved.
	s.Clear(1)
	assert.Nil(t, s.Latest(1))
	assert.Empty(t, s.Recent(0, intPtr(1)))
}

func TestStore_ConcurrentSensorsKeepIndependentStreams(t *testing.T) {
	s := store.New()

	const perSensor = 200
	var wg sync.WaitGroup
	for _, sensorID := range []int{1, 2} {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range perSensor {
				assert.NoError(t, s.Append(record(id, time.Duration(i)*time.Second, float64(i))))
			}
		}(sensorID)
	}
	wg.Wait()

	for _, sensorID := range []int{1, 2} {
		got := s.Recent(0, &sensorID)
		require.Len(t, got, perSensor)
		// Most-recent-first and strictly ordered.
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].Timestamp.After(got[i].Timestamp))
		}
	}
}
