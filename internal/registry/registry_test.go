package registry_test

import (
	"sync"
	"testing"

	"github.com/floodwatch/water-level-service/internal/domain"
	"github.com/floodwatch/water-level-service/internal/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Seed([]domain.Sensor{
		{ID: 2, Name: "River North", CalibrationHeight: 120, HighThreshold: 70, CriticalThreshold: 90, NotifyEmail: "north@floodwatch.example"},
		{ID: 1, Name: "River South", CalibrationHeight: 100, HighThreshold: 60, CriticalThreshold: 80, NotifyEmail: "south@floodwatch.example"},
	}))
	return r
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := seeded(t)
	_, err := r.Get(99)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_ListOrderedByID(t *testing.T) {
	r := seeded(t)
	sensors := r.List()
	require.Len(t, sensors, 2)
	assert.Equal(t, 1, sensors[0].ID)
	assert.Equal(t, 2, sensors[1].ID)
}

func TestRegistry_SeedRejectsInvalid(t *testing.T) {
	r := registry.New()
	err := r.Seed([]domain.Sensor{
		{ID: 1, Name: "bad", CalibrationHeight: 0, HighThreshold: 60, CriticalThreshold: 80, NotifyEmail: "ops@floodwatch.example"},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, r.List())
}

func TestRegistry_UpdateCalibrationHeight(t *testing.T) {
	r := seeded(t)
	require.NoError(t, r.UpdateCalibrationHeight(1, 110))

	s, err := r.Get(1)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, s.CalibrationHeight, 1e-9)
	// Thresholds untouched.
	assert.InDelta(t, 60.0, s.HighThreshold, 1e-9)
	assert.InDelta(t, 80.0, s.CriticalThreshold, 1e-9)
}

func TestRegistry_UpdateCalibrationHeight_Invalid(t *testing.T) {
	r := seeded(t)
	before, _ := r.Get(1)

	err := r.UpdateCalibrationHeight(1, -5)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	after, _ := r.Get(1)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("sensor changed after rejected update (-want +got):\n%s", diff)
	}
}

func TestRegistry_UpdateCalibrationHeight_Unknown(t *testing.T) {
	r := seeded(t)
	err := r.UpdateCalibrationHeight(99, 100)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_UpdateThresholds(t *testing.T) {
	r := seeded(t)
	require.NoError(t, r.UpdateThresholds(1, 65, 85, "duty@floodwatch.example"))

	s, err := r.Get(1)
	require.NoError(t, err)
	assert.InDelta(t, 65.0, s.HighThreshold, 1e-9)
	assert.InDelta(t, 85.0, s.CriticalThreshold, 1e-9)
	assert.Equal(t, "duty@floodwatch.example", s.NotifyEmail)
}

func TestRegistry_UpdateThresholds_AtomicOnFailure(t *testing.T) {
	r := seeded(t)
	before, _ := r.Get(1)

	// Inverted thresholds: nothing may be applied, including the email.
	err := r.UpdateThresholds(1, 90, 70, "duty@floodwatch.example")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	after, _ := r.Get(1)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("sensor changed after rejected update (-want +got):\n%s", diff)
	}
}

func TestRegistry_UpdateThresholds_BadEmail(t *testing.T) {
	r := seeded(t)
	err := r.UpdateThresholds(1, 65, 85, "not an email")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestRegistry_ConcurrentUpdatesNeverTearFields(t *testing.T) {
	r := seeded(t)

	// Two writers alternate between two self-consistent configurations; a
	// reader must never observe a mix of both.
	configA := []float64{60, 80}
	configB := []float64{61, 81}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for _, cfg := range [][]float64{configA, configB} {
		wg.Add(1)
		go func(high, critical float64) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				assert.NoError(t, r.UpdateThresholds(1, high, critical, "duty@floodwatch.example"))
			}
		}(cfg[0], cfg[1])
	}

	for range 1000 {
		s, err := r.Get(1)
		require.NoError(t, err)
		assert.InDelta(t, 20.0, s.CriticalThreshold-s.HighThreshold, 1e-9,
			"observed torn update: high=%g critical=%g", s.HighThreshold, s.CriticalThreshold)
	}

	close(stop)
	wg.Wait()
}
