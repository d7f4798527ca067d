package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileInitialSetAddsEverything(t *testing.T) {
	r := NewReconciler()

	ops := r.Reconcile([]Marker{
		{ID: 3, Lat: 52.52, Lng: 13.405},
		{ID: 1, Lat: 48.137, Lng: 11.575},
	})

	assert.Len(t, ops, 2)
	assert.Equal(t, OpAdd, ops[0].Kind)
	assert.Equal(t, int64(1), ops[0].Marker.ID)
	assert.Equal(t, OpAdd, ops[1].Kind)
	assert.Equal(t, int64(3), ops[1].Marker.ID)
	assert.Equal(t, 2, r.Shown())
}

func TestReconcileIsConvergent(t *testing.T) {
	r := NewReconciler()
	visible := []Marker{
		{ID: 1, Lat: 48.137, Lng: 11.575},
		{ID: 2, Lat: 53.551, Lng: 9.993},
	}

	r.Reconcile(visible)
	ops := r.Reconcile(visible)

	assert.Empty(t, ops)
}

func TestReconcileRemovesVanishedMarkers(t *testing.T) {
	r := NewReconciler()
	r.Reconcile([]Marker{
		{ID: 1, Lat: 48.137, Lng: 11.575},
		{ID: 2, Lat: 53.551, Lng: 9.993},
	})

	ops := r.Reconcile([]Marker{{ID: 2, Lat: 53.551, Lng: 9.993}})

	assert.Len(t, ops, 1)
	assert.Equal(t, OpRemove, ops[0].Kind)
	assert.Equal(t, int64(1), ops[0].Marker.ID)
	assert.Equal(t, 1, r.Shown())
}

func TestReconcileMovesRepositionedMarkers(t *testing.T) {
	r := NewReconciler()
	r.Reconcile([]Marker{{ID: 7, Lat: 52.52, Lng: 13.405}})

	ops := r.Reconcile([]Marker{{ID: 7, Lat: 52.53, Lng: 13.41}})

	assert.Len(t, ops, 1)
	assert.Equal(t, OpMove, ops[0].Kind)
	assert.Equal(t, 52.53, ops[0].Marker.Lat)
	assert.Equal(t, 13.41, ops[0].Marker.Lng)
}

func TestReconcileMixedOpsSortedByID(t *testing.T) {
	r := NewReconciler()
	r.Reconcile([]Marker{
		{ID: 1, Lat: 48.137, Lng: 11.575},
		{ID: 2, Lat: 53.551, Lng: 9.993},
		{ID: 4, Lat: 50.937, Lng: 6.96},
	})

	ops := r.Reconcile([]Marker{
		{ID: 2, Lat: 53.551, Lng: 9.993},
		{ID: 3, Lat: 52.52, Lng: 13.405},
		{ID: 4, Lat: 50.94, Lng: 6.97},
	})

	assert.Len(t, ops, 3)
	assert.Equal(t, OpRemove, ops[0].Kind)
	assert.Equal(t, int64(1), ops[0].Marker.ID)
	assert.Equal(t, OpAdd, ops[1].Kind)
	assert.Equal(t, int64(3), ops[1].Marker.ID)
	assert.Equal(t, OpMove, ops[2].Kind)
	assert.Equal(t, int64(4), ops[2].Marker.ID)
}

func TestReconcileEmptyVisibleClearsLayer(t *testing.T) {
	r := NewReconciler()
	r.Reconcile([]Marker{{ID: 1, Lat: 48.137, Lng: 11.575}})

	ops := r.Reconcile(nil)

	assert.Len(t, ops, 1)
	assert.Equal(t, OpRemove, ops[0].Kind)
	assert.Equal(t, 0, r.Shown())
}

func TestResetForcesReadd(t *testing.T) {
	r := NewReconciler()
	visible := []Marker{{ID: 1, Lat: 48.137, Lng: 11.575}}
	r.Reconcile(visible)

	r.Reset()
	ops := r.Reconcile(visible)

	assert.Len(t, ops, 1)
	assert.Equal(t, OpAdd, ops[0].Kind)
}
