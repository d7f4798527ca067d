// Package mapview keeps a marker layer in sync with the set of experiences
// that pass the active filters. The reconciler is pure state bookkeeping:
// it emits the operations a renderer must apply, it never touches one.
package mapview

import "sort"

// Marker is one experience pin on the map
type Marker struct {
	ID  int64
	Lat float64
	Lng float64
}

// OpKind classifies a reconciliation operation
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpMove   OpKind = "move"
	OpRemove OpKind = "remove"
)

// Op is one change a marker layer must apply to converge on the visible set
type Op struct {
	Kind   OpKind
	Marker Marker
}

// Reconciler tracks which markers are currently shown
type Reconciler struct {
	shown map[int64]Marker
}

// NewReconciler creates an empty reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{shown: make(map[int64]Marker)}
}

// Reconcile diffs the visible set against the shown set and returns the
// operations to converge, ordered by marker id. The shown set is updated,
// so applying the ops and calling Reconcile again with the same input
// yields nothing.
func (r *Reconciler) Reconcile(visible []Marker) []Op {
	next := make(map[int64]Marker, len(visible))
	for _, m := range visible {
		next[m.ID] = m
	}

	ops := make([]Op, 0)
	for id, m := range next {
		shown, ok := r.shown[id]
		switch {
		case !ok:
			ops = append(ops, Op{Kind: OpAdd, Marker: m})
		case shown.Lat != m.Lat || shown.Lng != m.Lng:
			ops = append(ops, Op{Kind: OpMove, Marker: m})
		}
	}
	for id, m := range r.shown {
		if _, ok := next[id]; !ok {
			ops = append(ops, Op{Kind: OpRemove, Marker: m})
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Marker.ID < ops[j].Marker.ID
	})

	r.shown = next
	return ops
}

// Shown returns the number of markers currently on the layer
func (r *Reconciler) Shown() int {
	return len(r.shown)
}

// Reset clears the shown set, forcing the next Reconcile to re-add
// everything. Used when the map widget is torn down and rebuilt.
func (r *Reconciler) Reset() {
	r.shown = make(map[int64]Marker)
}
