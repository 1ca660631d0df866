// Package annotation owns the ordered set of annotations drawn on a scene and
// its undo/redo history.
package annotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/OCAP2/panorama/internal/geo"
	"github.com/OCAP2/panorama/internal/metrics"
	"github.com/OCAP2/panorama/pkg/core"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no annotation has the requested id.
	ErrNotFound = errors.New("annotation not found")
	// ErrUnknownType is returned for hotspot types the remote service does not accept.
	ErrUnknownType = errors.New("unknown hotspot type")
)

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger used for soft failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Set) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records mutations and history steps on m.
func WithMetrics(m *metrics.Instruments) Option {
	return func(s *Set) {
		s.metrics = m
	}
}

// WithShapeOptions overrides circle and free-draw resolution.
func WithShapeOptions(o geo.Options) Option {
	return func(s *Set) {
		s.shape = o
	}
}

// WithIDGenerator replaces the uuid id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Set) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Set is the ordered collection of annotations on one scene. Every mutating
// call records a snapshot of the pre-mutation state and applies the mutation
// under one lock, so concurrent callers always see a linear history.
type Set struct {
	mu      sync.Mutex
	items   []core.Annotation
	history History

	logger  *slog.Logger
	metrics *metrics.Instruments
	shape   geo.Options
	newID   func() string
}

// New creates an empty set.
func New(opts ...Option) *Set {
	s := &Set{
		logger: slog.New(slog.DiscardHandler),
		shape:  geo.DefaultOptions(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rendered is an annotation projected onto the current viewport.
type Rendered struct {
	ID     string             `json:"id"`
	Kind   core.Kind          `json:"kind"`
	Color  string             `json:"color"`
	Label  string             `json:"label"`
	Points []core.ScreenPoint `json:"points"`
}

// Create builds a shape from drawing-tool input, converts it to spherical
// coordinates through the captured view and appends it. An empty color takes
// the default hotspot colour.
func (s *Set) Create(kind core.Kind, input []core.ScreenPoint, captured core.ViewState, label, color string) (core.Annotation, error) {
	vertices, err := geo.BuildVertices(kind, input, captured, s.shape)
	if err != nil {
		return core.Annotation{}, err
	}
	a, err := geo.CreateFromScreenShape(kind, vertices, captured)
	if err != nil {
		return core.Annotation{}, err
	}
	a.Label = label
	a.Type = core.HotspotImage
	a.Color = color
	if a.Color == "" {
		a.Color = a.Type.Color()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.newID()
	s.history.Record(s.items)
	s.items = append(s.items, a)
	s.record("create")
	return cloneAnnotation(a), nil
}

// Add appends an annotation built elsewhere, such as one pulled from the
// hotspot service. A missing id is generated.
func (s *Set) Add(a core.Annotation) (core.Annotation, error) {
	if err := validate(a); err != nil {
		return core.Annotation{}, err
	}
	a = cloneAnnotation(a)

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = s.newID()
	}
	s.history.Record(s.items)
	s.items = append(s.items, a)
	s.record("add")
	return cloneAnnotation(a), nil
}

// Load replaces the whole set and drops the history.
func (s *Set) Load(items []core.Annotation) error {
	for _, a := range items {
		if err := validate(a); err != nil {
			return fmt.Errorf("annotation %q: %w", a.ID, err)
		}
	}
	loaded := cloneAnnotations(items)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range loaded {
		if loaded[i].ID == "" {
			loaded[i].ID = s.newID()
		}
	}
	s.items = loaded
	s.history.Clear()
	return nil
}

// Delete removes the annotation with id.
func (s *Set) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	s.history.Record(s.items)
	s.items = slices.Delete(s.items, i, i+1)
	s.record("delete")
	return nil
}

// Duplicate appends a copy of the annotation with a fresh id and no remote id.
func (s *Set) Duplicate(id string) (core.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return core.Annotation{}, fmt.Errorf("duplicate %q: %w", id, ErrNotFound)
	}
	dup := cloneAnnotation(s.items[i])
	dup.ID = s.newID()
	dup.RemoteID = ""

	s.history.Record(s.items)
	s.items = append(s.items, dup)
	s.record("duplicate")
	return cloneAnnotation(dup), nil
}

// SetLabel changes the label of the annotation with id.
func (s *Set) SetLabel(id, label string) error {
	return s.update(id, "label", func(a *core.Annotation) {
		a.Label = label
	})
}

// ChangeType sets the hotspot type and its display colour.
func (s *Set) ChangeType(id string, t core.HotspotType) error {
	if !t.Known() {
		return fmt.Errorf("%q: %w", t, ErrUnknownType)
	}
	return s.update(id, "type", func(a *core.Annotation) {
		a.Type = t
		a.Color = t.Color()
	})
}

// SetRemoteID links the annotation to its hotspot on the remote service.
func (s *Set) SetRemoteID(id, remoteID string) error {
	return s.update(id, "remote_id", func(a *core.Annotation) {
		a.RemoteID = remoteID
	})
}

// Recapture replaces the vertices of an annotation with a new drawing made in
// view. This is the only operation that changes SourceView.
func (s *Set) Recapture(id string, input []core.ScreenPoint, view core.ViewState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("recapture %q: %w", id, ErrNotFound)
	}
	kind := s.items[i].Kind
	vertices, err := geo.BuildVertices(kind, input, view, s.shape)
	if err != nil {
		return err
	}
	spherical, err := geo.ToSpherical(kind, vertices, view)
	if err != nil {
		return err
	}

	s.history.Record(s.items)
	s.items[i].Vertices = spherical
	s.items[i].SourceView = view
	s.record("recapture")
	return nil
}

// BulkDelete removes every listed annotation in one undoable step and returns
// how many were removed. Unknown ids are skipped; ErrNotFound is returned only
// when none matched.
func (s *Set) BulkDelete(ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := s.matching(ids)
	if len(drop) == 0 {
		return 0, fmt.Errorf("bulk delete: %w", ErrNotFound)
	}
	s.history.Record(s.items)
	s.items = slices.DeleteFunc(s.items, func(a core.Annotation) bool {
		_, ok := drop[a.ID]
		return ok
	})
	s.record("bulk_delete")
	return len(drop), nil
}

// BulkRecolor sets color on every listed annotation in one undoable step.
func (s *Set) BulkRecolor(ids []string, color string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := s.matching(ids)
	if len(match) == 0 {
		return 0, fmt.Errorf("bulk recolor: %w", ErrNotFound)
	}
	s.history.Record(s.items)
	for i := range s.items {
		if _, ok := match[s.items[i].ID]; ok {
			s.items[i].Color = color
		}
	}
	s.record("bulk_recolor")
	return len(match), nil
}

// Undo restores the state before the last mutation. It reports false when the
// undo stack is empty.
func (s *Set) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	s.items, ok = s.history.Undo(s.items)
	if ok {
		s.metrics.History(context.Background(), "undo")
	}
	return ok
}

// Redo reapplies the last undone mutation. It reports false when the redo
// stack is empty.
func (s *Set) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	s.items, ok = s.history.Redo(s.items)
	if ok {
		s.metrics.History(context.Background(), "redo")
	}
	return ok
}

// ClearHistory drops both stacks without touching the annotations.
func (s *Set) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
}

// StackSizes returns the depth of the undo and redo stacks.
func (s *Set) StackSizes() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Sizes()
}

// Get returns a copy of the annotation with id.
func (s *Set) Get(id string) (core.Annotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return core.Annotation{}, false
	}
	return cloneAnnotation(s.items[i]), true
}

// All returns a deep copy of the set in insertion order.
func (s *Set) All() []core.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAnnotations(s.items)
}

// Len returns the number of annotations.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Render projects every annotation through current. Annotations with too few
// visible vertices are left out for this frame.
func (s *Set) Render(current core.ViewState) []Rendered {
	items := s.All()

	out := make([]Rendered, 0, len(items))
	for _, a := range items {
		pts := geo.RenderAnnotation(a, current)
		if hidden := len(a.Vertices) - len(pts); hidden > 0 {
			s.metrics.HiddenVertices(context.Background(), string(a.Kind), hidden)
		}
		if pts == nil {
			s.logger.Debug("annotation not visible", "id", a.ID, "kind", a.Kind, "vertices", len(a.Vertices))
			continue
		}
		out = append(out, Rendered{
			ID:     a.ID,
			Kind:   a.Kind,
			Color:  a.Color,
			Label:  a.Label,
			Points: pts,
		})
	}
	return out
}

func (s *Set) update(id, op string, fn func(*core.Annotation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	s.history.Record(s.items)
	fn(&s.items[i])
	s.record(op)
	return nil
}

func (s *Set) record(op string) {
	s.metrics.Mutation(context.Background(), op)
	s.logger.Debug("annotation set changed", "op", op, "size", len(s.items))
}

func (s *Set) index(id string) int {
	return slices.IndexFunc(s.items, func(a core.Annotation) bool {
		return a.ID == id
	})
}

func (s *Set) matching(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.index(id) >= 0 {
			out[id] = struct{}{}
		}
	}
	return out
}

func validate(a core.Annotation) error {
	if _, err := core.ParseKind(string(a.Kind)); err != nil {
		return err
	}
	if len(a.Vertices) < a.Kind.MinVertices() {
		return fmt.Errorf("%s needs %d vertices, got %d: %w", a.Kind, a.Kind.MinVertices(), len(a.Vertices), geo.ErrTooFewVertices)
	}
	for _, v := range a.Vertices {
		if !v.Valid() {
			return geo.ErrInvalidCoordinates
		}
	}
	return nil
}
