package annotation

import (
	"fmt"

	"github.com/OCAP2/panorama/pkg/core"
	"github.com/jinzhu/copier"
)

// History is a linear undo/redo log of annotation set snapshots.
// It is not safe for concurrent use; Set serialises access to it.
type History struct {
	undo [][]core.Annotation
	redo [][]core.Annotation
}

// Record pushes a deep copy of current onto the undo stack and clears the
// redo stack.
func (h *History) Record(current []core.Annotation) {
	h.undo = append(h.undo, cloneAnnotations(current))
	h.redo = nil
}

// Undo moves current onto the redo stack and returns the most recent
// snapshot. ok is false when there is nothing to undo.
func (h *History) Undo(current []core.Annotation) (restored []core.Annotation, ok bool) {
	if len(h.undo) == 0 {
		return current, false
	}
	last := len(h.undo) - 1
	restored = h.undo[last]
	h.undo = h.undo[:last]
	h.redo = append(h.redo, current)
	return restored, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current []core.Annotation) (restored []core.Annotation, ok bool) {
	if len(h.redo) == 0 {
		return current, false
	}
	last := len(h.redo) - 1
	restored = h.redo[last]
	h.redo = h.redo[:last]
	h.undo = append(h.undo, current)
	return restored, true
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Sizes returns the depth of the undo and redo stacks.
func (h *History) Sizes() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

func cloneAnnotations(items []core.Annotation) []core.Annotation {
	if len(items) == 0 {
		return nil
	}
	var out []core.Annotation
	if err := copier.CopyWithOption(&out, &items, copier.Option{DeepCopy: true}); err != nil {
		// unreachable: source and destination share a type
		panic(fmt.Sprintf("annotation: deep copy failed: %v", err))
	}
	return out
}

func cloneAnnotation(a core.Annotation) core.Annotation {
	var out core.Annotation
	if err := copier.CopyWithOption(&out, &a, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("annotation: deep copy failed: %v", err))
	}
	return out
}
