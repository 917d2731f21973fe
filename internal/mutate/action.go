// Package mutate implements optimistic archive/restore/delete over a list
// of records. Callers see an immediate speculative projection of their
// list while the real write runs in the background; outcomes surface
// through a notify.Notifier.
package mutate

// Kind identifies a mutation.
type Kind int

const (
	KindArchive Kind = iota
	KindRestore
	KindDelete
)

// Action is one pending mutation. Single-record operations are one-element
// bulk operations; there is no semantic difference.
type Action struct {
	Kind Kind
	IDs  []int64
}

func (a Action) matches(id int64) bool {
	for _, aid := range a.IDs {
		if aid == id {
			return true
		}
	}
	return false
}

// Row is the capability a record type's pointer must provide to take part
// in a projection.
type Row interface {
	RowID() int64
	SetArchived(bool)
}

// Project derives the speculative view of base with all pending actions
// applied, in dispatch order. It is a pure function: base is never
// modified, and the same inputs always produce the same output.
//
// Archive and restore flip the soft-delete flag on matching rows; delete
// removes them; an unrecognized kind leaves the projection unchanged.
// Actions naming unknown IDs match nothing, so archiving or restoring an
// already deleted row is a no-op.
func Project[T any, P interface {
	*T
	Row
}](base []T, pending []Action) []T {
	out := make([]T, len(base))
	copy(out, base)

	for _, a := range pending {
		switch a.Kind {
		case KindArchive, KindRestore:
			for i := range out {
				if a.matches(P(&out[i]).RowID()) {
					P(&out[i]).SetArchived(a.Kind == KindArchive)
				}
			}
		case KindDelete:
			kept := make([]T, 0, len(out))
			for i := range out {
				if !a.matches(P(&out[i]).RowID()) {
					kept = append(kept, out[i])
				}
			}
			out = kept
		}
	}

	return out
}
