package liststate

import (
	"context"
	"fmt"
	"time"

	"dashboard/internal/domain"
)

// DeletePhase is the state of the confirm-then-delete dialog.
type DeletePhase string

const (
	PhaseIdle           DeletePhase = "idle"
	PhaseConfirmPending DeletePhase = "confirm_pending"
	PhaseDeleting       DeletePhase = "deleting"
)

// DeleteStatus exposes the dialog state. Confirm and cancel are disabled
// while Phase is deleting.
type DeleteStatus struct {
	Phase       DeletePhase `json:"phase"`
	TargetID    string      `json:"targetId,omitempty"`
	TargetLabel string      `json:"targetLabel,omitempty"`
}

// RequestDelete opens the confirmation for a row on the current page.
func (l *List[T]) RequestDelete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if l.cfg.Delete == nil {
		return l.conflict(ErrDeleteUnsupported)
	}
	switch l.phase {
	case PhaseDeleting:
		return l.conflict(ErrDeleteInProgress)
	case PhaseConfirmPending:
		return l.conflict(ErrDeleteBusy)
	}
	for i := range l.items {
		if l.items[i].RecordID() == id {
			target := l.items[i]
			l.target = &target
			l.phase = PhaseConfirmPending
			return nil
		}
	}
	return ErrRecordNotFound
}

// CancelDelete closes a pending confirmation.
func (l *List[T]) CancelDelete() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.phase {
	case PhaseDeleting:
		return l.conflict(ErrDeleteInProgress)
	case PhaseIdle:
		return l.conflict(ErrNotConfirming)
	}
	l.phase = PhaseIdle
	l.target = nil
	return nil
}

// ConfirmDelete deletes the pending target. On success the row is removed
// locally, totalItems drops by one, the page steps back when its last row
// went away, and the page is refetched. Success and failure both end idle.
func (l *List[T]) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	switch l.phase {
	case PhaseDeleting:
		l.mu.Unlock()
		return l.conflict(ErrDeleteInProgress)
	case PhaseIdle:
		l.mu.Unlock()
		return l.conflict(ErrNotConfirming)
	}
	target := *l.target
	l.phase = PhaseDeleting
	l.mu.Unlock()

	id, label := target.RecordID(), target.RecordLabel()
	start := time.Now()
	err := l.cfg.Delete(ctx, id)
	if l.cfg.OnDelete != nil {
		l.cfg.OnDelete(DeleteOutcome{Entity: l.cfg.Entity, ID: id, Duration: time.Since(start), Err: err})
	}

	l.mu.Lock()
	l.phase = PhaseIdle
	l.target = nil

	if err != nil {
		l.mu.Unlock()
		l.cfg.Notifier.Notify(ctx, Notification{
			Kind:     KindError,
			Entity:   l.cfg.Entity,
			RecordID: id,
			Message:  fmt.Sprintf("failed to delete %q: %s", label, errorMessage(err, "unknown error")),
		})
		return domain.DeleteError{Entity: l.cfg.Entity, ID: id, Err: err}
	}

	l.removeLocked(id)
	gen, fs, beginErr := l.beginLocked()
	l.mu.Unlock()

	l.cfg.Notifier.Notify(ctx, Notification{
		Kind:     KindSuccess,
		Entity:   l.cfg.Entity,
		RecordID: id,
		Message:  fmt.Sprintf("%q has been deleted", label),
	})

	if beginErr == nil {
		// a failed refetch shows up on the view status, the delete still succeeded
		_ = l.run(ctx, gen, fs)
	}
	return nil
}

func (l *List[T]) removeLocked(id string) {
	kept := l.items[:0:0]
	for _, it := range l.items {
		if it.RecordID() != id {
			kept = append(kept, it)
		}
	}
	removed := len(l.items) - len(kept)
	l.items = kept
	l.meta.TotalItems -= removed
	if l.meta.TotalItems < 0 {
		l.meta.TotalItems = 0
	}
	if removed > 0 && len(kept) == 0 && l.filters.Page > 1 {
		l.filters.Page--
	}
}

// conflict reports a delete-dialog state violation for this entity.
func (l *List[T]) conflict(err error) error {
	return domain.ConflictError{Resource: l.cfg.Entity, Msg: err.Error(), Err: err}
}
