// Package review implements the human-in-the-loop queue over a campaign's
// generated recipients: cursor navigation, debounced edit auto-save,
// approve/delete/regenerate, and bulk approval.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bioedge/outreach/internal/models"
)

// DefaultDebounce is how long edits sit before being auto-persisted.
const DefaultDebounce = time.Second

// Store is the persistence boundary the queue drives.
type Store interface {
	ListGenerated(campaignID string) ([]models.Recipient, error)
	SaveContent(id, subject, body string) error
	Approve(id string) error
	Delete(id string) error
	Regenerate(ctx context.Context, id string) error
	ApproveAll(campaignID string) (int, error)
}

// Queue is the in-memory review session for one campaign. All methods are
// safe for concurrent use; the debounce save runs on its own timer
// goroutine.
type Queue struct {
	store      Store
	campaignID string
	debounce   time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	items    []models.Recipient
	cursor   int
	editSubj string
	editBody string
	dirty    bool
	timer    *time.Timer
	saveErr  error
}

// New creates a review queue for a campaign. Call Load before use.
func New(store Store, campaignID string, debounce time.Duration, logger *slog.Logger) *Queue {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Queue{
		store:      store,
		campaignID: campaignID,
		debounce:   debounce,
		logger:     logger.With("component", "review", "campaign_id", campaignID),
	}
}

// Load fetches the campaign's generated recipients and resets the cursor.
func (q *Queue) Load() error {
	items, err := q.store.ListGenerated(q.campaignID)
	if err != nil {
		return fmt.Errorf("failed to load review queue: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelPendingSaveLocked()
	q.items = items
	q.cursor = 0
	q.dirty = false
	return nil
}

// Len returns the number of recipients left to review.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cursor returns the current position.
func (q *Queue) Cursor() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor
}

// Current returns the recipient under the cursor, with any buffered edits
// applied, or false when the queue is empty.
func (q *Queue) Current() (models.Recipient, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return models.Recipient{}, false
	}
	rec := q.items[q.cursor]
	if q.dirty {
		rec.Subject = q.editSubj
		rec.Body = q.editBody
	}
	return rec, true
}

// Next advances the cursor, flushing any buffered edit for the recipient
// being left.
func (q *Queue) Next() error {
	if err := q.Flush(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cursor < len(q.items)-1 {
		q.cursor++
	}
	return nil
}

// Prev moves the cursor back, flushing any buffered edit first.
func (q *Queue) Prev() error {
	if err := q.Flush(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cursor > 0 {
		q.cursor--
	}
	return nil
}

// Edit buffers new subject/body for the current recipient and (re)schedules
// the debounced save: each new edit cancels the pending save task and
// schedules a fresh one.
func (q *Queue) Edit(subject, body string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return
	}

	q.editSubj = subject
	q.editBody = body
	q.dirty = true

	if q.timer != nil {
		q.timer.Stop()
	}
	id := q.items[q.cursor].ID
	q.timer = time.AfterFunc(q.debounce, func() {
		if err := q.saveBuffered(id); err != nil {
			q.logger.Error("debounced save failed", "recipient_id", id, "error", err)
		}
	})
}

// Flush synchronously persists any buffered edit: cancel the pending task
// and run the save now. It also surfaces the most recent asynchronous save
// failure so a lost write never goes unnoticed.
func (q *Queue) Flush() error {
	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if !q.dirty {
		err := q.saveErr
		q.saveErr = nil
		q.mu.Unlock()
		return err
	}
	id := q.items[q.cursor].ID
	q.mu.Unlock()

	return q.saveBuffered(id)
}

// saveBuffered writes the buffered edit through the store and updates the
// in-memory copy on success.
func (q *Queue) saveBuffered(id string) error {
	q.mu.Lock()
	if !q.dirty {
		q.mu.Unlock()
		return nil
	}
	subject, body := q.editSubj, q.editBody
	q.mu.Unlock()

	if err := q.store.SaveContent(id, subject, body); err != nil {
		q.mu.Lock()
		q.saveErr = err
		q.mu.Unlock()
		return err
	}

	q.mu.Lock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Subject = subject
			q.items[i].Body = body
			break
		}
	}
	q.dirty = false
	q.mu.Unlock()
	return nil
}

// Approve flushes buffered edits, approves the current recipient, removes
// it from the queue, and clamps the cursor.
func (q *Queue) Approve() error {
	rec, ok := q.Current()
	if !ok {
		return nil
	}
	if err := q.Flush(); err != nil {
		return err
	}
	if err := q.store.Approve(rec.ID); err != nil {
		return err
	}
	q.removeCurrent()
	return nil
}

// Delete deletes the current recipient, discarding any buffered edits, and
// removes it from the queue.
func (q *Queue) Delete() error {
	rec, ok := q.Current()
	if !ok {
		return nil
	}

	q.mu.Lock()
	q.cancelPendingSaveLocked()
	q.mu.Unlock()

	if err := q.store.Delete(rec.ID); err != nil {
		return err
	}
	q.removeCurrent()
	return nil
}

// Regenerate requests a fresh draft for the current recipient and reloads
// the whole queue afterward, since content changed server-side.
func (q *Queue) Regenerate(ctx context.Context) error {
	rec, ok := q.Current()
	if !ok {
		return nil
	}

	q.mu.Lock()
	q.cancelPendingSaveLocked()
	q.mu.Unlock()

	if err := q.store.Regenerate(ctx, rec.ID); err != nil {
		return err
	}
	return q.Load()
}

// ApproveAll bulk-approves every generated recipient in the campaign and
// empties the queue.
func (q *Queue) ApproveAll() (int, error) {
	q.mu.Lock()
	q.cancelPendingSaveLocked()
	q.mu.Unlock()

	n, err := q.store.ApproveAll(q.campaignID)
	if err != nil {
		return 0, err
	}

	q.mu.Lock()
	q.items = nil
	q.cursor = 0
	q.mu.Unlock()
	return n, nil
}

// Close cancels any pending save task without running it.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelPendingSaveLocked()
}

func (q *Queue) removeCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return
	}
	q.items = append(q.items[:q.cursor], q.items[q.cursor+1:]...)
	if q.cursor >= len(q.items) && q.cursor > 0 {
		q.cursor = len(q.items) - 1
	}
}

func (q *Queue) cancelPendingSaveLocked() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.dirty = false
	q.saveErr = nil
}
