package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// bulkConcurrency bounds the parallel per-item calls of a bulk transition.
const bulkConcurrency = 8

// bulkApply runs apply for every id concurrently with no ordering guarantee
// and no rollback: items that succeed stay transitioned when others fail, and
// failures collapse into one aggregate BulkError.
func bulkApply(ctx context.Context, ids []string, apply func(ctx context.Context, id string) error) error {
	var group errgroup.Group
	group.SetLimit(bulkConcurrency)

	var mu sync.Mutex
	var failures []error
	for _, id := range ids {
		group.Go(func() error {
			if err := apply(ctx, id); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	if len(failures) > 0 {
		return &BulkError{Attempted: len(ids), Failed: len(failures), Errors: failures}
	}
	return nil
}

// workflowBase carries what every entity workflow shares: the session gate,
// the notifier, and the list-reload callback the UI registers.
type workflowBase struct {
	session  *Session
	notifier Notifier
	reload   func(ctx context.Context) error
	logger   *slog.Logger
}

func newWorkflowBase(session *Session, notifier Notifier, reload func(ctx context.Context) error, logger *slog.Logger) workflowBase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return workflowBase{session: session, notifier: notifier, reload: reload, logger: logger}
}

// authorize gates an action on the session's capability set. Denial produces
// an AuthorizationError before any network call.
func (b workflowBase) authorize(capabilities ...string) error {
	if b.session == nil {
		return nil
	}
	if !b.session.HasAnyPermission(capabilities...) {
		return &AuthorizationError{Message: "insufficient permissions"}
	}
	return nil
}

// finish settles a transition attempt: surface the outcome and reload the
// list from the source of truth regardless of success, since local state is
// never optimistically mutated. Session expiry and authorization failures are
// passed through untouched so their own surfacing applies; everything else is
// wrapped as a TransitionError.
func (b workflowBase) finish(ctx context.Context, entity, id string, err error, successNotice string) error {
	defer b.reloadList(ctx)

	if err == nil {
		b.notifier.Notify(NoticeSuccess, successNotice)
		return nil
	}
	if errors.As(err, new(*SessionExpiredError)) || errors.As(err, new(*AuthorizationError)) {
		return err
	}
	message := err.Error()
	if message == "" {
		message = "the operation could not be completed"
	}
	b.notifier.Notify(NoticeError, message)
	return &TransitionError{Entity: entity, ID: id, Message: message}
}

// finishBulk settles a bulk attempt with a single aggregate notice.
func (b workflowBase) finishBulk(ctx context.Context, err error, successNotice string) error {
	defer b.reloadList(ctx)

	if err == nil {
		b.notifier.Notify(NoticeSuccess, successNotice)
		return nil
	}
	b.notifier.Notify(NoticeError, err.Error())
	return err
}

func (b workflowBase) reloadList(ctx context.Context) {
	if b.reload == nil {
		return
	}
	if err := b.reload(ctx); err != nil {
		b.logger.Warn("reload list", slog.Any("error", err))
	}
}
