// Package controller holds the submission state machine behind the
// classification form. It is driven from a single Bubble Tea event loop
// and is not safe for concurrent use.
package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/case-classifier/internal/classifier"
	"github.com/nhle/case-classifier/internal/model"
)

// MessageBodyRequired is shown when submit is attempted with blank input.
const MessageBodyRequired = "Email body is required"

// Classifier sends email text to the classification service.
type Classifier interface {
	Classify(ctx context.Context, body string) (*model.ClassificationResult, error)
}

// Recorder persists completed network attempts.
type Recorder interface {
	RecordAttempt(ctx context.Context, entry model.HistoryEntry) error
}

// ClassifiedMsg carries the outcome of one submit back to the event loop.
type ClassifiedMsg struct {
	RequestID uint64
	Result    *model.ClassificationResult
	Err       error
	Duration  time.Duration
}

// Options selects the behavior for stale and non-success responses.
type Options struct {
	// DiscardStale ignores a ClassifiedMsg that does not belong to the
	// request currently pending.
	DiscardStale bool

	// StrictResponse fails a 2xx payload whose status is not "success".
	StrictResponse bool

	// Endpoint is recorded alongside history entries.
	Endpoint string
}

// Controller owns the form body and the submission status.
type Controller struct {
	client    Classifier
	recorder  Recorder
	logger    *zap.Logger
	opts      Options
	body      string
	status    model.SubmissionStatus
	requestID uint64
}

// New creates a controller in the Idle state with an empty body.
func New(client Classifier, logger *zap.Logger, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client: client,
		logger: logger.Named("controller"),
		opts:   opts,
		status: model.Idle(),
	}
}

// SetRecorder attaches a history recorder. A nil recorder disables history.
func (c *Controller) SetRecorder(r Recorder) {
	c.recorder = r
}

// Body returns the current form text.
func (c *Controller) Body() string {
	return c.body
}

// Status returns the current submission status.
func (c *Controller) Status() model.SubmissionStatus {
	return c.status
}

// RequestID returns the id of the most recently started request.
func (c *Controller) RequestID() uint64 {
	return c.requestID
}

// UpdateBody replaces the form text verbatim. The status is untouched.
func (c *Controller) UpdateBody(text string) {
	c.body = text
}

// CanSubmit reports whether the submit action should be offered.
func (c *Controller) CanSubmit() bool {
	return !c.status.IsPending() && strings.TrimSpace(c.body) != ""
}

// Submit validates the body and, when it is non-blank, moves to Pending
// and returns the command that performs the request. It returns nil when
// no request is issued: while a request is already pending, or when the
// body is blank (which fails locally).
func (c *Controller) Submit() tea.Cmd {
	if c.status.IsPending() {
		return nil
	}

	if strings.TrimSpace(c.body) == "" {
		c.status = model.Failed(model.ErrorLocalValidation, MessageBodyRequired)
		return nil
	}

	c.requestID++
	c.status = model.Pending()

	return c.classify(c.requestID, c.body)
}

// Clear empties the body and returns to Idle. An in-flight request is not
// cancelled.
func (c *Controller) Clear() {
	c.body = ""
	c.status = model.Idle()
}

// Apply folds a completed request into the status. It reports false when
// the message was discarded as stale.
func (c *Controller) Apply(msg ClassifiedMsg) bool {
	if c.opts.DiscardStale && (msg.RequestID != c.requestID || !c.status.IsPending()) {
		c.logger.Debug("discarding stale classification response",
			zap.Uint64("request_id", msg.RequestID),
			zap.Uint64("current_request_id", c.requestID),
			zap.Stringer("phase", c.status.Phase()),
		)
		return false
	}

	c.status, _ = resolve(msg.Result, msg.Err, c.opts.StrictResponse)
	return true
}

// classify returns the command for request id. Everything it needs is
// captured up front so later edits to the controller do not leak in.
func (c *Controller) classify(id uint64, body string) tea.Cmd {
	client := c.client
	recorder := c.recorder
	logger := c.logger.With(zap.Uint64("request_id", id))
	opts := c.opts

	return func() (msg tea.Msg) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("classification request panicked", zap.Any("panic", r))
				msg = ClassifiedMsg{
					RequestID: id,
					Err:       &classifier.TransportError{Endpoint: opts.Endpoint, Err: fmt.Errorf("panic: %v", r)},
					Duration:  time.Since(start),
				}
			}
		}()

		result, err := client.Classify(context.Background(), body)
		elapsed := time.Since(start)

		status, outcome := resolve(result, err, opts.StrictResponse)
		if classifier.IsTransport(err) {
			logger.Error("classification request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		} else {
			logger.Info("classification request completed",
				zap.String("outcome", string(outcome)),
				zap.Duration("elapsed", elapsed),
			)
		}

		if recorder != nil {
			entry := historyEntry(body, status, outcome, opts.Endpoint, elapsed)
			if recErr := recorder.RecordAttempt(context.Background(), entry); recErr != nil {
				logger.Warn("recording classification attempt", zap.Error(recErr))
			}
		}

		return ClassifiedMsg{
			RequestID: id,
			Result:    result,
			Err:       err,
			Duration:  elapsed,
		}
	}
}

// resolve maps a request outcome onto the status it produces.
func resolve(
	result *model.ClassificationResult,
	err error,
	strict bool,
) (model.SubmissionStatus, model.Outcome) {
	if err != nil {
		if remoteErr, ok := classifier.AsRemote(err); ok {
			return model.Failed(model.ErrorRemoteService, remoteErr.Message), model.OutcomeRemoteError
		}
		return model.Failed(model.ErrorTransport, classifier.MessageNetwork), model.OutcomeTransportError
	}

	if result == nil {
		return model.Failed(model.ErrorTransport, classifier.MessageNetwork), model.OutcomeTransportError
	}

	if !result.IsSuccess() {
		if strict {
			return model.Failed(model.ErrorRemoteService, classifier.MessageUnexpectedResponse), model.OutcomeUnexpected
		}
		return model.Succeeded(result), model.OutcomeUnexpected
	}

	return model.Succeeded(result), model.OutcomeSucceeded
}

// historyEntry builds the record for a completed attempt.
func historyEntry(
	body string,
	status model.SubmissionStatus,
	outcome model.Outcome,
	endpoint string,
	elapsed time.Duration,
) model.HistoryEntry {
	entry := model.HistoryEntry{
		Body:       body,
		Outcome:    outcome,
		Endpoint:   endpoint,
		DurationMS: elapsed.Milliseconds(),
	}
	if res, ok := status.Result(); ok {
		entry.Fields = res.Fields
	}
	if _, msg, ok := status.Failure(); ok {
		entry.Message = msg
	}
	return entry
}
