package whatsapp

import (
	"context"
	"errors"
	"time"

	"gowa-gateway/pkg/log"
)

var (
	ErrNotReady         = errors.New("whatsapp session is not ready")
	ErrEmptyBatch       = errors.New("batch contains no recipients")
	ErrMissingSharedMsg = errors.New("message is required when recipients are plain numbers")
)

const (
	BatchDelayMin     = 100 * time.Millisecond
	BatchDelayMax     = 10 * time.Second
	BatchDelayDefault = 1 * time.Second
)

// ClampBatchDelay bounds the pacing interval between consecutive sends.
func ClampBatchDelay(delay time.Duration) time.Duration {
	if delay < BatchDelayMin {
		return BatchDelayMin
	}
	if delay > BatchDelayMax {
		return BatchDelayMax
	}
	return delay
}

// BatchItem is one (target, message) pair in dispatch order. FormatError is
// set during input normalization when the raw entry was malformed; such
// items fail without ever reaching the resolver.
type BatchItem struct {
	Number      string
	Message     string
	FormatError string
}

// BatchResult is the per-item outcome, parallel to the input items.
type BatchResult struct {
	Number    string `json:"number"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchJob carries one batch request through dispatch. Results are appended
// in input order and never reordered.
type BatchJob struct {
	Items   []BatchItem
	Delay   time.Duration
	Results []BatchResult
}

func (j *BatchJob) SentCount() int {
	count := 0
	for _, result := range j.Results {
		if result.Success {
			count++
		}
	}
	return count
}

func (j *BatchJob) FailedCount() int {
	return len(j.Results) - j.SentCount()
}

// NormalizeRecipients converts the two accepted request forms into batch
// items: a flat list of number strings sharing one message body, or a list
// of {number, message} objects. Malformed entries become items that fail
// individually instead of aborting the batch.
func NormalizeRecipients(recipients []interface{}, sharedMessage string) ([]BatchItem, error) {
	if len(recipients) == 0 {
		return nil, ErrEmptyBatch
	}

	items := make([]BatchItem, 0, len(recipients))
	for _, raw := range recipients {
		switch entry := raw.(type) {
		case string:
			if sharedMessage == "" {
				return nil, ErrMissingSharedMsg
			}
			items = append(items, BatchItem{Number: entry, Message: sharedMessage})
		case map[string]interface{}:
			number, _ := entry["number"].(string)
			message, _ := entry["message"].(string)
			if message == "" {
				message = sharedMessage
			}
			if number == "" || message == "" {
				items = append(items, BatchItem{Number: number, FormatError: "invalid recipient format"})
				continue
			}
			items = append(items, BatchItem{Number: number, Message: message})
		default:
			items = append(items, BatchItem{FormatError: "invalid recipient format"})
		}
	}
	return items, nil
}

// TextSender is the underlying send capability of the messaging client.
type TextSender interface {
	SendText(ctx context.Context, canonicalID string, body string) (messageID string, err error)
}

// Dispatcher sequences batch sends strictly in input order. Sequential
// pacing keeps the single connection below the network's anti-abuse
// thresholds; per-item isolation keeps one bad recipient from voiding the
// rest of the batch.
type Dispatcher struct {
	Resolver *Resolver
	Sender   TextSender

	// Sleep suspends between sends. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Dispatch runs the batch to completion, mutating job.Results in place.
// Preconditions (session ready, non-empty batch) fail the whole call before
// any item is processed; after that, no item error escapes the loop.
func (d *Dispatcher) Dispatch(ctx context.Context, job *BatchJob, ready func() bool) error {
	if !ready() {
		return ErrNotReady
	}
	if len(job.Items) == 0 {
		return ErrEmptyBatch
	}

	sleep := d.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	delay := ClampBatchDelay(job.Delay)

	for index, item := range job.Items {
		if item.FormatError != "" {
			job.Results = append(job.Results, BatchResult{
				Number: item.Number,
				Error:  item.FormatError,
			})
			continue
		}

		target := d.Resolver.Resolve(ctx, item.Number)
		if target.Failed() {
			log.MessageOp("DispatchBatch", item.Number).Warn(target.ResolutionError)
			job.Results = append(job.Results, BatchResult{
				Number: item.Number,
				Error:  target.ResolutionError,
			})
			continue
		}

		messageID, err := d.Sender.SendText(ctx, target.CanonicalID, item.Message)
		if err != nil {
			log.MessageOp("DispatchBatch", item.Number).WithError(err).Error("Failed to send batch item")
			job.Results = append(job.Results, BatchResult{
				Number: item.Number,
				Error:  err.Error(),
			})
		} else {
			job.Results = append(job.Results, BatchResult{
				Number:    item.Number,
				Success:   true,
				MessageID: messageID,
			})
		}

		// Pace only after an attempted send, and never after the last item.
		if index < len(job.Items)-1 {
			sleep(delay)
		}
	}

	return nil
}
