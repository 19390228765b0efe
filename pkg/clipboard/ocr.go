package clipboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// OCR abstracts the platform text-recognition API. The spec fixes the
// recognition level to accurate/language-corrected/default-language and
// treats user language preference as a deliberate non-goal (open
// questions) — so this interface carries no language parameter at all.
type OCR interface {
	Recognize(ctx context.Context, imagePNG []byte) (string, error)
}

type ocrJob struct {
	entryID string
	image   []byte
}

// OCRQueue is the bounded, single-worker side channel that runs image
// recognition without blocking capture.
// Failure is logged and non-fatal: the entry remains searchable by
// timestamp only.
type OCRQueue struct {
	engine OCR
	store  *Store
	jobs   chan ocrJob
	log    zerolog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewOCRQueue(engine OCR, store *Store, log zerolog.Logger) *OCRQueue {
	q := &OCRQueue{
		engine: engine,
		store:  store,
		jobs:   make(chan ocrJob, 64),
		log:    log,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue submits an image for recognition without blocking. When the
// queue is full the new job is dropped with a warning log: OCR is
// best-effort, matching the "failure is not fatal" contract.
func (q *OCRQueue) Enqueue(entryID string, imagePNG []byte) {
	select {
	case q.jobs <- ocrJob{entryID: entryID, image: imagePNG}:
	default:
		q.log.Warn().Str("entry", entryID).Msg("clipboard: OCR queue full, dropping job")
	}
}

func (q *OCRQueue) run() {
	defer q.wg.Done()
	for job := range q.jobs {
		text, err := q.engine.Recognize(context.Background(), job.image)
		if err != nil {
			q.log.Warn().Err(err).Str("entry", job.entryID).Msg("clipboard: OCR failed")
			continue
		}
		if err := q.store.UpdateOCR(context.Background(), job.entryID, text); err != nil {
			q.log.Warn().Err(err).Str("entry", job.entryID).Msg("clipboard: failed to persist OCR result")
		}
	}
}

func (q *OCRQueue) Close() {
	q.closeOnce.Do(func() { close(q.jobs) })
	q.wg.Wait()
}
