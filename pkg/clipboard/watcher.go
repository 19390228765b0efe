package clipboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultPollInterval  = 500 * time.Millisecond
	defaultMaintenanceTick = time.Minute
	defaultGCInterval    = time.Hour
)

// Poller is the clipboard poller thread (: "one for the clipboard
// poller"). It reads Source on a fixed tick, feeds changes into Store,
// and enqueues image captures for OCR.
type Poller struct {
	source Source
	store  *Store
	ocr    *OCRQueue
	log    zerolog.Logger

	pollInterval time.Duration
	maxTextLen   int

	nowFn func() int64 // injected for deterministic tests
}

func NewPoller(source Source, store *Store, ocr *OCRQueue, log zerolog.Logger) *Poller {
	return &Poller{
		source:       source,
		store:        store,
		ocr:          ocr,
		log:          log,
		pollInterval: defaultPollInterval,
		nowFn:        func() int64 { return time.Now().UnixMilli() },
	}
}

// Run blocks until ctx is cancelled, polling Source every pollInterval.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	clip, changed, err := p.source.Poll(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("clipboard: poll failed")
		return
	}
	if !changed {
		return
	}
	entry, err := p.store.AddOrTouch(ctx, clip, p.nowFn())
	if err != nil {
		p.log.Warn().Err(err).Msg("clipboard: add_or_touch failed")
		return
	}
	if entry.ContentType == ContentImage && p.ocr != nil && len(clip.ImageData) > 0 {
		p.ocr.Enqueue(entry.ID, clip.ImageData)
	}
}

// Maintainer runs the minute-scale retention tick and the hour-scale blob
// GC pass.
type Maintainer struct {
	store         *Store
	blobs         *BlobStore
	log           zerolog.Logger
	retentionDays int
	maxTextBytes  int64

	lastGC time.Time
}

func NewMaintainer(store *Store, blobs *BlobStore, retentionDays int, maxTextBytes int64, log zerolog.Logger) *Maintainer {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if maxTextBytes <= 0 {
		maxTextBytes = MaxTextContentLen
	}
	return &Maintainer{store: store, blobs: blobs, retentionDays: retentionDays, maxTextBytes: maxTextBytes, log: log}
}

func (m *Maintainer) Run(ctx context.Context) {
	ticker := time.NewTicker(defaultMaintenanceTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Maintainer) tick(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(m.retentionDays) * 24 * time.Hour).UnixMilli()
	if n, err := m.store.Prune(ctx, cutoff); err != nil {
		m.log.Warn().Err(err).Msg("clipboard: prune failed")
	} else if n > 0 {
		m.log.Info().Int64("rows", n).Msg("clipboard: pruned expired entries")
	}

	if n, err := m.store.TrimOversized(ctx, m.maxTextBytes); err != nil {
		m.log.Warn().Err(err).Msg("clipboard: trim oversized failed")
	} else if n > 0 {
		m.log.Info().Int64("rows", n).Msg("clipboard: trimmed oversized text entries")
	}

	if err := m.store.Vacuum(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clipboard: vacuum failed")
	}

	if time.Since(m.lastGC) >= defaultGCInterval {
		m.gcBlobs(ctx)
		m.lastGC = time.Now()
	}
}

// gcBlobs deletes any blob file not referenced by a live row. Run at
// most once per hour.
func (m *Maintainer) gcBlobs(ctx context.Context) {
	live, err := m.store.LiveHashes(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("clipboard: blob GC: failed to list live hashes")
		return
	}
	onDisk, err := m.blobs.ListHashes()
	if err != nil {
		m.log.Warn().Err(err).Msg("clipboard: blob GC: failed to list blob dir")
		return
	}
	removed := 0
	for _, hash := range onDisk {
		if live[hash] {
			continue
		}
		if err := m.blobs.Delete(hash); err != nil {
			m.log.Warn().Err(err).Str("hash", hash).Msg("clipboard: blob GC: delete failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Msg("clipboard: blob GC removed orphaned files")
	}
}
