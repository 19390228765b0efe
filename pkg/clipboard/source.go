package clipboard

import "context"

// Source abstracts the OS clipboard (Non-goals: OS-specific
// accessibility/screenshot/OCR APIs are out of scope, described only
// through the capability interface the core consumes).
//
// The macOS implementation polls NSPasteboard.changeCount; other
// platforms fall back to content-hash comparison of the last captured
// payload. Both shapes reduce to the same Poll contract: "has
// the clipboard changed since last call, and if so, what's on it now".
type Source interface {
	// Poll returns (clip, true, nil) if the clipboard changed since the
	// last call, or (zero, false, nil) if unchanged. It never blocks.
	Poll(ctx context.Context) (RawClip, bool, error)
}

// ChangeCountSource wraps a changeCount-style API: read the counter
// cheaply every tick, only pay for a payload read on a delta. The first
// Poll only records the counter and reports no change.
type ChangeCountSource struct {
	ReadChangeCount func() (int64, error)
	ReadPayload     func() (RawClip, error)

	lastCount int64
	primed    bool
}

func (c *ChangeCountSource) Poll(ctx context.Context) (RawClip, bool, error) {
	count, err := c.ReadChangeCount()
	if err != nil {
		return RawClip{}, false, err
	}
	if !c.primed {
		c.lastCount = count
		c.primed = true
		return RawClip{}, false, nil
	}
	if count == c.lastCount {
		return RawClip{}, false, nil
	}
	c.lastCount = count
	clip, err := c.ReadPayload()
	if err != nil {
		return RawClip{}, false, err
	}
	return clip, true, nil
}

// HashCompareSource is the non-macOS fallback: compare a content hash of
// the last captured payload against a fresh read every tick.
type HashCompareSource struct {
	ReadPayload func() (RawClip, error)

	lastHash string
	primed   bool
}

func (c *HashCompareSource) Poll(ctx context.Context) (RawClip, bool, error) {
	clip, err := c.ReadPayload()
	if err != nil {
		return RawClip{}, false, err
	}
	hash := hashOfClip(clip)
	if c.primed && hash == c.lastHash {
		return RawClip{}, false, nil
	}
	c.lastHash = hash
	c.primed = true
	return clip, true, nil
}

func hashOfClip(c RawClip) string {
	if c.Text != "" {
		return "text:" + Hash([]byte(c.Text))
	}
	return "image:" + Hash(c.ImageData)
}
