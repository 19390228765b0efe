package platform

import (
	"context"
	"image"
)

// FakeAppScanner is a deterministic in-memory AppScanner for tests.
type FakeAppScanner struct{ Apps []App }

func (f FakeAppScanner) ScanApps(ctx context.Context) ([]App, error) { return f.Apps, nil }

// FakeWindowLister is a deterministic in-memory WindowLister for tests.
type FakeWindowLister struct{ Windows []Window }

func (f FakeWindowLister) ListWindows(ctx context.Context) ([]Window, error) { return f.Windows, nil }

// FakeSelectedTextReader returns a fixed string, for tests.
type FakeSelectedTextReader struct{ Text string }

func (f FakeSelectedTextReader) SelectedText(ctx context.Context) (string, error) {
	return f.Text, nil
}

// FakeOCR returns a fixed recognition result regardless of input image,
// for tests that only need to exercise the OCR side-channel plumbing
// without real image decoding.
type FakeOCR struct{ Text string }

func (f FakeOCR) Recognize(ctx context.Context, img image.Image, opts OCROptions) (OCRResult, error) {
	return OCRResult{Text: f.Text}, nil
}

// FakeMenuBarReader returns a fixed menu tree per bundle id.
type FakeMenuBarReader struct{ Menus map[string][]MenuEntry }

func (f FakeMenuBarReader) ReadMenuBar(ctx context.Context, bundleID string) ([]MenuEntry, error) {
	return f.Menus[bundleID], nil
}

// FakeClipboardWriter records the last write for assertions.
type FakeClipboardWriter struct {
	LastText  string
	LastImage image.Image
}

func (f *FakeClipboardWriter) WriteText(ctx context.Context, text string) error {
	f.LastText = text
	return nil
}

func (f *FakeClipboardWriter) WriteImage(ctx context.Context, img image.Image) error {
	f.LastImage = img
	return nil
}
