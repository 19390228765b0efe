// Package platform declares the OS-specific capabilities the core
// consumes but never implements: accessibility, menubar, screenshot,
// and OCR APIs are abstracted as capability interfaces. Each interface
// has a deterministic in-memory fake for tests; real implementations
// live behind //go:build darwin stub files that are never completed
// here.
package platform

import (
	"context"
	"image"
)

// App is one entry a platform app scanner surfaces; these feed
// scriptindex.KindApp.
type App struct {
	BundleID string
	Name     string
	IconPath string
	Path     string
}

// AppScanner lists installed applications.
type AppScanner interface {
	ScanApps(ctx context.Context) ([]App, error)
}

// Window is one open OS window (feeds scriptindex.KindWindow).
type Window struct {
	ID       string
	Title    string
	AppName  string
	BundleID string
}

// WindowLister lists currently open windows.
type WindowLister interface {
	ListWindows(ctx context.Context) ([]Window, error)
}

// SelectedTextReader answers the prompt protocol's getSelectedText
// query.
type SelectedTextReader interface {
	SelectedText(ctx context.Context) (string, error)
}

// OCRResult is the outcome of running OCR over image bytes.
type OCRResult struct {
	Text string
}

// OCROptions models the core's fixed OCR selection: accurate,
// language-corrected, default language, with no user-facing language
// field.
type OCROptions struct {
	Accurate          bool
	LanguageCorrected bool
}

// DefaultOCROptions is the only options value this core ever passes.
func DefaultOCROptions() OCROptions {
	return OCROptions{Accurate: true, LanguageCorrected: true}
}

// OCR recognizes text in an image.
type OCR interface {
	Recognize(ctx context.Context, img image.Image, opts OCROptions) (OCRResult, error)
}

// MenuEntry is one node of an application's menu-bar AX tree.
type MenuEntry struct {
	Path     string // e.g. "File > Save As..."
	Shortcut string
}

// MenuBarReader reads an application's current menu-bar tree, the raw
// input to pkg/menucache's cached JSON blob.
type MenuBarReader interface {
	ReadMenuBar(ctx context.Context, bundleID string) ([]MenuEntry, error)
}

// ClipboardWriter is the write-only half of the system clipboard
// boundary — used only by the "copy entry" action, never overlapping
// pkg/clipboard's poller reads on the same tick (: "The system
// clipboard is read-only for the poller and write-only for the 'copy
// entry' action; those never overlap on the same tick"). The read half
// is pkg/clipboard.Source, which already models the poller's tighter
// change-detection contract — no second read interface is needed here.
type ClipboardWriter interface {
	WriteText(ctx context.Context, text string) error
	WriteImage(ctx context.Context, img image.Image) error
}
