//go:build darwin

package platform

// This file documents, but never implements, the real Cocoa/AX calls a
// darwin build would make.
//
// AppScanner    -> NSWorkspace.runningApplications / LaunchServices scan of
//                  /Applications and ~/Applications for .app bundles.
// WindowLister  -> CGWindowListCopyWindowInfo.
// SelectedTextReader -> Accessibility API (AXUIElement) reading the
//                  focused element's selected-text attribute, gated on
//                  the screen-recording/accessibility permission the
//                  PermissionDenied error kind models.
// OCR           -> Vision framework VNRecognizeTextRequest with
//                  .accurate recognition level and language correction
//                  enabled (DefaultOCROptions in platform.go).
// MenuBarReader -> AXUIElement walk of an app's menu bar, keyed by
//                  (bundle id, app version).
// ClipboardWriter -> NSPasteboard.setString / writeObjects.
