// Package browser synchronizes two automation sessions attached to one
// Chromium instance: the test runner's session and a secondary session that
// drives a wallet extension's windows and notification popups.
package browser

import "time"

// Logical window names.
const (
	WindowRunner       = "runner"
	WindowExtension    = "extension"
	WindowNotification = "extension-notification"
)

const (
	// DefaultCDPPort is the Chrome DevTools Protocol port of a launched browser.
	DefaultCDPPort = 9222

	// ExtensionScheme prefixes every extension page URL.
	ExtensionScheme = "chrome-extension://"
)

// Timing defaults.
const (
	DefaultPollInterval        = 100 * time.Millisecond
	DefaultWaitTimeout         = 5 * time.Second
	DefaultEventTimeout        = 15 * time.Second
	DefaultNotificationTimeout = 10 * time.Second
	DefaultSettleDelay         = time.Second
	DefaultProbeTimeout        = 500 * time.Millisecond

	// Blank extension page workaround: wait, then reload until content shows.
	DefaultBlankPageAttempts     = 5
	DefaultBlankPageBackoff      = 2 * time.Second
	DefaultBlankPageInitialDelay = time.Second
)
