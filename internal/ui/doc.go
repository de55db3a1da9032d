// Package ui holds the shared terminal styling for rcpu's command output.
//
// Colors are ANSI codes so that output follows the user's terminal palette:
//
//	ColorSuccess   (green)  - Successful operations, CPU gauge
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Warnings, disk gauge
//	ColorInfo      (cyan)   - Headings
//	ColorMuted     (gray)   - Secondary text
//	ColorSecondary (blue)   - RAM gauge
//
// ApplyColorMode maps the output.color setting (auto, always, never) onto
// the Lip Gloss default renderer. DisableColors is the --no-color shortcut.
package ui
