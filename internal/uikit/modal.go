// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

// ModalKind selects the icon and accent colour of a modal dialog.
type ModalKind string

// Modal kinds.
const (
	ModalSuccess ModalKind = "success"
	ModalError   ModalKind = "error"
	ModalInfo    ModalKind = "info"
)

// Modal is the state of the page's single dialog. The layouts render it when
// Open is set and lock body scrolling while it is shown.
type Modal struct {
	Open    bool
	Kind    ModalKind
	Title   string
	Message string
}

// SuccessModal returns an open confirmation dialog.
func SuccessModal(title, message string) Modal {
	return Modal{Open: true, Kind: ModalSuccess, Title: title, Message: message}
}

// ErrorModal returns an open error dialog.
func ErrorModal(title, message string) Modal {
	return Modal{Open: true, Kind: ModalError, Title: title, Message: message}
}

// InfoModal returns an open informational dialog.
func InfoModal(title, message string) Modal {
	return Modal{Open: true, Kind: ModalInfo, Title: title, Message: message}
}

// Close returns the dialog closed. Title and message are dropped too.
func (Modal) Close() Modal {
	return Modal{}
}

// BodyClass is the class added to <body> while the dialog is open.
func (m Modal) BodyClass() string {
	if m.Open {
		return "modal-open"
	}
	return ""
}

// Icon names the icon the layout shows for the dialog kind.
func (m Modal) Icon() string {
	switch m.Kind {
	case ModalSuccess:
		return "check-circle"
	case ModalError:
		return "alert-circle"
	default:
		return "info"
	}
}
