package tui

import "github.com/aussiebroadwan/clientdesk/pkg/clientsdk"

// clientsLoadedMsg carries the result of a list request
type clientsLoadedMsg struct {
	clients []clientsdk.Client
	err     error
}

// clientSavedMsg reports a finished create or update
type clientSavedMsg struct {
	name string
	err  error
}

// clientDeletedMsg reports a finished delete
type clientDeletedMsg struct {
	name string
	err  error
}
