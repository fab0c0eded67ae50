// Package picker holds the file header's view state and the transitions
// that change it. Nothing here does I/O; callers feed it the results of
// list and upload requests and act on the returned Effect.
package picker

import "slices"

// User-facing messages. Only the most recent one is kept.
const (
	MsgListFailed   = "Error al obtener la lista de archivos."
	MsgUploadFailed = "Error al subir el archivo."
	AlertUploadFail = "Error al subir el archivo"
)

// Ordering decides which list response wins when several are in flight.
type Ordering string

const (
	// LastInitiatedWins discards list responses superseded by a newer request.
	LastInitiatedWins Ordering = "last-initiated"
	// LastResolvedWins applies every response in the order it arrives.
	LastResolvedWins Ordering = "last-resolved"
)

// ParseOrdering maps a config value to an Ordering. Empty means the default.
func ParseOrdering(s string) (Ordering, bool) {
	switch Ordering(s) {
	case "", LastInitiatedWins:
		return LastInitiatedWins, true
	case LastResolvedWins:
		return LastResolvedWins, true
	}
	return "", false
}

// State is the component-local part of the header. The selected file is
// owned by the host and is passed into Reduce instead of stored here.
type State struct {
	Files []string
	Error string

	listToken uint64
}

// Clone returns a copy whose Files slice does not alias s.
func (s State) Clone() State {
	s.Files = slices.Clone(s.Files)
	return s
}

// Contains reports whether name is in the file list.
func (s State) Contains(name string) bool {
	return slices.Contains(s.Files, name)
}

// Effect is what the host must do after a transition.
type Effect struct {
	// Select is set when the outbound selection callback must run with FileName.
	Select   bool
	FileName string
	// Alert is a blocking notification for the user, empty when none.
	Alert string
}

func selectFile(name string) Effect {
	return Effect{Select: true, FileName: name}
}
