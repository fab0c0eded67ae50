// Package header implements the file header component: it keeps the list
// of server-side files in sync, uploads new files and reports the chosen
// file to its host through a callback.
package header

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modex/frontend/internal/models"
	"github.com/modex/frontend/internal/picker"
	"github.com/modex/frontend/internal/upload"
	"github.com/sirupsen/logrus"
)

// Lister fetches the current file names from the backend.
type Lister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// Uploader delivers a local file to the backend.
type Uploader interface {
	Upload(ctx context.Context, file models.LocalFile) (*upload.Job, error)
}

// FileDialog is the handle of the file picker owned by the host view.
type FileDialog interface {
	Open()
}

// Notifier shows a blocking notification to the user.
type Notifier interface {
	Alert(message string)
}

// Returned when the corresponding collaborator was not configured.
var (
	ErrNoLister   = errors.New("no file lister configured")
	ErrNoUploader = errors.New("no uploader configured")
)

// Options configures a Header. Lister and Uploader are required for
// FetchFileList and HandleFileUpload; Dialog and Notifier are optional.
type Options struct {
	Subject  string
	Accept   []string // extensions offered by the file dialog
	Lister   Lister
	Uploader Uploader
	// OnFileSelect receives every selection change. The host owns the
	// selection and must pass it back through SetSelected.
	OnFileSelect func(fileName string)
	Dialog       FileDialog
	Notifier     Notifier
	Ordering     picker.Ordering
	Logger       logrus.FieldLogger
}

// Header is safe for concurrent use. The selection callback and the
// notifier are never called with the internal lock held.
type Header struct {
	mu           sync.Mutex
	reducer      *picker.Reducer
	state        picker.State
	selected     string
	synced       bool
	onFileSelect func(string)

	subject  string
	accept   []string
	lister   Lister
	uploader Uploader
	dialog   FileDialog
	notifier Notifier
	log      logrus.FieldLogger
}

// New creates a Header with an empty file list.
func New(opts Options) *Header {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Header{
		reducer:      picker.NewReducer(opts.Ordering),
		state:        picker.State{Files: []string{}},
		onFileSelect: opts.OnFileSelect,
		subject:      opts.Subject,
		accept:       opts.Accept,
		lister:       opts.Lister,
		uploader:     opts.Uploader,
		dialog:       opts.Dialog,
		notifier:     opts.Notifier,
		log:          logger.WithField("component", "header"),
	}
}

// Subject is the caption shown above the header.
func (h *Header) Subject() string { return h.subject }

// Accept returns the extensions the file dialog should offer.
func (h *Header) Accept() []string { return h.accept }

// Snapshot returns a copy of the current view state.
func (h *Header) Snapshot() picker.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Clone()
}

// Selected returns the selection last passed in by the host.
func (h *Header) Selected() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected
}

// SetSelected records the host's current selection. It returns true when
// the list must be fetched again: on the first call, whenever the selection
// differs from the previous call, and after the callback was replaced.
func (h *Header) SetSelected(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := !h.synced || name != h.selected
	h.selected = name
	h.synced = true
	return changed
}

// SetOnFileSelect replaces the selection callback. The next SetSelected
// reports a change.
func (h *Header) SetOnFileSelect(fn func(fileName string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFileSelect = fn
	h.synced = false
}

// FetchFileList loads the file list and reconciles the selection with it.
// On failure the list is left as it was and the error message is set.
func (h *Header) FetchFileList(ctx context.Context) error {
	if h.lister == nil {
		return ErrNoLister
	}

	h.mu.Lock()
	state, token := h.reducer.BeginList(h.state)
	h.state = state
	h.mu.Unlock()

	files, err := h.lister.ListFiles(ctx)
	if err != nil {
		h.log.WithError(err).Error("Error al obtener la lista de archivos")
		h.dispatch(picker.ListFailed{Token: token, Err: err})
		return fmt.Errorf("fetching file list: %w", err)
	}

	h.log.WithField("count", len(files)).Debug("file list loaded")
	h.dispatch(picker.ListLoaded{Token: token, Files: files})
	return nil
}

// OpenFileDialog asks the host's file dialog to open. Without a dialog
// handle it does nothing.
func (h *Header) OpenFileDialog() {
	if h.dialog == nil {
		return
	}
	h.dialog.Open()
}

// HandleFileUpload uploads file and, on success, appends it to the list and
// selects it. A nil file means nothing was chosen.
func (h *Header) HandleFileUpload(ctx context.Context, file *models.LocalFile) error {
	if file == nil {
		return nil
	}
	if h.uploader == nil {
		return ErrNoUploader
	}

	if _, err := h.uploader.Upload(ctx, *file); err != nil {
		h.HandleUploadError(file.Name, err)
		return fmt.Errorf("uploading %s: %w", file.Name, err)
	}

	h.log.WithField("file", file.Name).Info("file uploaded")
	h.dispatch(picker.UploadSucceeded{Name: file.Name})
	return nil
}

// HandleUploadError records a failed upload of name: the error message is
// set and the user is alerted. Hosts call it for failures HandleFileUpload
// never sees, such as a file that could not be read.
func (h *Header) HandleUploadError(name string, err error) {
	h.log.WithError(err).WithField("file", name).Error("Error al subir el archivo")
	h.dispatch(picker.UploadFailed{Name: name, Err: err})
}

// HandleFileSelect forwards a selection made in the dropdown to the host.
func (h *Header) HandleFileSelect(fileName string) {
	h.dispatch(picker.FileChosen{Name: fileName})
}

func (h *Header) dispatch(action picker.Action) {
	h.mu.Lock()
	state, effect := h.reducer.Reduce(h.state, action, h.selected)
	h.state = state
	onFileSelect, notifier := h.onFileSelect, h.notifier
	h.mu.Unlock()

	if effect.Select && onFileSelect != nil {
		onFileSelect(effect.FileName)
	}
	if effect.Alert != "" && notifier != nil {
		notifier.Alert(effect.Alert)
	}
}
