package header

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/modex/frontend/internal/client"
	"github.com/modex/frontend/internal/models"
	"github.com/modex/frontend/internal/picker"
	"github.com/modex/frontend/internal/testutil"
	"github.com/modex/frontend/internal/upload"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// host plays the parent view: it owns the selection and feeds it back.
type host struct {
	mu       sync.Mutex
	selected string
	calls    []string
}

func (h *host) onFileSelect(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selected = name
	h.calls = append(h.calls, name)
}

func (h *host) get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected
}

type recordingNotifier struct {
	alerts []string
}

func (n *recordingNotifier) Alert(message string) {
	n.alerts = append(n.alerts, message)
}

type countingDialog struct {
	opened int
}

func (d *countingDialog) Open() { d.opened++ }

type fixture struct {
	backend  *testutil.MockBackend
	host     *host
	notifier *recordingNotifier
	header   *Header
	hook     interface{ AllEntries() []*logrus.Entry }
}

func newFixture(t *testing.T, files ...string) *fixture {
	t.Helper()
	backend := testutil.NewMockBackend(files...)
	t.Cleanup(backend.Close)

	logger, hook := testutil.NewLogger()
	c, err := client.New(client.Options{EndpointBase: backend.URL(), Logger: logger})
	require.NoError(t, err)

	f := &fixture{
		backend:  backend,
		host:     &host{},
		notifier: &recordingNotifier{},
		hook:     hook,
	}
	f.header = New(Options{
		Accept:       []string{".txt"},
		Lister:       c,
		Uploader:     upload.NewManager(c, []string{".txt"}, logger),
		OnFileSelect: f.host.onFileSelect,
		Notifier:     f.notifier,
		Logger:       logger,
	})
	return f
}

// render mimics one host render: pass the selection in and fetch if needed.
func (f *fixture) render(t *testing.T) bool {
	t.Helper()
	if f.header.SetSelected(f.host.get()) {
		_ = f.header.FetchFileList(context.Background())
		return true
	}
	return false
}

// settle renders until the selection stops changing.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 10; i++ {
		if !f.render(t) {
			return
		}
	}
	t.Fatal("selection did not settle")
}

func localFile(t *testing.T, name string) *models.LocalFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("1\n0,0.5\n1\n"), 0644))
	file, err := models.NewLocalFile(path)
	require.NoError(t, err)
	return file
}

func TestHeader_MountSelectsLastFile(t *testing.T) {
	f := newFixture(t, "a.txt", "b.txt")
	f.settle(t)

	state := f.header.Snapshot()
	assert.Equal(t, []string{"a.txt", "b.txt"}, state.Files)
	assert.Equal(t, "b.txt", f.host.get())
	assert.Empty(t, state.Error)
}

func TestHeader_KeepsPresentSelection(t *testing.T) {
	f := newFixture(t, "a.txt")
	f.settle(t)
	require.Equal(t, "a.txt", f.host.get())

	f.backend.SetFiles("a.txt", "b.txt")
	require.NoError(t, f.header.FetchFileList(context.Background()))

	assert.Equal(t, []string{"a.txt", "b.txt"}, f.header.Snapshot().Files)
	assert.Equal(t, "a.txt", f.host.get())
	assert.Equal(t, []string{"a.txt"}, f.host.calls)
}

func TestHeader_NonArrayResponse(t *testing.T) {
	f := newFixture(t)
	f.host.selected = "stale.txt"
	f.backend.SetListBody("application/json", []byte(`{}`))
	f.settle(t)

	assert.Equal(t, []string{}, f.header.Snapshot().Files)
	assert.Equal(t, "", f.host.get())
}

func TestHeader_EmptyResponseClearsSelection(t *testing.T) {
	f := newFixture(t, "a.txt")
	f.settle(t)
	require.Equal(t, "a.txt", f.host.get())

	f.backend.SetFiles()
	require.NoError(t, f.header.FetchFileList(context.Background()))

	assert.Empty(t, f.header.Snapshot().Files)
	assert.Equal(t, "", f.host.get())
}

func TestHeader_FetchFailure(t *testing.T) {
	f := newFixture(t, "a.txt")
	f.settle(t)

	f.backend.FailList(http.StatusInternalServerError)
	err := f.header.FetchFileList(context.Background())

	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusInternalServerError))
	state := f.header.Snapshot()
	assert.Equal(t, []string{"a.txt"}, state.Files)
	assert.Equal(t, picker.MsgListFailed, state.Error)
	assert.Empty(t, f.notifier.alerts, "list failures do not alert")

	var logged bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "Error al obtener la lista de archivos" {
			logged = true
		}
	}
	assert.True(t, logged)

	f.backend.FailList(0)
	require.NoError(t, f.header.FetchFileList(context.Background()))
	assert.Empty(t, f.header.Snapshot().Error)
}

func TestHeader_UploadSuccess(t *testing.T) {
	f := newFixture(t, "a.txt")
	f.settle(t)

	listCalls := f.backend.ListCalls()
	err := f.header.HandleFileUpload(context.Background(), localFile(t, "c.txt"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "c.txt"}, f.header.Snapshot().Files)
	assert.Equal(t, "c.txt", f.host.get())
	assert.Equal(t, listCalls, f.backend.ListCalls(), "upload must not re-fetch")

	// The host re-renders with the new selection; the refetch agrees.
	f.settle(t)
	assert.Equal(t, []string{"a.txt", "c.txt"}, f.header.Snapshot().Files)
	assert.Equal(t, "c.txt", f.host.get())
}

func TestHeader_UploadFailure(t *testing.T) {
	f := newFixture(t, "a.txt")
	f.settle(t)
	f.backend.FailUpload(http.StatusInternalServerError)

	err := f.header.HandleFileUpload(context.Background(), localFile(t, "c.txt"))

	require.Error(t, err)
	state := f.header.Snapshot()
	assert.Equal(t, []string{"a.txt"}, state.Files)
	assert.Equal(t, "Error al subir el archivo.", state.Error)
	assert.Equal(t, []string{"Error al subir el archivo"}, f.notifier.alerts)
	assert.Equal(t, "a.txt", f.host.get())
}

func TestHeader_UploadNilFile(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.header.HandleFileUpload(context.Background(), nil))
	assert.Zero(t, f.backend.UploadCalls())
	assert.Empty(t, f.host.calls)
}

func TestHeader_OpenFileDialog(t *testing.T) {
	h := New(Options{})
	assert.NotPanics(t, h.OpenFileDialog)

	dialog := &countingDialog{}
	h = New(Options{Dialog: dialog})
	h.OpenFileDialog()
	h.OpenFileDialog()
	assert.Equal(t, 2, dialog.opened)
}

func TestHeader_HandleFileSelect(t *testing.T) {
	f := newFixture(t, "a.txt", "b.txt")
	f.settle(t)

	f.header.HandleFileSelect("a.txt")
	assert.Equal(t, "a.txt", f.host.get())

	listCalls := f.backend.ListCalls()
	assert.True(t, f.render(t), "a selection change triggers a fetch")
	assert.Equal(t, listCalls+1, f.backend.ListCalls())
	assert.Equal(t, "a.txt", f.host.get())
}

func TestHeader_SetSelected(t *testing.T) {
	h := New(Options{})

	assert.True(t, h.SetSelected(""), "first render always fetches")
	assert.False(t, h.SetSelected(""))
	assert.True(t, h.SetSelected("a.txt"))
	assert.False(t, h.SetSelected("a.txt"))

	h.SetOnFileSelect(func(string) {})
	assert.True(t, h.SetSelected("a.txt"), "a new callback counts as a change")
	assert.Equal(t, "a.txt", h.Selected())
}

type scriptedLister struct {
	calls chan chan []string
}

func (l *scriptedLister) ListFiles(ctx context.Context) ([]string, error) {
	result := make(chan []string)
	l.calls <- result
	return <-result, nil
}

func TestHeader_LastInitiatedFetchWins(t *testing.T) {
	lister := &scriptedLister{calls: make(chan chan []string)}
	var selections []string
	var mu sync.Mutex
	h := New(Options{
		Lister: lister,
		OnFileSelect: func(name string) {
			mu.Lock()
			defer mu.Unlock()
			selections = append(selections, name)
		},
	})

	first := make(chan error, 1)
	go func() { first <- h.FetchFileList(context.Background()) }()
	firstResult := <-lister.calls

	second := make(chan error, 1)
	go func() { second <- h.FetchFileList(context.Background()) }()
	secondResult := <-lister.calls

	secondResult <- []string{"new.txt"}
	require.NoError(t, <-second)
	firstResult <- []string{"old.txt"}
	require.NoError(t, <-first)

	assert.Equal(t, []string{"new.txt"}, h.Snapshot().Files)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"new.txt"}, selections)
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	WriterNotifier{W: &buf}.Alert("Error al subir el archivo")
	assert.Equal(t, "! Error al subir el archivo\n", buf.String())
}

func TestHeader_MissingCollaborators(t *testing.T) {
	notifier := &recordingNotifier{}
	h := New(Options{Notifier: notifier})

	assert.ErrorIs(t, h.FetchFileList(context.Background()), ErrNoLister)
	assert.ErrorIs(t, h.HandleFileUpload(context.Background(), &models.LocalFile{Name: "a.txt"}), ErrNoUploader)

	state := h.Snapshot()
	assert.Empty(t, state.Files)
	assert.Empty(t, state.Error)
	assert.Empty(t, notifier.alerts)
}

func TestHeader_HandleUploadError(t *testing.T) {
	f := newFixture(t, "a.txt")
	f.settle(t)

	f.header.HandleUploadError("c.txt", os.ErrNotExist)

	state := f.header.Snapshot()
	assert.Equal(t, []string{"a.txt"}, state.Files)
	assert.Equal(t, "Error al subir el archivo.", state.Error)
	assert.Equal(t, []string{"Error al subir el archivo"}, f.notifier.alerts)
	assert.Equal(t, "a.txt", f.host.get())
	assert.Zero(t, f.backend.UploadCalls())
}

func TestHeader_LastResolvedFetchWins(t *testing.T) {
	lister := &scriptedLister{calls: make(chan chan []string)}
	h := New(Options{Lister: lister, Ordering: picker.LastResolvedWins})

	first := make(chan error, 1)
	go func() { first <- h.FetchFileList(context.Background()) }()
	firstResult := <-lister.calls

	second := make(chan error, 1)
	go func() { second <- h.FetchFileList(context.Background()) }()
	secondResult := <-lister.calls

	secondResult <- []string{"new.txt"}
	require.NoError(t, <-second)
	firstResult <- []string{"old.txt"}
	require.NoError(t, <-first)

	assert.Equal(t, []string{"old.txt"}, h.Snapshot().Files)
}
