// mock_backend.go - Fake file backend for client, upload and header tests
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MockBackend serves /files and /upload the way the real backend does,
// with switchable failure modes.
type MockBackend struct {
	mu       sync.RWMutex
	files    []string
	fileData map[string][]byte

	listStatus      int
	uploadStatus    int
	listBody        []byte
	listContentType string
	msgpack         bool

	listCalls   int
	uploadCalls int
	requestIDs  []string

	server *httptest.Server
}

// NewMockBackend starts a backend holding files. Call Close when done.
func NewMockBackend(files ...string) *MockBackend {
	b := &MockBackend{
		files:    slices.Clone(files),
		fileData: make(map[string][]byte),
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/files", b.handleListFiles)
	e.POST("/upload", b.handleUpload)

	b.server = httptest.NewServer(e)
	return b
}

// URL is the endpoint base of the backend.
func (b *MockBackend) URL() string {
	return b.server.URL
}

// Close shuts the server down.
func (b *MockBackend) Close() {
	b.server.Close()
}

func (b *MockBackend) handleListFiles(c echo.Context) error {
	b.mu.Lock()
	b.listCalls++
	b.requestIDs = append(b.requestIDs, c.Request().Header.Get("X-Request-ID"))
	status, body, contentType := b.listStatus, b.listBody, b.listContentType
	files := slices.Clone(b.files)
	useMsgpack := b.msgpack
	b.mu.Unlock()

	if status != 0 {
		return c.String(status, "Error al leer los archivos")
	}
	if body != nil {
		return c.Blob(http.StatusOK, contentType, body)
	}
	if useMsgpack {
		data, err := msgpack.Marshal(files)
		if err != nil {
			return c.String(http.StatusInternalServerError, "failed to encode msgpack")
		}
		return c.Blob(http.StatusOK, "application/msgpack", data)
	}
	if files == nil {
		files = []string{}
	}
	return c.JSON(http.StatusOK, files)
}

func (b *MockBackend) handleUpload(c echo.Context) error {
	b.mu.Lock()
	b.uploadCalls++
	b.requestIDs = append(b.requestIDs, c.Request().Header.Get("X-Request-ID"))
	status := b.uploadStatus
	b.mu.Unlock()

	if status != 0 {
		return c.String(status, "Error al guardar el archivo")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "Error al obtener el archivo: "+err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return c.String(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.String(http.StatusInternalServerError, "failed to read uploaded file")
	}

	b.mu.Lock()
	if !slices.Contains(b.files, file.Filename) {
		b.files = append(b.files, file.Filename)
	}
	b.fileData[file.Filename] = data
	b.mu.Unlock()

	return c.String(http.StatusOK, "Archivo subido y procesado exitosamente")
}

// Test Helper Methods

// SetFiles replaces the stored file names.
func (b *MockBackend) SetFiles(files ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = slices.Clone(files)
}

// Files returns the stored file names.
func (b *MockBackend) Files() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.files)
}

// FailList makes /files answer with status. Zero restores normal behaviour.
func (b *MockBackend) FailList(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listStatus = status
}

// FailUpload makes /upload answer with status. Zero restores normal behaviour.
func (b *MockBackend) FailUpload(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadStatus = status
}

// SetListBody makes /files answer 200 with a raw body. A nil body restores
// normal behaviour.
func (b *MockBackend) SetListBody(contentType string, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listContentType = contentType
	b.listBody = body
}

// UseMsgpack switches the /files encoding.
func (b *MockBackend) UseMsgpack(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgpack = on
}

// Uploaded returns the bytes stored for name.
func (b *MockBackend) Uploaded(name string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.fileData[name]
	return data, ok
}

// ListCalls returns how many times /files was requested.
func (b *MockBackend) ListCalls() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.listCalls
}

// UploadCalls returns how many times /upload was requested.
func (b *MockBackend) UploadCalls() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.uploadCalls
}

// RequestIDs returns the X-Request-ID of every request in arrival order.
func (b *MockBackend) RequestIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.requestIDs)
}
