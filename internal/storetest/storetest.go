// Package storetest provides an in-memory homeclip remote store served over
// httptest, for exercising the sync engine end to end.
package storetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/homeclip/internal/homeclip"
)

type storedFile struct {
	meta homeclip.Attachment
	data []byte
}

// Server is a fake remote store. All methods are safe for concurrent use.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	content     string
	expiresAt   *time.Time
	files       []storedFile
	nextID      int
	saves       []string
	inFlight    int
	maxInFlight int
	requests    map[string]int

	saveGate    chan struct{}
	saveStarted chan string
	saveStatus  int
	listStatus  int
	uploadFail  map[string]string
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		requests:    make(map[string]int),
		uploadFail:  make(map[string]string),
		saveStarted: make(chan string, 64),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL of the server.
func (s *Server) URL() string { return s.srv.URL }

// Client returns a homeclip client pointed at the server.
func (s *Server) Client(t testing.TB) *homeclip.Client {
	t.Helper()
	c, err := homeclip.NewClient(s.srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// SetContent replaces the server-side document, as another session would.
func (s *Server) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
}

// SetExpiresAt sets the document expiration.
func (s *Server) SetExpiresAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = &t
}

// Content returns the server-side document.
func (s *Server) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// AddFile stores an attachment directly and returns its metadata.
func (s *Server) AddFile(name string, data []byte, expiresAt *time.Time) homeclip.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFileLocked(name, data, expiresAt)
}

// Files returns the stored attachments in server order.
func (s *Server) Files() []homeclip.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]homeclip.Attachment, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f.meta)
	}
	return out
}

// Saves returns every saved document body in arrival order.
func (s *Server) Saves() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saves...)
}

// MaxInFlight returns the highest number of concurrent save requests seen.
func (s *Server) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInFlight
}

// Requests returns how often "METHOD /path" was requested.
func (s *Server) Requests(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

// HoldSaves makes every save block until release is called. SaveStarted
// receives the body of each held save as it arrives.
func (s *Server) HoldSaves() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.saveGate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.saveGate == gate {
				s.saveGate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// SaveStarted delivers each save body when the request reaches the server.
func (s *Server) SaveStarted() <-chan string { return s.saveStarted }

// FailSaves makes saves answer with code; zero restores success.
func (s *Server) FailSaves(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveStatus = code
}

// FailListing makes GET /api/files answer with code; zero restores success.
func (s *Server) FailListing(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = code
}

// FailUpload rejects uploads named name with an application-level error.
func (s *Server) FailUpload(name, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadFail[name] = message
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if strings.HasPrefix(r.URL.Path, "/api/files/") && r.URL.Path != "/api/files/upload" {
		key = r.Method + " /api/files/{id}"
	}
	s.mu.Lock()
	s.requests[key]++
	s.mu.Unlock()

	switch key {
	case "GET /api/content":
		s.getContent(w)
	case "POST /api/content":
		s.saveContent(w, r)
	case "GET /api/files":
		s.listFiles(w)
	case "POST /api/files/upload":
		s.upload(w, r)
	case "GET /api/files/{id}":
		s.download(w, r)
	case "DELETE /api/files/{id}":
		s.delete(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) getContent(w http.ResponseWriter) {
	s.mu.Lock()
	resp := homeclip.ContentResponse{
		Content:     s.content,
		LastUpdated: time.Now(),
		ExpiresAt:   s.expiresAt,
		Attachments: s.attachmentsLocked(),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) saveContent(w http.ResponseWriter, r *http.Request) {
	var req homeclip.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	gate := s.saveGate
	code := s.saveStatus
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	select {
	case s.saveStarted <- req.Content:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if code != 0 {
		writeJSON(w, code, map[string]string{"error": "save rejected"})
		return
	}

	s.mu.Lock()
	s.content = req.Content
	s.saves = append(s.saves, req.Content)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) listFiles(w http.ResponseWriter) {
	s.mu.Lock()
	code := s.listStatus
	list := s.attachmentsLocked()
	s.mu.Unlock()
	if code != 0 {
		writeJSON(w, code, map[string]string{"error": "listing failed"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, homeclip.UploadResponse{Error: "Failed to get file from form"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, homeclip.UploadResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	if msg, ok := s.uploadFail[header.Filename]; ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, homeclip.UploadResponse{Success: false, Error: msg})
		return
	}
	meta := s.addFileLocked(header.Filename, data, nil)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, homeclip.UploadResponse{Success: true, Attachment: meta})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/files/")
	s.mu.Lock()
	var data []byte
	found := false
	for _, f := range s.files {
		if f.meta.ID == id {
			data, found = f.data, true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/files/")
	s.mu.Lock()
	idx := -1
	for i, f := range s.files {
		if f.meta.ID == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		s.files = append(s.files[:idx], s.files[idx+1:]...)
	}
	s.mu.Unlock()
	if idx < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "attachment not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) addFileLocked(name string, data []byte, expiresAt *time.Time) homeclip.Attachment {
	s.nextID++
	meta := homeclip.Attachment{
		ID:         fmt.Sprintf("f%d", s.nextID),
		FileName:   name,
		Size:       uint64(len(data)),
		UploadedAt: time.Now(),
		ExpiresAt:  expiresAt,
	}
	s.files = append(s.files, storedFile{meta: meta, data: append([]byte(nil), data...)})
	return meta
}

func (s *Server) attachmentsLocked() []homeclip.Attachment {
	out := make([]homeclip.Attachment, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f.meta)
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
