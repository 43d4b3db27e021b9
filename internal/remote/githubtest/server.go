// Package githubtest serves an in-memory imitation of the GitHub contents API
// for tests. Files are addressed by owner/repo and path; the version token
// of a file is the hex sha1 of its raw content.
package githubtest

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
)

type file struct {
	content []byte
	sha     string
}

// Server is a fake contents API. Create it with New and Close it when done.
type Server struct {
	*httptest.Server

	credential string

	mu       sync.Mutex
	files    map[string]file
	gets     int
	puts     int
	failures []int
	gate     chan struct{}
	signal   func()
}

// New starts a server that accepts only the given bearer credential.
func New(credential string) *Server {
	s := &Server{
		credential: credential,
		files:      make(map[string]file),
	}

	r := chi.NewRouter()
	r.Route("/repos/{owner}/{repo}/contents/{path}", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.handleGet)
		r.Put("/", s.handlePut)
	})
	s.Server = httptest.NewServer(r)
	return s
}

// SetFile replaces a file as if another client had committed it and returns its sha.
func (s *Server) SetFile(location, path string, doc domain.Document) string {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return s.SetRaw(location, path, data)
}

// SetRaw stores arbitrary bytes, which need not be a valid Document.
func (s *Server) SetRaw(location, path string, content []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := file{content: content, sha: shaOf(content)}
	s.files[key(location, path)] = f
	return f.sha
}

// File returns the decoded Document stored at location and path.
func (s *Server) File(location, path string) (domain.Document, string, bool) {
	s.mu.Lock()
	f, ok := s.files[key(location, path)]
	s.mu.Unlock()
	if !ok {
		return domain.Document{}, "", false
	}
	var doc domain.Document
	if err := json.Unmarshal(f.content, &doc); err != nil {
		return domain.Document{}, f.sha, false
	}
	return doc, f.sha, true
}

// Gets returns the number of authenticated GET requests served.
func (s *Server) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// Puts returns the number of authenticated PUT requests received.
func (s *Server) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// FailNext makes the next requests answer with the given statuses, in order.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

// Block holds every PUT until release is called. The returned channel is
// closed when the first held PUT arrives.
func (s *Server) Block() (arrived <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	ch := make(chan struct{})
	s.gate = gate
	s.signal = sync.OnceFunc(func() { close(ch) })
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(strings.TrimPrefix(auth, "Bearer "), "token ")
		if auth == "" || token != s.credential {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		if status, ok := s.nextFailure(); ok {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) nextFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return 0, false
	}
	status := s.failures[0]
	s.failures = s.failures[1:]
	return status, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.gets++
	f, ok := s.files[requestKey(r)]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"type":     "file",
		"encoding": "base64",
		"sha":      f.sha,
		"content":  wrap(base64.StdEncoding.EncodeToString(f.content), 60),
	})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.puts++
	gate := s.gate
	if gate != nil {
		s.signal()
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var body struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request"})
		return
	}
	content, err := base64.StdEncoding.DecodeString(body.Content)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "content is not valid Base64"})
		return
	}

	k := requestKey(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.files[k]
	switch {
	case exists && body.SHA == "":
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": `"sha" wasn't supplied.`})
		return
	case exists && body.SHA != current.sha, !exists && body.SHA != "":
		writeJSON(w, http.StatusConflict, map[string]string{"message": "does not match"})
		return
	}

	f := file{content: content, sha: shaOf(content)}
	s.files[k] = f
	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"content": map[string]string{"sha": f.sha, "path": chi.URLParam(r, "path")},
	})
}

func requestKey(r *http.Request) string {
	return key(chi.URLParam(r, "owner")+"/"+chi.URLParam(r, "repo"), chi.URLParam(r, "path"))
}

func key(location, path string) string {
	return location + "/" + path
}

func shaOf(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteByte('\n')
		s = s[width:]
	}
	b.WriteString(s)
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
