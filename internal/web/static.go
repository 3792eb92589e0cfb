package web

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/marga/uploader-devserver/internal/logging"
)

// StaticHandler serves files under BaseDir. It never follows a path or
// symlink that leads outside BaseDir.
type StaticHandler struct {
	BaseDir    string
	DirListing bool
	Logger     logging.Logger

	realBase string
}

func NewStaticHandler(baseDir string, dirListing bool, logger logging.Logger) *StaticHandler {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	realBase := baseDir
	if resolved, err := filepath.EvalSymlinks(baseDir); err == nil {
		realBase = resolved
	}
	return &StaticHandler{BaseDir: baseDir, DirListing: dirListing, Logger: logger, realBase: realBase}
}

func (s *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		writeStatus(w, http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	fullPath, err := s.resolve(urlPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("stat %s: %w", urlPath, ErrNotFound))
		return
	}

	if info.IsDir() {
		s.serveDir(w, r, fullPath)
		return
	}
	if !info.Mode().IsRegular() || strings.HasSuffix(urlPath, "/") {
		s.writeError(w, r, fmt.Errorf("%s: %w", urlPath, ErrNotFound))
		return
	}
	s.serveFile(w, r, fullPath, info)
}

// resolve maps a decoded URL path to a filesystem path under BaseDir.
func (s *StaticHandler) resolve(urlPath string) (string, error) {
	if strings.ContainsAny(urlPath, "\x00\\") {
		return "", ErrBadPath
	}
	if escapesRoot(urlPath) {
		return "", ErrForbiddenPath
	}

	cleaned := path.Clean("/" + urlPath)
	fullPath := filepath.Join(s.BaseDir, filepath.FromSlash(cleaned))

	resolved, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		// Missing files are reported by the caller's Stat.
		if errors.Is(err, fs.ErrNotExist) {
			return fullPath, nil
		}
		return "", fmt.Errorf("resolve %s: %w", urlPath, ErrNotFound)
	}
	if !within(s.realBase, resolved) {
		return "", ErrForbiddenPath
	}
	return resolved, nil
}

// escapesRoot reports whether the ".." segments of p climb above "/".
func escapesRoot(p string) bool {
	depth := 0
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}

func within(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *StaticHandler) serveDir(w http.ResponseWriter, r *http.Request, dir string) {
	if !strings.HasSuffix(r.URL.Path, "/") {
		target := path.Base(r.URL.Path) + "/"
		if q := r.URL.RawQuery; q != "" {
			target += "?" + q
		}
		w.Header().Set("Location", target)
		w.WriteHeader(http.StatusMovedPermanently)
		return
	}

	index := filepath.Join(dir, "index.html")
	if resolved, err := filepath.EvalSymlinks(index); err == nil && within(s.realBase, resolved) {
		if info, err := os.Stat(resolved); err == nil && info.Mode().IsRegular() {
			s.serveFile(w, r, resolved, info)
			return
		}
	}

	if !s.DirListing {
		s.writeError(w, r, fmt.Errorf("%s: %w", r.URL.Path, ErrDirListingDisabled))
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("read dir %s: %w", r.URL.Path, ErrNotFound))
		return
	}
	writeDirListing(w, r.URL.Path, entries)
}

func (s *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string, info os.FileInfo) {
	f, err := os.Open(name)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("open %s: %w", r.URL.Path, ErrNotFound))
		return
	}
	defer func() { _ = f.Close() }()

	s.serveContent(w, r, name, info.ModTime(), f)
}

// serveContent streams content with ServeContent. A read failure after the
// headers are out truncates the body; it is logged with the request ID.
func (s *StaticHandler) serveContent(w http.ResponseWriter, r *http.Request, name string, modtime time.Time, content io.ReadSeeker) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", contentTypeFor(name))
	}

	body := &readErrorRecorder{ReadSeeker: content}
	http.ServeContent(w, r, filepath.Base(name), modtime, body)
	if body.err != nil {
		s.Logger.Errorf("static", "request %s: reading %s failed mid-response: %v",
			RequestIDFromContext(r.Context()), r.URL.Path, body.err)
	}
}

func (s *StaticHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	s.Logger.Debugf("static", "request %s: %s %s: %v", RequestIDFromContext(r.Context()), r.Method, r.URL.Path, err)
	writeStatus(w, status)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrBadPath):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbiddenPath), errors.Is(err, ErrDirListingDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeStatus(w http.ResponseWriter, status int) {
	http.Error(w, fmt.Sprintf("%d %s", status, http.StatusText(status)), status)
}

// readErrorRecorder keeps the first non-EOF read error so it can be logged
// after ServeContent, which swallows copy errors.
type readErrorRecorder struct {
	io.ReadSeeker
	err error
}

func (r *readErrorRecorder) Read(p []byte) (int, error) {
	n, err := r.ReadSeeker.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}
