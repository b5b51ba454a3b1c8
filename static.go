package weft

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// staticRelPath maps a request path to a relative file path inside the
// static directory. It rejects traversal and absolute-path tricks
// outright instead of cleaning them, so serving can never escape the
// configured directory.
func (a *App) staticRelPath(urlPath string) (string, bool) {
	if a.config.Static.Dir == "" {
		return "", false
	}

	prefix := a.config.Static.Prefix
	var rel string
	if prefix == "/" {
		rel = strings.TrimPrefix(urlPath, "/")
	} else {
		if !strings.HasPrefix(urlPath, prefix) {
			return "", false
		}
		rel = strings.TrimPrefix(urlPath, prefix)
	}
	if rel == "" {
		return "", false
	}

	// NUL can arrive via %00; backslashes are platform separators.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}

	// A leading "/" after prefix stripping means an absolute-path
	// attempt, e.g. "/static//etc/passwd".
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Refuse dot segments before cleaning; cleaning them away would
	// change the meaning of the request.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// hasStaticFile reports whether rel names a regular file under the
// static directory.
func (a *App) hasStaticFile(rel string) bool {
	f, err := http.Dir(a.config.Static.Dir).Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func (a *App) serveStatic(w http.ResponseWriter, r *http.Request, rel string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := http.Dir(a.config.Static.Dir).Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if a.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
	}
	http.ServeContent(w, r, rel, info.ModTime(), f)
}
