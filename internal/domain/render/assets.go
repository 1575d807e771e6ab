package render

import (
	"context"
	"encoding/base64"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/okian/vitrine/pkg/logger"
)

// maxLogoBytes skips files too large to inline.
const maxLogoBytes = 512 << 10

// Assets resolves logos from a directory tree and links for technologies.
// A nil *Assets resolves nothing and links nothing.
type Assets struct {
	fsys  fs.FS
	links map[string]string
	log   logger.Logger

	mu    sync.RWMutex
	cache map[string]template.URL // "" marks a known miss
}

// AssetsOption configures Assets.
type AssetsOption func(*Assets)

// WithAssetsLogger sets the logger used for unreadable logo files.
func WithAssetsLogger(l logger.Logger) AssetsOption {
	return func(a *Assets) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAssets builds an asset resolver. fsys may be nil when no logos exist;
// links keys are matched against lowercased technology names.
func NewAssets(fsys fs.FS, links map[string]string, opts ...AssetsOption) *Assets {
	a := &Assets{
		fsys:  fsys,
		links: make(map[string]string, len(links)),
		log:   logger.Nop(),
		cache: make(map[string]template.URL),
	}
	for k, v := range links {
		a.links[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Slug lowercases name and replaces space, '-', '/' and '.' with '_'.
func Slug(name string) string {
	return strings.NewReplacer(" ", "_", "-", "_", "/", "_", ".", "_").Replace(strings.ToLower(strings.TrimSpace(name)))
}

// TechLogoPaths lists the candidate files for a technology logo, in lookup order.
func TechLogoPaths(name string) []string {
	s := Slug(name)
	return []string{
		"technologies/" + s + ".png",
		"technologies/" + s + ".svg",
		s + ".png",
		s + ".svg",
	}
}

// OrgLogoPaths lists the candidate files for a client, issuer or school
// logo. The configured path, when set, is tried first.
func OrgLogoPaths(configured, org string) []string {
	var out []string
	if configured != "" {
		out = append(out, configured)
		// Data files often carry the logos directory name as a prefix.
		if trimmed := strings.TrimPrefix(configured, "logos/"); trimmed != configured {
			out = append(out, trimmed)
		}
	}
	if s := Slug(org); s != "" {
		out = append(out, "clients/"+s+".png", "clients/"+s+".svg")
	}
	return out
}

// TechLink returns the URL for a technology, or "".
func (a *Assets) TechLink(name string) string {
	if a == nil {
		return ""
	}
	return a.links[strings.ToLower(strings.TrimSpace(name))]
}

// TechLogo resolves a technology logo as a data URI.
func (a *Assets) TechLogo(name string) (template.URL, bool) {
	return a.first(TechLogoPaths(name))
}

// OrgLogo resolves an organisation logo as a data URI.
func (a *Assets) OrgLogo(configured, org string) (template.URL, bool) {
	return a.first(OrgLogoPaths(configured, org))
}

func (a *Assets) first(paths []string) (template.URL, bool) {
	if a == nil || a.fsys == nil {
		return "", false
	}
	for _, p := range paths {
		if uri, ok := a.DataURI(p); ok {
			return uri, true
		}
	}
	return "", false
}

// DataURI inlines the file at p. Results, including misses, are cached.
func (a *Assets) DataURI(p string) (template.URL, bool) {
	if a == nil || a.fsys == nil {
		return "", false
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if !fs.ValidPath(p) || p == "." {
		return "", false
	}

	a.mu.RLock()
	uri, seen := a.cache[p]
	a.mu.RUnlock()
	if seen {
		return uri, uri != ""
	}

	uri = a.load(p)
	a.mu.Lock()
	a.cache[p] = uri
	a.mu.Unlock()
	return uri, uri != ""
}

func (a *Assets) load(p string) template.URL {
	info, err := fs.Stat(a.fsys, p)
	if err != nil || info.IsDir() {
		return ""
	}
	if info.Size() > maxLogoBytes {
		a.log.Warn(context.Background(), "logo too large to inline", logger.String("path", p), logger.Int("bytes", int(info.Size())))
		return ""
	}
	data, err := fs.ReadFile(a.fsys, p)
	if err != nil {
		a.log.Warn(context.Background(), "logo unreadable", logger.String("path", p), logger.Error(err))
		return ""
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		a.log.Warn(context.Background(), "logo is not an image", logger.String("path", p), logger.String("mime", mime.String()))
		return ""
	}
	// Drop parameters such as "; charset=utf-8" from the media type.
	media, _, _ := strings.Cut(mime.String(), ";")
	// #nosec G203 -- data URI built from a local file with a detected image type
	return template.URL("data:" + media + ";base64," + base64.StdEncoding.EncodeToString(data))
}
