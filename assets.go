package lantern

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for dimension probing
	_ "image/jpeg" // register decoder for dimension probing
	_ "image/png"  // register decoder for dimension probing
	"path"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // register decoder for dimension probing
	_ "golang.org/x/image/webp" // register decoder for dimension probing
)

// AssetType classifies a file by extension.
type AssetType string

const (
	AssetImage   AssetType = "image"
	AssetFont    AssetType = "font"
	AssetAudio   AssetType = "audio"
	AssetUnknown AssetType = "unknown"
)

var assetTypes = map[string]AssetType{
	".png": AssetImage, ".jpg": AssetImage, ".jpeg": AssetImage,
	".gif": AssetImage, ".webp": AssetImage, ".bmp": AssetImage,
	".ttf": AssetFont, ".otf": AssetFont, ".woff": AssetFont, ".woff2": AssetFont,
	".mp3": AssetAudio, ".wav": AssetAudio, ".ogg": AssetAudio,
}

var extMIME = map[string]string{
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".bmp":   "image/bmp",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".mp3":   "audio/mpeg",
	".wav":   "audio/wav",
	".ogg":   "audio/ogg",
}

// Classify returns the asset type for p's extension, case-insensitively.
func Classify(p string) AssetType {
	if t, ok := assetTypes[strings.ToLower(path.Ext(p))]; ok {
		return t
	}
	return AssetUnknown
}

// AssetDefinition declares an asset to load.
type AssetDefinition struct {
	Name string    `yaml:"name" json:"name"`
	Path string    `yaml:"path" json:"path"`
	Type AssetType `yaml:"type,omitempty" json:"type,omitempty"`
}

// DiscoveredFile is one classified file found by ScanDirectory.
type DiscoveredFile struct {
	Filename     string    `json:"filename"`
	FullPath     string    `json:"fullPath"`
	Type         AssetType `json:"type"`
	BasePath     string    `json:"basePath"`
	RelativePath string    `json:"relativePath"`
}

// LoadedAsset is the raw result of LoadAsset. Width and Height are set only
// when HasSize is true.
type LoadedAsset struct {
	Name    string
	Path    string
	Type    AssetType
	MIME    string
	Data    []byte
	Width   int
	Height  int
	HasSize bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithScriptPath sets the path of the script that relative asset paths
// are resolved against.
func WithScriptPath(p string) LoaderOption {
	return func(l *Loader) { l.scriptPath = p }
}

// WithHTTPClient replaces the client used for URL assets.
func WithHTTPClient(c *resty.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

// Loader resolves, scans and loads assets from a FileSystem or over HTTP.
type Loader struct {
	fs         FileSystem
	scriptPath string
	client     *resty.Client
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys FileSystem, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:         fsys,
		scriptPath: "/main.js",
		client:     resty.New().SetTimeout(30 * time.Second),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetScriptPath changes the script that relative paths resolve against.
func (l *Loader) SetScriptPath(p string) {
	l.scriptPath = p
}

// Resolve maps an asset reference to a filesystem path or URL. URLs and
// absolute paths are kept; anything else is relative to the directory of
// the current script, the same rule the script uses for its own imports.
func (l *Loader) Resolve(p string) string {
	if isURL(p) {
		return p
	}
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	dir := path.Dir(l.scriptPath)
	if !strings.HasPrefix(dir, "/") {
		dir = "/" + dir
	}
	return path.Join(dir, p)
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// ScanOption configures ScanDirectory.
type ScanOption func(*scanConfig)

type scanConfig struct {
	recursive bool
	pattern   string
}

// WithRecursive controls descent into subdirectories. The default is true.
func WithRecursive(on bool) ScanOption {
	return func(c *scanConfig) { c.recursive = on }
}

// WithPattern keeps only files whose relative path matches a doublestar
// glob such as "sprites/**/*.png".
func WithPattern(pattern string) ScanOption {
	return func(c *scanConfig) { c.pattern = pattern }
}

// ScanDirectory lists the classified assets under p, sorted by relative
// path. Files of unknown type are left out.
func (l *Loader) ScanDirectory(p string, opts ...ScanOption) ([]DiscoveredFile, error) {
	if p == "" || isURL(p) {
		return nil, fmt.Errorf("%w: cannot scan %q", ErrInvalidArgument, p)
	}
	cfg := scanConfig{recursive: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pattern != "" && !doublestar.ValidatePattern(cfg.pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", ErrInvalidArgument, cfg.pattern)
	}

	base := l.Resolve(p)
	if !l.fs.Exists(base) {
		return nil, fmt.Errorf("scan %s: %w", base, ErrNotFound)
	}
	if !l.fs.IsDirectory(base) {
		return nil, fmt.Errorf("scan %s: %w", base, ErrNotDirectory)
	}

	var out []DiscoveredFile
	if err := l.scan(base, base, "", cfg, &out); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b DiscoveredFile) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	return out, nil
}

func (l *Loader) scan(base, dir, rel string, cfg scanConfig, out *[]DiscoveredFile) error {
	entries, err := l.fs.ListDirectory(dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, e := range entries {
		full := path.Join(dir, e.Name)
		relPath := path.Join(rel, e.Name)
		if e.IsDir {
			if cfg.recursive {
				if err := l.scan(base, full, relPath, cfg, out); err != nil {
					return err
				}
			}
			continue
		}
		t := Classify(e.Name)
		if t == AssetUnknown {
			continue
		}
		if cfg.pattern != "" {
			if ok, _ := doublestar.Match(cfg.pattern, relPath); !ok {
				continue
			}
		}
		*out = append(*out, DiscoveredFile{
			Filename:     e.Name,
			FullPath:     full,
			Type:         t,
			BasePath:     base,
			RelativePath: relPath,
		})
	}
	return nil
}

// LoadAsset reads def from the filesystem or, for http(s) URLs, over the
// network. The MIME type comes from the extension, the response header or
// content sniffing, in that order for files and header-first for URLs.
// Image dimensions are probed when the format is recognized.
func (l *Loader) LoadAsset(ctx context.Context, def AssetDefinition) (*LoadedAsset, error) {
	if def.Path == "" {
		return nil, fmt.Errorf("%w: asset %q has no path", ErrInvalidArgument, def.Name)
	}
	a := &LoadedAsset{Name: def.Name, Type: def.Type}
	if a.Type == "" {
		a.Type = Classify(urlPath(def.Path))
	}

	if isURL(def.Path) {
		a.Path = def.Path
		data, mime, err := l.fetch(ctx, def.Path)
		if err != nil {
			return nil, err
		}
		a.Data, a.MIME = data, mime
	} else {
		a.Path = l.Resolve(def.Path)
		if !l.fs.IsFile(a.Path) {
			return nil, fmt.Errorf("load %s: %w", a.Path, ErrNotFound)
		}
		data, err := l.fs.ReadBinaryFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", a.Path, err)
		}
		a.Data = data
	}

	if a.MIME == "" {
		a.MIME = extMIME[strings.ToLower(path.Ext(urlPath(a.Path)))]
	}
	if a.MIME == "" {
		a.MIME = mimetype.Detect(a.Data).String()
	}
	if a.Type == AssetImage {
		a.Width, a.Height, a.HasSize = probeImageSize(a.Data)
	}
	return a, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := l.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("fetch %s: %s: %w", url, resp.Status(), ErrNotFound)
	}
	mime, _, _ := strings.Cut(resp.Header().Get("Content-Type"), ";")
	mime = strings.TrimSpace(mime)
	if mime == "application/octet-stream" {
		mime = ""
	}
	Logger().Debug("asset fetched", zap.String("url", url), zap.Int("bytes", len(resp.Body())))
	return resp.Body(), mime, nil
}

// urlPath strips a query string or fragment so the extension can be read.
func urlPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}

// probeImageSize decodes only the image header. Unrecognized data yields
// ok == false.
func probeImageSize(data []byte) (w, h int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// ReadFile resolves p and reads it from the loader's filesystem.
func (l *Loader) ReadFile(p string) ([]byte, error) {
	resolved := l.Resolve(p)
	if !l.fs.IsFile(resolved) {
		return nil, fmt.Errorf("read %s: %w", resolved, ErrNotFound)
	}
	return l.fs.ReadBinaryFile(resolved)
}

// LoadManifest reads and parses a YAML asset manifest at p.
func (l *Loader) LoadManifest(p string) ([]AssetDefinition, error) {
	resolved := l.Resolve(p)
	if !l.fs.IsFile(resolved) {
		return nil, fmt.Errorf("manifest %s: %w", resolved, ErrNotFound)
	}
	data, err := l.fs.ReadBinaryFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", resolved, err)
	}
	return ParseManifest(data)
}
