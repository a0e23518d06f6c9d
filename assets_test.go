package lantern

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testFS(t *testing.T) FSFileSystem {
	t.Helper()
	return FSFileSystem{FS: fstest.MapFS{
		"assets/hero.png":        {Data: pngBytes(t, 3, 2)},
		"assets/theme.ogg":       {Data: []byte("OggS")},
		"assets/readme.txt":      {Data: []byte("notes")},
		"assets/fonts/title.ttf": {Data: []byte{0, 1, 0, 0}},
		"games/pong/main.js":     {Data: []byte("onTick(function(){})")},
		"games/pong/ball.png":    {Data: pngBytes(t, 8, 8)},
		"games/pong/assets.yaml": {Data: []byte("assets:\n  - name: ball\n    path: ball.png\n")},
	}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want AssetType
	}{
		{"a.png", AssetImage},
		{"A.JPG", AssetImage},
		{"x/y.webp", AssetImage},
		{"f.woff2", AssetFont},
		{"s.ogg", AssetAudio},
		{"s.mp3", AssetAudio},
		{"notes.txt", AssetUnknown},
		{"noext", AssetUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	l := NewLoader(testFS(t), WithScriptPath("/games/pong/main.js"))
	tests := []struct {
		in, want string
	}{
		{"ball.png", "/games/pong/ball.png"},
		{"./sfx/hit.wav", "/games/pong/sfx/hit.wav"},
		{"../shared/font.ttf", "/games/shared/font.ttf"},
		{"/assets/hero.png", "/assets/hero.png"},
		{"/assets//x/../hero.png", "/assets/hero.png"},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
	}
	for _, tt := range tests {
		if got := l.Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScanDirectory(t *testing.T) {
	l := NewLoader(testFS(t))
	files, err := l.ScanDirectory("/assets")
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	want := []struct {
		rel string
		typ AssetType
	}{
		{"fonts/title.ttf", AssetFont},
		{"hero.png", AssetImage},
		{"theme.ogg", AssetAudio},
	}
	if len(files) != len(want) {
		t.Fatalf("found %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, w := range want {
		f := files[i]
		if f.RelativePath != w.rel || f.Type != w.typ {
			t.Errorf("file %d = %+v, want %s (%s)", i, f, w.rel, w.typ)
		}
		if f.BasePath != "/assets" {
			t.Errorf("file %d base = %q", i, f.BasePath)
		}
	}
	if files[0].FullPath != "/assets/fonts/title.ttf" || files[0].Filename != "title.ttf" {
		t.Errorf("file 0 = %+v", files[0])
	}
}

func TestScanDirectoryOptions(t *testing.T) {
	l := NewLoader(testFS(t))

	flat, err := l.ScanDirectory("/assets", WithRecursive(false))
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 2 {
		t.Errorf("non-recursive scan found %d files, want 2", len(flat))
	}

	pngs, err := l.ScanDirectory("/assets", WithPattern("**/*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(pngs) != 1 || pngs[0].Filename != "hero.png" {
		t.Errorf("pattern scan = %+v", pngs)
	}

	if _, err := l.ScanDirectory("/assets", WithPattern("[")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad pattern err = %v, want ErrInvalidArgument", err)
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	l := NewLoader(testFS(t))
	if _, err := l.ScanDirectory("/missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing dir err = %v, want ErrNotFound", err)
	}
	if _, err := l.ScanDirectory("/assets/hero.png"); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("file scan err = %v, want ErrNotDirectory", err)
	}
	if _, err := l.ScanDirectory(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty path err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadAssetFile(t *testing.T) {
	l := NewLoader(testFS(t))
	a, err := l.LoadAsset(context.Background(), AssetDefinition{Name: "hero", Path: "/assets/hero.png"})
	if err != nil {
		t.Fatalf("LoadAsset: %v", err)
	}
	if a.Type != AssetImage || a.MIME != "image/png" {
		t.Errorf("type/mime = %s %s", a.Type, a.MIME)
	}
	if !a.HasSize || a.Width != 3 || a.Height != 2 {
		t.Errorf("size = %dx%d (%v), want 3x2", a.Width, a.Height, a.HasSize)
	}
}

func TestLoadAssetSniffsUnknownExtension(t *testing.T) {
	fsys := FSFileSystem{FS: fstest.MapFS{"blob": {Data: pngBytes(t, 1, 1)}}}
	l := NewLoader(fsys)
	a, err := l.LoadAsset(context.Background(), AssetDefinition{Name: "b", Path: "/blob"})
	if err != nil {
		t.Fatal(err)
	}
	if a.MIME != "image/png" {
		t.Errorf("MIME = %q, want image/png", a.MIME)
	}
	if a.Type != AssetUnknown || a.HasSize {
		t.Errorf("unknown type should skip the probe: %+v", a)
	}
}

func TestLoadAssetMissing(t *testing.T) {
	l := NewLoader(testFS(t))
	_, err := l.LoadAsset(context.Background(), AssetDefinition{Name: "x", Path: "/nope.png"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = l.LoadAsset(context.Background(), AssetDefinition{Name: "x"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadAssetURL(t *testing.T) {
	img := pngBytes(t, 5, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sprite.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(testFS(t))
	a, err := l.LoadAsset(context.Background(), AssetDefinition{Name: "s", Path: srv.URL + "/sprite.png?v=2"})
	if err != nil {
		t.Fatalf("LoadAsset: %v", err)
	}
	if a.Type != AssetImage || a.MIME != "image/png" {
		t.Errorf("type/mime = %s %s", a.Type, a.MIME)
	}
	if a.Width != 5 || a.Height != 4 {
		t.Errorf("size = %dx%d, want 5x4", a.Width, a.Height)
	}

	_, err = l.LoadAsset(context.Background(), AssetDefinition{Name: "m", Path: srv.URL + "/missing.png"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("404 err = %v, want ErrNotFound", err)
	}
}

func TestParseManifest(t *testing.T) {
	defs, err := ParseManifest([]byte(`
assets:
  - name: hero
    path: sprites/hero.png
  - name: theme
    path: https://example.com/theme.ogg?x=1
  - name: mystery
    path: data.bin
    type: audio
`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	want := []AssetType{AssetImage, AssetAudio, AssetAudio}
	if len(defs) != len(want) {
		t.Fatalf("defs = %d, want %d", len(defs), len(want))
	}
	for i, w := range want {
		if defs[i].Type != w {
			t.Errorf("def %d type = %q, want %q", i, defs[i].Type, w)
		}
	}
}

func TestParseManifestErrors(t *testing.T) {
	tests := map[string]string{
		"missing path": "assets:\n  - name: a\n",
		"duplicate":    "assets:\n  - {name: a, path: a.png}\n  - {name: a, path: b.png}\n",
		"bad type":     "assets:\n  - {name: a, path: a.png, type: video}\n",
		"not yaml":     "assets: [",
	}
	for name, src := range tests {
		if _, err := ParseManifest([]byte(src)); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", name, err)
		}
	}
}

func TestLoadManifestRelative(t *testing.T) {
	l := NewLoader(testFS(t), WithScriptPath("/games/pong/main.js"))
	defs, err := l.LoadManifest("assets.yaml")
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "ball" {
		t.Errorf("defs = %+v", defs)
	}
	data, err := l.ReadFile("main.js")
	if err != nil || len(data) == 0 {
		t.Errorf("ReadFile = %q, %v", data, err)
	}
}
