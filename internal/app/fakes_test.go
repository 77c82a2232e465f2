package app

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"photein/internal/config"
	"photein/internal/domain"
)

// memFS is an in-memory FileSystem. It counts every mutation.
type memFS struct {
	mu     sync.Mutex
	files  map[string]*memFile
	dirs   map[string]bool
	birth  map[string]time.Time
	writes int
}

type memFile struct {
	data    []byte
	mode    fs.FileMode
	modTime time.Time
}

func newMemFS() *memFS {
	return &memFS{
		files: map[string]*memFile{},
		dirs:  map[string]bool{"/": true},
		birth: map[string]time.Time{},
	}
}

func (m *memFS) add(p, data string, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = &memFile{data: []byte(data), mode: 0o755, modTime: modTime}
	m.mkdirLocked(path.Dir(p))
}

func (m *memFS) has(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[p]
	return ok
}

func (m *memFS) content(p string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[p]; ok {
		return string(f.data)
	}
	return ""
}

// filesUnder lists file paths below dir, sorted.
func (m *memFS) filesUnder(dir string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if strings.HasPrefix(p, dir+"/") {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (m *memFS) mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memFS) mkdirLocked(dir string) {
	for dir != "/" && dir != "." && !m.dirs[dir] {
		m.dirs[dir] = true
		dir = path.Dir(dir)
	}
}

func (m *memFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	m.mu.Lock()
	var paths []string
	isDir := map[string]bool{}
	for d := range m.dirs {
		if d == root || strings.HasPrefix(d, root+"/") {
			paths = append(paths, d)
			isDir[d] = true
		}
	}
	for p := range m.files {
		if strings.HasPrefix(p, root+"/") {
			paths = append(paths, p)
		}
	}
	m.mu.Unlock()
	sort.Strings(paths)

	var skipped []string
	for _, p := range paths {
		if skippedUnder(skipped, p) {
			continue
		}
		err := fn(p, memEntry{name: path.Base(p), dir: isDir[p]}, nil)
		if err == fs.SkipDir && isDir[p] {
			skipped = append(skipped, p)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func skippedUnder(skipped []string, p string) bool {
	for _, s := range skipped {
		if strings.HasPrefix(p, s+"/") {
			return true
		}
	}
	return false
}

func (m *memFS) ReadDir(dir string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirs[dir] {
		return nil, fs.ErrNotExist
	}
	var out []fs.DirEntry
	for p := range m.files {
		if path.Dir(p) == dir {
			out = append(out, memEntry{name: path.Base(p)})
		}
	}
	for d := range m.dirs {
		if d != dir && path.Dir(d) == dir {
			out = append(out, memEntry{name: path.Base(d), dir: true})
		}
	}
	return out, nil
}

func (m *memFS) Stat(p string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[p]; ok {
		return memInfo{name: path.Base(p), size: int64(len(f.data)), mode: f.mode, modTime: f.modTime}, nil
	}
	if m.dirs[p] {
		return memInfo{name: path.Base(p), mode: fs.ModeDir | 0o755, dir: true}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *memFS) Exists(p string) (bool, error) {
	_, err := m.Stat(p)
	return err == nil, nil
}

func (m *memFS) MkdirAll(p string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.mkdirLocked(p)
	return nil
}

func (m *memFS) CopyFile(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	f, ok := m.files[src]
	if !ok {
		return fs.ErrNotExist
	}
	if _, exists := m.files[dst]; exists {
		return fs.ErrExist
	}
	m.files[dst] = &memFile{data: append([]byte(nil), f.data...), mode: f.mode, modTime: f.modTime}
	m.mkdirLocked(path.Dir(dst))
	return nil
}

func (m *memFS) Rename(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	f, ok := m.files[src]
	if !ok {
		return fs.ErrNotExist
	}
	delete(m.files, src)
	m.files[dst] = f
	m.mkdirLocked(path.Dir(dst))
	return nil
}

func (m *memFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.files[p]; !ok {
		return fs.ErrNotExist
	}
	delete(m.files, p)
	return nil
}

func (m *memFS) Chmod(p string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	f, ok := m.files[p]
	if !ok {
		return fs.ErrNotExist
	}
	f.mode = mode
	return nil
}

func (m *memFS) Birthtime(p string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.birth[p]
	return t, ok, nil
}

// write stores an optimizer's output.
func (m *memFS) write(p, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = &memFile{data: []byte(data), mode: 0o644}
	m.mkdirLocked(path.Dir(p))
}

type memEntry struct {
	name string
	dir  bool
}

func (e memEntry) Name() string { return e.name }
func (e memEntry) IsDir() bool  { return e.dir }
func (e memEntry) Type() fs.FileMode {
	if e.dir {
		return fs.ModeDir
	}
	return 0
}
func (e memEntry) Info() (fs.FileInfo, error) { return memInfo{name: e.name, dir: e.dir}, nil }

type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	dir     bool
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() interface{}   { return nil }

type fakeReader struct {
	mu    sync.Mutex
	meta  map[string]domain.Metadata
	err   error
	calls int
}

func (r *fakeReader) ReadMetadata(ctx context.Context, p string) (domain.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return domain.Metadata{}, r.err
	}
	return r.meta[p], nil
}

type fakeImageOptimizer struct {
	fs   *memFS
	mu   sync.Mutex
	jobs []domain.ImageJob
	err  error
}

func (o *fakeImageOptimizer) OptimizeImage(ctx context.Context, job domain.ImageJob) (bool, error) {
	o.mu.Lock()
	o.jobs = append(o.jobs, job)
	o.mu.Unlock()
	if o.err != nil {
		return false, o.err
	}
	o.fs.write(job.Target, "optimized:"+job.Source)
	return true, nil
}

type fakeTranscoder struct {
	fs   *memFS
	mu   sync.Mutex
	jobs []domain.VideoJob
	err  error
}

func (t *fakeTranscoder) Transcode(ctx context.Context, job domain.VideoJob, progress func(float64)) error {
	t.mu.Lock()
	t.jobs = append(t.jobs, job)
	t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if progress != nil {
		progress(1)
	}
	t.fs.write(job.Target, "transcoded:"+job.Source)
	return nil
}

type fakeWriter struct {
	mu      sync.Mutex
	patches map[string]domain.MetadataPatch
	err     error
}

func (w *fakeWriter) RewriteMetadata(ctx context.Context, p string, patch domain.MetadataPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if w.patches == nil {
		w.patches = map[string]domain.MetadataPatch{}
	}
	w.patches[p] = patch
	return nil
}

type fakeProbe struct {
	holders map[string]int
	err     error
}

func (p fakeProbe) Holder(ctx context.Context, path string) (string, int, bool, error) {
	if p.err != nil {
		return "", 0, false, p.err
	}
	pid, ok := p.holders[path]
	return "rsync", pid, ok, nil
}

type fakePrompter struct {
	answers map[string]bool
	asked   []string
}

func (p *fakePrompter) Confirm(question string) (bool, error) {
	p.asked = append(p.asked, question)
	for file, answer := range p.answers {
		if strings.Contains(question, file) {
			return answer, nil
		}
	}
	return false, nil
}

type fakeZones map[domain.Coordinates]*time.Location

func (z fakeZones) ZoneAt(c domain.Coordinates) (*time.Location, bool) {
	loc, ok := z[c]
	return loc, ok
}

type fakeLocker struct {
	roots    []string
	released bool
	err      error
}

func (l *fakeLocker) Lock(roots []string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.roots = roots
	return func() error {
		l.released = true
		return nil
	}, nil
}

// harness wires the importer against fakes. Paths live under /src and /lib.
type harness struct {
	cfg        config.Config
	fs         *memFS
	images     *fakeReader
	videos     *fakeReader
	optimizer  *fakeImageOptimizer
	transcoder *fakeTranscoder
	writer     *fakeWriter
	zones      fakeZones
	probe      InUseProbe
	prompter   *fakePrompter
	locker     *fakeLocker

	mu       sync.Mutex
	progress []string
	ids      int
}

func newHarness(cfg config.Config) *harness {
	if cfg.SourceDir == "" {
		cfg.SourceDir = "/src"
	}
	memfs := newMemFS()
	memfs.mkdirLocked(cfg.SourceDir)
	return &harness{
		cfg:        cfg,
		fs:         memfs,
		images:     &fakeReader{meta: map[string]domain.Metadata{}},
		videos:     &fakeReader{meta: map[string]domain.Metadata{}},
		optimizer:  &fakeImageOptimizer{fs: memfs},
		transcoder: &fakeTranscoder{fs: memfs},
		writer:     &fakeWriter{},
		zones:      fakeZones{},
		prompter:   &fakePrompter{},
		locker:     &fakeLocker{},
	}
}

func (h *harness) factory() *MediaFactory {
	return &MediaFactory{
		Config:         h.cfg,
		FS:             h.fs,
		ImageReader:    h.images,
		VideoReader:    h.videos,
		ImageOptimizer: h.optimizer,
		VideoOptimizer: h.transcoder,
		Progress: func(label string, fraction float64) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.progress = append(h.progress, label)
		},
	}
}

func (h *harness) importer() *Importer {
	return &Importer{
		Config: h.cfg,
		FS:     h.fs,
		Resolver: &TimestampResolver{
			FS:      h.fs,
			Zones:   h.zones,
			LocalTZ: h.cfg.LocalTZ,
			Local:   time.UTC,
			Shift:   h.cfg.ShiftDuration(),
		},
		Planner: &Planner{
			Destinations: h.cfg.Destinations(),
			Collisions:   CollisionResolver{FS: h.fs},
		},
		Writer:     h.writer,
		InUse:      h.probe,
		Prompter:   h.prompter,
		StagingDir: "/tmp/photein",
		NewID: func() string {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.ids++
			return "id" + string(rune('0'+h.ids))
		},
	}
}

func (h *harness) batch() *Batch {
	return &Batch{
		Config:   h.cfg,
		FS:       h.fs,
		Media:    h.factory(),
		Importer: h.importer(),
		Locker:   h.locker,
	}
}

// media builds the Media for a file already added to the harness FS.
func (h *harness) media(p string) Media {
	file, err := domain.NewMediaFile(p)
	if err != nil {
		panic(err)
	}
	return h.factory().New(file)
}

func bitrate(v int64) *int64 { return &v }

func at(t time.Time) *time.Time { return &t }
