package cmd

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/symsubst/log"
	"github.com/ardnew/symsubst/symengine"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer commands print results to: kong's configured
// stdout when available, otherwise [os.Stdout].
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

type (
	mapFilesKey struct{}

	// MapFiles is an ordered, deduplicated list of substitution-map sources.
	MapFiles interface {
		IsZero() bool
		All() iter.Seq2[string, io.ReadCloser]
	}

	mapFiles struct {
		paths    []string
		hasStdin bool
	}
)

// IsZero reports whether there are no sources.
func (s *mapFiles) IsZero() bool { return len(s.paths) == 0 && !s.hasStdin }

// All opens each source in order, stdin last. Each reader is closed after the
// loop body returns. Files that fail to open yield a reader whose Read
// returns the error.
func (s *mapFiles) All() iter.Seq2[string, io.ReadCloser] {
	return func(yield func(string, io.ReadCloser) bool) {
		for _, path := range s.paths {
			var rc io.ReadCloser

			f, err := os.Open(path)
			if err != nil {
				rc = io.NopCloser(errReader{err})
			} else {
				rc = f
			}

			ok := yield(path, rc)
			rc.Close()

			if !ok {
				return
			}
		}

		if s.hasStdin {
			yield(stdinSource, io.NopCloser(os.Stdin))
		}
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithMapFiles returns a new context.Context carrying the given sources.
//
// Sources are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" are replaced with a single stdin source
// placed last.
func WithMapFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, mapFilesKey{}, buildMapFiles(sources))
}

func buildMapFiles(sources []string) MapFiles {
	if len(sources) == 0 {
		return nil
	}

	var files mapFiles

	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		path, ok := uniquePath(src, seen)
		if !ok {
			continue
		}

		files.paths = append(files.paths, path)
	}

	// Stdin may have been named explicitly, e.g. /dev/stdin.
	_, files.hasStdin = seen[stdinKey]
	if files.hasStdin {
		files.paths = removeKey(files.paths, stdinKey)
	}

	if files.IsZero() {
		return nil
	}

	return &files
}

// uniquePath resolves path and reports whether its file has not been seen.
func uniquePath(path string, seen map[fileKey]struct{}) (string, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return "", false
	}

	if _, exists := seen[key]; exists {
		return "", false
	}

	seen[key] = struct{}{}

	return resolved, true
}

func removeKey(paths []string, key fileKey) []string {
	out := paths[:0]

	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			if k, ok := makeFileKey(info); ok && k == key {
				continue
			}
		}

		out = append(out, p)
	}

	return out
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

func mapFilesFrom(ctx context.Context) MapFiles {
	r, _ := ctx.Value(mapFilesKey{}).(MapFiles)

	return r
}

// decodeMap decodes a substitution map. Files ending in .json are decoded as
// JSON and everything else as YAML, which also accepts JSON.
func decodeMap(name string, data []byte, dst *symengine.ExpressionMap[string]) error {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return json.Unmarshal(data, dst)
	}

	return yaml.Unmarshal(data, dst)
}

// readMap reads and decodes a single source, "-" meaning stdin.
func readMap(ctx context.Context, source string) (*symengine.ExpressionMap[string], error) {
	var r io.Reader = os.Stdin

	if source != stdinSource {
		f, err := os.Open(source)
		if err != nil {
			return nil, ErrReadMap.Wrap(err).With(slog.String("file", source))
		}
		defer f.Close()

		r = f
	}

	return decodeReader(ctx, source, r)
}

func decodeReader(ctx context.Context, name string, r io.Reader) (*symengine.ExpressionMap[string], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadMap.Wrap(err).With(slog.String("file", name))
	}

	m := symengine.NewExpressionMap[string](symengine.WithLogger(log.Default()))
	if err := decodeMap(name, data, m); err != nil {
		m.Close()

		return nil, ErrReadMap.Wrap(err).With(slog.String("file", name))
	}

	log.DebugContext(ctx, "loaded substitution map",
		slog.String("file", name),
		slog.Int("len", m.Len()))

	return m, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseBinding parses NAME=EXPR.
func parseBinding(s string) (string, *symengine.Expression, error) {
	name, src, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)

	if !ok || !identifier.MatchString(name) {
		return "", nil, ErrBinding.With(slog.String("binding", s))
	}

	value, err := symengine.Parse(src)
	if err != nil {
		return "", nil, ErrBinding.Wrap(err).With(slog.String("binding", s))
	}

	return name, value, nil
}

// bindings builds the session substitution map: every map file in ctx in
// order, then each NAME=EXPR in sets. Later entries replace earlier ones.
func bindings(ctx context.Context, sets []string) (*symengine.ExpressionMap[string], error) {
	m := symengine.NewExpressionMap[string](symengine.WithLogger(log.Default()))

	if files := mapFilesFrom(ctx); files != nil {
		for name, r := range files.All() {
			loaded, err := decodeReader(ctx, name, r)
			if err != nil {
				m.Close()

				return nil, err
			}

			for k, v := range loaded.All() {
				m.Insert(k, v)
			}

			loaded.Close()
		}
	}

	for _, set := range sets {
		name, value, err := parseBinding(set)
		if err != nil {
			m.Close()

			return nil, err
		}

		m.Insert(name, value)
	}

	return m, nil
}
