// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/notion-publish/internal/background"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello, World! 2024", "Hello-World-2024"},
		{"Test: A/B", "Test-AB"},
		{"한글 제목입니다", "한글-제목입니다"},
		{"tabs\tand   spaces", "tabs-and-spaces"},
		{"Hello\u00a0World", "Hello-World"},
		{"안녕\u3000세계", "안녕-세계"},
		{"a\vb", "a-b"},
		{"line\u2028break\ufeffbom", "line-break-bom"},
		{"mixed \u00a0\u3000 run", "mixed-run"},
		{"  padded  ", "-padded-"},
		{"C++ & Go?", "C-Go"},
		{"émoji 🚀 café", "moji-caf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestFileNameAndSlug(t *testing.T) {
	name := FileName("2024-03-01", "Test: A/B")
	assert.Equal(t, "2024-03-01-Test-AB.md", name)
	assert.Equal(t, "2024-03-01-Test-AB", Slug(name))
}

type memRecorder struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (m *memRecorder) Record(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func TestEmitWritesAndRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_posts")
	tasks := background.NewGroup(0, nil)
	rec := &memRecorder{}
	e := NewEmitter(dir, tasks, rec, nil)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	dest, err := e.Emit(context.Background(), Post{
		PageID:   "p1",
		Title:    "Post",
		FileName: "2024-03-01-Post.md",
		Content:  "---\ntitle: \"Post\"\n---\nbody",
		Images:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-01-Post.md"), dest)

	assert.Equal(t, background.Stats{Scheduled: 1}, tasks.Wait())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: \"Post\"\n---\nbody", string(data))

	require.Len(t, rec.records, 1)
	assert.Equal(t, Record{PageID: "p1", Title: "Post", Path: dest, Images: 2, ExportedAt: fixed}, rec.records[0])
}

func TestEmitOverwrites(t *testing.T) {
	dir := t.TempDir()
	tasks := background.NewGroup(0, nil)
	e := NewEmitter(dir, tasks, nil, nil)

	_, err := e.Emit(context.Background(), Post{FileName: "a.md", Content: "first version, longer"})
	require.NoError(t, err)
	tasks.Wait()
	_, err = e.Emit(context.Background(), Post{FileName: "a.md", Content: "second"})
	require.NoError(t, err)
	tasks.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestEmitRecorderFailureIsLoggedOnly(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dir := t.TempDir()
	tasks := background.NewGroup(0, nil)
	e := NewEmitter(dir, tasks, &memRecorder{err: errors.New("db locked")}, zap.New(core))

	_, err := e.Emit(context.Background(), Post{PageID: "p", FileName: "x.md", Content: "x"})
	require.NoError(t, err)
	stats := tasks.Wait()

	assert.Equal(t, 0, stats.Failed, "the file was written")
	assert.Equal(t, 1, logs.FilterMessage("recording export failed").Len())
}

func TestEmitWriteFailureIsCounted(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should go makes WriteFile fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken.md"), 0o755))

	tasks := background.NewGroup(0, nil)
	e := NewEmitter(dir, tasks, nil, nil)
	_, err := e.Emit(context.Background(), Post{FileName: "taken.md", Content: "x"})
	require.NoError(t, err, "write errors never reach the caller")
	assert.Equal(t, 1, tasks.Wait().Failed)
}

func TestEmitDirectoryError(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	e := NewEmitter(filepath.Join(blocker, "_posts"), background.NewGroup(0, nil), nil, nil)
	_, err := e.Emit(context.Background(), Post{FileName: "a.md"})
	require.Error(t, err)
}
