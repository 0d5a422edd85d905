package audio

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePass struct {
	done chan struct{}
	once sync.Once
}

func (p *fakePass) finish() { p.once.Do(func() { close(p.done) }) }

func (p *fakePass) Wait() error {
	<-p.done
	return nil
}

func (p *fakePass) Stop() error {
	p.finish()
	return nil
}

type fakeBackend struct {
	mu     sync.Mutex
	passes []*fakePass
	paths  []string
}

func (b *fakeBackend) Start(path string) (Playback, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &fakePass{done: make(chan struct{})}
	b.passes = append(b.passes, p)
	b.paths = append(b.paths, path)
	return p, nil
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.passes)
}

func (b *fakeBackend) last() *fakePass {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.passes[len(b.passes)-1]
}

func writeSoundFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "alarm.mp3")
	require.NoError(t, os.WriteFile(p, []byte("ID3"), 0o644))
	return p
}

func TestSound_StateMachine(t *testing.T) {
	backend := &fakeBackend{}
	l := &Loader{Backend: backend, Log: zerolog.Nop()}
	path := writeSoundFile(t)

	s, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, s.State())

	require.NoError(t, s.Play())
	assert.Equal(t, StatePlaying, s.State())
	assert.Equal(t, []string{path}, backend.paths)

	require.NoError(t, s.Stop())
	assert.Equal(t, StateLoaded, s.State())

	require.NoError(t, s.Unload())
	assert.Equal(t, StateUnloaded, s.State())
	assert.ErrorIs(t, s.Play(), ErrNotLoaded)
	assert.ErrorIs(t, s.SetLooping(true), ErrNotLoaded)
	assert.ErrorIs(t, s.Stop(), ErrNotLoaded)

	// Local files are not ours to delete.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSound_PlayRestartsFromBeginning(t *testing.T) {
	backend := &fakeBackend{}
	s := newSound("x.mp3", false, backend, zerolog.Nop())

	require.NoError(t, s.Play())
	first := backend.last()
	require.NoError(t, s.Play())

	select {
	case <-first.done:
	default:
		t.Fatal("first pass still running after replay")
	}
	assert.Equal(t, 2, backend.count())
	assert.Equal(t, StatePlaying, s.State())
}

func TestSound_LoopingRestartsFinishedPass(t *testing.T) {
	backend := &fakeBackend{}
	s := newSound("x.mp3", false, backend, zerolog.Nop())
	require.NoError(t, s.SetLooping(true))
	require.NoError(t, s.Play())

	backend.last().finish()

	assert.Eventually(t, func() bool { return backend.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatePlaying, s.State())

	require.NoError(t, s.Stop())
	assert.Equal(t, StateLoaded, s.State())
}

func TestSound_NonLoopingPassEnds(t *testing.T) {
	backend := &fakeBackend{}
	s := newSound("x.mp3", false, backend, zerolog.Nop())
	require.NoError(t, s.Play())

	backend.last().finish()

	assert.Eventually(t, func() bool { return s.State() == StateLoaded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, backend.count())
}

func TestLoader_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/song.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ID3 fake mp3"))
	}))
	defer srv.Close()

	cache := t.TempDir()
	l := &Loader{Backend: &fakeBackend{}, Client: srv.Client(), CacheDir: cache, Log: zerolog.Nop()}

	s, err := l.Load(context.Background(), srv.URL+"/song.mp3")
	require.NoError(t, err)
	assert.Equal(t, ".mp3", filepath.Ext(s.path))
	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.Equal(t, "ID3 fake mp3", string(data))

	require.NoError(t, s.Unload())
	_, err = os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))

	_, err = l.Load(context.Background(), srv.URL+"/missing.mp3")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestLoader_Errors(t *testing.T) {
	l := &Loader{Backend: &fakeBackend{}, Log: zerolog.Nop()}

	_, err := l.Load(context.Background(), "  ")
	assert.Error(t, err)

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "not a regular file")
}

func TestLoader_BellSkipsFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := &Loader{Client: srv.Client(), CacheDir: t.TempDir(), Log: zerolog.Nop()}
	s, err := l.Load(context.Background(), srv.URL+"/song.mp3")
	require.NoError(t, err)
	assert.Equal(t, 0, hits)
	assert.Equal(t, StateLoaded, s.State())

	s, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, s.State())
	require.NoError(t, s.Unload())
	assert.Equal(t, StateUnloaded, s.State())

	_, err = l.Load(context.Background(), "  ")
	assert.Error(t, err)
}

func TestBell_RingsUntilStopped(t *testing.T) {
	var buf bytes.Buffer
	pb, err := Bell{Out: &buf, Interval: time.Millisecond, Length: time.Hour}.Start("")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, pb.Stop())
	require.NoError(t, pb.Wait())

	assert.NotZero(t, buf.Len())
	assert.Equal(t, bytes.Repeat([]byte("\a"), buf.Len()), buf.Bytes())
}

func TestBell_EndsAfterLength(t *testing.T) {
	var buf bytes.Buffer
	pb, err := Bell{Out: &buf, Interval: time.Hour, Length: 10 * time.Millisecond}.Start("")
	require.NoError(t, err)

	require.NoError(t, pb.Wait())
	assert.Equal(t, "\a", buf.String())
}

func TestCommand_NoArgv(t *testing.T) {
	_, err := Command{}.Start("x")
	assert.Error(t, err)
}

func TestCommand_StopKillsPlayer(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	// The file path is appended, so this runs `sleep 30`.
	pb, err := Command{Argv: []string{"sleep"}}.Start("30")
	require.NoError(t, err)

	waited := make(chan error, 1)
	go func() { waited <- pb.Wait() }()

	start := time.Now()
	require.NoError(t, pb.Stop())
	select {
	case err := <-waited:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("player still running after Stop")
	}
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.NoError(t, pb.Stop())
}

func TestCommand_WaitReportsPlayerExit(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ok, err := Command{Argv: []string{"sh", "-c", "exit 0"}}.Start("alarm.mp3")
	require.NoError(t, err)
	assert.NoError(t, ok.Wait())

	failed, err := Command{Argv: []string{"sh", "-c", "exit 3"}}.Start("alarm.mp3")
	require.NoError(t, err)
	assert.Error(t, failed.Wait())
}
