package audio

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Command plays a file by running an external player with the file path
// appended, e.g. ["ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"].
type Command struct {
	Argv []string
}

func (c Command) Start(path string) (Playback, error) {
	if len(c.Argv) == 0 {
		return nil, errors.New("no player command configured")
	}
	args := append(append([]string(nil), c.Argv[1:]...), path)
	cmd := exec.Command(c.Argv[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	err     error
	stopped bool
	mu      sync.Mutex
}

func (p *process) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return nil
	}
	return p.err
}

func (p *process) Stop() error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	<-p.done
	return nil
}

// Bell is the fallback backend: it rings the terminal bell every Interval
// for Length, ignoring the file contents.
type Bell struct {
	Out      io.Writer
	Interval time.Duration
	Length   time.Duration
}

func (b Bell) Start(string) (Playback, error) {
	out := b.Out
	if out == nil {
		out = os.Stderr
	}
	interval := b.Interval
	if interval <= 0 {
		interval = time.Second
	}
	length := b.Length
	if length <= 0 {
		length = 5 * time.Second
	}

	p := &bell{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		end := time.NewTimer(length)
		defer end.Stop()
		for {
			if _, err := io.WriteString(out, "\a"); err != nil {
				p.err = err
				return
			}
			select {
			case <-p.stop:
				return
			case <-end.C:
				return
			case <-ticker.C:
			}
		}
	}()
	return p, nil
}

type bell struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	err      error
}

func (b *bell) Wait() error {
	<-b.done
	return b.err
}

func (b *bell) Stop() error {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
	return nil
}
