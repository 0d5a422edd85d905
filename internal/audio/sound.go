// Package audio loads an alarm sound from a URL or file and plays it through
// a pluggable backend.
package audio

import (
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var ErrNotLoaded = errors.New("sound not loaded")

type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Backend starts one pass of playback of a local file.
type Backend interface {
	Start(path string) (Playback, error)
}

// Playback is a running pass. Wait returns when the pass ends on its own or
// after Stop.
type Playback interface {
	Wait() error
	Stop() error
}

// Sound is a loaded audio resource.
//
// States: Unloaded -> Loaded -> Playing -> Loaded. Unload moves back to
// Unloaded and is final for this value.
type Sound struct {
	path    string
	owned   bool
	backend Backend
	log     zerolog.Logger

	mu      sync.Mutex
	state   State
	looping bool
	current Playback
	gen     int
}

func newSound(path string, owned bool, backend Backend, log zerolog.Logger) *Sound {
	return &Sound{path: path, owned: owned, backend: backend, log: log, state: StateLoaded}
}

func (s *Sound) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sound) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.looping
}

func (s *Sound) SetLooping(loop bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnloaded {
		return ErrNotLoaded
	}
	s.looping = loop
	return nil
}

// Play starts playback from the beginning. A pass already running is stopped
// first.
func (s *Sound) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnloaded {
		return ErrNotLoaded
	}
	if err := s.stopLocked(); err != nil {
		s.log.Debug().Err(err).Msg("stopping previous pass")
	}
	pb, err := s.backend.Start(s.path)
	if err != nil {
		s.state = StateLoaded
		return err
	}
	s.current = pb
	s.state = StatePlaying
	go s.watch(pb, s.gen)
	return nil
}

// watch restarts a finished pass while looping is on.
func (s *Sound) watch(pb Playback, gen int) {
	werr := pb.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.current != pb {
		return
	}
	if werr != nil {
		s.log.Debug().Err(werr).Msg("playback pass ended with error")
	}
	if !s.looping || s.state != StatePlaying {
		s.current = nil
		s.state = StateLoaded
		return
	}
	next, err := s.backend.Start(s.path)
	if err != nil {
		s.log.Warn().Err(err).Msg("restarting looped sound")
		s.current = nil
		s.state = StateLoaded
		return
	}
	s.current = next
	go s.watch(next, gen)
}

func (s *Sound) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnloaded {
		return ErrNotLoaded
	}
	err := s.stopLocked()
	s.state = StateLoaded
	return err
}

// stopLocked ends the current pass. Caller holds mu.
func (s *Sound) stopLocked() error {
	s.gen++
	if s.current == nil {
		return nil
	}
	pb := s.current
	s.current = nil
	return pb.Stop()
}

// Unload stops playback and releases the resource, removing a downloaded copy.
func (s *Sound) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnloaded {
		return nil
	}
	if err := s.stopLocked(); err != nil {
		s.log.Debug().Err(err).Msg("stopping before unload")
	}
	s.state = StateUnloaded
	s.looping = false
	if s.owned {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
