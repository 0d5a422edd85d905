package reminder

import (
	"context"
	"errors"
)

// LoadSound loads the configured alarm sound and takes ownership of it. A
// previously loaded sound is unloaded.
func (s *Scheduler) LoadSound(ctx context.Context) error {
	if s.loader == nil {
		s.alerts.Alert("Audio Error", "Failed to load alarm sound")
		return &CollaboratorError{Op: "load sound", Err: errors.New("no audio loader")}
	}
	snd, err := s.loader.Load(ctx, s.opts.SoundLocator)
	if err != nil {
		s.log.Error().Err(err).Str("locator", s.opts.SoundLocator).Msg("loading alarm sound")
		s.alerts.Alert("Audio Error", "Failed to load alarm sound")
		return &CollaboratorError{Op: "load sound", Err: err}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = snd.Unload()
		return ErrClosed
	}
	prev := s.sound
	s.sound = snd
	s.mu.Unlock()

	if prev != nil {
		if err := prev.Unload(); err != nil {
			s.log.Warn().Err(err).Msg("unloading previous alarm sound")
		}
	}
	s.log.Info().Str("locator", s.opts.SoundLocator).Msg("alarm sound loaded")
	return nil
}

// SoundLoaded reports whether an alarm sound is ready to play.
func (s *Scheduler) SoundLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sound != nil
}

// PlayAlarmSound loops the alarm sound from the start and stops it after the
// alarm ceiling. The stop callback is not tied to this playback: an earlier
// alarm's stop can cut a later one short.
func (s *Scheduler) PlayAlarmSound() error {
	s.mu.Lock()
	snd := s.sound
	s.mu.Unlock()

	if snd == nil {
		s.log.Warn().Msg("alarm fired with no sound loaded")
		s.alerts.Alert("Audio Error", "Alarm sound is not loaded")
		return &CollaboratorError{Op: "play alarm", Err: ErrSoundNotLoaded}
	}

	if err := snd.SetLooping(true); err != nil {
		return s.playFailed(err)
	}
	if err := snd.Play(); err != nil {
		return s.playFailed(err)
	}

	s.after(s.opts.AlarmCeiling, func() {
		if err := snd.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("stopping alarm sound")
		}
		if err := snd.SetLooping(false); err != nil {
			s.log.Warn().Err(err).Msg("disabling alarm loop")
		}
		s.log.Debug().Msg("alarm ceiling reached")
	})
	s.log.Info().Dur("ceiling", s.opts.AlarmCeiling).Msg("alarm playing")
	return nil
}

func (s *Scheduler) playFailed(err error) error {
	s.log.Error().Err(err).Msg("playing alarm sound")
	s.alerts.Alert("Audio Error", "Couldn't play alarm sound")
	return &CollaboratorError{Op: "play alarm", Err: err}
}
