package risk

import (
	"errors"
	"fmt"

	"credit-risk/internal/ml"
)

// LoadState reports whether the model is usable and, when it is not,
// whether its files were absent or unreadable.
type LoadState struct {
	Loaded  bool
	Corrupt bool
	Error   string
}

// LoadState classifies the startup load result.
func (rc *Context) LoadState() LoadState {
	s := LoadState{Loaded: rc.loaded}
	if rc.loaded {
		return s
	}
	if rc.loadErr != nil {
		s.Error = rc.loadErr.Error()
		s.Corrupt = errors.Is(rc.loadErr, ml.ErrArtifactCorrupt)
	}
	return s
}

// Notice is the user-facing reason no prediction can be made, or "" when
// the model is loaded.
func (s LoadState) Notice() string {
	switch {
	case s.Loaded:
		return ""
	case s.Corrupt:
		return "Model files could not be loaded: " + s.Error
	default:
		return "Model files not found!"
	}
}

// Err wraps ErrModelUnavailable with the load failure, or returns nil when
// the model is loaded.
func (s LoadState) Err() error {
	switch {
	case s.Loaded:
		return nil
	case s.Corrupt:
		return fmt.Errorf("%w: model files could not be loaded: %s", ErrModelUnavailable, s.Error)
	case s.Error != "":
		return fmt.Errorf("%w: model files not found: %s", ErrModelUnavailable, s.Error)
	default:
		return ErrModelUnavailable
	}
}
