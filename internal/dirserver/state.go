package dirserver

import (
	"github.com/edgefn/roadbook/internal/config"
	"github.com/edgefn/roadbook/internal/dataset"
	"github.com/edgefn/roadbook/pkg/directions"
)

// State carries the shared server dependencies handed to every handler.
type State struct {
	Cfg     *config.Config
	Client  *directions.Client
	Watcher *dataset.Watcher
}

// Close releases the client dispatcher and the dataset watcher.
func (s *State) Close() {
	if s.Client != nil {
		s.Client.Close()
	}
	if s.Watcher != nil {
		_ = s.Watcher.Close()
	}
}
