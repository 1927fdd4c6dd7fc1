// Package state persists the cross-run snapshot: the last credential and the
// set of broadcasts already announced.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kozakura913/TwitchLiveDiscord/internal/twitch"
)

// State is the snapshot written between runs. Lives, when present, holds
// exactly the broadcasts a prior run successfully announced; it is the
// reference set for deduplication.
type State struct {
	Auth      *twitch.Credential `json:"auth"`
	Lives     *twitch.StreamList `json:"lives"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// FileStore persists State as JSON on local disk. Writes go through a
// temporary file and rename so the snapshot is never partially written.
type FileStore struct {
	path  string
	clock clockwork.Clock
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, clock clockwork.Clock) *FileStore {
	return &FileStore{path: path, clock: clock}
}

// Load reads the state file. A missing or unreadable file is treated as
// "no prior state", never as an error.
func (s *FileStore) Load() (State, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		slog.Warn("State file unparsable, treating as no prior state", "path", s.path, "error", err)
		return State{}, false
	}
	return st, true
}

// Save overwrites the state file. The caller decides whether a failure
// matters; losing the snapshot only risks a duplicate announcement on the
// next run.
func (s *FileStore) Save(st State) error {
	st.UpdatedAt = s.clock.Now().UTC()
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// DiffNew returns the broadcasts in fresh whose ID does not appear in prev.
// A nil or empty prev filters nothing, so a first run treats every currently
// live broadcast as new.
func DiffNew(prev *twitch.StreamList, fresh twitch.StreamList) twitch.StreamList {
	if prev == nil || len(prev.Data) == 0 {
		return fresh
	}
	seen := make(map[string]struct{}, len(prev.Data))
	for _, s := range prev.Data {
		seen[s.ID] = struct{}{}
	}
	out := twitch.StreamList{Data: make([]twitch.Stream, 0, len(fresh.Data))}
	for _, s := range fresh.Data {
		if _, ok := seen[s.ID]; !ok {
			out.Data = append(out.Data, s)
		}
	}
	return out
}
