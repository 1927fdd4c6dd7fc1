package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/kozakura913/TwitchLiveDiscord/internal/state"
	"github.com/kozakura913/TwitchLiveDiscord/internal/twitch"
)

// streamsAPI is the slice of the Twitch client the runner needs.
type streamsAPI interface {
	Authenticate(ctx context.Context) (twitch.Credential, error)
	GetStreamsByLogin(ctx context.Context, cred twitch.Credential, login string) (twitch.StreamList, error)
}

// notifier delivers new-broadcast announcements.
type notifier interface {
	FetchThumbnails(ctx context.Context, streams []twitch.Stream) map[string][]byte
	Send(ctx context.Context, streams []twitch.Stream, thumbs map[string][]byte) error
}

// stateStore persists the cross-run snapshot.
type stateStore interface {
	Load() (state.State, bool)
	Save(state.State) error
}

// Runner executes one complete run for a single target user.
type Runner struct {
	api      streamsAPI
	store    stateStore
	notifier notifier
	clock    clockwork.Clock
	login    string
}

// NewRunner wires a runner for the given target user login.
func NewRunner(api streamsAPI, store stateStore, n notifier, clock clockwork.Clock, login string) *Runner {
	return &Runner{
		api:      api,
		store:    store,
		notifier: n,
		clock:    clock,
		login:    login,
	}
}

// Run performs the full cycle: load state, resolve credential, query the
// live set (with at most one re-authentication on 401), announce broadcasts
// not yet seen, persist the new snapshot.
func (r *Runner) Run(ctx context.Context) error {
	start := r.clock.Now()

	st, found := r.store.Load()
	if !found {
		slog.InfoContext(ctx, "No prior state, every live broadcast counts as new")
	}

	cred, err := r.resolveCredential(ctx, &st)
	if err != nil {
		return err
	}

	fresh, err := r.api.GetStreamsByLogin(ctx, cred, r.login)
	if err != nil {
		if !twitch.IsUnauthorized(err) {
			// Anything but a 401 stays unexplained; do not guess, do not retry.
			return fmt.Errorf("query live streams: %w", err)
		}

		slog.InfoContext(ctx, "Credential rejected with 401, re-authenticating once")
		st.Auth = nil
		r.persist(st)

		cred, err = r.api.Authenticate(ctx)
		if err != nil {
			return fmt.Errorf("re-authenticate: %w", err)
		}
		st.Auth = &cred
		r.persist(st)

		fresh, err = r.api.GetStreamsByLogin(ctx, cred, r.login)
		if err != nil {
			return fmt.Errorf("query live streams after re-authentication: %w", err)
		}
	}

	newStreams := state.DiffNew(st.Lives, fresh)
	slog.InfoContext(ctx, "Live set fetched", "user", r.login, "live", len(fresh.Data), "new", len(newStreams.Data))

	if len(newStreams.Data) > 0 {
		thumbs := r.notifier.FetchThumbnails(ctx, newStreams.Data)
		if err := r.notifier.Send(ctx, newStreams.Data, thumbs); err != nil {
			// The snapshot is left untouched so the next run announces again
			// rather than dropping the broadcast.
			return fmt.Errorf("send notification: %w", err)
		}
		slog.InfoContext(ctx, "Notification sent", "broadcasts", len(newStreams.Data), "thumbnails", len(thumbs))
	}

	st.Auth = &cred
	st.Lives = &fresh
	r.persist(st)

	slog.InfoContext(ctx, "Run finished", "duration", r.clock.Since(start))
	return nil
}

// resolveCredential reuses the persisted credential when one exists;
// otherwise it authenticates and persists the result before the first query.
func (r *Runner) resolveCredential(ctx context.Context, st *state.State) (twitch.Credential, error) {
	if st.Auth != nil {
		return *st.Auth, nil
	}

	slog.InfoContext(ctx, "No stored credential, authenticating")
	cred, err := r.api.Authenticate(ctx)
	if err != nil {
		return twitch.Credential{}, fmt.Errorf("authenticate: %w", err)
	}
	st.Auth = &cred
	r.persist(*st)
	return cred, nil
}

// persist saves the snapshot and logs failures. A lost snapshot only risks a
// duplicate announcement on the next run, never the current run's result.
func (r *Runner) persist(st state.State) {
	if err := r.store.Save(st); err != nil {
		slog.Error("State save failed", "error", err)
	}
}
