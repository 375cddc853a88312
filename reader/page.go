// Package reader mounts the players of one surah screen: a full-surah player, one player per verse,
// and the driver for sequential verse playback, all sharing one coordinator.
package reader

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/quran"
)

// ErrUnknownReciter is returned for reciter ids the API does not serve.
var ErrUnknownReciter = errors.New("unknown reciter")

// ElementFactory creates the media element behind each player. player.Engine satisfies it.
type ElementFactory interface {
	NewElement(id playback.ID) playback.Element
}

// Options tunes a Page. Zero values fall back to the playback defaults.
type Options struct {
	Reciter     string
	Shim        *playback.UnlockShim
	Clock       playback.Clock
	LoadTimeout time.Duration
	ReplayDelay time.Duration
	SettleDelay time.Duration

	// ReplayOnEnd applies to the full-surah player only.
	ReplayOnEnd bool

	Navigate     playback.NavigateFunc
	OnChange     func(playback.Snapshot)
	OnPlaylist   func(playback.Playlist)
	OnItemFailed func(id playback.ID, err error)
}

// OptionsFromConfig reads the player and quran settings.
func OptionsFromConfig() Options {
	return Options{
		Reciter:     viper.GetString(key.QuranReciter),
		Shim:        playback.NewUnlockShim(playback.UnlockMode(viper.GetString(key.PlayerUnlock)), runtime.GOOS),
		LoadTimeout: time.Duration(viper.GetInt(key.PlayerLoadTimeout)) * time.Second,
		ReplayDelay: time.Duration(viper.GetInt(key.PlayerReplayDelay)) * time.Second,
		SettleDelay: time.Duration(viper.GetInt(key.PlayerSettleDelay)) * time.Millisecond,
		ReplayOnEnd: viper.GetBool(key.PlayerReplayOnEnd),
	}
}

// Page is one mounted surah screen.
type Page struct {
	surah  *quran.Surah
	coord  *playback.Coordinator
	driver *playback.Driver
	full   *playback.Adapter
	verses []*playback.Adapter

	mu      sync.Mutex
	reciter string
	closed  bool
}

// Open mounts a page for s, which must already hold its verses.
func Open(s *quran.Surah, factory ElementFactory, options Options) (*Page, error) {
	if s == nil {
		return nil, errors.New("no surah to open")
	}
	if len(s.Verses) == 0 {
		return nil, fmt.Errorf("surah %d has no verses loaded", s.Number)
	}

	reciter := options.Reciter
	if quran.ReciterByID(reciter).IsAbsent() {
		log.Warnf("reader: unknown reciter %q, using %s", reciter, quran.DefaultReciter)
		reciter = quran.DefaultReciter
	}

	p := &Page{
		surah:   s,
		coord:   playback.NewCoordinator(),
		reciter: reciter,
	}

	mount := func(id playback.ID, replay bool) (*playback.Adapter, error) {
		return playback.NewAdapter(p.coord, id, factory.NewElement(id), playback.AdapterOptions{
			Source:      quran.Resolve(s, id, reciter).OrEmpty(),
			Clock:       options.Clock,
			Shim:        options.Shim,
			LoadTimeout: options.LoadTimeout,
			ReplayDelay: options.ReplayDelay,
			ReplayOnEnd: replay,
			OnChange:    options.OnChange,
		})
	}

	full, err := mount(quran.FullID, options.ReplayOnEnd)
	if err != nil {
		return nil, err
	}
	p.full = full

	for _, id := range quran.VerseIDs(len(s.Verses)) {
		a, err := mount(id, false)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.verses = append(p.verses, a)
	}

	p.driver = playback.NewDriver(p.coord, playback.DriverOptions{
		Clock:        options.Clock,
		SettleDelay:  options.SettleDelay,
		Navigate:     options.Navigate,
		OnChange:     options.OnPlaylist,
		OnItemFailed: options.OnItemFailed,
	})

	log.Infof("reader: opened surah %d (%s) with %d verses, reciter %s", s.Number, s.NameLatin, len(s.Verses), reciter)
	return p, nil
}

// Surah returns the surah this page shows.
func (p *Page) Surah() *quran.Surah {
	return p.surah
}

// Reciter returns the id of the reciter sources are resolved for.
func (p *Page) Reciter() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reciter
}

// Full returns the full-surah player.
func (p *Page) Full() *playback.Adapter {
	return p.full
}

// Verse returns the player of verse n, counting from 1.
func (p *Page) Verse(n int) mo.Option[*playback.Adapter] {
	if n < 1 || n > len(p.verses) {
		return mo.None[*playback.Adapter]()
	}
	return mo.Some(p.verses[n-1])
}

// Adapter finds a player by id.
func (p *Page) Adapter(id playback.ID) mo.Option[*playback.Adapter] {
	if id == quran.FullID {
		return mo.Some(p.full)
	}
	if n, ok := quran.VerseNumber(id); ok {
		return p.Verse(n)
	}
	return mo.None[*playback.Adapter]()
}

// Holder returns the id of the player currently allowed to be audible.
func (p *Page) Holder() playback.ID {
	return p.coord.Current()
}

// Watch calls fn with every ended or failed item until the returned cancel is called.
func (p *Page) Watch(fn func(playback.Event)) (cancel func()) {
	return p.coord.Watch(fn)
}

// Play starts the player with the given id.
func (p *Page) Play(ctx context.Context, id playback.ID) error {
	a, ok := p.Adapter(id).Get()
	if !ok {
		return fmt.Errorf("%w: no player %s", playback.ErrNoSource, id)
	}
	return a.Play(ctx)
}

// Toggle presses the play button of the player with the given id.
func (p *Page) Toggle(ctx context.Context, id playback.ID) error {
	a, ok := p.Adapter(id).Get()
	if !ok {
		return fmt.Errorf("%w: no player %s", playback.ErrNoSource, id)
	}
	return a.Toggle(ctx)
}

// StartSequential plays verses from..end one after another.
func (p *Page) StartSequential(ctx context.Context, from int) error {
	from = max(from, 1)
	if from > len(p.verses) {
		return playback.ErrEmptyPlaylist
	}
	return p.driver.Start(ctx, quran.VerseIDs(len(p.verses))[from-1:])
}

// StartSelection plays the given verses one after another, in the given order.
// Numbers outside the surah are dropped.
func (p *Page) StartSelection(ctx context.Context, numbers []int) error {
	ids := lo.FilterMap(numbers, func(n int, _ int) (playback.ID, bool) {
		return quran.VerseID(n), n >= 1 && n <= len(p.verses)
	})
	return p.driver.Start(ctx, ids)
}

// Sequential returns the state of sequential playback.
func (p *Page) Sequential() playback.Playlist {
	return p.driver.Playlist()
}

// Stop ends sequential playback and silences whatever is playing.
func (p *Page) Stop() {
	p.driver.Stop()

	holder, ok := p.Adapter(p.coord.Current()).Get()
	if !ok {
		return
	}
	if s := holder.Status(); s == playback.StatusPlaying || s == playback.StatusLoading {
		_ = holder.Toggle(context.Background())
	}
}

// SetReciter re-resolves every player's source for reciter.
// With resume, the player that was audible restarts from zero on its new source.
func (p *Page) SetReciter(ctx context.Context, reciter string, resume bool) error {
	if quran.ReciterByID(reciter).IsAbsent() {
		return fmt.Errorf("%w: %q", ErrUnknownReciter, reciter)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return playback.ErrClosed
	}
	if p.reciter == reciter {
		p.mu.Unlock()
		return nil
	}
	p.reciter = reciter
	p.mu.Unlock()

	log.Infof("reader: switching surah %d to reciter %s", p.surah.Number, reciter)

	if !resume {
		p.driver.Stop()
	}

	holder := p.coord.Current()
	var audible *playback.Adapter
	for _, a := range p.all() {
		if a.ID() == holder {
			audible = a
			continue
		}
		if err := a.SetSource(ctx, quran.Resolve(p.surah, a.ID(), reciter).OrEmpty(), false); err != nil {
			return err
		}
	}

	if audible == nil {
		return nil
	}
	return audible.SetSource(ctx, quran.Resolve(p.surah, audible.ID(), reciter).OrEmpty(), resume)
}

// Snapshots returns the state of every player, full surah first.
func (p *Page) Snapshots() []playback.Snapshot {
	return lo.Map(p.all(), func(a *playback.Adapter, _ int) playback.Snapshot {
		return a.Snapshot()
	})
}

// Close stops sequential playback and destroys every player.
func (p *Page) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.driver != nil {
		p.driver.Close()
	}

	var errs []error
	for _, a := range p.all() {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", a.ID(), err))
		}
	}

	log.Infof("reader: closed surah %d", p.surah.Number)
	return errors.Join(errs...)
}

func (p *Page) all() []*playback.Adapter {
	if p.full == nil {
		return p.verses
	}
	return append([]*playback.Adapter{p.full}, p.verses...)
}
