/*
Package controller drives one autocomplete session across provider passes.

Providers report batches asynchronously; the caller feeds each completed
batch to Update on the session's goroutine. Every batch rebuilds the result
(append, transfer, sort and cull) and marks a notification pending. Pending
notifications are delivered by Flush once NotifyDelay has elapsed, or at
once when every provider is done. Stop discards whatever is still pending.
*/
package controller

import (
	"time"

	"github.com/bastiangx/rankserve/internal/logger"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/bastiangx/rankserve/pkg/result"
	"github.com/charmbracelet/log"
)

// Batch is one provider's complete current output for the session input.
type Batch struct {
	Provider match.ProviderID
	Matches  []match.Match
	Done     bool
}

// Update is a delivered notification.
type Update struct {
	Result *result.Result
	// DefaultChanged is set when the default match differs from the last delivered one.
	DefaultChanged bool
	// Done is set when every provider of the session has finished.
	Done bool
	Pass int
}

type providerState struct {
	matches []match.Match
	done    bool
}

// Controller owns the Result of one session. It is not safe for concurrent use.
type Controller struct {
	opts        result.Options
	engines     *match.SearchEngines
	groups      map[match.GroupID]result.GroupConfig
	notifyDelay time.Duration
	now         func() time.Time
	log         *log.Logger

	input     match.Input
	order     []match.ProviderID
	providers map[match.ProviderID]*providerState

	current   *result.Result
	published *result.Result
	// preserveText is the input text the current default was computed for,
	// meaningful only while preserveValid is set.
	preserveText  string
	preserveValid bool

	pending      bool
	pendingSince time.Time
	stopped      bool
	pass         int
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifyDelay holds notifications until d has passed since the first undelivered pass.
func WithNotifyDelay(d time.Duration) Option {
	return func(c *Controller) { c.notifyDelay = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithGroups registers suggestion group metadata for every result.
func WithGroups(groups map[match.GroupID]result.GroupConfig) Option {
	return func(c *Controller) { c.groups = groups }
}

// WithLogger replaces the default prefixed logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a stopped controller with an empty result.
func New(opts result.Options, engines *match.SearchEngines, options ...Option) *Controller {
	c := &Controller{
		opts:      opts,
		engines:   engines,
		now:       time.Now,
		providers: make(map[match.ProviderID]*providerState),
		current:   result.New(opts),
		published: result.New(opts),
		stopped:   true,
	}
	for _, o := range options {
		o(c)
	}
	if c.log == nil {
		c.log = logger.New("controller")
	}
	return c
}

// Start begins a pass sequence for in with the given providers. The previous
// result is kept so its matches can be transferred, unless clear is set.
func (c *Controller) Start(in match.Input, clear bool, providers ...match.ProviderID) {
	if clear {
		c.current = result.New(c.opts)
		c.published = result.New(c.opts)
	}
	c.input = in
	c.order = append(c.order[:0], providers...)
	c.providers = make(map[match.ProviderID]*providerState, len(providers))
	for _, id := range providers {
		c.providers[id] = &providerState{}
	}
	c.pending = false
	c.stopped = false
	c.pass = 0
	c.log.Debug("Session started", "text", in.Text, "page", in.Page, "providers", len(providers))
}

// Input returns the input of the running session.
func (c *Controller) Input() match.Input { return c.input }

// Done reports whether provider id has finished. Unknown providers are done.
func (c *Controller) Done(id match.ProviderID) bool {
	p, ok := c.providers[id]
	return !ok || p.done
}

// AllDone reports whether every provider of the session has finished.
func (c *Controller) AllDone() bool {
	for _, p := range c.providers {
		if !p.done {
			return false
		}
	}
	return true
}

// Update applies one provider batch and recomputes the result. It returns
// the notification when it is due immediately. Batches arriving after Stop
// or from providers that were not started are ignored.
func (c *Controller) Update(b Batch) (*Update, bool) {
	if c.stopped {
		c.log.Debug("Ignoring batch after stop", "provider", b.Provider)
		return nil, false
	}
	p, ok := c.providers[b.Provider]
	if !ok {
		c.log.Warn("Ignoring batch from unknown provider", "provider", b.Provider)
		return nil, false
	}
	p.matches = b.Matches
	p.done = p.done || b.Done
	c.pass++
	c.recompute()

	if !c.pending {
		c.pending = true
		c.pendingSince = c.now()
	}
	return c.Flush()
}

func (c *Controller) recompute() {
	next := result.New(c.opts)
	next.MergeSuggestionGroups(c.groups)
	for _, id := range c.order {
		next.AppendMatches(c.providers[id].matches)
	}

	var preserve *match.Match
	if c.preserveValid && c.preserveText == c.input.Text {
		if d := c.current.DefaultMatch(); d != nil {
			kept := d.Clone()
			preserve = &kept
		}
	}

	next.TransferOldMatches(c.input, c.current, c)
	next.SortAndCull(c.input, c.engines, preserve)
	c.current = next
	c.preserveText, c.preserveValid = c.input.Text, true
	c.log.Debug("Pass ranked", "pass", c.pass, "matches", next.Size(), "copied", next.HasCopiedMatches())
}

// Flush delivers the pending notification if it is due.
func (c *Controller) Flush() (*Update, bool) {
	if !c.pending {
		return nil, false
	}
	done := c.AllDone()
	if !done && c.now().Sub(c.pendingSince) < c.notifyDelay {
		return nil, false
	}
	u := &Update{
		Result:         c.current.Clone(),
		DefaultChanged: defaultChanged(c.published.DefaultMatch(), c.current.DefaultMatch()),
		Done:           done,
		Pass:           c.pass,
	}
	c.published = u.Result.Clone()
	c.pending = false
	return u, true
}

// Pending reports whether a computed result has not been delivered yet.
func (c *Controller) Pending() bool { return c.pending }

// Stop ends the session. With clear the result is emptied and no
// notification follows. Without clear the delivered result stays visible and
// any newer undelivered result is discarded.
func (c *Controller) Stop(clear bool) {
	c.stopped = true
	c.pending = false
	for _, p := range c.providers {
		p.done = true
	}
	if clear {
		c.current = result.New(c.opts)
		c.published = result.New(c.opts)
		c.preserveValid = false
	}
	c.log.Debug("Session stopped", "clear", clear)
}

// Result returns the last delivered result.
func (c *Controller) Result() *result.Result { return c.published }

// Latest returns the most recently computed result, delivered or not.
func (c *Controller) Latest() *result.Result { return c.current }

// SetOptions swaps the ranking policy for passes computed from now on.
func (c *Controller) SetOptions(opts result.Options) { c.opts = opts }

func defaultChanged(before, after *match.Match) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	}
	return before.StrippedDestination != after.StrippedDestination || before.FillIntoEdit != after.FillIntoEdit
}
