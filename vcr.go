package vcr

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/getvcr/vcr/cassette"
)

// VCR is the controller. It owns the configuration, the single active
// cassette, and the interceptor registration.
//
// Construct one per process, or one per test for isolation; the controller
// is handed to call sites explicitly rather than living in a package global.
// Calling any cassette operation before Configure panics, since that is a
// test-setup bug rather than a runtime condition.
//
// All controller state is guarded by a single lock. No network I/O happens
// while it is held (cassette file reads and writes during insert and eject
// do); the active cassette has its own lock so a slow delegated request
// never blocks lookups for other in-flight requests.
type VCR struct {
	mu         sync.Mutex
	cfg        Config
	configured bool
	enabled    bool
	registered bool
	cas        *cassette.Cassette
	sessionID  string
	transport  *Transport
}

// New returns an unconfigured controller. Configure must be called before
// any cassette operation.
func New() *VCR { return &VCR{} }

// Configure replaces the controller configuration. If a cassette is active
// it is first ejected, and therefore persisted, under the old configuration's
// storage location; a failed eject aborts the reconfiguration. The controller
// lock is held for the whole call, so Configure never interleaves with a
// concurrent Insert or Eject. The interceptor is registered on the first call
// and kept across reconfigurations.
func (v *VCR) Configure(cfg Config) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.configured {
		if err := v.ejectLocked(); err != nil {
			return err
		}
	}
	v.cfg = cfg.withDefaults()
	v.configured = true
	if !v.registered {
		v.transport = &Transport{v: v}
		v.registered = true
	}
	return nil
}

// Enable turns interception on.
func (v *VCR) Enable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = true
}

// Disable turns interception off. All requests pass straight to the real
// transport untouched.
func (v *VCR) Disable() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = false
}

// An InsertOption overrides a cassette property on insertion.
type InsertOption func(*insertOptions)

type insertOptions struct {
	mode    cassette.Mode
	matcher cassette.Matcher
}

// WithMode sets the record mode for the inserted cassette, overriding both
// the configured default and, for a loaded cassette, the persisted mode.
func WithMode(m cassette.Mode) InsertOption {
	return func(o *insertOptions) { o.mode = m }
}

// WithMatcher sets the matcher strategy for the inserted cassette. See
// WithMode for precedence.
func WithMatcher(m cassette.Matcher) InsertOption {
	return func(o *insertOptions) { o.matcher = m }
}

// Insert makes the named cassette active and enables interception. If a
// persisted cassette of that name exists it is loaded and keeps its persisted
// mode and matcher unless overridden; otherwise a fresh empty cassette is
// created from the supplied options or the configured defaults.
//
// Returns ErrCassetteAlreadyInserted while another cassette is active.
func (v *VCR) Insert(name string, opts ...InsertOption) error {
	var o insertOptions
	for _, opt := range opts {
		opt(&o)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustBeConfiguredLocked("Insert")
	if v.cas != nil {
		return ErrCassetteAlreadyInserted
	}

	cas, err := cassette.Load(cassette.FilePath(v.cfg.CassetteLibraryDir, name))
	if err != nil {
		// Missing or unreadable cassettes start a fresh session.
		mode := v.cfg.DefaultRecordMode
		if o.mode != "" {
			mode = o.mode
		}
		matcher := v.cfg.DefaultMatcher
		if o.matcher != nil {
			matcher = o.matcher
		}
		cas = cassette.New(name, mode, matcher)
	} else {
		if o.mode != "" {
			cas.SetMode(o.mode)
		}
		if o.matcher != nil {
			cas.SetMatcher(o.matcher)
		}
	}

	v.cas = cas
	v.sessionID = uuid.NewString()
	v.enabled = true
	v.cfg.Logger.Debug("cassette inserted",
		"cassette", name,
		"mode", string(cas.Mode()),
		"matcher", cas.Matcher().Identity(),
		"interactions", cas.Len(),
		"session", v.sessionID)
	return nil
}

// Eject persists the active cassette to the library directory and clears the
// active slot. It is a no-op if no cassette is active. The cassette file is
// written only here, so everything recorded during the session lands in a
// single write. A failed save keeps the cassette active, so nothing recorded
// is lost and the eject can be retried.
func (v *VCR) Eject() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustBeConfiguredLocked("Eject")
	return v.ejectLocked()
}

// ejectLocked persists and clears the active cassette. The slot is cleared
// only after the save succeeded. Called with v.mu held.
func (v *VCR) ejectLocked() error {
	cas := v.cas
	if cas == nil {
		return nil
	}
	if err := cas.Save(cassette.FilePath(v.cfg.CassetteLibraryDir, cas.Name())); err != nil {
		return fmt.Errorf("eject cassette %s: %w", cas.Name(), err)
	}
	v.cfg.Logger.Debug("cassette ejected",
		"cassette", cas.Name(),
		"interactions", cas.Len(),
		"session", v.sessionID)
	v.cas = nil
	v.sessionID = ""
	return nil
}

// WithCassette inserts the named cassette, runs fn, and ejects on every exit
// path, panics included. The error from fn is propagated unchanged; an eject
// failure is only returned when fn itself succeeded.
func (v *VCR) WithCassette(name string, fn func() error, opts ...InsertOption) (err error) {
	if err := v.Insert(name, opts...); err != nil {
		return err
	}
	defer func() {
		eerr := v.Eject()
		switch {
		case err == nil:
			err = eerr
		case eerr != nil:
			v.logger().Error("eject failed after cassette body error",
				"cassette", name, "error", eerr)
		}
	}()
	return fn()
}

// Transport returns the intercepting round tripper. Point any HTTP client at
// it; requests are replayed, delegated or rejected according to the active
// cassette.
func (v *VCR) Transport() http.RoundTripper {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mustBeConfiguredLocked("Transport")
	return v.transport
}

// Client returns an http.Client using the intercepting transport.
func (v *VCR) Client() *http.Client {
	return &http.Client{Transport: v.Transport()}
}

// Cassette returns the active cassette, or nil if none is inserted.
func (v *VCR) Cassette() *cassette.Cassette {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cas
}

// intercept snapshots the state the transport needs for one request.
func (v *VCR) intercept() (enabled bool, cas *cassette.Cassette, cfg Config, sid string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled && v.configured, v.cas, v.cfg, v.sessionID
}

// real returns the transport used for delegated network calls.
func (v *VCR) real() http.RoundTripper {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cfg.RealTransport != nil {
		return v.cfg.RealTransport
	}
	return http.DefaultTransport
}

func (v *VCR) logger() *slog.Logger {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg.Logger
}

func (v *VCR) mustBeConfiguredLocked(op string) {
	if !v.configured {
		panic("vcr: " + op + " called before Configure")
	}
}
