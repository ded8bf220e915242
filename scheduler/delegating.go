// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"time"

	"github.com/joeycumines/logiface"
)

// Looper is an externally-owned message queue, with its own view of time,
// that a [Delegating] adapter drives. See the looper package for the
// implementation used by the environment package.
type Looper interface {
	Now() time.Duration
	Post(r Runnable, delay time.Duration) error
	PostAtFrontOfQueue(r Runnable) error
	RemoveMessages(r Runnable) bool
	Pause()
	Unpause() error
	IsPaused() bool
	RunOneTask() bool
	RunToNextTask() bool
	RunToEndOfTasks()
	Idle()
	IdleFor(d time.Duration) error
	IsIdle() bool
	NextScheduledTaskTime() (time.Duration, bool)
	LastScheduledTaskTime() (time.Duration, bool)
}

// DelegateMode selects which operations a [Delegating] adapter forwards.
type DelegateMode uint8

const (
	// DelegateForward forwards the post family, Remove, and every driving
	// operation. Size and Reset are unsupported.
	DelegateForward DelegateMode = iota
	// DelegateDriveOnly forwards driving operations only. The post family and
	// Remove are unsupported as well.
	DelegateDriveOnly
)

// String returns a human-readable representation of the mode.
func (m DelegateMode) String() string {
	switch m {
	case DelegateForward:
		return "Forward"
	case DelegateDriveOnly:
		return "DriveOnly"
	default:
		return "Unknown"
	}
}

// delegateOptions holds configuration options for Delegating creation.
type delegateOptions struct {
	logger *logiface.Logger[logiface.Event]
	name   string
	mode   DelegateMode
}

// DelegateOption configures a Delegating instance.
type DelegateOption interface {
	applyDelegating(*delegateOptions) error
}

// delegateOptionImpl implements DelegateOption.
type delegateOptionImpl struct {
	applyDelegatingFunc func(*delegateOptions) error
}

func (o *delegateOptionImpl) applyDelegating(opts *delegateOptions) error {
	return o.applyDelegatingFunc(opts)
}

// WithDelegateMode sets the capability split. Defaults to DelegateForward.
func WithDelegateMode(mode DelegateMode) DelegateOption {
	return &delegateOptionImpl{func(opts *delegateOptions) error {
		switch mode {
		case DelegateForward, DelegateDriveOnly:
		default:
			return invalidArgument("unknown delegate mode %d", mode)
		}
		opts.mode = mode
		return nil
	}}
}

// WithDelegateName labels the adapter in log output.
func WithDelegateName(name string) DelegateOption {
	return &delegateOptionImpl{func(opts *delegateOptions) error {
		opts.name = name
		return nil
	}}
}

// WithDelegateLogger attaches a structured logger. Rejected operations are
// logged at warning level.
func WithDelegateLogger(logger *logiface.Logger[logiface.Event]) DelegateOption {
	return &delegateOptionImpl{func(opts *delegateOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveDelegateOptions(opts []DelegateOption) (*delegateOptions, error) {
	cfg := &delegateOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDelegating(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Delegating implements [Interface] on top of a [Looper] it does not own.
// Operations the looper cannot answer exactly fail with an
// [*UnsupportedError], rather than returning an approximation.
type Delegating struct {
	looper Looper
	logger *logiface.Logger[logiface.Event]
	name   string
	mode   DelegateMode
}

// NewDelegating binds an adapter to looper.
func NewDelegating(looper Looper, opts ...DelegateOption) (*Delegating, error) {
	if looper == nil {
		return nil, invalidArgument("nil looper")
	}
	cfg, err := resolveDelegateOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Delegating{
		looper: looper,
		logger: cfg.logger,
		name:   cfg.name,
		mode:   cfg.mode,
	}, nil
}

// Looper returns the bound looper.
func (d *Delegating) Looper() Looper {
	return d.looper
}

// Mode returns the capability split.
func (d *Delegating) Mode() DelegateMode {
	return d.mode
}

// Name returns the name configured via WithDelegateName.
func (d *Delegating) Name() string {
	return d.name
}

// Now returns the looper's current time.
func (d *Delegating) Now() time.Duration {
	return d.looper.Now()
}

// Post forwards r to the looper, which dispatches it immediately only if it
// is unpaused. Unsupported in DelegateDriveOnly.
func (d *Delegating) Post(r Runnable) error {
	if d.mode == DelegateDriveOnly {
		return d.unsupported("Post")
	}
	return d.looper.Post(r, 0)
}

// PostDelayed forwards r to the looper, due at now+delay. Unsupported in
// DelegateDriveOnly.
func (d *Delegating) PostDelayed(r Runnable, delay time.Duration) error {
	if d.mode == DelegateDriveOnly {
		return d.unsupported("PostDelayed")
	}
	if delay < 0 {
		return invalidArgument("negative delay %v", delay)
	}
	return d.looper.Post(r, delay)
}

// PostAtFrontOfQueue forwards r to the front of the looper's queue.
// Unsupported in DelegateDriveOnly.
func (d *Delegating) PostAtFrontOfQueue(r Runnable) error {
	if d.mode == DelegateDriveOnly {
		return d.unsupported("PostAtFrontOfQueue")
	}
	return d.looper.PostAtFrontOfQueue(r)
}

// Remove drops every pending looper message running r. Unsupported in
// DelegateDriveOnly.
func (d *Delegating) Remove(r Runnable) error {
	if d.mode == DelegateDriveOnly {
		return d.unsupported("Remove")
	}
	d.looper.RemoveMessages(r)
	return nil
}

// Pause pauses the looper.
func (d *Delegating) Pause() {
	d.looper.Pause()
}

// Unpause fails if the looper refuses, e.g. because it is a main looper.
func (d *Delegating) Unpause() error {
	return d.looper.Unpause()
}

// IsPaused reports whether the looper is paused.
func (d *Delegating) IsPaused() bool {
	return d.looper.IsPaused()
}

// RunOneTask runs the next message, advancing the looper's clock to it if
// needed.
func (d *Delegating) RunOneTask() bool {
	return d.looper.RunOneTask()
}

// RunToNextTask idles the looper up to the next due time, so unlike the
// owned Scheduler every message due at that time runs, not just one.
func (d *Delegating) RunToNextTask() bool {
	return d.looper.RunToNextTask()
}

// RunToEndOfTasks idles the looper until its last message has run.
func (d *Delegating) RunToEndOfTasks() {
	d.looper.RunToEndOfTasks()
}

// Idle dispatches every looper message due now.
func (d *Delegating) Idle() {
	d.looper.Idle()
}

// AdvanceBy is AdvanceTo(Now()+delta), failing for negative delta.
func (d *Delegating) AdvanceBy(delta time.Duration) (bool, error) {
	if delta < 0 {
		return false, invalidArgument("negative duration %v", delta)
	}
	return d.AdvanceTo(d.looper.Now() + delta)
}

// AdvanceTo idles the looper through to t. The result reports whether a
// message was due within the window when the call started.
func (d *Delegating) AdvanceTo(t time.Duration) (bool, error) {
	now := d.looper.Now()
	if t < now {
		return false, invalidArgument("cannot advance from %v back to %v", now, t)
	}
	next, ok := d.looper.NextScheduledTaskTime()
	if err := d.looper.IdleFor(t - now); err != nil {
		return false, err
	}
	return ok && next <= t, nil
}

// Size is unsupported in every mode.
func (d *Delegating) Size() (int, error) {
	return 0, d.unsupported("Size")
}

// AreAnyRunnable reports whether the looper has a message due now. Messages
// due in the future do not count.
func (d *Delegating) AreAnyRunnable() bool {
	return !d.looper.IsIdle()
}

// NextScheduledTaskTime returns the due time of the looper's next message.
func (d *Delegating) NextScheduledTaskTime() (time.Duration, bool) {
	return d.looper.NextScheduledTaskTime()
}

// LastScheduledTaskTime returns the due time of the looper's last message.
func (d *Delegating) LastScheduledTaskTime() (time.Duration, bool) {
	return d.looper.LastScheduledTaskTime()
}

// Reset is unsupported in every mode, the looper's owner resets it.
func (d *Delegating) Reset() error {
	return d.unsupported("Reset")
}

// Capabilities reports CapPost and CapRemove in DelegateForward, and none in
// DelegateDriveOnly. Size and Reset are never supported.
func (d *Delegating) Capabilities() Capability {
	if d.mode == DelegateForward {
		return CapPost | CapRemove
	}
	return capNone
}

func (d *Delegating) unsupported(op string) error {
	err := &UnsupportedError{Op: op, Backend: "delegating scheduler (" + d.mode.String() + ")"}
	d.logger.Warning().
		Str("scheduler", d.name).
		Str("op", op).
		Stringer("mode", d.mode).
		Log("unsupported operation")
	return err
}
