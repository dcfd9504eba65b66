package di

import (
	"os"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/sectrean/nanoinject/internal/errors"
)

// InjectorProvider resolves to the injector that is resolving it.
//
// Every [Injector] binds InjectorProvider to itself when it is created, so a child injector
// shadows its parent.
var InjectorProvider = NewProvider[*Injector](WithName("Injector"))

var defaultLogger = zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

// Injector holds binders for providers and resolves providers to values.
//
// Providers that are not bound by an Injector are resolved by its parent, recursively,
// so a child injector can override some bindings and inherit the rest.
//
// Binding and lookup are safe for concurrent use. Resolution on a single Injector is not:
// its dependency cycle check and its [Stack] assume one caller at a time. Use a child injector
// with its own Stack per goroutine.
//
// The cycle check and the Stack belong to the injector a resolution starts from. A factory bound
// by an ancestor receives that ancestor bound to the same cycle check and Stack, so resolving
// through its argument never touches the ancestor's own state. A parent can therefore be shared
// by children resolving on different goroutines.
type Injector struct {
	id        uuid.UUID
	name      string
	parent    *Injector
	binders   *xsync.MapOf[uint64, *binding]
	resolving *resolveVisitor
	stack     *Stack

	baseLog zerolog.Logger
	log     zerolog.Logger
	hasLog  bool
}

// NewInjector creates a new [Injector] with the provided options.
//
// Available options:
//   - [WithName] sets the name used in diagnostics.
//   - [WithParent] sets the parent injector used for providers this injector does not bind.
//   - [WithLogger] sets the logger used for diagnostics.
//   - [WithStack] sets the [Stack] the injector activates itself on.
func NewInjector(opts ...InjectorOption) *Injector {
	inj := &Injector{
		id:        uuid.New(),
		binders:   xsync.NewMapOf[uint64, *binding](),
		resolving: &resolveVisitor{},
	}

	for _, opt := range opts {
		opt.applyInjector(inj)
	}

	if inj.stack == nil {
		if inj.parent != nil {
			inj.stack = inj.parent.stack
		} else {
			inj.stack = DefaultStack()
		}
	}

	if !inj.hasLog {
		if inj.parent != nil {
			inj.baseLog = inj.parent.baseLog
		} else {
			inj.baseLog = defaultLogger
		}
	}
	inj.log = inj.baseLog.With().
		Str("injector", inj.String()).
		Str("injector_id", inj.id.String()).
		Logger()

	Bind(inj, InjectorProvider).ToValue(inj)

	return inj
}

// NewChild creates a new [Injector] with inj as its parent.
//
// The child inherits the parent's [Stack] and logger unless other options are provided.
func (inj *Injector) NewChild(opts ...InjectorOption) *Injector {
	return NewInjector(append([]InjectorOption{WithParent(inj)}, opts...)...)
}

// ID returns the unique id of the injector.
func (inj *Injector) ID() uuid.UUID {
	return inj.id
}

// Name returns the name of the injector, or "" if it has none.
func (inj *Injector) Name() string {
	return inj.name
}

func (inj *Injector) String() string {
	if inj.name != "" {
		return inj.name
	}
	return "injector"
}

// Parent returns the parent injector, or nil.
func (inj *Injector) Parent() *Injector {
	return inj.parent
}

// Stack returns the [Stack] the injector activates itself on.
func (inj *Injector) Stack() *Stack {
	return inj.stack
}

// Logger returns the diagnostics logger of the injector.
func (inj *Injector) Logger() zerolog.Logger {
	return inj.log
}

// Contains returns true if the injector or one of its ancestors has a binder for k.
func (inj *Injector) Contains(k Key) bool {
	return inj.lookup(k) != nil
}

// Bind creates a new [Binder] for p and any other providers listed in also.
//
// The binder replaces any binder previously registered with inj for the same providers.
// Binders registered with parent injectors are not affected.
//
// Every provider in also must be able to hold the bound value. This is checked when
// the provider is resolved and reported as [ErrTypeMismatch].
//
// Nil providers are skipped with a warning. A binder for a nil p is still returned so the
// call chain can complete, but nothing resolves to it unless also names other providers.
//
// Example:
//
//	di.Bind(inj, ReaderProvider, WriterProvider).ToValue(buf)
func Bind[T any](inj *Injector, p *Provider[T], also ...Key) *Binder[T] {
	keys := make([]Key, 0, 1+len(also))
	if p != nil {
		keys = append(keys, p)
	} else {
		inj.log.Warn().Msg("nil provider ignored")
	}
	keys = append(keys, also...)

	return &Binder[T]{b: inj.bind(keys)}
}

func (inj *Injector) bind(keys []Key) *binding {
	b := newBinding(inj)

	for _, k := range keys {
		if isNilKey(k) {
			inj.log.Warn().Msg("nil provider ignored")
			continue
		}

		if _, replaced := inj.binders.LoadAndStore(k.ID(), b); replaced {
			inj.log.Warn().
				Str("provider", providerName(k)).
				Uint64("provider_id", k.ID()).
				Msg("provider rebound")
			continue
		}

		inj.log.Debug().
			Str("provider", providerName(k)).
			Uint64("provider_id", k.ID()).
			Msg("provider bound")
	}

	return b
}

// lookup finds the binder for k in inj or the closest ancestor that has one.
func (inj *Injector) lookup(k Key) *binding {
	if isNilKey(k) {
		return nil
	}
	for scope := inj; scope != nil; scope = scope.parent {
		if b, ok := scope.binders.Load(k.ID()); ok {
			return b
		}
	}

	return nil
}

// resolveBinding resolves b for k while inj is active on its stack.
func (inj *Injector) resolveBinding(k Key, b *binding) (val any, err error) {
	if err := inj.resolving.Enter(k); err != nil {
		inj.log.Debug().Err(err).Str("provider", providerName(k)).Msg("dependency cycle")
		return nil, errors.Wrapf(err, "di.Resolve %s", providerName(k))
	}
	defer inj.resolving.Leave()
	defer recoverMust(&err)

	inj.stack.Push(inj)
	defer inj.stack.Pop()

	method, lifetime := b.describe()
	inj.log.Debug().
		Str("provider", providerName(k)).
		Uint64("provider_id", k.ID()).
		Stringer("lifetime", lifetime).
		Stringer("method", method).
		Int("depth", inj.resolving.Depth()).
		Msg("resolving provider")

	val, err = b.resolve(b.owner.boundTo(inj))
	if err == ErrNoCreationMethod {
		// Only wrap our own sentinel; errors from nested resolutions are already wrapped.
		return nil, errors.Wrapf(err, "di.Resolve %s", providerName(k))
	}
	return val, err
}

// boundTo returns inj sharing the cycle check and [Stack] of r, the injector resolving one of
// inj's binders. It returns inj itself when they already match.
//
// The result has inj's id, bindings, parent, and logger, but is a different *Injector than inj.
func (inj *Injector) boundTo(r *Injector) *Injector {
	if inj == nil || inj == r || (inj.resolving == r.resolving && inj.stack == r.stack) {
		return inj
	}

	view := *inj
	view.resolving = r.resolving
	view.stack = r.stack
	return &view
}

// Call activates the injector, calls fn, and deactivates the injector again.
//
// While fn runs on the calling goroutine, [Provider.Get] and [Provider.MustGet] resolve with this
// injector. A panic raised by MustGet inside fn is returned as an error.
func (inj *Injector) Call(fn func() error) (err error) {
	defer recoverMust(&err)

	inj.log.Debug().Msg("activating injector")
	return inj.stack.Run(inj, fn)
}
