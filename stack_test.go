package di_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/nanoinject"
	"github.com/sectrean/nanoinject/internal/testtypes"
	"github.com/sectrean/nanoinject/internal/testutils"
)

func Test_Stack(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := di.NewStack()

		inj, err := s.Active()
		assert.Nil(t, inj)
		assert.ErrorIs(t, err, di.ErrNoActiveInjector)
		assert.Nil(t, s.Pop())
		assert.Equal(t, 0, s.Depth())
	})

	t.Run("push and pop nest", func(t *testing.T) {
		s := di.NewStack()
		a := newInjector(t, di.WithStack(s))
		b := newInjector(t, di.WithStack(s))

		s.Push(a)
		s.Push(b)
		s.Push(a)
		assert.Equal(t, 3, s.Depth())

		active, err := s.Active()
		require.NoError(t, err)
		assert.Same(t, a, active)

		assert.Same(t, a, s.Pop())
		active, err = s.Active()
		require.NoError(t, err)
		assert.Same(t, b, active)

		assert.Same(t, b, s.Pop())
		assert.Same(t, a, s.Pop())
		assert.Nil(t, s.Pop())
	})

	t.Run("run restores on error", func(t *testing.T) {
		s := di.NewStack()
		inj := newInjector(t, di.WithStack(s))

		err := s.Run(inj, func() error {
			active, err := s.Active()
			require.NoError(t, err)
			assert.Same(t, inj, active)
			return assert.AnError
		})
		assert.Same(t, assert.AnError, err)
		assert.Equal(t, 0, s.Depth())
	})

	t.Run("run restores on panic", func(t *testing.T) {
		s := di.NewStack()
		inj := newInjector(t, di.WithStack(s))

		assert.Panics(t, func() {
			_ = s.Run(inj, func() error {
				panic("boom")
			})
		})
		assert.Equal(t, 0, s.Depth())
	})

	t.Run("resolve active", func(t *testing.T) {
		s := di.NewStack()
		p := di.NewProvider[string](di.WithName("p"))
		outer := newInjector(t, di.WithStack(s))
		inner := newInjector(t, di.WithStack(s))
		di.Bind(outer, p).ToValue("outer")
		di.Bind(inner, p).ToValue("inner")

		_, err := di.ResolveActive(s, p)
		assert.EqualError(t, err, "di.ResolveActive p: no active injector")

		err = s.Run(outer, func() error {
			got, err := di.ResolveActive(s, p)
			require.NoError(t, err)
			assert.Equal(t, "outer", got)

			return s.Run(inner, func() error {
				got, err := di.ResolveActive(s, p)
				require.NoError(t, err)
				assert.Equal(t, "inner", got)
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("try resolve active", func(t *testing.T) {
		s := di.NewStack()
		p := di.NewProvider[int](di.WithName("p"))
		inj := newInjector(t, di.WithStack(s))

		_, err := di.TryResolveActive(s, p, 1)
		assert.EqualError(t, err, "di.TryResolveActive p: no active injector")

		err = s.Run(inj, func() error {
			got, err := di.TryResolveActive(s, p, 1)
			require.NoError(t, err)
			assert.Equal(t, 1, got)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("resolution uses the injector stack", func(t *testing.T) {
		s := di.NewStack()
		p := di.NewProvider[int]()
		inj := newInjector(t, di.WithStack(s))
		var depth, defaultDepth int
		di.Bind(inj, p).ToFactory(func(*di.Injector) (int, error) {
			depth = s.Depth()
			defaultDepth = di.DefaultStack().Depth()
			return 1, nil
		})

		_, err := di.Resolve(inj, p)
		require.NoError(t, err)
		assert.Equal(t, 1, depth)
		assert.Equal(t, 0, defaultDepth)
		assert.Equal(t, 0, s.Depth())
	})
}

func Test_CurrentStack(t *testing.T) {
	t.Run("default when nothing is active", func(t *testing.T) {
		assert.Same(t, di.DefaultStack(), di.CurrentStack())
	})

	t.Run("follows nested activations", func(t *testing.T) {
		s := di.NewStack()
		inj := newInjector(t, di.WithStack(s))
		other := newInjector(t)

		err := s.Run(inj, func() error {
			assert.Same(t, s, di.CurrentStack())

			err := other.Call(func() error {
				assert.Same(t, di.DefaultStack(), di.CurrentStack())
				return nil
			})
			assert.Same(t, s, di.CurrentStack())
			return err
		})
		require.NoError(t, err)
		assert.Same(t, di.DefaultStack(), di.CurrentStack())
	})

	t.Run("not shared with other goroutines", func(t *testing.T) {
		s := di.NewStack()
		inj := newInjector(t, di.WithStack(s))

		err := s.Run(inj, func() error {
			var got *di.Stack
			testutils.RunParallel(1, func(int) {
				got = di.CurrentStack()
			})
			assert.Same(t, di.DefaultStack(), got)
			return nil
		})
		require.NoError(t, err)
	})
}

func Test_Provider_Get_OwnStack(t *testing.T) {
	t.Run("constructor", func(t *testing.T) {
		a := di.NewProvider[int](di.WithName("A"))
		b := di.NewProvider[int](di.WithName("B"))
		inj := newInjector(t, di.WithStack(di.NewStack()))
		di.Bind(inj, a).ToValue(1)
		di.Bind(inj, b).ToConstructor(func() int {
			return a.MustGet() + 1
		})

		got, err := di.Resolve(inj, b)
		require.NoError(t, err)
		assert.Equal(t, 2, got)
		assert.Equal(t, 0, di.DefaultStack().Depth())
	})

	t.Run("ignores unrelated default stack injector", func(t *testing.T) {
		p := di.NewProvider[string](di.WithName("p"))
		unrelated := newInjector(t)
		inj := newInjector(t, di.WithStack(di.NewStack()))
		di.Bind(unrelated, p).ToValue("unrelated")
		di.Bind(inj, p).ToValue("own")

		err := unrelated.Call(func() error {
			return inj.Call(func() error {
				assert.Equal(t, "own", p.MustGet())
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("get or", func(t *testing.T) {
		p := di.NewProvider[int]()
		inj := newInjector(t, di.WithStack(di.NewStack()))

		err := inj.Call(func() error {
			assert.Equal(t, 5, p.MustGetOr(5))
			return nil
		})
		require.NoError(t, err)
	})
}

func Test_Injector_Call(t *testing.T) {
	t.Run("activates injector", func(t *testing.T) {
		inj := newInjector(t)

		err := inj.Call(func() error {
			active, err := di.DefaultStack().Active()
			require.NoError(t, err)
			assert.Same(t, inj, active)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 0, di.DefaultStack().Depth())
	})

	t.Run("returns fn error", func(t *testing.T) {
		inj := newInjector(t)

		err := inj.Call(func() error { return assert.AnError })
		assert.Same(t, assert.AnError, err)
	})

	t.Run("restores stack after panic", func(t *testing.T) {
		inj := newInjector(t)

		assert.PanicsWithValue(t, "boom", func() {
			_ = inj.Call(func() error { panic("boom") })
		})
		assert.Equal(t, 0, di.DefaultStack().Depth())
	})

	t.Run("nested calls", func(t *testing.T) {
		p := di.NewProvider[string]()
		outer := newInjector(t)
		inner := outer.NewChild()
		di.Bind(outer, p).ToValue("outer")
		di.Bind(inner, p).ToValue("inner")

		var got []string
		err := outer.Call(func() error {
			got = append(got, p.MustGet())
			err := inner.Call(func() error {
				got = append(got, p.MustGet())
				return nil
			})
			got = append(got, p.MustGet())
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"outer", "inner", "outer"}, got)
	})
}

func Test_Invoke(t *testing.T) {
	t.Run("returns result", func(t *testing.T) {
		inj := newInjector(t)
		log := &testtypes.MemoryLogger{}
		di.Bind(inj, testtypes.LoggerProvider).ToValue(log)
		di.Bind(inj, testtypes.ConfigProvider).ToValue(testtypes.Config{AppName: "app", Port: 3000})
		di.Bind(inj, testtypes.AppServiceProvider).ToConstructor(testtypes.NewAppService).AsSingleton()

		svc, err := di.Invoke(inj, func() (*testtypes.AppService, error) {
			return testtypes.AppServiceProvider.MustGet(), nil
		})
		require.NoError(t, err)
		svc.Start()

		assert.Equal(t, []string{"Starting app on port 3000"}, log.Messages)
	})

	t.Run("must get error", func(t *testing.T) {
		inj := newInjector(t)

		_, err := di.Invoke(inj, func() (int, error) {
			return testtypes.ConfigProvider.MustGet().Port, nil
		})
		testutils.LogError(t, err)
		assert.EqualError(t, err, "di.Resolve Config: no binder found")
	})
}

func Test_Construct(t *testing.T) {
	t.Run("explicit argument", func(t *testing.T) {
		inj := newInjector(t)
		log := &testtypes.MemoryLogger{Prefix: "[app] "}
		di.Bind(inj, testtypes.LoggerProvider).ToValue(log)

		user, err := di.Construct(inj, testtypes.NewUser, "Alice")
		require.NoError(t, err)
		user.Greet()

		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, []string{"[app] Hello, I am Alice"}, log.Messages)
	})

	t.Run("missing dependency", func(t *testing.T) {
		inj := newInjector(t)

		_, err := di.Construct(inj, testtypes.NewUser, "Alice")
		assert.ErrorIs(t, err, di.ErrNoBinder)
	})

	t.Run("child overrides dependency", func(t *testing.T) {
		parent := newInjector(t)
		child := parent.NewChild()
		parentLog := &testtypes.MemoryLogger{}
		childLog := &testtypes.MemoryLogger{}
		di.Bind(parent, testtypes.LoggerProvider).ToValue(parentLog)
		di.Bind(child, testtypes.LoggerProvider).ToValue(childLog)

		user, err := di.Construct(child, testtypes.NewUser, "Bob")
		require.NoError(t, err)
		assert.Same(t, childLog, user.Logger)
	})
}

func Test_Injector_Parallel(t *testing.T) {
	var calls atomic.Int32
	shared := di.NewProvider[*testtypes.Counter](di.WithName("shared"))
	requestID := di.NewProvider[string](di.WithName("requestID"))
	handler := di.NewProvider[string](di.WithName("handler"))

	root := newInjector(t, di.WithName("root"), di.WithStack(di.NewStack()))
	di.Bind(root, shared).ToFactory(func(*di.Injector) (*testtypes.Counter, error) {
		return &testtypes.Counter{N: int(calls.Add(1))}, nil
	}).AsSingleton()

	const n = 20
	counters := make([]*testtypes.Counter, n)
	handled := make([]string, n)
	errs := make([]error, n)

	testutils.RunParallel(n, func(i int) {
		child := root.NewChild(di.WithStack(di.NewStack()))
		di.Bind(child, requestID).ToValue(fmt.Sprintf("req-%d", i))
		di.Bind(child, handler).ToFactory(func(inj *di.Injector) (string, error) {
			return di.ResolveActive(inj.Stack(), requestID)
		})

		counters[i], errs[i] = di.Resolve(child, shared)
		if errs[i] != nil {
			return
		}
		handled[i], errs[i] = di.Resolve(child, handler)
	})

	for i := range n {
		require.NoError(t, errs[i])
		assert.Same(t, counters[0], counters[i])
		assert.Equal(t, fmt.Sprintf("req-%d", i), handled[i])
	}
}

func Test_Injector_Parallel_SharedRoot(t *testing.T) {
	// Root binders resolving through their injector argument or the active injector
	// while children on many goroutines resolve them at once.
	requestID := di.NewProvider[string](di.WithName("requestID"))
	dep := di.NewProvider[string](di.WithName("dep"))
	svc := di.NewProvider[string](di.WithName("svc"))
	greeting := di.NewProvider[string](di.WithName("greeting"))

	root := newInjector(t, di.WithName("root"), di.WithStack(di.NewStack()))
	di.Bind(root, dep).ToFactory(func(*di.Injector) (string, error) {
		time.Sleep(10 * time.Millisecond)
		return "dep", nil
	})
	di.Bind(root, svc).ToFactory(func(inj *di.Injector) (string, error) {
		return di.Resolve(inj, dep)
	})
	di.Bind(root, greeting).ToConstructor(func() string {
		return "hello " + requestID.MustGet()
	})

	const n = 20
	svcs := make([]string, n)
	greetings := make([]string, n)
	errs := make([]error, n)

	testutils.RunParallel(n, func(i int) {
		child := root.NewChild(di.WithStack(di.NewStack()))
		di.Bind(child, requestID).ToValue(fmt.Sprintf("req-%d", i))

		svcs[i], errs[i] = di.Resolve(child, svc)
		if errs[i] != nil {
			return
		}
		greetings[i], errs[i] = di.Resolve(child, greeting)
	})

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, "dep", svcs[i])
		assert.Equal(t, fmt.Sprintf("hello req-%d", i), greetings[i])
	}
	assert.Equal(t, 0, root.Stack().Depth())
}
