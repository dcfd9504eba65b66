package di

import (
	"bytes"
	"runtime"
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"
)

// activeStacks records, per goroutine, the stacks that have an injector pushed by that goroutine.
// The last one is the goroutine's current stack. Only the owning goroutine writes its entry.
var activeStacks = xsync.NewMapOf[uint64, []*Stack]()

// CurrentStack returns the [Stack] the calling goroutine most recently pushed an injector onto
// and has not popped yet, or [DefaultStack] if there is none.
//
// [Provider.Get] and the other ambient methods resolve through it. A goroutine started from
// inside a factory or [Injector.Call] does not inherit the current stack of its creator.
func CurrentStack() *Stack {
	if stacks, ok := activeStacks.Load(goroutineID()); ok && len(stacks) > 0 {
		return stacks[len(stacks)-1]
	}
	return DefaultStack()
}

func enterStack(s *Stack) {
	gid := goroutineID()
	stacks, _ := activeStacks.Load(gid)
	activeStacks.Store(gid, append(stacks, s))
}

func leaveStack(s *Stack) {
	gid := goroutineID()
	stacks, ok := activeStacks.Load(gid)
	if !ok {
		return
	}

	for i := len(stacks) - 1; i >= 0; i-- {
		if stacks[i] != s {
			continue
		}
		copy(stacks[i:], stacks[i+1:])
		stacks[len(stacks)-1] = nil
		stacks = stacks[:len(stacks)-1]
		break
	}

	if len(stacks) == 0 {
		activeStacks.Delete(gid)
		return
	}
	activeStacks.Store(gid, stacks)
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID parses the id of the calling goroutine from its stack trace header,
// which starts with "goroutine <id> [".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	b := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}

	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
