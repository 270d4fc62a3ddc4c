package core_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/automock/internal/core"
)

func TestSwap_DecoratorReleasesOnFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	original, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())

	fn := core.Decorate(fix.registry.Swap(idLabel, "B"), func(...any) (any, error) {
		g.Expect(fix.label.Get()()).To(Equal("B"))

		return nil, errBoom
	})

	_, err = fn()
	g.Expect(err).To(MatchError(errBoom))
	g.Expect(fix.label.Get()()).To(Equal("A"))

	restored, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(restored).To(BeIdenticalTo(original))
}

func TestSwap_FactoryFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, func(...any) (any, error) { return nil, errBoom })

	_, err := fix.registry.Swap(idLabel).Enter()
	g.Expect(err).To(MatchError(errBoom))
	g.Expect(fix.label.Depth()).To(BeZero())
	g.Expect(fix.registry.Active()).To(BeEmpty())
}

func TestSwap_IndependentCallHistory(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	original, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())

	err = core.With(fix.registry.Swap(idLabel, "B"), func(value any) error {
		fix.label.Get()()
		fix.label.Get()()

		swapped, ok := value.(*core.Mock)
		g.Expect(ok).To(BeTrue())
		g.Expect(swapped.CallCount()).To(Equal(2))

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())

	originalMock, ok := original.(*core.Mock)
	g.Expect(ok).To(BeTrue())
	g.Expect(originalMock.WasCalled()).To(BeFalse())
}

func TestSwap_NestedUnwindLIFO(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	original, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())

	outer, err := core.Acquire(fix.registry.Swap(idLabel, "B"))
	g.Expect(err).NotTo(HaveOccurred())

	inner, err := core.Acquire(fix.registry.Swap(idLabel, "C"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("C"))

	g.Expect(inner.Release()).To(Succeed())
	g.Expect(fix.label.Get()()).To(Equal("B"))

	current, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(current).To(BeIdenticalTo(outer.Value()))

	g.Expect(outer.Release()).To(Succeed())
	g.Expect(fix.label.Get()()).To(Equal("A"))

	current, err = fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(current).To(BeIdenticalTo(original))
}

func TestSwap_OutlivesStopAll(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	swap, err := core.Acquire(fix.registry.Swap(idLabel, "B"))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(fix.registry.StopAll()).To(Succeed())
	g.Expect(fix.registry.Patched(idLabel)).To(BeFalse())
	g.Expect(fix.label.Get()()).To(Equal("B"))

	current, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(current).To(BeIdenticalTo(swap.Value()))

	g.Expect(swap.Release()).To(Succeed())
	g.Expect(fix.label.Get()()).To(Equal("real"))
	g.Expect(fix.label.Depth()).To(BeZero())
	g.Expect(fix.registry.Active()).To(BeEmpty())
}

func TestSwap_ReentrantSameScope(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	swap := fix.registry.Swap(idLabel, "B")
	g.Expect(swap.ID()).To(Equal(idLabel))

	first, err := swap.Enter()
	g.Expect(err).NotTo(HaveOccurred())

	second, err := swap.Enter()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).NotTo(BeIdenticalTo(first), "each entry builds a fresh substitute")
	g.Expect(fix.label.Depth()).To(Equal(3))

	g.Expect(swap.Exit()).To(Succeed())

	current, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(current).To(BeIdenticalTo(first))

	g.Expect(swap.Exit()).To(Succeed())
	g.Expect(fix.label.Depth()).To(Equal(1))
	g.Expect(swap.Exit()).To(Succeed(), "exit without a matching enter does nothing")
}

func TestSwap_Scenario(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	err := core.With(fix.registry.Swap(idLabel, "B"), func(any) error {
		g.Expect(fix.label.Get()()).To(Equal("B"))

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("A"))
}

func TestSwap_StopOneInside(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	err := core.With(fix.registry.Swap(idLabel, "B"), func(swapped any) error {
		g.Expect(fix.registry.StopOne(idLabel)).To(Succeed())
		g.Expect(fix.registry.Patched(idLabel)).To(BeFalse())
		g.Expect(fix.label.Get()()).To(Equal("B"))
		g.Expect(fix.label.Depth()).To(Equal(1))

		current, err := fix.registry.Get(idLabel)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(current).To(BeIdenticalTo(swapped))
		g.Expect(fix.registry.Called()).To(HaveKey(idLabel))

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("real"))
	g.Expect(fix.label.Depth()).To(BeZero())
	g.Expect(fix.registry.Active()).To(BeEmpty())

	_, err = fix.registry.Get(idLabel)
	g.Expect(err).To(MatchError(core.ErrNotPatched))
}

// TestSwapUnmock_TableTracksLocation_Property proves that however starts,
// stops, swaps, and unmocks interleave and unwind, the active table reports
// exactly the substitute the location calls, and that unwinding everything
// leaves nothing behind.
func TestSwapUnmock_TableTracksLocation_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		fix := newFixture(t)
		fix.registry.Register(idLabel, letterFactory)

		var guards []*core.Guard

		steps := rapid.SliceOfN(rapid.IntRange(0, 4), 1, 30).Draw(rt, "steps")
		for i, step := range steps {
			switch step {
			case 0:
				_ = fix.registry.StartOne(idLabel)
			case 1:
				_ = fix.registry.StopOne(idLabel)
			case 2:
				guard, err := core.Acquire(fix.registry.Swap(idLabel, "B"))
				if err != nil {
					rt.Fatalf("step %d: swap: %v", i, err)
				}

				guards = append(guards, guard)
			case 3:
				if !fix.registry.Patched(idLabel) {
					continue
				}

				guard, err := core.Acquire(fix.registry.Unmock(idLabel))
				if err != nil {
					rt.Fatalf("step %d: unmock: %v", i, err)
				}

				guards = append(guards, guard)
			default:
				if len(guards) == 0 {
					continue
				}

				at := rapid.IntRange(0, len(guards)-1).Draw(rt, "release")
				if err := guards[at].Release(); err != nil {
					rt.Fatalf("step %d: release: %v", i, err)
				}

				guards = append(guards[:at], guards[at+1:]...)
			}

			assertTableTracksLabel(rt, fix, i)
		}

		for _, guard := range guards {
			_ = guard.Release()
		}

		if fix.registry.Patched(idLabel) {
			_ = fix.registry.StopOne(idLabel)
		}

		if depth := fix.label.Depth(); depth != 0 {
			rt.Fatalf("depth after unwinding = %d", depth)
		}

		if active := fix.registry.Active(); len(active) != 0 {
			rt.Fatalf("active after unwinding = %v", active)
		}
	})
}

func TestSwap_Unpatched(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)

	err := core.With(fix.registry.Swap(idLabel, "B"), func(any) error {
		g.Expect(fix.label.Get()()).To(Equal("B"))

		sub, err := fix.registry.Get(idLabel)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(sub).NotTo(BeNil())

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("real"))

	_, err = fix.registry.Get(idLabel)
	g.Expect(err).To(MatchError(core.ErrNotPatched), "the absent entry is restored")
}

func TestSwap_Unregistered(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)

	_, err := fix.registry.Swap(idLabel).Enter()
	g.Expect(err).To(MatchError(core.ErrUnregistered))
}

// assertTableTracksLabel checks that the label's active entry, if any, is the
// substitute its location calls, and that the real implementation answers
// when there is none.
func assertTableTracksLabel(rt *rapid.T, fix *fixture, step int) {
	sub, err := fix.registry.Get(idLabel)
	if err != nil {
		if got := fix.label.Get()(); got != "real" {
			rt.Fatalf("step %d: no active entry but label = %q", step, got)
		}

		return
	}

	mocked, ok := sub.(*core.Mock)
	if !ok {
		rt.Fatalf("step %d: active entry is %T", step, sub)
	}

	before := mocked.CallCount()
	fix.label.Get()()

	if mocked.CallCount() != before+1 {
		rt.Fatalf("step %d: the active entry did not see the call", step)
	}
}
