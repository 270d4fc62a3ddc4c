package core_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/automock/internal/core"
)

func TestUnmock_DecoratorAppendsReal(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idGreet, nil)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	fn := core.Decorate(fix.registry.Unmock(idGreet), func(args ...any) (any, error) {
		g.Expect(args).To(HaveLen(2))
		g.Expect(args[0]).To(Equal("first"))

		greet, ok := args[1].(func(string) string)
		g.Expect(ok).To(BeTrue())

		return greet("bob"), errBoom
	})

	result, err := fn("first")
	g.Expect(err).To(MatchError(errBoom))
	g.Expect(result).To(Equal("hello bob"))
	g.Expect(fix.registry.Patched(idGreet)).To(BeTrue(), "the patch comes back even when the wrapped call fails")
}

func TestUnmock_FreshSubstituteOnExit(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	before, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(core.With(fix.registry.Unmock(idLabel), func(any) error { return nil })).To(Succeed())

	after, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(after).NotTo(BeIdenticalTo(before))
	g.Expect(after).To(BeAssignableToTypeOf(&core.Mock{}))
}

func TestUnmock_NotPatched(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)

	unmock := fix.registry.Unmock(idLabel)
	g.Expect(unmock.ID()).To(Equal(idLabel))

	_, err := unmock.Enter()
	g.Expect(err).To(MatchError(core.ErrNotPatched))
	g.Expect(fix.registry.Patched(idLabel)).To(BeFalse())
}

func TestUnmock_Scenario(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	err := core.With(fix.registry.Unmock(idLabel), func(value any) error {
		g.Expect(fix.label.Get()()).To(Equal("real"))

		live, ok := value.(func() string)
		g.Expect(ok).To(BeTrue())
		g.Expect(live()).To(Equal("real"))

		_, err := fix.registry.Get(idLabel)
		g.Expect(err).To(MatchError(core.ErrNotPatched))

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())

	_, err = fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("A"))
}

func TestUnmock_InsideSwap(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	swap, err := core.Acquire(fix.registry.Swap(idLabel, "B"))
	g.Expect(err).NotTo(HaveOccurred())

	err = core.With(fix.registry.Unmock(idLabel), func(value any) error {
		g.Expect(fix.label.Get()()).To(Equal("real"))

		live, ok := value.(func() string)
		g.Expect(ok).To(BeTrue())
		g.Expect(live()).To(Equal("real"))

		_, err := fix.registry.Get(idLabel)
		g.Expect(err).To(MatchError(core.ErrNotPatched))
		g.Expect(fix.registry.Called()).To(BeEmpty())

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("A"), "the fresh patch sits over the swap")

	restarted, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(restarted).NotTo(BeIdenticalTo(swap.Value()))

	g.Expect(swap.Release()).To(Succeed())
	g.Expect(fix.label.Depth()).To(Equal(1))
	g.Expect(fix.registry.Patched(idLabel)).To(BeTrue())

	current, err := fix.registry.Get(idLabel)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(current).To(BeIdenticalTo(restarted), "the swap exit leaves the newer entry alone")

	g.Expect(fix.label.Get()()).To(Equal("A"))
	g.Expect(fix.registry.Called()).To(HaveKeyWithValue(idLabel, BeIdenticalTo(restarted)))
}

func TestUnmock_SwapInside(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fix := newFixture(t)
	fix.registry.Register(idLabel, letterFactory)
	g.Expect(fix.registry.StartAll()).To(Succeed())

	err := core.With(fix.registry.Unmock(idLabel), func(any) error {
		err := core.With(fix.registry.Swap(idLabel, "B"), func(swapped any) error {
			g.Expect(fix.label.Get()()).To(Equal("B"))

			current, err := fix.registry.Get(idLabel)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(current).To(BeIdenticalTo(swapped))

			return nil
		})
		g.Expect(err).NotTo(HaveOccurred())

		g.Expect(fix.label.Get()()).To(Equal("real"))

		_, err = fix.registry.Get(idLabel)
		g.Expect(err).To(MatchError(core.ErrNotPatched))

		return nil
	})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fix.label.Get()()).To(Equal("A"))
	g.Expect(fix.label.Depth()).To(Equal(1))
}
