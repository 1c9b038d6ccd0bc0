package extensions

import (
	"testing"
	"time"
)

func TestFilterMultiplePtr(t *testing.T) {
	a, b, c := 1, 2, 3
	res := FilterMultiplePtr([]*int{&a, &b, &c}, func(v *int) bool { return *v != 2 })

	AssertAreEqual(t, "length", 2, len(res))
	AssertAreEqual(t, "first", &a, res[0])
	AssertAreEqual(t, "second", &c, res[1])
}

func TestFirstDuplicate(t *testing.T) {
	dup, ok := FirstDuplicate([]string{"AAPL", "msft", " aapl"})
	AssertAreEqual(t, "found", true, ok)
	AssertAreEqual(t, "duplicate", " aapl", dup)

	_, ok = FirstDuplicate([]string{"AAPL", "MSFT"})
	AssertAreEqual(t, "no duplicate", false, ok)
}

func TestSymbolHelpers(t *testing.T) {
	AssertAreEqual(t, "normalize", "BRK.B", NormalizeSymbol("  brk.b "))
	AssertAreEqual(t, "equal", true, AreEqual("sp500", "SP500"))
	AssertAreEqual(t, "all equal", true, AreAllEqual([]float64{0.01, 0.01, 0.01}))
	AssertAreEqual(t, "not all equal", false, AreAllEqual([]float64{0.01, 0.02}))
	AssertAreEqual(t, "empty all equal", true, AreAllEqual([]int{}))
	AssertAreEqual(t, "min", 3, Min(5, 3))
	AssertAreEqual(t, "short", "2024-01-02", FmtShort(time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)))
}

func TestMap(t *testing.T) {
	res := Map([]string{"a", "b"}, NormalizeSymbol)
	AssertAreEqual(t, "length", 2, len(res))
	AssertAreEqual(t, "first", "A", res[0])
	AssertAreEqual(t, "second", "B", res[1])
}
