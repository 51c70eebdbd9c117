package util_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/wl99/node-red-zdll/util"
)

func ExampleClampInt_high() {
	fmt.Println(util.ClampInt(12, 0, 9))
	// Output: 9
}

func ExampleClampInt_low() {
	fmt.Println(util.ClampInt(-3, 0, 9))
	// Output: 0
}

func TestClampIntInRange(t *testing.T) {
	if out := util.ClampInt(5, 0, 9); out != 5 {
		t.Errorf("expected in-range value to pass through, got %d", out)
	}
}

func TestMulNonNeg(t *testing.T) {
	p, ok := util.MulNonNeg(640, 480)
	if !ok || p != 307200 {
		t.Errorf("expected 307200 ok, got %d %v", p, ok)
	}
}

func TestMulNonNegOverflow(t *testing.T) {
	_, ok := util.MulNonNeg(math.MaxInt, 3)
	if ok {
		t.Error("expected overflow to be reported")
	}
}

func TestMulNonNegZero(t *testing.T) {
	p, ok := util.MulNonNeg(0, math.MaxInt)
	if !ok || p != 0 {
		t.Errorf("expected 0 ok, got %d %v", p, ok)
	}
}

func TestMulNonNegRejectsNegative(t *testing.T) {
	if _, ok := util.MulNonNeg(-1, 4); ok {
		t.Error("expected negative input to be rejected")
	}
}

func TestAddNonNegOverflow(t *testing.T) {
	if _, ok := util.AddNonNeg(math.MaxInt, 1); ok {
		t.Error("expected overflow to be reported")
	}
}

func TestIntSliceContains(t *testing.T) {
	s := []int{0, 1}
	if !util.IntSliceContains(s, 1) {
		t.Error("expected 1 to be found")
	}
	if util.IntSliceContains(s, 2) {
		t.Error("expected 2 to be absent")
	}
}
