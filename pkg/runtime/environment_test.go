package runtime

import (
	"errors"
	"math/big"
	"testing"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	value := StringValue{Val: "hello"}
	env.Define("greeting", value, false)

	got, err := env.Get("greeting")
	if err != nil {
		t.Fatalf("expected to retrieve binding: %v", err)
	}

	if gv, ok := got.(StringValue); !ok || gv.Val != "hello" {
		t.Fatalf("unexpected value returned: %#v", got)
	}
}

func TestEnvironmentAssignRespectsLexicalParent(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("counter", IntegerValue{Val: bigInt(1), TypeSuffix: IntegerI32}, true)

	child := env.Push()
	if err := child.Assign("counter", IntegerValue{Val: bigInt(2), TypeSuffix: IntegerI32}); err != nil {
		t.Fatalf("assign into parent failed: %v", err)
	}

	got, err := env.Get("counter")
	if err != nil {
		t.Fatalf("parent lookup failed: %v", err)
	}
	if iv, ok := got.(IntegerValue); !ok || iv.Val.Cmp(bigInt(2)) != 0 {
		t.Fatalf("unexpected counter value: %#v", got)
	}
}

func TestEnvironmentAssignUnknownFails(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("missing", UnitValue{})
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("expected ErrUndefined, got %v", err)
	}
	if err.Error() != "undefined variable 'missing'" {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
}

func TestEnvironmentAssignImmutableFails(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", NewInteger(5, IntegerI32), false)

	err := env.Assign("x", NewInteger(6, IntegerI32))
	if !errors.Is(err, ErrImmutableAssign) {
		t.Fatalf("expected ErrImmutableAssign, got %v", err)
	}
	got, _ := env.Get("x")
	if got.(IntegerValue).Val.Int64() != 5 {
		t.Fatalf("immutable binding changed: %#v", got)
	}
}

func TestEnvironmentShadowingInSameScope(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("z", NewInteger(100, IntegerI32), false)
	env.Define("z", NewInteger(99, IntegerI32), false)

	got, err := env.Get("z")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.(IntegerValue).Val.Int64() != 99 {
		t.Fatalf("expected newest binding, got %#v", got)
	}
	if env.Len() != 2 {
		t.Fatalf("shadowed binding should remain in frame, len=%d", env.Len())
	}
	if keys := env.Keys(); len(keys) != 1 || keys[0] != "z" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestEnvironmentShadowingChangesType(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("value", StringValue{Val: "abc def"}, false)
	env.Define("value", NewInteger(7, IntegerUsize), false)

	got, _ := env.Get("value")
	if TypeName(got) != "usize" {
		t.Fatalf("expected usize after shadowing, got %s", TypeName(got))
	}
}

func TestEnvironmentPopRestoresOuterBinding(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("z", NewInteger(99, IntegerI32), false)

	inner := env.Push()
	inner.Define("z", NewInteger(888, IntegerI32), false)
	got, _ := inner.Get("z")
	if got.(IntegerValue).Val.Int64() != 888 {
		t.Fatalf("inner binding not visible: %#v", got)
	}
	if inner.Depth() != 1 {
		t.Fatalf("inner depth = %d, want 1", inner.Depth())
	}

	outer := inner.Pop()
	if outer != env {
		t.Fatalf("Pop should return the parent frame")
	}
	got, _ = outer.Get("z")
	if got.(IntegerValue).Val.Int64() != 99 {
		t.Fatalf("outer binding changed: %#v", got)
	}
}

func TestEnvironmentFreezeByShadowing(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("n", NewInteger(7, IntegerI32), true)

	inner := env.Push()
	current, _ := inner.Get("n")
	inner.Define("n", current, false)
	if inner.IsMutable("n") {
		t.Fatalf("shadowing binding should be immutable")
	}
	if err := inner.Assign("n", NewInteger(50, IntegerI32)); !errors.Is(err, ErrImmutableAssign) {
		t.Fatalf("expected frozen binding, got %v", err)
	}

	outer := inner.Pop()
	if err := outer.Assign("n", NewInteger(3, IntegerI32)); err != nil {
		t.Fatalf("outer binding should accept assignment: %v", err)
	}
}

func bigInt(v int64) *big.Int {
	return big.NewInt(v)
}
