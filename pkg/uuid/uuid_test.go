package uuid

import "testing"

func TestRoundTrip(t *testing.T) {
	u := New()
	b := u.Bytes()
	u2 := FromBytes(b)
	if u != u2 {
		t.Fatalf("round trip mismatch: %v != %v", u, u2)
	}

	s := u.String()
	u3, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%s): %v", s, err)
	}
	if u3 != u {
		t.Fatalf("Parse round trip mismatch: %v != %v", u3, u)
	}
}

func TestCompare(t *testing.T) {
	a := UUID{1, 0, 0, 0}
	b := UUID{2, 0, 0, 0}
	if Compare(a, b) >= 0 {
		t.Errorf("expected a < b")
	}
	if Compare(a, a) != 0 {
		t.Errorf("expected a == a")
	}
	if Compare(b, a) <= 0 {
		t.Errorf("expected b > a")
	}
}

func TestNil(t *testing.T) {
	if !Nil.IsNil() {
		t.Errorf("Nil.IsNil() should be true")
	}
	if New().IsNil() {
		t.Errorf("fresh UUID should not be nil (probabilistically)")
	}
}
