package role

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Role{
		"readonly": Readonly,
		"user":     User,
		"admin":    Admin,
		"":         Readonly,
		"root":     Readonly,
		"ADMIN":    Readonly, // case sensitive by design
	}

	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMeetsIsTotalOrder(t *testing.T) {
	roles := []Role{Readonly, User, Admin}

	for _, held := range roles {
		for _, required := range roles {
			want := held.Rank() >= required.Rank()
			if got := held.Meets(required); got != want {
				t.Errorf("%v.Meets(%v) = %v, want %v", held, required, got, want)
			}
		}
	}
}

func TestMeetsRequirement(t *testing.T) {
	// No requirement declared: any held role passes.
	for _, held := range []string{"readonly", "user", "admin", "whatever", ""} {
		if !MeetsRequirement(held, "") {
			t.Errorf("MeetsRequirement(%q, \"\") = false, want true", held)
		}
	}

	// Unknown held roles rank lowest.
	if MeetsRequirement("superuser", "user") {
		t.Error("unknown held role must not satisfy user")
	}
	if !MeetsRequirement("superuser", "readonly") {
		t.Error("unknown held role still ranks as readonly")
	}

	// Unknown required roles also rank lowest, failing toward least privilege
	// for the requirement side as well.
	if !MeetsRequirement("readonly", "nonsense") {
		t.Error("unknown required role ranks as readonly")
	}

	if !MeetsRequirement("admin", "user") {
		t.Error("admin must satisfy user")
	}
	if MeetsRequirement("readonly", "admin") {
		t.Error("readonly must not satisfy admin")
	}
}

func TestKnown(t *testing.T) {
	for _, s := range []string{"readonly", "user", "admin"} {
		if !Known(s) {
			t.Errorf("Known(%q) = false", s)
		}
	}
	for _, s := range []string{"", "root", "Admin"} {
		if Known(s) {
			t.Errorf("Known(%q) = true", s)
		}
	}
}
