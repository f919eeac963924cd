package user

import "testing"

func TestCompileFilter(t *testing.T) {
	ada := User{UID: "1", FirstName: "Ada", LastName: "Lovelace"}
	grace := User{UID: "2", FirstName: "Grace", LastName: "Hopper"}

	tests := []struct {
		input string
		ada   bool
		grace bool
	}{
		{input: "ada", ada: true},
		{input: "LOVE", ada: true},
		{input: "er", grace: true},
		{input: "a", ada: true, grace: true},
		{input: "g*r", grace: true},
		{input: "*ace", ada: true},
		{input: "[ag]*", ada: true, grace: true},
		{input: "?race hopper", grace: true},
		{input: "zed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := CompileFilter(tt.input)
			if err != nil {
				t.Fatalf("CompileFilter(%q) error: %v", tt.input, err)
			}
			if got := f.Match(ada); got != tt.ada {
				t.Errorf("Match(Ada) = %v, want %v", got, tt.ada)
			}
			if got := f.Match(grace); got != tt.grace {
				t.Errorf("Match(Grace) = %v, want %v", got, tt.grace)
			}
		})
	}
}

func TestCompileFilter_Blank(t *testing.T) {
	f, err := CompileFilter("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != nil {
		t.Fatal("blank input should produce no filter")
	}
	if f.Pattern() != "" {
		t.Errorf("Pattern() = %q on nil filter", f.Pattern())
	}

	list := List{{UID: "a"}, {UID: "b"}}
	if got := f.Apply(list); len(got) != 2 {
		t.Errorf("nil filter should keep every user, got %d", len(got))
	}
}

func TestCompileFilter_Invalid(t *testing.T) {
	if _, err := CompileFilter("ada["); err == nil {
		t.Error("expected an error for an unclosed range")
	}
}

func TestFilter_ApplyKeepsOrder(t *testing.T) {
	list := List{
		{UID: "1", FirstName: "Anna"},
		{UID: "2", FirstName: "Bob"},
		{UID: "3", FirstName: "Hanna"},
	}
	f, err := CompileFilter(" Anna ")
	if err != nil {
		t.Fatal(err)
	}
	if f.Pattern() != "Anna" {
		t.Errorf("Pattern() = %q, want trimmed input", f.Pattern())
	}

	got := f.Apply(list)
	if len(got) != 2 || got[0].UID != "1" || got[1].UID != "3" {
		t.Errorf("Apply = %v, want [1 3]", got.UIDs())
	}
}
