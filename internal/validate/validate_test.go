package validate

import "testing"

func TestQ(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  iphone ", "iphone", true},
		{"Galaxy S21+", "Galaxy S21+", true},
		{"", "", false},
		{"   ", "", false},
		{"<script>", "<script>", false},
	}
	for _, tc := range cases {
		got, ok := Q(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Q(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestQ_Truncates(t *testing.T) {
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	got, ok := Q(long)
	if !ok || len(got) != 50 {
		t.Fatalf("want 50 chars ok, got %d %v", len(got), ok)
	}
}

func TestID(t *testing.T) {
	if _, ok := ID("APL-1_x"); !ok {
		t.Fatal("expected valid id")
	}
	for _, bad := range []string{"", "a b", "../etc", "x;drop"} {
		if _, ok := ID(bad); ok {
			t.Errorf("ID(%q) should fail", bad)
		}
	}
}

func TestLabel(t *testing.T) {
	for _, good := range []string{"Black", "Space Gray", "128GB", "1TB", "Blue (Pacific)"} {
		if _, ok := Label(good); !ok {
			t.Errorf("Label(%q) should pass", good)
		}
	}
	for _, bad := range []string{"", "<b>", "a\"b"} {
		if _, ok := Label(bad); ok {
			t.Errorf("Label(%q) should fail", bad)
		}
	}
}
