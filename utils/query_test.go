package utils

import "testing"

func TestParseSort(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "created_at DESC"},
		{"title:asc", "title ASC"},
		{"priority:desc", "priority DESC"},
		{"updated_at", "updated_at ASC"},
		{"owner_id:asc", "created_at DESC"},       // not allow-listed
		{"title:sideways", "created_at DESC"},     // bad direction
		{"title;drop table", "created_at DESC"},   // junk never reaches SQL
	}
	for _, tc := range cases {
		if got := ParseSort(tc.in); got != tc.want {
			t.Errorf("ParseSort(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParsePageAndLimit(t *testing.T) {
	if got := ParsePage(""); got != 1 {
		t.Errorf("default page = %d, want 1", got)
	}
	if got := ParsePage("0"); got != 1 {
		t.Errorf("page 0 = %d, want 1", got)
	}
	if got := ParsePage("3"); got != 3 {
		t.Errorf("page 3 = %d, want 3", got)
	}
	if got := ParseLimit(""); got != 10 {
		t.Errorf("default limit = %d, want 10", got)
	}
	if got := ParseLimit("500"); got != 100 {
		t.Errorf("limit 500 = %d, want clamp to 100", got)
	}
	if got := ParseLimit("0"); got != 1 {
		t.Errorf("limit 0 = %d, want clamp to 1", got)
	}
	if got := ParseLimit("not-a-number"); got != 10 {
		t.Errorf("junk limit = %d, want 10", got)
	}
}
