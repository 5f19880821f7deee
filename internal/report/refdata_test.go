package report

import "testing"

func TestResolveID(t *testing.T) {
	options := []ReferenceOption{
		{ID: idPass, Name: "Pass"},
		{ID: idFail, Name: "Fail"},
	}

	tests := []struct {
		name   string
		value  string
		want   string
		wantOK bool
	}{
		{name: "blank", value: "", want: "", wantOK: true},
		{name: "whitespace only", value: "   ", want: "", wantOK: true},
		{name: "id passthrough", value: idFail, want: idFail, wantOK: true},
		{name: "name lookup", value: "Pass", want: idPass, wantOK: true},
		{name: "case-insensitive", value: "pAsS", want: idPass, wantOK: true},
		{name: "padded name", value: " Fail ", want: idFail, wantOK: true},
		{name: "unknown name", value: "Sideways", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveID(options, tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ResolveID(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ResolveID(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsReferenceID(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{idPass, true},
		{" " + idPass + " ", true},
		{"Pass", false},
		{"", false},
		{"not-a-uuid-at-all", false},
	}
	for _, tt := range tests {
		if got := IsReferenceID(tt.value); got != tt.want {
			t.Errorf("IsReferenceID(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestReferenceSetLookups(t *testing.T) {
	refs := testRefs()

	id, ok := refs.ImageTypeID("beforeIssueImages")
	if !ok || id != idImgBefore {
		t.Errorf("ImageTypeID(beforeIssueImages) = %q, %v", id, ok)
	}
	if _, ok := refs.ImageTypeID("polaroids"); ok {
		t.Error("ImageTypeID(polaroids) resolved, want miss")
	}

	id, ok = refs.ReportTypeID(TypeCorrective)
	if !ok || id != idTypeCM {
		t.Errorf("ReportTypeID(%s) = %q, %v", TypeCorrective, id, ok)
	}
}
