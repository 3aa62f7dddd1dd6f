package main

import "testing"

func TestParseSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{args: nil, want: 1},
		{args: []string{"3"}, want: 3},
		{args: []string{"0"}, wantErr: true},
		{args: []string{"x"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseSteps(tt.args)
		if (err != nil) != tt.wantErr {
			t.Fatalf("unexpected error for %v: got=%v wantErr=%v", tt.args, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("unexpected steps for %v: got=%d want=%d", tt.args, got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	got, err := parseVersion(" 7 ")
	if err != nil || got != 7 {
		t.Fatalf("unexpected version: got=%d err=%v want=7", got, err)
	}
}
