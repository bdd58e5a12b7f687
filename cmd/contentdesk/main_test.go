package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"contentdesk"},
			want: []string{"contentdesk"},
		},
		{
			name: "direct task id first token",
			in:   []string{"contentdesk", "task-12"},
			want: []string{"contentdesk", "tasks", "show", "task-12"},
		},
		{
			name: "direct enquiry id",
			in:   []string{"contentdesk", "enquiry-3"},
			want: []string{"contentdesk", "enquiries", "show", "enquiry-3"},
		},
		{
			name: "direct task id after value flag",
			in:   []string{"contentdesk", "--dir", "./tmp-test", "task-12"},
			want: []string{"contentdesk", "--dir", "./tmp-test", "tasks", "show", "task-12"},
		},
		{
			name: "direct task id after equals flag",
			in:   []string{"contentdesk", "--dir=./tmp-test", "task-12"},
			want: []string{"contentdesk", "--dir=./tmp-test", "tasks", "show", "task-12"},
		},
		{
			name: "direct task id after bool flag",
			in:   []string{"contentdesk", "--pretty", "task-12"},
			want: []string{"contentdesk", "--pretty", "tasks", "show", "task-12"},
		},
		{
			name: "direct task id after double dash",
			in:   []string{"contentdesk", "--dir", "./tmp-test", "--", "task-12"},
			want: []string{"contentdesk", "--dir", "./tmp-test", "--", "tasks", "show", "task-12"},
		},
		{
			name: "non-numeric suffix not rewritten",
			in:   []string{"contentdesk", "task-abc"},
			want: []string{"contentdesk", "task-abc"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"contentdesk", "tasks", "show", "task-12"},
			want: []string{"contentdesk", "tasks", "show", "task-12"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"contentdesk", "wat"},
			want: []string{"contentdesk", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
