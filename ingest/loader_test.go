package ingest

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/cfkit/core"
	"github.com/rushteam/cfkit/store"
)

func TestLoader_Read(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		want  []core.Interaction
	}{
		{
			name:  "comma separated (default)",
			input: "101,A\n101,B\n102,A\n",
			want: []core.Interaction{
				{UserID: "101", ItemID: "A"},
				{UserID: "101", ItemID: "B"},
				{UserID: "102", ItemID: "A"},
			},
		},
		{
			name:  "custom separator",
			input: "101::A\n102::B\n",
			sep:   "::",
			want: []core.Interaction{
				{UserID: "101", ItemID: "A"},
				{UserID: "102", ItemID: "B"},
			},
		},
		{
			name:  "blank lines and surrounding whitespace skipped",
			input: "\n  101,A  \n\n102,B\n",
			want: []core.Interaction{
				{UserID: "101", ItemID: "A"},
				{UserID: "102", ItemID: "B"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loader{Sep: tt.sep}
			got, err := l.Read(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoader_Read_FailFast(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing column", input: "101,A\n102\n"},
		{name: "too many columns", input: "101,A,extra\n"},
		{name: "empty user", input: ",A\n"},
		{name: "empty item", input: "101,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loader{}
			_, err := l.Read(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Read() expected error")
			}
			if !core.IsMalformedRecord(err) {
				t.Errorf("Read() error = %v, want MALFORMED_RECORD", err)
			}
		})
	}
}

func TestLoader_Read_SkipPolicy(t *testing.T) {
	input := "101,A\nbroken\n102,B\n,C\n"
	l := &Loader{Policy: PolicySkip}

	got, err := l.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []core.Interaction{
		{UserID: "101", ItemID: "A"},
		{UserID: "102", ItemID: "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
	if l.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", l.Skipped)
	}
}

func TestLoader_LoadInto(t *testing.T) {
	ctx := context.Background()
	dst := store.NewMemoryInteractions()
	l := &Loader{}

	n, err := l.LoadInto(ctx, strings.NewReader("101,A\n101,B\n"), dst)
	if err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}
	if n != 2 {
		t.Errorf("LoadInto() = %d, want 2", n)
	}

	items, err := dst.ItemsOf(ctx, "101")
	if err != nil {
		t.Fatalf("ItemsOf() error = %v", err)
	}
	if !items.Has("A") || !items.Has("B") {
		t.Errorf("ItemsOf(101) = %v, want {A B}", items)
	}
}
