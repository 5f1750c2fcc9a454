package terminal

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestLogStore_Tail(t *testing.T) {
	s := NewLogStore()
	for i := 0; i < 10; i++ {
		s.AppendDevice(fmt.Sprintf("line %d", i))
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{1, []string{"line 9"}},
		{3, []string{"line 7", "line 8", "line 9"}},
		{50, nil}, // checked by length below
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := s.Tail(tt.n)
			if tt.n > s.Len() {
				if len(got) != s.Len() || got[0].Text != "line 0" {
					t.Errorf("Tail(%d) should return every entry in order, got %v", tt.n, got)
				}
				return
			}
			var texts []string
			for _, e := range got {
				texts = append(texts, e.Text)
			}
			if !reflect.DeepEqual(texts, tt.want) {
				t.Errorf("Tail(%d) = %v, want %v", tt.n, texts, tt.want)
			}
		})
	}
}

func TestLogStore_TailDoesNotAlias(t *testing.T) {
	s := NewLogStore()
	s.AppendDevice("original")

	tail := s.Tail(1)
	tail[0].Text = "mutated"

	if got := s.Tail(1)[0].Text; got != "original" {
		t.Errorf("store entry changed through Tail result: %q", got)
	}
}

func TestLogStore_Since(t *testing.T) {
	s := NewLogStore()
	s.AppendDevice("a")
	s.AppendSystem("b")
	s.Append(Entry{Origin: OriginEcho, Text: "c"})

	got := s.Since(1)
	if len(got) != 2 || got[0].Origin != OriginSystem || got[1].Origin != OriginEcho {
		t.Errorf("Since(1) = %+v", got)
	}
	if s.Since(3) != nil {
		t.Error("Since(Len()) should be nil")
	}
	if len(s.Since(-1)) != 3 {
		t.Error("Since(-1) should return everything")
	}
}

func TestLogStore_ConcurrentAppendAndRead(t *testing.T) {
	s := NewLogStore()
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.AppendDevice(fmt.Sprintf("%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = s.Tail(20)
		}
	}()
	wg.Wait()

	entries := s.Since(0)
	if len(entries) != 1000 {
		t.Fatalf("Len = %d, want 1000", len(entries))
	}
	for i, e := range entries {
		if e.Text != fmt.Sprintf("%d", i) {
			t.Fatalf("entry %d = %q, order not preserved", i, e.Text)
		}
	}
}
