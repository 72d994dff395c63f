package stopwords

import (
	"reflect"
	"testing"
)

func TestNewDropsEmpty(t *testing.T) {
	s := New("и", "", "в", "и")
	if s.Len() != 2 {
		t.Fatalf("expected 2 stop words, got %d", s.Len())
	}
	if s.Contains("") {
		t.Error("empty string must not be a stop word")
	}
}

func TestFromTextAndAdd(t *testing.T) {
	s := FromText("  и в на ")
	if got, want := s.Words(), []string{"в", "и", "на"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Words() = %q, want %q", got, want)
	}
	s.Add("на с  \x12")
	for _, w := range []string{"и", "в", "на", "с", "\x12"} {
		if !s.Contains(w) {
			t.Errorf("expected %q to be a stop word", w)
		}
	}
	if s.Len() != 5 {
		t.Errorf("expected 5 stop words after union, got %d", s.Len())
	}
}

func TestFilter(t *testing.T) {
	s := FromText("и в")
	got := s.Filter([]string{"кот", "и", "пёс", "кот", "в"})
	want := []string{"кот", "пёс", "кот"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %q, want %q", got, want)
	}
}
