package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

func TestParse(t *testing.T) {
	stop := stopwords.FromText("и в на")
	tests := []struct {
		name      string
		raw       string
		wantPlus  []string
		wantMinus []string
	}{
		{"empty", "", []string{}, []string{}},
		{"plus only", "пушистый кот", []string{"кот", "пушистый"}, []string{}},
		{"dedup", "кот кот -пёс -пёс", []string{"кот"}, []string{"пёс"}},
		{"stop words dropped", "кот и в -на", []string{"кот"}, []string{}},
		{"minus", "ухоженный -кот", []string{"ухоженный"}, []string{"кот"}},
		{"same term both ways", "кот -кот", []string{"кот"}, []string{"кот"}},
		{"inner minus kept", "северо-запад", []string{"северо-запад"}, []string{}},
		{"extra spaces", "  кот   пёс ", []string{"кот", "пёс"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.raw, stop)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if got := q.Plus(); !reflect.DeepEqual(got, tt.wantPlus) {
				t.Errorf("plus = %q, want %q", got, tt.wantPlus)
			}
			if got := q.Minus(); !reflect.DeepEqual(got, tt.wantMinus) {
				t.Errorf("minus = %q, want %q", got, tt.wantMinus)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	stop := stopwords.New()
	for _, raw := range []string{
		"--пушистый",
		"кот --пёс",
		"-",
		"кот - пёс",
		"скво\x12рец",
		"кот\x00",
	} {
		t.Run(raw, func(t *testing.T) {
			q, err := Parse(raw, stop)
			if err == nil {
				t.Fatalf("expected error, got query %+v", q)
			}
			if !errors.Is(err, apperrors.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	q, err := Parse("пёс -хвост кот -ошейник кот", stopwords.New())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := q.Normalized(); got != "кот пёс -ошейник -хвост" {
		t.Errorf("Normalized() = %q", got)
	}
}

func BenchmarkParse(b *testing.B) {
	stop := stopwords.FromText("и в на")
	queries := []struct {
		name  string
		query string
	}{
		{"single", "кот"},
		{"plus_minus", "пушистый ухоженный кот -ошейник"},
		{"stop_words", "кот и пёс в ошейнике на прогулке"},
		{"long", "белый кот модный ошейник пушистый хвост ухоженный пёс выразительные глаза -скворец -евгений"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Parse(q.query, stop); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
