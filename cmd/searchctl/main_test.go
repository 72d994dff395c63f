package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

const input = `# id|status|ratings|text
0|ACTUAL|8 -3|белый кот и модный ошейник
1|ACTUAL|7 2 7|пушистый кот пушистый хвост

2|actual|5 -12 2 1|ухоженный пёс выразительные глаза
3|BANNED|9|ухоженный скворец евгений
`

func TestReadEvents(t *testing.T) {
	events, err := readEvents(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events", len(events))
	}
	if events[3].Status != "BANNED" || events[3].Text != "ухоженный скворец евгений" || events[3].Ratings[0] != 9 {
		t.Errorf("unexpected event %+v", events[3])
	}
}

func TestParseLine(t *testing.T) {
	ev, err := parseLine("5||| текст | с чертой")
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID != 5 || ev.Status != "" || len(ev.Ratings) != 0 || ev.Text != " текст | с чертой" {
		t.Errorf("unexpected event %+v", ev)
	}
	for _, bad := range []string{"1|ACTUAL|1", "x|ACTUAL|1|t", "1|ACTUAL|1 y|t"} {
		if _, err := parseLine(bad); err == nil {
			t.Errorf("parseLine(%q) succeeded", bad)
		}
	}
	if _, err := readEvents(strings.NewReader("1|ACTUAL|1|ok\nbroken\n")); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line number in error, got %v", err)
	}
}

func TestQueryEvents(t *testing.T) {
	events, err := readEvents(strings.NewReader(input + "1|ACTUAL||дубликат\n"))
	if err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	if err := queryEvents(&out, &errOut, "и в на", events, "пушистый ухоженный кот", "ACTUAL"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "{ document_id = 1,") || !strings.HasPrefix(lines[2], "{ document_id = 2,") {
		t.Errorf("output:\n%s", out.String())
	}
	if !strings.Contains(errOut.String(), "document 1 skipped") {
		t.Errorf("duplicate not reported: %q", errOut.String())
	}

	err = queryEvents(&out, &errOut, "", events, "кот -", "ACTUAL")
	if !errors.Is(err, apperrors.ErrInvalidQuery) {
		t.Errorf("expected invalid query, got %v", err)
	}
	if err := queryEvents(&out, &errOut, "", events, "кот", "LOST"); err == nil {
		t.Error("expected unknown status error")
	}
}
