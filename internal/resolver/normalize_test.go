package resolver

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Two LARGE Coffees!! ", "two large coffees"},
		{"actually, make that a medium", "a medium"},
		{"chocolate-iced donut, please", "chocolate-iced donut please"},
		{"switch it to decaf instead", "it to decaf"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractQuantity(t *testing.T) {
	cases := []struct {
		in   []string
		want int
		rest []string
	}{
		{[]string{"two", "coffees"}, 2, []string{"coffees"}},
		{[]string{"a", "coffee"}, 1, []string{"coffee"}},
		{[]string{"a", "dozen", "donut", "holes"}, 12, []string{"a", "donut", "holes"}},
		{[]string{"3", "lattes"}, 3, []string{"lattes"}},
		{[]string{"coffee"}, 1, []string{"coffee"}},
	}
	for _, tc := range cases {
		got, rest := ExtractQuantity(tc.in)
		if got != tc.want || !reflect.DeepEqual(rest, tc.rest) {
			t.Fatalf("ExtractQuantity(%v) = %d %v, want %d %v", tc.in, got, rest, tc.want, tc.rest)
		}
	}
}

func TestScore(t *testing.T) {
	if got := Score("coffee", "coffee"); got != 1.0 {
		t.Fatalf("identical = %f", got)
	}
	if got := Score("coffees", "coffee"); got != 1.0 {
		t.Fatalf("plural = %f", got)
	}
	if got := Score("flux capacitor", "coffee"); got != 0 {
		t.Fatalf("disjoint = %f", got)
	}
	partial := Score("pumpkin", "pumpkin latte")
	if partial <= 0 || partial >= 1 {
		t.Fatalf("partial = %f", partial)
	}
	if Score("pumpkin latte", "pumpkin") != partial {
		t.Fatal("score is not symmetric")
	}
}

func TestContainsPhrase(t *testing.T) {
	if !containsPhrase("coffee with cream and sugar", "cream") {
		t.Fatal("expected match")
	}
	if containsPhrase("creamer in my coffee", "cream") {
		t.Fatal("matched inside a longer word")
	}
	if !containsPhrase("no whipped cream please", "no whipped cream") {
		t.Fatal("expected multi-word match")
	}
}
