package main

import (
	"strings"
	"testing"
)

func TestReadLines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"今日は\n天気です\n", 2},
		{"\n  \n今日は", 1},
		{"", 0},
	}

	for _, tt := range tests {
		got, err := readLines(strings.NewReader(tt.input))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("readLines(%q) = %v (len=%d), want len=%d", tt.input, got, len(got), tt.want)
		}
	}
}
