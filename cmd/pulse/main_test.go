package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orgpulse/pulse/internal/chart"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/survey"
)

func TestParseFilters(t *testing.T) {
	f, err := parseFilters([]string{"성별:남", "성별:여", "본사/현업:본사"}, 5)
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	if got := f.Fields["성별"]; len(got) != 2 {
		t.Errorf("성별 values = %v", got)
	}
	if f.Below[survey.TenureColumn] != 5 {
		t.Errorf("tenure bound = %v", f.Below)
	}

	tests := []struct {
		name   string
		pairs  []string
		tenure float64
	}{
		{"missing colon", []string{"성별"}, 0},
		{"empty column", []string{":남"}, 0},
		{"negative tenure", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFilters(tt.pairs, tt.tenure); model.CodeOf(err) != model.ErrValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPrintTable(t *testing.T) {
	agg := model.CategoryAggregate{
		Column: "성별",
		Rows: []model.CategoryStat{
			{Category: model.AllCategory, Mean: 3.67, Std: 1.53, Count: 3},
			{Category: "남", Mean: 3, Std: 1.41, Count: 2},
		},
	}
	var buf bytes.Buffer
	printTable(&buf, chart.StatsTable(agg, "리더의 동기부여"))
	out := buf.String()
	for _, want := range []string{"리더의 동기부여", "3.67", "1.41", "남"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRootCommandTree(t *testing.T) {
	root := rootCmd()
	for _, path := range [][]string{{"serve"}, {"aggregate"}, {"feedback", "export"}, {"comments", "generate"}} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not found: %v", path, err)
		}
	}
	if root.Flags().Lookup("addr") == nil {
		t.Error("serve flags should be registered on root")
	}
}
