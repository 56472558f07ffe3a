package shared

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBuildFilename(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		part   string
		author string
		want   string
	}{
		{
			name:   "reserved characters become spaces",
			title:  "A/B",
			part:   "P1",
			author: "C:D",
			want:   "A B - P1 - C D",
		},
		{
			name:   "every reserved character",
			title:  `a\b/c?d*e>f<g|h:i`,
			part:   "p",
			author: "u",
			want:   "a b c d e f g h i - p - u",
		},
		{
			name:   "empty fields",
			title:  "",
			part:   "",
			author: "",
			want:   " -  - ",
		},
		{
			name:   "unicode is kept",
			title:  "晴天",
			part:   "第1集",
			author: "周杰伦",
			want:   "晴天 - 第1集 - 周杰伦",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildFilename(tt.title, tt.part, tt.author)
			if got != tt.want {
				t.Errorf("BuildFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	inputs := []string{
		`x\y`, "a/b/c", "what?", "**", "<tag>", "a|b", "12:34", "plain", "",
	}

	for _, in := range inputs {
		t.Run("idempotent "+in, func(t *testing.T) {
			once := SanitizeFilename(in)
			twice := SanitizeFilename(once)
			if once != twice {
				t.Errorf("SanitizeFilename not idempotent: %q then %q", once, twice)
			}
			if strings.ContainsAny(once, `\/?*><|:`) {
				t.Errorf("SanitizeFilename(%q) = %q still contains reserved characters", in, once)
			}
			if len([]rune(once)) != len([]rune(in)) {
				t.Errorf("SanitizeFilename(%q) changed length to %q", in, once)
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	tc := []struct {
		name    string
		expr    string
		n       int
		want    []int
		wantErr bool
	}{
		{name: "empty selects all", expr: "", n: 3, want: []int{0, 1, 2}},
		{name: "all keyword", expr: "ALL", n: 2, want: []int{0, 1}},
		{name: "single", expr: "2", n: 3, want: []int{1}},
		{name: "list and range", expr: "1,3-5", n: 6, want: []int{0, 2, 3, 4}},
		{name: "duplicates and order", expr: "4, 1-2 ,2", n: 4, want: []int{0, 1, 3}},
		{name: "out of range", expr: "7", n: 3, wantErr: true},
		{name: "zero", expr: "0", n: 3, wantErr: true},
		{name: "reversed range", expr: "3-1", n: 3, wantErr: true},
		{name: "garbage", expr: "a-b", n: 3, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.expr, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSelection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSelection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvertSelection(t *testing.T) {
	got := InvertSelection([]int{0, 2}, 4)
	want := []int{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InvertSelection() = %v, want %v", got, want)
	}

	if got := InvertSelection(nil, 0); len(got) != 0 {
		t.Errorf("InvertSelection(nil, 0) = %v, want empty", got)
	}

	t.Run("ignores out of range indexes", func(t *testing.T) {
		got := InvertSelection([]int{-1, 1, 5, 6, 7}, 3)
		want := []int{0, 2}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("InvertSelection() = %v, want %v", got, want)
		}
		if got := InvertSelection([]int{4, 5}, 1); !reflect.DeepEqual(got, []int{0}) {
			t.Errorf("InvertSelection() = %v, want [0]", got)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favdl.log")

	logger, f, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.Info("hello", "entry", "BV1xx")
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "entry=BV1xx") {
		t.Errorf("log file missing entry, got %q", string(data))
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("GenerateID returned duplicate ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %q", a)
	}
}
