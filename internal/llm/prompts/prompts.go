package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
)

// Templates holds the built-in prompt files.
//
//go:embed templates/*.txt
var Templates embed.FS

var candidateDataRegex = regexp.MustCompile(`(?i)</?\s*candidate-data\b[^>]*>`)

const maxValueRunes = 2000

// Section is the part of the assessment a comment describes.
type Section string

const (
	SectionVision    Section = "vision"
	SectionWorkstyle Section = "workstyle"
	SectionSummary   Section = "summary"
)

// Variant is the prompt generation under comparison.
type Variant string

const (
	VariantOriginal Variant = "original"
	VariantAdvanced Variant = "advanced"
)

// Sections lists every section in display order.
var Sections = []Section{SectionVision, SectionWorkstyle, SectionSummary}

// Variants lists both variants.
var Variants = []Variant{VariantOriginal, VariantAdvanced}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[string]*template.Template
)

// IsValidSection checks if a section name is valid.
func IsValidSection(s string) bool {
	for _, sec := range Sections {
		if string(sec) == s {
			return true
		}
	}
	return false
}

// Line is one key/value pair rendered into a prompt.
type Line struct {
	Key   string
	Value string
}

// Data holds template data for comment prompts.
type Data struct {
	FitGrade  string
	Vision    []Line
	Workstyle []Line
	Questions []Line
	Fued      string
	TurnOver  string
}

// Load parses prompt templates from fsys. Templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		templates = make(map[string]*template.Template)
		for _, s := range Sections {
			for _, v := range Variants {
				name := key(s, v)
				file := "templates/" + name + ".txt"
				content, err := fs.ReadFile(fsys, file)
				if err != nil {
					loadErr = errors.New("failed to read prompt file " + file + ": " + err.Error())
					return
				}
				tmpl, err := template.New(name).Parse(string(content))
				if err != nil {
					loadErr = errors.New("failed to parse prompt template " + file + ": " + err.Error())
					return
				}
				templates[name] = tmpl
			}
		}
	})
	return loadErr
}

func key(s Section, v Variant) string {
	return string(s) + "_" + string(v)
}

// Build renders the prompt for one assessment result.
func Build(s Section, v Variant, result model.CandidateResult) (string, error) {
	if templates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := templates[key(s, v)]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", fmt.Errorf("unknown prompt %s/%s", s, v)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewData(result)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewData flattens a result into sanitized template data.
func NewData(result model.CandidateResult) Data {
	view := review.Present(model.ReviewRecord{Result: result})
	d := Data{
		FitGrade:  sanitize(view.FitGrade),
		Vision:    scoreLines(result.VisionResult),
		Workstyle: scoreLines(result.WorkstyleResult),
		Fued:      sanitize(view.Fued.Text),
		TurnOver:  sanitize(view.TurnOver.Text),
	}
	for _, q := range view.Questions {
		d.Questions = append(d.Questions, Line{Key: sanitize(q.Key), Value: sanitize(q.Value)})
	}
	return d
}

func scoreLines(scores map[string]float64) []Line {
	axes := review.ScoreAxes(scores)
	lines := make([]Line, len(axes))
	for i, a := range axes {
		lines[i] = Line{Key: sanitize(a), Value: strconv.FormatFloat(scores[a], 'f', -1, 64)}
	}
	return lines
}

func sanitize(s string) string {
	s = candidateDataRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxValueRunes {
		s = string([]rune(s)[:maxValueRunes]) + " [truncated]"
	}
	return s
}
