package dbcopilot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alnah/go-dbcopilot/internal/assets"
	"github.com/alnah/go-dbcopilot/internal/yamlutil"
)

// Prompt keys of a prompt file.
const (
	KeyQueryGenerator  = "QUERY_GENERATOR_PROMPT"
	KeyAnswerGenerator = "NL_RESPONSE_GENERATOR"
	KeyReportGenerator = "NL_BR_RESPONSE_GENERATOR"
)

// Prompts holds the three system prompts of the pipeline. Load it once at
// startup and share it between requests.
type Prompts struct {
	QueryGenerator  string
	AnswerGenerator string
	ReportGenerator string
}

// LoadPrompts reads the named prompt set through loader, then applies the
// keys found in overridePath (when non-empty) on top of it.
func LoadPrompts(loader assets.AssetLoader, set, overridePath string) (*Prompts, error) {
	if set == "" {
		set = assets.DefaultPromptSetName
	}

	data, err := loader.LoadPromptSet(set)
	if err != nil {
		return nil, fmt.Errorf("loading prompt set %q: %w", set, err)
	}
	values, err := yamlutil.StringMap(data)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt set %q: %w", set, err)
	}

	if overridePath != "" {
		override, err := yamlutil.ReadStringMap(overridePath)
		if err != nil {
			return nil, fmt.Errorf("reading prompt file %s: %w", overridePath, err)
		}
		for k, v := range override {
			values[k] = v
		}
	}

	return PromptsFromMap(values)
}

// PromptsFromMap builds Prompts from a key/value mapping. Every key must be
// present and non-blank; unknown keys are ignored.
func PromptsFromMap(values map[string]string) (*Prompts, error) {
	p := &Prompts{
		QueryGenerator:  strings.TrimSpace(values[KeyQueryGenerator]),
		AnswerGenerator: strings.TrimSpace(values[KeyAnswerGenerator]),
		ReportGenerator: strings.TrimSpace(values[KeyReportGenerator]),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports every blank prompt.
func (p *Prompts) Validate() error {
	var missing []string
	if strings.TrimSpace(p.QueryGenerator) == "" {
		missing = append(missing, KeyQueryGenerator)
	}
	if strings.TrimSpace(p.AnswerGenerator) == "" {
		missing = append(missing, KeyAnswerGenerator)
	}
	if strings.TrimSpace(p.ReportGenerator) == "" {
		missing = append(missing, KeyReportGenerator)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrPromptMissing, strings.Join(missing, ", "))
	}
	return nil
}

// answerSystem picks the answer-stage prompt.
func (p *Prompts) answerSystem(businessReport bool) string {
	if businessReport {
		return p.ReportGenerator
	}
	return p.AnswerGenerator
}
