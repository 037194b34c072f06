package services

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const captionTemplateEnv = "CAPTION_TEMPLATE_YAML"

//go:embed caption_template.yaml
var captionTemplateFS embed.FS

// CaptionTemplate is the fixed instruction and generation settings for
// captions.
type CaptionTemplate struct {
	Version     string  `yaml:"version"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	System      string  `yaml:"system"`
}

var (
	captionTemplateOnce  sync.Once
	captionTemplateCache CaptionTemplate
	captionTemplateErr   error
)

// DefaultCaptionTemplate returns the embedded template, or the file named by
// CAPTION_TEMPLATE_YAML when set.
func DefaultCaptionTemplate() (CaptionTemplate, error) {
	captionTemplateOnce.Do(func() {
		captionTemplateCache, captionTemplateErr = loadCaptionTemplate()
	})
	return captionTemplateCache, captionTemplateErr
}

func loadCaptionTemplate() (CaptionTemplate, error) {
	data, err := readCaptionTemplate()
	if err != nil {
		return CaptionTemplate{}, err
	}
	return parseCaptionTemplate(data)
}

func readCaptionTemplate() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(captionTemplateEnv)); path != "" {
		return os.ReadFile(path)
	}
	return captionTemplateFS.ReadFile("caption_template.yaml")
}

func parseCaptionTemplate(data []byte) (CaptionTemplate, error) {
	var tpl CaptionTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return CaptionTemplate{}, fmt.Errorf("caption template: %w", err)
	}
	tpl.Version = strings.TrimSpace(tpl.Version)
	tpl.Model = strings.TrimSpace(tpl.Model)
	tpl.System = strings.TrimSpace(tpl.System)
	switch {
	case tpl.Version == "":
		return CaptionTemplate{}, errors.New("caption template: version required")
	case tpl.Model == "":
		return CaptionTemplate{}, errors.New("caption template: model required")
	case tpl.System == "":
		return CaptionTemplate{}, errors.New("caption template: system instruction required")
	case tpl.MaxTokens <= 0:
		return CaptionTemplate{}, errors.New("caption template: max_tokens must be positive")
	}
	return tpl, nil
}
