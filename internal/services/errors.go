package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by the pipeline matches exactly one
// of these with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUpstreamGeneration = errors.New("upstream generation failed")
	ErrStorageWrite       = errors.New("storage write failed")
	ErrStorageRead        = errors.New("storage read failed")
	ErrRecord             = errors.New("record store failed")
	ErrNoReadyItems       = errors.New("no ready training items")
	ErrExportInProgress   = errors.New("export already in progress")
)

// Stage errors. Each also matches its class (see stageClass).
var (
	ErrAudioUpload       = errors.New("audio upload failed")
	ErrPromptUpload      = errors.New("prompt upload failed")
	ErrRecordInsert      = errors.New("record insert failed")
	ErrArchiveUpload     = errors.New("archive upload failed")
	ErrNoExportableItems = errors.New("no training items could be exported")
)

var stageClass = map[error]error{
	ErrAudioUpload:       ErrStorageWrite,
	ErrPromptUpload:      ErrStorageWrite,
	ErrArchiveUpload:     ErrStorageWrite,
	ErrRecordInsert:      ErrRecord,
	ErrNoExportableItems: ErrNoReadyItems,
}

// PipelineError carries the failing operation, the error kind and the cause.
type PipelineError struct {
	Kind error
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if op := strings.TrimSpace(e.Op); op != "" {
		b.WriteString(op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if e.Kind != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PipelineError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 3)
	if e.Kind != nil {
		out = append(out, e.Kind)
		if class, ok := stageClass[e.Kind]; ok {
			out = append(out, class)
		}
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func pipelineErr(kind error, op string, err error) error {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

func validationErr(op, format string, args ...any) error {
	return &PipelineError{Kind: ErrValidation, Op: op, Err: fmt.Errorf(format, args...)}
}
