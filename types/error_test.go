package types

import (
	"errors"
	"strings"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrUpstreamError, "model invocation failed").
		WithCause(root).
		WithNodeID("generate")

	if GetErrorCode(err) != ErrUpstreamError {
		t.Fatalf("expected code %s, got %s", ErrUpstreamError, GetErrorCode(err))
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if err.NodeID != "generate" {
		t.Fatalf("expected node id to be recorded")
	}
	if got := err.Error(); !strings.Contains(got, "root") {
		t.Fatalf("expected cause in error string, got %q", got)
	}
}

func TestError_NotFoundClassification(t *testing.T) {
	t.Parallel()

	if !IsNotFound(NewErrorf(ErrPipelineNotFound, "pipeline %q not found", "chat")) {
		t.Fatalf("pipeline-not-found should classify as not found")
	}
	if !IsNotFound(NewError(ErrSourceNotFound, "source empty")) {
		t.Fatalf("source-not-found should classify as not found")
	}
	if IsNotFound(NewError(ErrInvalidPipelineConfig, "bad node")) {
		t.Fatalf("invalid config should not classify as not found")
	}
	if IsNotFound(errors.New("plain")) {
		t.Fatalf("plain error should not classify as not found")
	}
}

func TestKnowledgeEntry_EffectivePriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		entry KnowledgeEntry
		want  float64
	}{
		{"priority wins", KnowledgeEntry{Priority: 2.5, Weight: 1.5}, 2.5},
		{"weight fallback", KnowledgeEntry{Weight: 1.5}, 1.5},
		{"default", KnowledgeEntry{}, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.entry.EffectivePriority(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
