package docs

import (
	"strings"
	"testing"
)

func TestRenderVariables(t *testing.T) {
	out, err := Render("# {{title}}\n{{body}}", Vars{"title": "Spec", "body": "content"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "# Spec\ncontent" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := Render("{{title}} {{absent}}", Vars{"title": "x"})
	if err == nil {
		t.Fatal("expected error for missing variable")
	}
	if !strings.Contains(err.Error(), "absent") {
		t.Errorf("error should name missing variable: %v", err)
	}
}

func TestRenderConditionals(t *testing.T) {
	tmpl := "start{{#if extra}} [{{extra}}]{{/if}} end"

	out, err := Render(tmpl, Vars{"extra": "note"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "start [note] end" {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = Render(tmpl, Vars{"extra": ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "start end" {
		t.Errorf("conditional should be dropped for empty var: %q", out)
	}
}

func TestRenderUnbalancedConditionals(t *testing.T) {
	if _, err := Render("{{#if a}}open", Vars{"a": "1"}); err == nil {
		t.Error("expected error for unclosed block")
	}
	if _, err := Render("close{{/if}}", nil); err == nil {
		t.Error("expected error for dangling close")
	}
}

func TestForPhaseTemplatesRender(t *testing.T) {
	vars := Vars{
		"task":                "t",
		"requirements":        "r",
		"acceptance_criteria": "a",
		"user_stories":        "u",
		"edge_cases":          "e",
		"algorithms":          "al",
		"data_structures":     "d",
		"control_flow":        "c",
		"complexity_notes":    "cn",
		"components":          "co",
		"interfaces":          "i",
		"data_flow":           "df",
		"technology_stack":    "ts",
		"optimizations":       "o",
		"test_results":        "tr",
		"refactoring_notes":   "rn",
		"performance_metrics": "pm",
		"review_findings":     "rf",
		"deliverables":        "de",
		"documentation":       "doc",
		"validation_results":  "v",
		"deployment_notes":    "dn",
	}
	for _, phase := range []string{"specification", "pseudocode", "architecture", "refinement", "completion"} {
		tmpl, err := ForPhase(phase)
		if err != nil {
			t.Fatalf("ForPhase(%s): %v", phase, err)
		}
		if _, err := Render(tmpl, vars); err != nil {
			t.Errorf("render %s: %v", phase, err)
		}
	}
	if _, err := ForPhase("unknown"); err == nil {
		t.Error("expected error for unknown phase")
	}
}

func TestBullets(t *testing.T) {
	if got := Bullets(nil); got != "_none_" {
		t.Errorf("empty bullets = %q", got)
	}
	got := Bullets([]string{"a", "b"})
	if got != "- a\n- b" {
		t.Errorf("bullets = %q", got)
	}
}
