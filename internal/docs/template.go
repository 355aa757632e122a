// Package docs renders the markdown document each phase persists alongside
// its structured result. Rendering is pure string templating with no state.
package docs

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	varRe      = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)
	ifOpenRe   = regexp.MustCompile(`\{\{#if\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
	ifCloseStr = "{{/if}}"
)

// Vars maps template variable names to rendered values.
type Vars map[string]string

// Render expands tmpl with vars. {{name}} is replaced with its value; a
// missing variable is an error. {{#if name}}...{{/if}} blocks are kept only
// when the variable is set and non-empty.
func Render(tmpl string, vars Vars) (string, error) {
	result, err := stripConditionals(tmpl, vars)
	if err != nil {
		return "", err
	}

	var missing []string
	expanded := varRe.ReplaceAllStringFunc(result, func(match string) string {
		name := varRe.FindStringSubmatch(match)[1]
		if val, ok := vars[name]; ok {
			return val
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// stripConditionals resolves {{#if}} blocks, innermost first.
func stripConditionals(tmpl string, vars Vars) (string, error) {
	result := tmpl
	for {
		closeIdx := strings.Index(result, ifCloseStr)
		if closeIdx == -1 {
			break
		}
		opens := ifOpenRe.FindAllStringIndex(result[:closeIdx], -1)
		if opens == nil {
			return "", fmt.Errorf("dangling %s without matching {{#if}}", ifCloseStr)
		}
		open := opens[len(opens)-1]
		name := ifOpenRe.FindStringSubmatch(result[open[0]:open[1]])[1]
		body := result[open[1]:closeIdx]

		var replacement string
		if val, ok := vars[name]; ok && val != "" {
			replacement = body
		}
		result = result[:open[0]] + replacement + result[closeIdx+len(ifCloseStr):]
	}
	if loc := ifOpenRe.FindString(result); loc != "" {
		return "", fmt.Errorf("unclosed conditional block: %s", loc)
	}
	return result, nil
}

// Bullets renders items as a markdown bullet list, or a placeholder line
// when there are none.
func Bullets(items []string) string {
	if len(items) == 0 {
		return "_none_"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
