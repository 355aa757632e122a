package phase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sparckit/sparc/internal/docs"
)

// upstreamList reads a string-list field from a dependency's payload.
func upstreamList(in Inputs, dep, field string) []string {
	payload, ok := in.Upstream[dep]
	if !ok {
		return nil
	}
	switch t := payload[field].(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// remediationNote summarizes an attached remediation context for inclusion
// in the result and document; empty when none is attached.
func remediationNote(in Inputs) string {
	if in.Remediation == nil {
		return ""
	}
	var b strings.Builder
	for _, issue := range in.Remediation.Issues {
		fmt.Fprintf(&b, "- addressed: %s\n", issue)
	}
	for _, rec := range in.Remediation.Recommendations {
		fmt.Fprintf(&b, "- applied: %s\n", rec)
	}
	return strings.TrimRight(b.String(), "\n")
}

// applyRemediation records the accepted context on the payload. The listed
// issues name result criteria; producers always emit every criterion, so the
// record is what marks the re-run as a remediation attempt.
func applyRemediation(p Payload, in Inputs) {
	if in.Remediation == nil {
		return
	}
	p["remediation_applied"] = map[string]interface{}{
		"issues":          in.Remediation.Issues,
		"recommendations": in.Remediation.Recommendations,
	}
}

// stringify renders a payload field for document templating.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return docs.Bullets(t)
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return docs.Bullets(items)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, 0, len(keys))
		for _, k := range keys {
			items = append(items, fmt.Sprintf("%s: %v", k, t[k]))
		}
		return docs.Bullets(items)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renderDoc renders the phase's built-in template from its payload fields.
func renderDoc(name, task string, p Payload, in Inputs) (string, error) {
	tmpl, err := docs.ForPhase(name)
	if err != nil {
		return "", err
	}
	vars := docs.Vars{
		"task":        task,
		"remediation": remediationNote(in),
	}
	for k, v := range p {
		if k == "remediation_applied" {
			continue
		}
		vars[k] = stringify(v)
	}
	return docs.Render(tmpl, vars)
}

// taskFeatures extracts coarse feature hints from the task description used
// by the content heuristics. Purely lexical and deterministic.
func taskFeatures(task string) []string {
	lower := strings.ToLower(task)
	var features []string
	for _, f := range []string{"api", "cli", "service", "pipeline", "storage", "data", "tool", "report"} {
		if strings.Contains(lower, f) {
			features = append(features, f)
		}
	}
	if len(features) == 0 {
		features = []string{"core"}
	}
	return features
}
