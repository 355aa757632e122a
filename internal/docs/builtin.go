package docs

import "fmt"

// builtinTemplates maps phase name to its document template.
var builtinTemplates = map[string]string{
	"specification": specificationTemplate,
	"pseudocode":    pseudocodeTemplate,
	"architecture":  architectureTemplate,
	"refinement":    refinementTemplate,
	"completion":    completionTemplate,
}

// ForPhase returns the built-in template for a phase.
func ForPhase(phase string) (string, error) {
	tmpl, ok := builtinTemplates[phase]
	if !ok {
		return "", fmt.Errorf("no document template for phase %q", phase)
	}
	return tmpl, nil
}

const specificationTemplate = `# Specification

## Task
{{task}}

## Requirements
{{requirements}}

## Acceptance Criteria
{{acceptance_criteria}}

## User Stories
{{user_stories}}

## Edge Cases
{{edge_cases}}
{{#if remediation}}

## Remediation Applied
{{remediation}}
{{/if}}
`

const pseudocodeTemplate = `# Pseudocode

## Task
{{task}}

## Algorithms
{{algorithms}}

## Data Structures
{{data_structures}}

## Control Flow
{{control_flow}}

## Complexity Notes
{{complexity_notes}}
{{#if remediation}}

## Remediation Applied
{{remediation}}
{{/if}}
`

const architectureTemplate = `# Architecture

## Task
{{task}}

## Components
{{components}}

## Interfaces
{{interfaces}}

## Data Flow
{{data_flow}}

## Technology Stack
{{technology_stack}}
{{#if remediation}}

## Remediation Applied
{{remediation}}
{{/if}}
`

const refinementTemplate = `# Refinement

## Task
{{task}}

## Optimizations
{{optimizations}}

## Test Results
{{test_results}}

## Refactoring Notes
{{refactoring_notes}}

## Performance
{{performance_metrics}}

## Review Findings
{{review_findings}}
{{#if remediation}}

## Remediation Applied
{{remediation}}
{{/if}}
`

const completionTemplate = `# Completion

## Task
{{task}}

## Deliverables
{{deliverables}}

## Documentation
{{documentation}}

## Validation Results
{{validation_results}}

## Deployment Notes
{{deployment_notes}}
{{#if remediation}}

## Remediation Applied
{{remediation}}
{{/if}}
`
