package phase

import "fmt"

// specificationPhase derives requirements, acceptance criteria, user stories
// and edge cases from the task description. It has no upstream dependencies.
type specificationPhase struct{}

func (specificationPhase) Name() string           { return Specification }
func (specificationPhase) Dependencies() []string { return nil }

func (p specificationPhase) Produce(in Inputs) (Payload, string, error) {
	features := taskFeatures(in.Task)

	requirements := make([]string, 0, len(features)+1)
	requirements = append(requirements, fmt.Sprintf("implement the described task: %s", in.Task))
	for _, f := range features {
		requirements = append(requirements, fmt.Sprintf("provide a working %s surface", f))
	}

	acceptance := make([]string, 0, len(requirements))
	for i, req := range requirements {
		acceptance = append(acceptance, fmt.Sprintf("criterion %d: %s, verified by an automated check", i+1, req))
	}

	stories := []string{
		fmt.Sprintf("as a user, I want %s so that the task outcome is usable", in.Task),
		"as an operator, I want observable progress through every stage",
	}
	edgeCases := []string{
		"empty or whitespace-only task description",
		"re-run after a partial prior run (idempotent handoff)",
		"backend unavailable for the entire run",
	}

	result := Payload{
		"phase":               Specification,
		"task":                in.Task,
		"requirements":        requirements,
		"acceptance_criteria": acceptance,
		"user_stories":        stories,
		"edge_cases":          edgeCases,
	}
	applyRemediation(result, in)

	doc, err := renderDoc(Specification, in.Task, result, in)
	if err != nil {
		return nil, "", err
	}
	return result, doc, nil
}
