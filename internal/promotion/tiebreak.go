package promotion

import "strings"

// SubjectGroup is one tie-break category. A subject belongs to the group when
// its name contains any of the keywords, ignoring case.
type SubjectGroup struct {
	Name     string
	Keywords []string
}

// PriorityGroups is evaluated in order when two students share a total.
var PriorityGroups = []SubjectGroup{
	{Name: "English", Keywords: []string{"english", "ইংরেজি"}},
	{Name: "Bengali", Keywords: []string{"bengali", "bangla", "বাংলা"}},
	{Name: "Math", Keywords: []string{"math", "mathematics", "গণিত"}},
	{Name: "Science", Keywords: []string{"science", "বিজ্ঞান"}},
	{Name: "Technology", Keywords: []string{"technology", "ict"}},
}

// Matches reports whether subject falls in the group.
func (g SubjectGroup) Matches(subject string) bool {
	name := strings.ToLower(subject)
	for _, kw := range g.Keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// GroupScore is the best mark among the student's subjects in the group, or 0.
func (g SubjectGroup) GroupScore(subjectMarks map[string]int) int {
	best := 0
	found := false
	for subject, marks := range subjectMarks {
		if !g.Matches(subject) {
			continue
		}
		if !found || marks > best {
			best = marks
			found = true
		}
	}
	return best
}

func groupScores(subjectMarks map[string]int) []int {
	scores := make([]int, len(PriorityGroups))
	for i, g := range PriorityGroups {
		scores[i] = g.GroupScore(subjectMarks)
	}
	return scores
}
