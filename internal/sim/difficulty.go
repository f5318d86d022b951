// internal/sim/difficulty.go
package sim

// DifficultyProfile is the static ruleset selected per session. Changing a
// session's difficulty mid-run only affects subsequent assignment, hint and
// penalty decisions; objectives already issued keep their point values.
type DifficultyProfile struct {
	Key                string
	ObjectiveCount     int
	HintsEnabled       bool
	HintsQuota         int
	HardObjectiveCount int
	PassScore          int
	PenalizeIrrelevant bool
}

const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyHard         = "Hard"
)

// IrrelevantCommandPenalty is deducted (floored at zero) for commands that
// neither complete an objective nor trip a signature, on difficulties with
// PenalizeIrrelevant set.
const IrrelevantCommandPenalty = 3

var difficultyProfiles = map[string]DifficultyProfile{
	DifficultyBeginner: {
		Key:                DifficultyBeginner,
		ObjectiveCount:     6,
		HintsEnabled:       true,
		HintsQuota:         12,
		HardObjectiveCount: 1,
		PassScore:          40,
	},
	DifficultyIntermediate: {
		Key:                DifficultyIntermediate,
		ObjectiveCount:     8,
		HardObjectiveCount: 1,
		PassScore:          60,
	},
	DifficultyHard: {
		Key:                DifficultyHard,
		ObjectiveCount:     10,
		HardObjectiveCount: 2,
		PassScore:          80,
		PenalizeIrrelevant: true,
	},
}

// ProfileFor returns the rules for a difficulty name, defaulting to Beginner
// for anything unknown.
func ProfileFor(difficulty string) DifficultyProfile {
	if p, ok := difficultyProfiles[difficulty]; ok {
		return p
	}
	return difficultyProfiles[DifficultyBeginner]
}

// ValidDifficulty reports whether the name matches a known profile.
func ValidDifficulty(difficulty string) bool {
	_, ok := difficultyProfiles[difficulty]
	return ok
}
