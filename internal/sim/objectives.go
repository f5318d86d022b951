// internal/sim/objectives.go
package sim

import "math/rand"

// Objective is one scripted attacker task. Completed is monotonic: it flips
// false -> true exactly once, when a command matches one of the objective's
// trigger keywords.
type Objective struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Completed   bool   `json:"completed"`
}

// poolEntry is an objective template in the fixed pool. Triggers double as the
// progressive hint sequence.
type poolEntry struct {
	ID          string
	Description string
	Triggers    []string
	Category    string
}

var objectivePool = []poolEntry{
	{ID: "recon_scan", Description: "Perform reconnaissance scan", Triggers: []string{"nmap", "ping", "nc"}, Category: "recon"},
	{ID: "bruteforce_login", Description: "Attempt brute force login", Triggers: []string{"hydra", "ssh", "ftp"}, Category: "brute"},
	{ID: "priv_esc", Description: "Execute privilege escalation", Triggers: []string{"sudo", "su", "chmod"}, Category: "priv"},
	{ID: "persistence", Description: "Install persistence mechanism", Triggers: []string{"crontab", "systemctl", ".bashrc"}, Category: "persistence"},
	{ID: "web_enum", Description: "Enumerate web services", Triggers: []string{"nikto", "gobuster", "dirb"}, Category: "recon"},
	{ID: "password_harvest", Description: "Harvest credentials or hashes", Triggers: []string{"shadow", "password", "hashcat"}, Category: "priv"},
	{ID: "backdoor_setup", Description: "Deploy a backdoor listener", Triggers: []string{"nc", "socat", "bash"}, Category: "persistence"},
	{ID: "data_exfil", Description: "Exfiltrate data from target", Triggers: []string{"scp", "curl", "wget"}, Category: "persistence"},
	{ID: "lateral_move", Description: "Attempt lateral movement", Triggers: []string{"ssh", "proxychains", "pssh"}, Category: "priv"},
	{ID: "log_clean", Description: "Attempt to clean logs or cover tracks", Triggers: []string{"history", "rm", "shred"}, Category: "persistence"},
}

const (
	basePoints = 10
	hardPoints = 20
)

// poolEntryByID looks up the pool template backing an assigned objective.
func poolEntryByID(id string) (poolEntry, bool) {
	for _, e := range objectivePool {
		if e.ID == id {
			return e, true
		}
	}
	return poolEntry{}, false
}

// categoryOf maps an objective id to the high-level category a defender must
// name to defend it.
func categoryOf(objectiveID string) string {
	e, ok := poolEntryByID(objectiveID)
	if !ok {
		return ""
	}
	return e.Category
}

// drawObjectives draws a randomized difficulty-sized subset of the pool.
// All objectives default to 10 points; HardObjectiveCount distinct entries are
// raised to 20. The rand source is injected so assignment is replayable.
func drawObjectives(rng *rand.Rand, profile DifficultyProfile) []*Objective {
	pool := make([]poolEntry, len(objectivePool))
	copy(pool, objectivePool)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	count := profile.ObjectiveCount
	if count > len(pool) {
		count = len(pool)
	}

	selected := make([]*Objective, 0, count)
	for _, e := range pool[:count] {
		selected = append(selected, &Objective{ID: e.ID, Description: e.Description, Points: basePoints})
	}

	hardN := profile.HardObjectiveCount
	if hardN > len(selected) {
		hardN = len(selected)
	}
	idxs := rng.Perm(len(selected))
	for _, i := range idxs[:hardN] {
		selected[i].Points = hardPoints
	}
	return selected
}
