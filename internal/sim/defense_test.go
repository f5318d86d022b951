// internal/sim/defense_test.go
package sim

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/cyberrange/internal/protocol"
)

// enqueueTicket plants a pending defense directly, bypassing the attack
// pipeline, so queue mechanics can be tested in isolation.
func enqueueTicket(s *Session, attacker, objectiveID, category string, points int, eventID string) *DefenseTicket {
	t := &DefenseTicket{
		ID:          uuid.New(),
		Attacker:    attacker,
		ObjectiveID: objectiveID,
		Category:    category,
		Points:      points,
		EventID:     eventID,
		CreatedAt:   s.now(),
	}
	s.mu.Lock()
	s.pendingDefenses = append(s.pendingDefenses, t)
	s.mu.Unlock()
	return t
}

func TestClassifyCorrectAwardsTicketPoints(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	observer := joinParticipant(t, s, "olive", protocol.RoleObserver)
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "e1")

	s.Classify(defender, ClassifyRequest{Classification: "recon", Confidence: 0.9})

	msgs := drain(defender)
	res := lastOfType(msgs, protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
	assert.Equal(t, 10, res["awarded"])
	assert.Equal(t, 10, res["total"])
	assert.Equal(t, 0.9, res["confidence_used"])
	assert.Equal(t, "recon_scan", res["objective_id"])

	assert.Equal(t, 10, s.Score("dana"))
	assert.Empty(t, s.pendingDefenses, "resolved ticket leaves the queue")
	assert.NotNil(t, lastOfType(msgs, protocol.TypeObjectiveDefended))

	obsMsgs := drain(observer)
	action := lastOfType(obsMsgs, protocol.TypeDefenderAction)
	require.NotNil(t, action)
	assert.Equal(t, "classify", action["action"])
	assert.Equal(t, true, action["correct"])
}

func TestClassifyIncorrectRevealsExpectedCategory(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "priv_esc", "priv", 10, "e1")

	s.Classify(defender, ClassifyRequest{Classification: "recon"})

	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, false, res["correct"])
	assert.Equal(t, 0, res["awarded"])
	assert.Contains(t, res["message"], "expected: priv")
	assert.Equal(t, 0, s.Score("dana"))
	assert.Len(t, s.pendingDefenses, 1, "missed ticket stays queued")
}

func TestClassifyFreeTextAndAliasesMatch(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)

	cases := []struct {
		category string
		guess    string
	}{
		{"recon", "reconnaissance"},
		{"brute", "brute force"},
		{"priv", "privilege escalation"},
		{"priv", "looks like a priv esc attempt"},
	}
	for _, tc := range cases {
		enqueueTicket(s, "mallory", "obj", tc.category, 10, "")
		s.Classify(defender, ClassifyRequest{Classification: tc.guess})
		res := lastOfType(drain(defender), protocol.TypeClassificationResult)
		require.NotNil(t, res)
		assert.Equal(t, true, res["correct"], "guess %q should match category %q", tc.guess, tc.category)
		s.mu.Lock()
		s.defenderCooldowns = map[string]time.Time{}
		s.mu.Unlock()
	}
}

func TestClassifyEmptyQueue(t *testing.T) {
	s, clock := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)

	s.Classify(defender, ClassifyRequest{Classification: "recon"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Contains(t, res["message"], "No pending attacks")

	// An empty-queue attempt must not start a cooldown.
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")
	clock.Advance(time.Millisecond)
	s.Classify(defender, ClassifyRequest{Classification: "recon"})
	res = lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
}

func TestClassifyCooldown(t *testing.T) {
	s, clock := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")
	enqueueTicket(s, "mallory", "priv_esc", "priv", 10, "")

	s.Classify(defender, ClassifyRequest{Classification: "recon"})
	require.Equal(t, 10, s.Score("dana"))
	drain(defender)

	clock.Advance(500 * time.Millisecond)
	s.Classify(defender, ClassifyRequest{Classification: "priv"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["cooldown"])
	assert.Equal(t, 0, res["awarded"])
	assert.Len(t, s.pendingDefenses, 1, "rejected attempt touches nothing")

	// The rejected attempt did not reset the window: 2s after the first
	// processed attempt the defender may act again.
	clock.Advance(1500 * time.Millisecond)
	s.Classify(defender, ClassifyRequest{Classification: "priv"})
	res = lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
	assert.Equal(t, 20, s.Score("dana"))
}

func TestClassifyResolvesTicketAtMostOnce(t *testing.T) {
	s, clock := setupTestSession(t, DifficultyIntermediate)
	dana := joinParticipant(t, s, "dana", protocol.RoleDefender)
	rob := joinParticipant(t, s, "rob", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")

	s.Classify(dana, ClassifyRequest{Classification: "recon"})
	clock.Advance(3 * time.Second)
	s.Classify(rob, ClassifyRequest{Classification: "recon"})

	res := lastOfType(drain(rob), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Contains(t, res["message"], "No pending attacks")
	assert.Equal(t, 10, s.Score("dana"))
	assert.Equal(t, 0, s.Score("rob"))
}

func TestClassifyFIFOOrder(t *testing.T) {
	s, clock := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "e1")
	enqueueTicket(s, "mallory", "priv_esc", "priv", 20, "e2")

	// Guess fits the second ticket, but outside Beginner the head rules.
	s.Classify(defender, ClassifyRequest{Classification: "priv"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, false, res["correct"])
	assert.Equal(t, "recon_scan", res["objective_id"])

	clock.Advance(3 * time.Second)
	s.Classify(defender, ClassifyRequest{Classification: "recon"})
	res = lastOfType(drain(defender), protocol.TypeClassificationResult)
	assert.Equal(t, true, res["correct"])
}

func TestClassifyAttackIDTargetsAnywhereInQueue(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyHard)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "e1")
	target := enqueueTicket(s, "mallory", "persistence", "persistence", 20, "e2")

	s.Classify(defender, ClassifyRequest{Classification: "persistence", AttackID: "e2"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
	assert.Equal(t, "persistence", res["objective_id"])
	assert.Equal(t, "dana", target.DefendedBy)

	require.Len(t, s.pendingDefenses, 1)
	assert.Equal(t, "recon_scan", s.pendingDefenses[0].ObjectiveID, "head untouched")
}

func TestClassifyUnknownAttackIDFallsBackToHead(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyHard)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "e1")

	s.Classify(defender, ClassifyRequest{Classification: "recon", AttackID: "nope"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
	assert.Equal(t, "recon_scan", res["objective_id"])
}

func TestBeginnerAssistMatchesDeeperTicket(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyBeginner)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
	enqueueTicket(s, "mallory", "priv_esc", "priv", 10, "e1")
	match := enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "e2")

	s.Classify(defender, ClassifyRequest{Classification: "reconnaissance"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
	assert.Equal(t, "recon_scan", res["objective_id"])
	assert.Equal(t, "dana", match.DefendedBy)
	require.Len(t, s.pendingDefenses, 1)
	assert.Equal(t, "priv_esc", s.pendingDefenses[0].ObjectiveID)
}

func TestStyleBonus(t *testing.T) {
	cases := []struct {
		name     string
		profile  string
		expected int
	}{
		{"exact match", "signature", 15},
		{"hybrid", "hybrid", 12},
		{"mismatch", "anomaly", 10},
		{"none", "", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := setupTestSession(t, DifficultyIntermediate)
			defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
			enqueueTicket(s, "mallory", "bruteforce_login", "brute", 10, "")

			s.Classify(defender, ClassifyRequest{Classification: "brute", DetectionProfile: tc.profile})
			res := lastOfType(drain(defender), protocol.TypeClassificationResult)
			require.NotNil(t, res)
			assert.Equal(t, tc.expected, res["awarded"])
		})
	}
}

func TestTriage(t *testing.T) {
	t.Run("tp with pending attack", func(t *testing.T) {
		s, _ := setupTestSession(t, DifficultyBeginner)
		defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
		enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")

		s.Triage(defender, "tp")
		res := lastOfType(drain(defender), protocol.TypeDefenseResult)
		require.NotNil(t, res)
		assert.Equal(t, true, res["correct"])
		assert.Equal(t, triageAward, res["award"])
		assert.Equal(t, triageAward, s.Score("dana"))
		assert.Empty(t, s.pendingDefenses)
	})

	t.Run("tp on empty queue", func(t *testing.T) {
		s, _ := setupTestSession(t, DifficultyBeginner)
		defender := joinParticipant(t, s, "dana", protocol.RoleDefender)

		s.Triage(defender, "tp")
		res := lastOfType(drain(defender), protocol.TypeDefenseResult)
		require.NotNil(t, res)
		assert.Equal(t, false, res["correct"])
		assert.Equal(t, 0, s.Score("dana"))
	})

	t.Run("fp on empty queue scores nothing but is correct", func(t *testing.T) {
		s, _ := setupTestSession(t, DifficultyBeginner)
		defender := joinParticipant(t, s, "dana", protocol.RoleDefender)

		s.Triage(defender, "fp")
		res := lastOfType(drain(defender), protocol.TypeDefenseResult)
		require.NotNil(t, res)
		assert.Equal(t, true, res["correct"])
		assert.Equal(t, 0, res["award"])
	})

	t.Run("fp with pending attack", func(t *testing.T) {
		s, _ := setupTestSession(t, DifficultyBeginner)
		defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
		enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")

		s.Triage(defender, "fp")
		res := lastOfType(drain(defender), protocol.TypeDefenseResult)
		require.NotNil(t, res)
		assert.Equal(t, false, res["correct"])
		assert.Len(t, s.pendingDefenses, 1)
	})

	t.Run("unavailable outside Beginner", func(t *testing.T) {
		s, _ := setupTestSession(t, DifficultyHard)
		defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
		enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")

		s.Triage(defender, "tp")
		res := lastOfType(drain(defender), protocol.TypeDefenseResult)
		require.NotNil(t, res)
		assert.Equal(t, false, res["correct"])
		assert.Contains(t, res["message"], "Beginner")
		assert.Len(t, s.pendingDefenses, 1)
	})

	t.Run("cooldown applies", func(t *testing.T) {
		s, _ := setupTestSession(t, DifficultyBeginner)
		defender := joinParticipant(t, s, "dana", protocol.RoleDefender)
		enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")
		enqueueTicket(s, "mallory", "priv_esc", "priv", 10, "")

		s.Triage(defender, "tp")
		drain(defender)
		s.Triage(defender, "tp")
		res := lastOfType(drain(defender), protocol.TypeDefenseResult)
		require.NotNil(t, res)
		assert.Equal(t, true, res["cooldown"])
		assert.Len(t, s.pendingDefenses, 1)
	})
}

func TestDefendedTicketsPurgedFromHead(t *testing.T) {
	s, _ := setupTestSession(t, DifficultyIntermediate)
	defender := joinParticipant(t, s, "dana", protocol.RoleDefender)

	stale := enqueueTicket(s, "mallory", "recon_scan", "recon", 10, "")
	stale.DefendedBy = "rob"
	enqueueTicket(s, "mallory", "priv_esc", "priv", 10, "")

	s.Classify(defender, ClassifyRequest{Classification: "priv"})
	res := lastOfType(drain(defender), protocol.TypeClassificationResult)
	require.NotNil(t, res)
	assert.Equal(t, true, res["correct"])
	assert.Equal(t, "priv_esc", res["objective_id"])
	assert.Empty(t, s.pendingDefenses)
}
