// internal/sim/defense.go
package sim

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/cyberrange/internal/protocol"
)

// ClassifyRequest carries one defense_classify attempt.
type ClassifyRequest struct {
	Classification   string
	Objective        string
	Confidence       float64
	DetectionProfile string
	AttackID         string
}

// detectionProfiles maps attack categories to the detection approach that
// counters them best. An exact profile pick earns a bonus, "hybrid" a smaller
// one.
var detectionProfiles = map[string]string{
	"recon":       "anomaly",
	"brute":       "signature",
	"priv":        "signature",
	"persistence": "anomaly",
}

const (
	styleBonusExact  = 5
	styleBonusHybrid = 2
	triageAward      = 5
)

// Classify resolves a defender's category guess against the pending defense
// queue. Matching is FIFO by default; an attackId targets a specific ticket
// anywhere in the queue, and on Beginner a category guess that misses the head
// may match a deeper ticket instead. Attempts are rate limited per defender.
func (s *Session) Classify(conn *ParticipantConn, req ClassifyRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defender := conn.Name
	if s.status == protocol.StatusEnded {
		conn.WriteError("simulation has ended")
		return
	}
	if s.status == protocol.StatusPaused {
		s.sendToUnsafe(defender, map[string]interface{}{
			"type":    protocol.TypeClassificationResult,
			"awarded": 0,
			"correct": false,
			"message": "Simulation is paused by the instructor.",
		})
		return
	}

	now := s.now()
	if last, ok := s.defenderCooldowns[defender]; ok {
		if wait := s.cooldown - now.Sub(last); wait > 0 {
			s.sendToUnsafe(defender, map[string]interface{}{
				"type":     protocol.TypeClassificationResult,
				"awarded":  0,
				"correct":  false,
				"cooldown": true,
				"message":  fmt.Sprintf("Please wait %.1fs before your next classification.", wait.Seconds()),
			})
			return
		}
	}

	s.purgeDefendedHeadUnsafe()
	if len(s.pendingDefenses) == 0 {
		s.sendToUnsafe(defender, map[string]interface{}{
			"type":    protocol.TypeClassificationResult,
			"awarded": 0,
			"correct": false,
			"message": "No pending attacks to defend.",
		})
		return
	}

	guess := normalizeToken(firstNonEmpty(req.Classification, req.Objective))
	ticket, idx := s.selectTicketUnsafe(req.AttackID, guess)
	s.defenderCooldowns[defender] = now

	correct := ticketMatchesGuess(ticket, req.Classification, req.Objective, guess)

	awarded := 0
	message := fmt.Sprintf("Incorrect category, expected: %s", ticket.Category)
	if correct {
		awarded = ticket.Points + styleBonus(ticket.Category, req.DetectionProfile)
		s.scores[defender] += awarded
		ticket.DefendedBy = defender
		s.pendingDefenses = append(s.pendingDefenses[:idx], s.pendingDefenses[idx+1:]...)
		s.metrics.SuccessfulBlocks++
		message = fmt.Sprintf("Correct! %s attack blocked. +%d points.", ticket.Category, awarded)

		s.broadcastUnsafe(map[string]interface{}{
			"type":         protocol.TypeObjectiveDefended,
			"defender":     defender,
			"attacker":     ticket.Attacker,
			"objective_id": ticket.ObjectiveID,
			"category":     ticket.Category,
		}, protocol.RoleDefender, protocol.RoleObserver)
	}

	s.sendToUnsafe(defender, map[string]interface{}{
		"type":            protocol.TypeClassificationResult,
		"correct":         correct,
		"awarded":         awarded,
		"total":           s.scores[defender],
		"confidence_used": req.Confidence,
		"objective_id":    ticket.ObjectiveID,
		"message":         message,
	})
	s.broadcastUnsafe(map[string]interface{}{
		"type":     protocol.TypeDefenderAction,
		"defender": defender,
		"action":   "classify",
		"correct":  correct,
	}, protocol.RoleObserver)
	if correct {
		s.broadcastScoreUnsafe(defender)
	}
	s.notifyUnsafe("detection",
		fmt.Sprintf("%s classified %s attack (correct=%t)", defender, ticket.Category, correct), defender)
}

// Triage is the Beginner-mode binary true-positive/false-positive call: "tp"
// claims the oldest pending attack, "fp" asserts the queue is clean.
func (s *Session) Triage(conn *ParticipantConn, mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defender := conn.Name
	if s.status != protocol.StatusRunning {
		conn.WriteError("simulation is not running")
		return
	}
	if s.difficulty != DifficultyBeginner {
		s.sendToUnsafe(defender, map[string]interface{}{
			"type":    protocol.TypeDefenseResult,
			"correct": false,
			"award":   0,
			"message": "Triage mode is only available on Beginner difficulty.",
		})
		return
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != "tp" && mode != "fp" {
		conn.WriteError("triage mode must be tp or fp")
		return
	}

	now := s.now()
	if last, ok := s.defenderCooldowns[defender]; ok {
		if wait := s.cooldown - now.Sub(last); wait > 0 {
			s.sendToUnsafe(defender, map[string]interface{}{
				"type":     protocol.TypeDefenseResult,
				"correct":  false,
				"award":    0,
				"cooldown": true,
				"message":  fmt.Sprintf("Please wait %.1fs before your next call.", wait.Seconds()),
			})
			return
		}
	}
	s.defenderCooldowns[defender] = now

	s.purgeDefendedHeadUnsafe()
	pending := len(s.pendingDefenses) > 0

	correct := false
	award := 0
	var message string
	switch mode {
	case "tp":
		if pending {
			head := s.pendingDefenses[0]
			head.DefendedBy = defender
			s.pendingDefenses = s.pendingDefenses[1:]
			s.metrics.SuccessfulBlocks++
			correct = true
			award = triageAward
			s.scores[defender] += award
			message = fmt.Sprintf("Correct! %s attack triaged. +%d points.", head.Category, award)
			s.broadcastUnsafe(map[string]interface{}{
				"type":         protocol.TypeObjectiveDefended,
				"defender":     defender,
				"attacker":     head.Attacker,
				"objective_id": head.ObjectiveID,
				"category":     head.Category,
			}, protocol.RoleDefender, protocol.RoleObserver)
		} else {
			message = "False alarm: there was no pending attack."
		}
	case "fp":
		if pending {
			message = "Missed it: there was a real pending attack."
		} else {
			correct = true
			message = "Correct, no attack in progress."
		}
	}

	s.sendToUnsafe(defender, map[string]interface{}{
		"type":    protocol.TypeDefenseResult,
		"correct": correct,
		"award":   award,
		"total":   s.scores[defender],
		"message": message,
	})
	s.broadcastUnsafe(map[string]interface{}{
		"type":     protocol.TypeDefenderAction,
		"defender": defender,
		"action":   "triage",
		"correct":  correct,
	}, protocol.RoleObserver)
	if award > 0 {
		s.broadcastScoreUnsafe(defender)
	}
	s.notifyUnsafe("detection",
		fmt.Sprintf("%s triaged %s (correct=%t)", defender, mode, correct), defender)
}

// purgeDefendedHeadUnsafe drops already-resolved tickets from the queue head
// so the next FIFO pick is always live. Assumes the lock is held.
func (s *Session) purgeDefendedHeadUnsafe() {
	for len(s.pendingDefenses) > 0 && s.pendingDefenses[0].DefendedBy != "" {
		s.pendingDefenses = s.pendingDefenses[1:]
	}
}

// selectTicketUnsafe picks the ticket a classification attempt applies to.
// Precedence: explicit attackId anywhere in the queue, then (Beginner only) the
// oldest ticket whose category matches the guess, then the queue head. Callers
// must ensure the queue is non-empty. Assumes the lock is held.
func (s *Session) selectTicketUnsafe(attackID, guess string) (*DefenseTicket, int) {
	if attackID != "" {
		for i, t := range s.pendingDefenses {
			if t.DefendedBy == "" && (t.EventID == attackID || t.ID.String() == attackID) {
				return t, i
			}
		}
	}
	if s.difficulty == DifficultyBeginner && guess != "" {
		for i, t := range s.pendingDefenses {
			if t.DefendedBy == "" && t.Category == guess {
				return t, i
			}
		}
	}
	return s.pendingDefenses[0], 0
}

// ticketMatchesGuess decides correctness: the canonical category token, or the
// raw category as a substring of either free-text field.
func ticketMatchesGuess(t *DefenseTicket, classification, objective, guess string) bool {
	if guess == t.Category {
		return true
	}
	for _, text := range []string{classification, objective} {
		if text != "" && strings.Contains(strings.ToLower(text), t.Category) {
			return true
		}
	}
	return false
}

// styleBonus awards extra points when the defender's chosen detection profile
// fits the attack category.
func styleBonus(category, profile string) int {
	profile = strings.ToLower(strings.TrimSpace(profile))
	switch profile {
	case "":
		return 0
	case "hybrid":
		return styleBonusHybrid
	case detectionProfiles[category]:
		return styleBonusExact
	}
	return 0
}

// tokenAliases canonicalizes the category spellings defenders actually type.
var tokenAliases = map[string]string{
	"reconnaissance":       "recon",
	"scan":                 "recon",
	"scanning":             "recon",
	"bruteforce":           "brute",
	"brute force":          "brute",
	"brute-force":          "brute",
	"privilege escalation": "priv",
	"privesc":              "priv",
	"priv esc":             "priv",
	"escalation":           "priv",
	"persist":              "persistence",
	"backdoor":             "persistence",
}

// normalizeToken lowercases and canonicalizes a category guess.
func normalizeToken(raw string) string {
	token := strings.ToLower(strings.TrimSpace(raw))
	if canon, ok := tokenAliases[token]; ok {
		return canon
	}
	return token
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
