// internal/sim/session.go
package sim

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/cyberrange/internal/classify"
	"github.com/jason-s-yu/cyberrange/internal/protocol"
)

// ErrMissingNameOrRole is returned for a join without both required fields.
var ErrMissingNameOrRole = errors.New("missing name or role")

// DefaultClassifyCooldown is the minimum interval between a defender's
// classification attempts.
const DefaultClassifyCooldown = 2 * time.Second

// attackSourceIP is the simulated origin shown on attack events.
const attackSourceIP = "192.168.1.100"

// Metrics holds the per-session counters mirrored to instructors.
type Metrics struct {
	TotalEvents         int
	AttacksLaunched     int
	DetectionsTriggered int
	SuccessfulBlocks    int
}

// MetricsSnapshot is the wire form of Metrics plus the live participant count.
type MetricsSnapshot struct {
	TotalEvents         int `json:"totalEvents"`
	AttacksLaunched     int `json:"attacksLaunched"`
	DetectionsTriggered int `json:"detectionsTriggered"`
	SuccessfulBlocks    int `json:"successfulBlocks"`
	Participants        int `json:"participants"`
}

// AttackContext is the last attack seen, kept for the defender UI.
type AttackContext struct {
	By         string    `json:"by"`
	Categories []string  `json:"categories"`
	Threats    []string  `json:"threats"`
	Command    string    `json:"command"`
	EventID    string    `json:"eventId"`
	At         time.Time `json:"ts"`
}

// EventRecord is one entry of the in-memory session event log.
type EventRecord struct {
	At          time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Participant string    `json:"participant,omitempty"`
}

// DefenseTicket is a pending, at-most-once-resolvable record of a completed
// objective awaiting defender classification. Terminal once DefendedBy is set.
type DefenseTicket struct {
	ID          uuid.UUID
	Attacker    string
	ObjectiveID string
	Category    string
	Points      int
	DefendedBy  string
	EventID     string
	CreatedAt   time.Time
}

// ParticipantInfo is one roster entry mirrored to instructors.
type ParticipantInfo struct {
	Name string        `json:"name"`
	Role protocol.Role `json:"role"`
}

// EventSink receives instructor-relevant session events and metric pushes.
// The instructor fan-out hub implements it; sessions never talk to instructor
// connections directly.
type EventSink interface {
	Event(code, eventType, description, participant string)
	Metrics(code string, snap MetricsSnapshot)
	State(code string, status protocol.Status)
	Participants(code string, roster []ParticipantInfo)
}

// Recorder receives a best-effort copy of every logged event, e.g. for a
// Redis-backed audit queue. Implementations must not block.
type Recorder interface {
	Record(code, eventType, description, participant string)
}

// Options configures a Session. Zero values select production defaults.
type Options struct {
	Categorizer classify.Categorizer
	Sink        EventSink
	Recorder    Recorder
	Rand        *rand.Rand
	Now         func() time.Time
	Cooldown    time.Duration
}

// Session is one isolated simulation instance, keyed by lobby code. All state
// is guarded by mu; every public method acquires it, so each handled message
// is atomic with respect to the session.
type Session struct {
	Code string

	mu                 sync.Mutex
	status             protocol.Status
	difficulty         string
	participants       map[string]*ParticipantConn
	scores             map[string]int
	attackerObjectives map[string][]*Objective
	pendingDefenses    []*DefenseTicket
	hintUsage          map[string]int
	hintProgress       map[string]map[string]int
	defenderCooldowns  map[string]time.Time
	metrics            Metrics
	recentAttack       *AttackContext
	eventLog           []EventRecord
	createdAt          time.Time

	categorizer classify.Categorizer
	sink        EventSink
	recorder    Recorder
	rng         *rand.Rand
	now         func() time.Time
	cooldown    time.Duration
}

// seedFor mixes the lobby code into the clock so lobbies created in the same
// instant still draw distinct objective sets.
func seedFor(code string, now time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	return now.UnixNano() ^ int64(h.Sum64())
}

// NewSession initializes an empty session for a lobby code.
func NewSession(code string, opts Options) *Session {
	if opts.Categorizer == nil {
		opts.Categorizer = classify.NewMatcher(classify.DefaultSignatures())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(seedFor(code, opts.Now())))
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = DefaultClassifyCooldown
	}
	return &Session{
		Code:               code,
		status:             protocol.StatusRunning,
		difficulty:         DifficultyBeginner,
		participants:       make(map[string]*ParticipantConn),
		scores:             make(map[string]int),
		attackerObjectives: make(map[string][]*Objective),
		hintUsage:          make(map[string]int),
		hintProgress:       make(map[string]map[string]int),
		defenderCooldowns:  make(map[string]time.Time),
		createdAt:          opts.Now(),
		categorizer:        opts.Categorizer,
		sink:               opts.Sink,
		recorder:           opts.Recorder,
		rng:                opts.Rand,
		now:                opts.Now,
		cooldown:           opts.Cooldown,
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() protocol.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Difficulty returns the active difficulty name.
func (s *Session) Difficulty() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

// ParticipantCount returns how many participants are currently connected.
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// Score returns a participant's current score.
func (s *Session) Score(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[name]
}

// Join registers a participant handle, initializes their score, assigns
// objectives for attackers and announces the join to observers. A rejoin
// under the same name replaces the previous handle and re-issues objectives.
func (s *Session) Join(conn *ParticipantConn) error {
	if conn.Name == "" || conn.Role == "" {
		return ErrMissingNameOrRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.participants[conn.Name]; ok && old != conn {
		s.dropParticipantUnsafe(conn.Name)
	}
	s.participants[conn.Name] = conn
	if _, ok := s.scores[conn.Name]; !ok {
		s.scores[conn.Name] = 0
	}

	if conn.Role == protocol.RoleAttacker {
		s.assignObjectivesUnsafe(conn.Name)
		s.sendToUnsafe(conn.Name, map[string]interface{}{
			"type":       protocol.TypeObjectives,
			"objectives": s.objectivesCopyUnsafe(conn.Name),
		})
	}

	s.broadcastUnsafe(map[string]interface{}{
		"type": protocol.TypeParticipantJoined,
		"name": conn.Name,
		"role": conn.Role,
	}, protocol.RoleObserver)

	profile := ProfileFor(s.difficulty)
	s.sendToUnsafe(conn.Name, map[string]interface{}{
		"type":          protocol.TypeJoinAck,
		"difficulty":    s.difficulty,
		"pass_score":    profile.PassScore,
		"hints_enabled": profile.HintsEnabled,
	})

	s.notifyUnsafe("join", fmt.Sprintf("%s joined as %s", conn.Name, conn.Role), conn.Name)
	s.notifyRosterUnsafe()
	return nil
}

// Leave removes a participant after their connection closed. The handle must
// still be the current one for the name; a stale handle from before a rejoin
// is ignored.
func (s *Session) Leave(conn *ParticipantConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.participants[conn.Name]
	if !ok || current != conn {
		return
	}
	s.dropParticipantUnsafe(conn.Name)
	s.broadcastUnsafe(map[string]interface{}{
		"type": protocol.TypeParticipantLeft,
		"name": conn.Name,
	}, protocol.RoleObserver)
	s.notifyUnsafe("leave", fmt.Sprintf("%s disconnected", conn.Name), conn.Name)
	s.notifyRosterUnsafe()
}

// assignObjectivesUnsafe draws a fresh objective set for an attacker,
// overwriting any prior assignment. Assumes the lock is held.
func (s *Session) assignObjectivesUnsafe(name string) []*Objective {
	objs := drawObjectives(s.rng, ProfileFor(s.difficulty))
	s.attackerObjectives[name] = objs
	return objs
}

// objectivesCopyUnsafe snapshots an attacker's assignment as values. Queued
// messages are marshaled on the writer goroutine, so they must not share
// structs with session state. Assumes the lock is held.
func (s *Session) objectivesCopyUnsafe(name string) []Objective {
	objs := s.attackerObjectives[name]
	out := make([]Objective, len(objs))
	for i, o := range objs {
		out[i] = *o
	}
	return out
}

// RequestObjectives resends the attacker's current objectives, assigning a set
// first if none exists (covers a missed join message).
func (s *Session) RequestObjectives(conn *ParticipantConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attackerObjectives[conn.Name]; !ok {
		s.assignObjectivesUnsafe(conn.Name)
	}
	s.sendToUnsafe(conn.Name, map[string]interface{}{
		"type":       protocol.TypeObjectives,
		"objectives": s.objectivesCopyUnsafe(conn.Name),
	})
}

// Scoreboard sends the full score map to the requester.
func (s *Session) Scoreboard(conn *ParticipantConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make(map[string]int, len(s.scores))
	for k, v := range s.scores {
		scores[k] = v
	}
	s.sendToUnsafe(conn.Name, map[string]interface{}{
		"type":   protocol.TypeScoreboard,
		"scores": scores,
	})
}

// Chat broadcasts a chat message to every participant.
func (s *Session) Chat(sender, message string) {
	if message == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastUnsafe(map[string]interface{}{
		"type":    protocol.TypeChatBroadcast,
		"sender":  sender,
		"message": message,
		"ts":      s.now().Unix(),
	})
	s.notifyUnsafe("chat", fmt.Sprintf("%s: %s", sender, message), sender)
}

// builtinCommands are attacker terminal helpers that never count as attacks.
var builtinCommands = map[string]bool{
	"help": true, "objectives": true, "status": true,
	"hint": true, "hints": true, "score": true,
}

// ExecuteCommand runs the full attack pipeline for one command: helper
// shortcuts, attack event fan-out, objective completion and ticket creation,
// signature detection, hard-mode penalties and the pass-threshold notice.
func (s *Session) ExecuteCommand(conn *ParticipantConn, command string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor := conn.Name
	if s.status == protocol.StatusEnded {
		conn.WriteError("simulation has ended")
		return
	}
	if s.status == protocol.StatusPaused {
		s.sendToUnsafe(actor, commandResult(command, "Simulation is paused by the instructor."))
		return
	}

	if builtinCommands[strings.ToLower(strings.TrimSpace(command))] {
		s.handleBuiltinUnsafe(conn, command)
		return
	}

	eventID := uuid.New().String()

	s.metrics.AttacksLaunched++
	s.broadcastUnsafe(map[string]interface{}{
		"type": protocol.TypeAttackEvent,
		"event": map[string]interface{}{
			"id":       eventID,
			"command":  command,
			"sourceIP": attackSourceIP,
		},
	}, protocol.RoleDefender, protocol.RoleObserver)
	s.notifyUnsafe("attack", fmt.Sprintf("%s executed: %s", actor, command), actor)

	var completed []string
	if conn.Role == protocol.RoleAttacker {
		completed = s.completeObjectivesUnsafe(actor, command, eventID)
	}
	if len(completed) > 0 {
		total := s.scores[actor]
		remaining := 0
		for _, o := range s.attackerObjectives[actor] {
			if !o.Completed {
				remaining++
			}
		}
		s.sendToUnsafe(actor, map[string]interface{}{
			"type":      protocol.TypeObjectivesUpdate,
			"completed": completed,
			"score":     total,
			"remaining": remaining,
		})
		s.broadcastScoreUnsafe(actor)
		for _, objID := range completed {
			s.broadcastUnsafe(map[string]interface{}{
				"type":         protocol.TypeObjectiveCompleted,
				"attacker":     actor,
				"objective_id": objID,
				"category":     categoryOf(objID),
			}, protocol.RoleDefender, protocol.RoleObserver)
		}
	}

	matches := s.categorizer.Classify(command)
	threats := make([]string, 0, len(matches))
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		threats = append(threats, m.Description)
		lines = append(lines, "Matched: "+m.Description)
	}
	output := "Command executed."
	if len(lines) > 0 {
		output = strings.Join(lines, ".\n")
	}
	s.sendToUnsafe(actor, commandResult(command, output))

	s.recentAttack = &AttackContext{
		By:         actor,
		Categories: s.categorizer.Categories(command),
		Threats:    threats,
		Command:    command,
		EventID:    eventID,
		At:         s.now(),
	}

	detected := len(matches) > 0
	s.broadcastUnsafe(map[string]interface{}{
		"type":     protocol.TypeDetectionEvent,
		"method":   "signature",
		"detected": detected,
		"threats":  threats,
	}, protocol.RoleObserver)
	confidence := 0.2
	if detected {
		confidence = 0.7
	}
	s.broadcastUnsafe(map[string]interface{}{
		"type": protocol.TypeDetectionResult,
		"result": map[string]interface{}{
			"eventId":    eventID,
			"detected":   detected,
			"confidence": confidence,
			"threats":    threats,
			"method":     "signature",
		},
	}, protocol.RoleDefender)
	if detected {
		s.metrics.DetectionsTriggered++
		s.sendToUnsafe(actor, map[string]interface{}{
			"type":     protocol.TypeDetectionAlert,
			"message":  "Threat signature detected!",
			"severity": "medium",
		})
		s.notifyUnsafe("detection", fmt.Sprintf("signature detection on command by %s", actor), actor)
	}

	profile := ProfileFor(s.difficulty)
	if conn.Role == protocol.RoleAttacker {
		if len(completed) == 0 && detected && s.difficulty == DifficultyHard {
			s.broadcastUnsafe(map[string]interface{}{
				"type":     protocol.TypeOffObjectiveThreat,
				"attacker": actor,
				"command":  command,
				"threats":  threats,
			}, protocol.RoleDefender, protocol.RoleObserver)
		}
		if len(completed) == 0 && !detected && profile.PenalizeIrrelevant && strings.TrimSpace(command) != "" {
			newScore := s.scores[actor] - IrrelevantCommandPenalty
			if newScore < 0 {
				newScore = 0
			}
			s.scores[actor] = newScore
			s.sendToUnsafe(actor, commandResult(command,
				fmt.Sprintf("Irrelevant/typo detected: -%d points. Current score: %d", IrrelevantCommandPenalty, newScore)))
			s.broadcastScoreUnsafe(actor)
		}
		if profile.PassScore > 0 && s.scores[actor] >= profile.PassScore {
			s.sendToUnsafe(actor, commandResult(command,
				fmt.Sprintf("Goal reached! You have %d points (pass threshold: %d).", s.scores[actor], profile.PassScore)))
		}
	}
}

// completeObjectivesUnsafe marks every incomplete objective whose trigger set
// matches the command, credits the attacker and enqueues one DefenseTicket per
// completion. Assumes the lock is held.
func (s *Session) completeObjectivesUnsafe(attacker, command, eventID string) []string {
	var completed []string
	for _, obj := range s.attackerObjectives[attacker] {
		if obj.Completed {
			continue
		}
		entry, ok := poolEntryByID(obj.ID)
		if !ok {
			continue
		}
		hit := false
		for _, trigger := range entry.Triggers {
			if strings.Contains(command, trigger) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		obj.Completed = true
		s.scores[attacker] += obj.Points
		completed = append(completed, obj.ID)
		s.pendingDefenses = append(s.pendingDefenses, &DefenseTicket{
			ID:          uuid.New(),
			Attacker:    attacker,
			ObjectiveID: obj.ID,
			Category:    entry.Category,
			Points:      obj.Points,
			EventID:     eventID,
			CreatedAt:   s.now(),
		})
	}
	return completed
}

// handleBuiltinUnsafe answers the attacker terminal helper commands inline.
// Assumes the lock is held.
func (s *Session) handleBuiltinUnsafe(conn *ParticipantConn, command string) {
	actor := conn.Name
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "help":
		s.sendToUnsafe(actor, commandResult(command,
			"Commands: objectives/status, hint(s), score.\n"+
				"- objectives/status: show your tasks and progress\n"+
				"- hint(s): get a nudge for remaining tasks\n"+
				"- score: show your current score"))
	case "objectives", "status":
		objs := s.attackerObjectives[actor]
		if len(objs) == 0 {
			s.sendToUnsafe(actor, commandResult(command, "No objectives assigned yet. Use: Request Objectives button."))
			return
		}
		done := 0
		lines := make([]string, 0, len(objs))
		for _, o := range objs {
			mark := " "
			if o.Completed {
				mark = "x"
				done++
			}
			lines = append(lines, fmt.Sprintf("[%s] %s (+%d)", mark, o.Description, o.Points))
		}
		s.sendToUnsafe(actor, commandResult(command,
			fmt.Sprintf("Objectives (%d/%d):\n%s", done, len(objs), strings.Join(lines, "\n"))))
	case "hint", "hints":
		hints := s.hintsForUnsafe(actor)
		if len(hints) == 0 {
			out := "No hints available (quota reached or no pending objectives)."
			if !ProfileFor(s.difficulty).HintsEnabled {
				out = "Hints are disabled for this difficulty."
			}
			s.sendToUnsafe(actor, commandResult(command, out))
			return
		}
		lines := make([]string, 0, len(hints))
		for _, h := range hints {
			lines = append(lines, fmt.Sprintf("- %s: %s", h.ObjectiveID, h.Hint))
		}
		s.sendToUnsafe(actor, commandResult(command, strings.Join(lines, "\n")))
	case "score":
		s.sendToUnsafe(actor, commandResult(command, fmt.Sprintf("Your score: %d", s.scores[actor])))
	}
}

// End terminates the session and notifies everyone. Idempotent.
func (s *Session) End(by string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == protocol.StatusEnded {
		return
	}
	s.status = protocol.StatusEnded
	s.broadcastUnsafe(map[string]interface{}{"type": protocol.TypeSimulationEnd})
	s.notifyUnsafe("end", "Simulation ended", by)
	s.notifyStateUnsafe()
}

// Pause suspends attack and defense processing.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != protocol.StatusRunning {
		return
	}
	s.status = protocol.StatusPaused
	s.broadcastUnsafe(map[string]interface{}{
		"type":    protocol.TypeSimulationPaused,
		"message": "Simulation paused by instructor",
	})
	s.notifyUnsafe("info", "Simulation paused by instructor", "")
	s.notifyStateUnsafe()
}

// Resume reverses Pause.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != protocol.StatusPaused {
		return
	}
	s.status = protocol.StatusRunning
	s.broadcastUnsafe(map[string]interface{}{
		"type":    protocol.TypeSimulationResumed,
		"message": "Simulation resumed by instructor",
	})
	s.notifyUnsafe("info", "Simulation resumed by instructor", "")
	s.notifyStateUnsafe()
}

// SetDifficulty switches the active profile. Already-assigned objectives are
// untouched; only subsequent assignment, hint and penalty decisions change.
func (s *Session) SetDifficulty(difficulty string) error {
	if !ValidDifficulty(difficulty) {
		return fmt.Errorf("unknown difficulty %q", difficulty)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.difficulty = difficulty
	s.broadcastUnsafe(map[string]interface{}{
		"type":       protocol.TypeDifficultyUpdated,
		"difficulty": difficulty,
	})
	s.notifyUnsafe("config", fmt.Sprintf("difficulty set to %s", difficulty), "")
	return nil
}

// InstructorBroadcast pushes a free-text announcement to every participant.
func (s *Session) InstructorBroadcast(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastUnsafe(map[string]interface{}{
		"type":    protocol.TypeInstructorBroadcast,
		"message": message,
	})
	s.notifyUnsafe("info", fmt.Sprintf("instructor broadcast: %s", message), "")
}

// NoteDetectionConfig acknowledges a defender detection-config change; it has
// no gameplay effect but is mirrored to instructors.
func (s *Session) NoteDetectionConfig(actor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyUnsafe("config", fmt.Sprintf("%s updated detection config", actor), actor)
}

// StateSnapshot captures the session state sent to a newly connected
// instructor dashboard.
func (s *Session) StateSnapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	participants := make([]ParticipantInfo, 0, len(s.participants))
	for name, conn := range s.participants {
		participants = append(participants, ParticipantInfo{Name: name, Role: conn.Role})
	}
	scores := make(map[string]int, len(s.scores))
	for k, v := range s.scores {
		scores[k] = v
	}
	events := make([]EventRecord, len(s.eventLog))
	copy(events, s.eventLog)
	snap := map[string]interface{}{
		"status":       s.status,
		"difficulty":   s.difficulty,
		"participants": participants,
		"scores":       scores,
		"metrics":      s.snapshotUnsafe(),
		"events":       events,
	}
	if s.recentAttack != nil {
		snap["recent_attack"] = *s.recentAttack
	}
	return snap
}

// broadcastScoreUnsafe announces a participant's new total to everyone.
// Assumes the lock is held.
func (s *Session) broadcastScoreUnsafe(name string) {
	s.broadcastUnsafe(map[string]interface{}{
		"type":  protocol.TypeScoreUpdate,
		"name":  name,
		"score": s.scores[name],
	})
}

// snapshotUnsafe builds the current metrics snapshot. Assumes the lock is held.
func (s *Session) snapshotUnsafe() MetricsSnapshot {
	return MetricsSnapshot{
		TotalEvents:         s.metrics.TotalEvents,
		AttacksLaunched:     s.metrics.AttacksLaunched,
		DetectionsTriggered: s.metrics.DetectionsTriggered,
		SuccessfulBlocks:    s.metrics.SuccessfulBlocks,
		Participants:        len(s.participants),
	}
}

// notifyUnsafe appends to the in-memory event log, mirrors the event plus a
// fresh metrics snapshot to the instructor channel and hands a copy to the
// audit recorder. Metrics are pushed after every mutating event rather than
// polled. Assumes the lock is held.
func (s *Session) notifyUnsafe(eventType, description, participant string) {
	s.metrics.TotalEvents++
	s.eventLog = append(s.eventLog, EventRecord{
		At:          s.now(),
		Type:        eventType,
		Description: description,
		Participant: participant,
	})
	if s.sink != nil {
		s.sink.Event(s.Code, eventType, description, participant)
		s.sink.Metrics(s.Code, s.snapshotUnsafe())
	}
	if s.recorder != nil {
		go s.recorder.Record(s.Code, eventType, description, participant)
	}
	log.WithFields(log.Fields{
		"session":     s.Code,
		"event":       eventType,
		"participant": participant,
	}).Debug(description)
}

// notifyStateUnsafe pushes a session_state convenience event to instructors.
// Assumes the lock is held.
func (s *Session) notifyStateUnsafe() {
	if s.sink != nil {
		s.sink.State(s.Code, s.status)
	}
}

// notifyRosterUnsafe pushes the current roster to instructors after a join or
// leave. Assumes the lock is held.
func (s *Session) notifyRosterUnsafe() {
	if s.sink == nil {
		return
	}
	roster := make([]ParticipantInfo, 0, len(s.participants))
	for name, conn := range s.participants {
		roster = append(roster, ParticipantInfo{Name: name, Role: conn.Role})
	}
	s.sink.Participants(s.Code, roster)
}

func commandResult(command, output string) map[string]interface{} {
	return map[string]interface{}{
		"type":    protocol.TypeCommandResult,
		"command": command,
		"output":  output,
	}
}
