// internal/protocol/messages.go
package protocol

import "strings"

// Role identifies what a participant is allowed to do inside a session.
type Role string

const (
	RoleAttacker   Role = "Attacker"
	RoleDefender   Role = "Defender"
	RoleObserver   Role = "Observer"
	RoleInstructor Role = "Instructor"
)

// ParseRole normalizes a role string from a join message or a token claim.
// Returns false for anything outside the four known roles.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attacker":
		return RoleAttacker, true
	case "defender":
		return RoleDefender, true
	case "observer":
		return RoleObserver, true
	case "instructor":
		return RoleInstructor, true
	}
	return "", false
}

// Status is the session lifecycle state reported on the instructor channel.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
)

// Inbound message types (participant channel).
const (
	TypeJoin              = "join"
	TypeAttackCommand     = "attack_command"
	TypeDefenseClassify   = "defense_classify"
	TypeDefenseTriage     = "defense_triage"
	TypeRequestHints      = "request_hints"
	TypeRequestObjectives = "request_objectives"
	TypeRequestScoreboard = "request_scoreboard"
	TypeChatMessage       = "chat_message"
	TypeSimulationEnd     = "simulation_end"
	TypeDetectionConfig   = "update_detection_config"

	// Instructor channel inbound.
	TypeInstructorControl = "instructor_control"
)

// Outbound message types (server -> client).
const (
	TypeJoinAck              = "join_ack"
	TypeObjectives           = "objectives"
	TypeObjectivesUpdate     = "objectives_update"
	TypeCommandResult        = "command_result"
	TypeAttackEvent          = "attack_event"
	TypeDetectionEvent       = "detection_event"
	TypeDetectionResult      = "detection_result"
	TypeDetectionAlert       = "detection_alert"
	TypeObjectiveCompleted   = "objective_completed"
	TypeObjectiveDefended    = "objective_defended"
	TypeOffObjectiveThreat   = "off_objective_threat"
	TypeScoreUpdate          = "score_update"
	TypeClassificationResult = "classification_result"
	TypeDefenseResult        = "defense_result"
	TypeDefenderAction       = "defender_action"
	TypeHints                = "hints"
	TypeScoreboard           = "scoreboard"
	TypeParticipantJoined    = "participant_joined"
	TypeParticipantLeft      = "participant_left"
	TypeChatBroadcast        = "chat_message"
	TypeInstructorBroadcast  = "instructor_broadcast"
	TypeDifficultyUpdated    = "difficulty_updated"
	TypeSimulationPaused     = "simulation_paused"
	TypeSimulationResumed    = "simulation_resumed"
	TypeDetectionConfigAck   = "detection_config_updated"
	TypeError                = "error"

	// Instructor channel outbound.
	TypeSessionState      = "session_state"
	TypeSimulationEvent   = "simulation_event"
	TypeSimulationMetrics = "simulation_metrics"
	TypeParticipantUpdate = "participant_update"
)

// aliases maps legacy message names onto their canonical equivalents. The
// protocol grew these during a frontend migration; both spellings must keep
// working but they carry identical semantics.
var aliases = map[string]string{
	"execute_command":   TypeAttackCommand,
	"defender_classify": TypeDefenseClassify,
}

// Canonical resolves a message type through the legacy alias table.
func Canonical(msgType string) string {
	if c, ok := aliases[msgType]; ok {
		return c
	}
	return msgType
}
