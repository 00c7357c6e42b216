package runner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"testr/internal/domain"
)

// sentinel prefixes every plugin event line on the engine's stdout.
const sentinel = "@testr "

// wireEvent is the JSON shape emitted by the embedded pytest plugin.
type wireEvent struct {
	Type     string  `json:"type"`
	Total    int     `json:"total"`
	NodeID   string  `json:"nodeid"`
	Outcome  string  `json:"outcome"`
	Duration float64 `json:"duration"`
	Longrepr string  `json:"longrepr"`
	Status   int     `json:"status"`
}

// DecodeLine turns one stdout line into a domain event. Lines without
// the sentinel are live test output.
func DecodeLine(line string) (domain.Event, error) {
	if !strings.HasPrefix(line, sentinel) {
		return domain.Event{Type: domain.EventOutput, Line: line}, nil
	}

	var wire wireEvent
	if err := json.Unmarshal([]byte(strings.TrimPrefix(line, sentinel)), &wire); err != nil {
		return domain.Event{}, fmt.Errorf("decode event line: %w", err)
	}

	switch wire.Type {
	case "collected":
		return domain.Event{Type: domain.EventCollected, Total: wire.Total}, nil
	case "collect_error":
		return domain.Event{Type: domain.EventCollectError, NodeID: wire.NodeID, Detail: wire.Longrepr}, nil
	case "start":
		return domain.Event{Type: domain.EventTestStarted, NodeID: wire.NodeID}, nil
	case "result":
		verdict, err := parseVerdict(wire.Outcome)
		if err != nil {
			return domain.Event{}, err
		}
		return domain.Event{
			Type: domain.EventResult,
			Outcome: domain.OutcomeEvent{
				NodeID:        wire.NodeID,
				Verdict:       verdict,
				Duration:      time.Duration(wire.Duration * float64(time.Second)),
				FailureDetail: wire.Longrepr,
			},
		}, nil
	case "finished":
		return domain.Event{Type: domain.EventFinished, ExitCode: wire.Status}, nil
	default:
		return domain.Event{}, fmt.Errorf("unknown event type %q", wire.Type)
	}
}

func parseVerdict(outcome string) (domain.Verdict, error) {
	switch outcome {
	case "passed":
		return domain.VerdictPassed, nil
	case "failed":
		return domain.VerdictFailed, nil
	case "skipped":
		return domain.VerdictSkipped, nil
	case "error":
		return domain.VerdictError, nil
	default:
		return "", fmt.Errorf("unknown outcome %q", outcome)
	}
}
