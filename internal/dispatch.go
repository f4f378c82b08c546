package internal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Action is a named user action
type Action int

const (
	ActionSend Action = iota
	ActionReset
	ActionSave
	ActionLoad
	ActionCancel
	ActionPersonality
	ActionModel
	ActionKey
	ActionCost
	ActionTokens
	ActionHistory
	ActionHelp
	ActionQuit
	ActionUnknown
)

var commandNames = map[string]Action{
	"reset":       ActionReset,
	"save":        ActionSave,
	"load":        ActionLoad,
	"cancel":      ActionCancel,
	"personality": ActionPersonality,
	"p":           ActionPersonality,
	"model":       ActionModel,
	"m":           ActionModel,
	"key":         ActionKey,
	"cost":        ActionCost,
	"tokens":      ActionTokens,
	"history":     ActionHistory,
	"help":        ActionHelp,
	"?":           ActionHelp,
	"quit":        ActionQuit,
	"exit":        ActionQuit,
	"q":           ActionQuit,
}

// Command is one parsed input line
type Command struct {
	Action Action
	Name   string
	Arg    string
}

// ParseCommand maps a line to a command. Lines starting with "/" are commands;
// anything else is a message, or a file path while a load is pending.
func ParseCommand(line string, awaitingLoad bool) Command {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		if awaitingLoad {
			return Command{Action: ActionLoad, Name: "load", Arg: trimmed}
		}
		return Command{Action: ActionSend, Arg: line}
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(trimmed, "/"), " ")
	name = strings.ToLower(name)
	action, ok := commandNames[name]
	if !ok {
		// while a load is pending, absolute paths start with "/" too
		if awaitingLoad {
			return Command{Action: ActionLoad, Name: "load", Arg: trimmed}
		}
		return Command{Action: ActionUnknown, Name: name, Arg: strings.TrimSpace(arg)}
	}
	return Command{Action: action, Name: name, Arg: strings.TrimSpace(arg)}
}

// StatusLevel is the severity of a status line
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// Status is one line of user-visible feedback
type Status struct {
	Level StatusLevel
	Text  string
}

// DispatchResult is what the front end renders after an action
type DispatchResult struct {
	Command        Command
	Statuses       []Status
	Turn           *TurnResult
	ShowTranscript bool
	Quit           bool
}

func (r *DispatchResult) add(level StatusLevel, format string, args ...interface{}) {
	r.Statuses = append(r.Statuses, Status{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Dispatcher executes one action per input line against a session
type Dispatcher struct {
	orchestrator *ChatOrchestrator
	counter      *PromptTokenCounter

	// SaveDir is where /save writes when no path is given
	SaveDir string
	now     func() time.Time
}

// NewDispatcher creates a dispatcher around an orchestrator
func NewDispatcher(o *ChatOrchestrator, counter *PromptTokenCounter) *Dispatcher {
	if counter == nil {
		counter = NewPromptTokenCounter()
	}
	return &Dispatcher{
		orchestrator: o,
		counter:      counter,
		SaveDir:      ".",
		now:          time.Now,
	}
}

// Handle parses and executes line. Operation failures become error statuses;
// nothing here terminates the session except ActionQuit.
func (d *Dispatcher) Handle(ctx context.Context, line string) DispatchResult {
	session := d.orchestrator.Session()
	cmd := ParseCommand(line, session.AwaitingLoad())
	res := DispatchResult{Command: cmd}

	switch cmd.Action {
	case ActionSend:
		if strings.TrimSpace(cmd.Arg) == "" {
			return res
		}
		turn := d.orchestrator.Turn(ctx, cmd.Arg)
		res.Turn = &turn
		if !turn.OK {
			level := StatusError
			if errors.Is(turn.Err, ErrMissingCredential) {
				level = StatusWarning
			}
			res.add(level, "%s", turn.Notice())
		}

	case ActionReset:
		session.Reset()
		res.add(StatusSuccess, "Chat reset")

	case ActionSave:
		path := cmd.Arg
		if path == "" {
			path = filepath.Join(d.SaveDir, DefaultSnapshotName(d.now()))
		}
		snap := session.ToSnapshot()
		if err := SaveSnapshotFile(path, snap); err != nil {
			res.add(StatusError, "Save failed: %v", err)
			break
		}
		res.add(StatusSuccess, "Saved %d message(s) to %s", len(snap.Messages), path)

	case ActionLoad:
		if cmd.Arg == "" {
			session.BeginLoad()
			res.add(StatusInfo, "Enter the path of a JSON file to load (/cancel to abort)")
			break
		}
		report, err := LoadSnapshotFile(session, cmd.Arg)
		if err != nil {
			res.add(StatusError, "Load failed: %v", err)
			break
		}
		for _, w := range report.Warnings {
			res.add(StatusWarning, "%s", w)
		}
		res.add(StatusSuccess, "Loaded %d message(s) from %s", report.Messages, cmd.Arg)
		res.ShowTranscript = true

	case ActionCancel:
		if session.AwaitingLoad() {
			session.CancelLoad()
			res.add(StatusInfo, "Load cancelled")
		}

	case ActionPersonality:
		d.handlePersonality(&res, cmd.Arg)

	case ActionModel:
		d.handleModel(&res, cmd.Arg)

	case ActionKey:
		session.SetCredential(cmd.Arg)
		if session.Config().APICredential == "" {
			res.add(StatusInfo, "Session API key cleared")
		} else {
			res.add(StatusSuccess, "Session API key set")
		}

	case ActionCost:
		u := session.Usage()
		res.add(StatusInfo, "%s: %d prompt + %d completion tokens, estimated cost %s",
			session.Config().SelectedModel, u.TotalPromptTokens, u.TotalCompletionTokens, FormatCost(session.Cost()))

	case ActionTokens:
		n, err := d.counter.CountMessages(d.orchestrator.BuildRequest())
		if err != nil {
			res.add(StatusError, "Token estimate failed: %v", err)
			break
		}
		next := EstimateCost(UsageCounters{TotalPromptTokens: int64(n)}, session.Pricing())
		res.add(StatusInfo, "Next request carries ~%d prompt tokens before your message (~%s)", n, FormatCost(next))

	case ActionHistory:
		res.ShowTranscript = true

	case ActionHelp:
		for _, line := range HelpLines() {
			res.add(StatusInfo, "%s", line)
		}

	case ActionQuit:
		res.Quit = true

	default:
		res.add(StatusWarning, "Unknown command /%s (type /help)", cmd.Name)
	}

	return res
}

func (d *Dispatcher) handlePersonality(res *DispatchResult, key string) {
	session := d.orchestrator.Session()
	if key == "" {
		current := session.Config().SelectedPersonality
		for _, p := range session.Personalities().All() {
			marker := "  "
			if p.Key == current {
				marker = "* "
			}
			res.add(StatusInfo, "%s%-16s %s", marker, p.Key, p.DisplayName)
		}
		return
	}
	if err := session.SelectPersonality(key); err != nil {
		res.add(StatusError, "Unknown personality %q (available: %s)", key, strings.Join(session.Personalities().Keys(), ", "))
		return
	}
	res.add(StatusSuccess, "Personality: %s", session.Personality().DisplayName)
}

func (d *Dispatcher) handleModel(res *DispatchResult, id string) {
	session := d.orchestrator.Session()
	if id == "" {
		current := session.Config().SelectedModel
		for _, m := range session.PricingTable().All() {
			marker := "  "
			if m.ModelID == current {
				marker = "* "
			}
			res.add(StatusInfo, "%s%-16s $%.3f / $%.3f per 1K tokens", marker, m.ModelID, m.PromptRatePer1K, m.CompletionRatePer1K)
		}
		return
	}
	if err := session.SelectModel(id); err != nil {
		res.add(StatusError, "Unknown model %q (available: %s)", id, strings.Join(session.PricingTable().Keys(), ", "))
		return
	}
	res.add(StatusSuccess, "Model: %s", id)
}

// HelpLines describes the interactive commands
func HelpLines() []string {
	return []string{
		"/reset               clear the conversation and token counters",
		"/save [path]         save the conversation as JSON",
		"/load [path]         load a conversation from JSON",
		"/cancel              abort a pending /load",
		"/personality [key]   list or switch personalities (/p)",
		"/model [id]          list or switch models (/m)",
		"/key <value>         set the API key for this session",
		"/cost                show token totals and estimated cost",
		"/tokens              estimate prompt tokens of the next request",
		"/history             show the conversation",
		"/quit                leave (/exit, /q)",
	}
}
