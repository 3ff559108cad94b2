package plugin

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/metrics"
	"github.com/VoidMesh/randint/internal/settings"
)

// Command ids
const (
	CommandRandomInt   = "random-int"
	CommandToggleSpace = "toggle-space"
)

// Command is an action registered by the plugin. Editor commands operate on
// the text at a cursor and need an editor to run.
type Command struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Editor bool   `json:"editor"`

	run func(ctx context.Context, ed editor.Editor) (*CommandResult, error)
}

// CommandResult carries whatever the command produced.
type CommandResult struct {
	Command   string             `json:"command"`
	Insertion *InsertionResult   `json:"insertion,omitempty"`
	Settings  *settings.Settings `json:"settings,omitempty"`
}

func (p *Plugin) registerCommands() {
	p.addCommand(Command{
		ID:     CommandRandomInt,
		Name:   "Generate a random integer. Range can be modified in settings.",
		Editor: true,
		run: func(ctx context.Context, ed editor.Editor) (*CommandResult, error) {
			insertion, err := p.Insert(ed)
			if err != nil {
				return nil, err
			}
			return &CommandResult{Command: CommandRandomInt, Insertion: insertion}, nil
		},
	})

	p.addCommand(Command{
		ID:   CommandToggleSpace,
		Name: "Toggle space after number",
		run: func(ctx context.Context, ed editor.Editor) (*CommandResult, error) {
			s, err := p.ToggleSpace(ctx)
			if err != nil {
				return nil, err
			}
			return &CommandResult{Command: CommandToggleSpace, Settings: &s}, nil
		},
	})
}

func (p *Plugin) addCommand(cmd Command) {
	if _, exists := p.commands[cmd.ID]; !exists {
		p.order = append(p.order, cmd.ID)
	}
	p.commands[cmd.ID] = cmd
	log.Debug("Command registered", "id", cmd.ID, "editor", cmd.Editor)
}

// Commands lists the registered commands in registration order.
func (p *Plugin) Commands() []Command {
	cmds := make([]Command, 0, len(p.order))
	for _, id := range p.order {
		cmds = append(cmds, p.commands[id])
	}
	return cmds
}

// Command looks up a registered command.
func (p *Plugin) Command(id string) (Command, bool) {
	cmd, ok := p.commands[id]
	return cmd, ok
}

// Execute runs the command with the given id. ed may be nil for commands
// that do not edit text.
func (p *Plugin) Execute(ctx context.Context, id string, ed editor.Editor) (*CommandResult, error) {
	cmd, ok := p.commands[id]
	if !ok {
		metrics.CommandsTotal.WithLabelValues("unknown", "error").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, id)
	}
	if cmd.Editor && ed == nil {
		metrics.CommandsTotal.WithLabelValues(id, "error").Inc()
		return nil, fmt.Errorf("%w: %q", ErrEditorRequired, id)
	}

	result, err := cmd.run(ctx, ed)
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(id, "error").Inc()
		log.Error("Command failed", "command", id, "error", err)
		return nil, err
	}

	metrics.CommandsTotal.WithLabelValues(id, "success").Inc()
	return result, nil
}
