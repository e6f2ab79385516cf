// Package editor replays theme editor sessions written as YAML scripts.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"storefront-theme/internal/sections"
	"storefront-theme/pkg/logger"
	"storefront-theme/pkg/validator"
)

// Commands that drive a section's form rather than its lifecycle.
const (
	CommandOption      = "option"
	CommandQuantity    = "quantity"
	CommandDescription = "description"
)

// Commands that act on the page outside any section.
const (
	CommandTag      = "tag"
	CommandTagReset = "tag_reset"
	CommandCartStep = "cart_step"
	CommandPageLink = "page_link"
	CommandToggle   = "toggle"
)

var (
	ErrEmptyScript    = errors.New("editor script has no steps")
	ErrUnknownCommand = errors.New("unknown editor command")
)

// Step is one scripted host action. Signal holds a lifecycle signal
// (load, unload, select, deselect, reorder, block_select, block_deselect),
// a section command or a page command. Page commands take no section.
type Step struct {
	Signal  string `yaml:"signal" validate:"required"`
	Section string `yaml:"section"`
	Block   string `yaml:"block"`
	Index   int    `yaml:"index" validate:"omitempty,min=1,max=3"`
	Line    int    `yaml:"line" validate:"omitempty,min=1"`
	Value   string `yaml:"value"`
	Arg     string `yaml:"arg"`
	Delta   int    `yaml:"delta"`
}

// Script is a recorded editor session. Page names the template or file the
// session was recorded against; hosts use it when no page is given.
type Script struct {
	Name  string `yaml:"name"`
	Page  string `yaml:"page"`
	Steps []Step `yaml:"steps" validate:"dive"`
}

// Target receives replayed steps.
type Target interface {
	Signal(ctx context.Context, sig sections.Signal) error
	SetOption(ctx context.Context, sectionID string, index int, value string) error
	StepQuantity(ctx context.Context, sectionID string, delta int) error
	ToggleDescription(ctx context.Context, sectionID string) error

	ToggleTag(ctx context.Context, tag string) error
	ResetTags(ctx context.Context) error
	CartStep(ctx context.Context, line, delta int) error
	FollowPageLink(ctx context.Context, hash string) error
	PressControl(ctx context.Context, name, arg string) error
}

func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse editor script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	if err := validator.Validate(&script); err != nil {
		return nil, fmt.Errorf("invalid editor script: %w", err)
	}
	for i, step := range script.Steps {
		if err := step.check(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &script, nil
}

// check enforces the fields each command needs.
func (s Step) check() error {
	if _, err := s.command(); err != nil {
		return err
	}
	name := s.name()
	if !pageCommand(name) && strings.TrimSpace(s.Section) == "" {
		return fmt.Errorf("%s needs a section", s.Signal)
	}
	switch name {
	case CommandOption:
		if s.Index == 0 {
			return fmt.Errorf("option needs an index")
		}
	case CommandTag, CommandPageLink, CommandToggle:
		if strings.TrimSpace(s.Value) == "" {
			return fmt.Errorf("%s needs a value", name)
		}
	case CommandCartStep:
		if s.Line == 0 {
			return fmt.Errorf("cart_step needs a line")
		}
	}
	return nil
}

func (s Step) name() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s.Signal)), "-", "_")
}

func pageCommand(name string) bool {
	switch name {
	case CommandTag, CommandTagReset, CommandCartStep, CommandPageLink, CommandToggle:
		return true
	}
	return false
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// command returns the lifecycle signal kind of the step, or "" for form
// commands.
func (s Step) command() (sections.SignalKind, error) {
	switch name := s.name(); name {
	case CommandOption, CommandQuantity, CommandDescription:
		return "", nil
	default:
		if pageCommand(name) {
			return "", nil
		}
	}
	kind, err := sections.ParseSignalKind(s.Signal)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s.Signal)
	}
	return kind, nil
}

// Replay runs the steps in order against target and stops at the first
// failure. It returns how many steps completed.
func Replay(ctx context.Context, target Target, script *Script) (int, error) {
	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := apply(ctx, target, step); err != nil {
			return i, fmt.Errorf("step %d (%s %s): %w", i+1, step.Signal, step.Section, err)
		}
		logger.Debug("Replayed editor step", map[string]interface{}{
			"step":    i + 1,
			"signal":  step.Signal,
			"section": step.Section,
		})
	}
	return len(script.Steps), nil
}

func apply(ctx context.Context, target Target, step Step) error {
	kind, err := step.command()
	if err != nil {
		return err
	}
	if kind != "" {
		return target.Signal(ctx, sections.Signal{Kind: kind, SectionID: step.Section, BlockID: step.Block})
	}

	switch step.name() {
	case CommandOption:
		return target.SetOption(ctx, step.Section, step.Index, step.Value)
	case CommandQuantity:
		return target.StepQuantity(ctx, step.Section, step.delta())
	case CommandDescription:
		return target.ToggleDescription(ctx, step.Section)
	case CommandTag:
		return target.ToggleTag(ctx, step.Value)
	case CommandTagReset:
		return target.ResetTags(ctx)
	case CommandCartStep:
		return target.CartStep(ctx, step.Line, step.delta())
	case CommandPageLink:
		return target.FollowPageLink(ctx, step.Value)
	default:
		return target.PressControl(ctx, step.Value, step.Arg)
	}
}

// delta defaults to a single press of the plus button.
func (s Step) delta() int {
	if s.Delta == 0 {
		return 1
	}
	return s.Delta
}
