// Package repl provides the interactive TeamPulse console: a readline loop
// over the metrics, trends, predict, monitor, and alert engines.
package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/teampulse/teampulse/internal/alerting"
	"github.com/teampulse/teampulse/internal/clock"
	"github.com/teampulse/teampulse/internal/metrics"
	"github.com/teampulse/teampulse/internal/predict"
	"github.com/teampulse/teampulse/internal/storage"
	"github.com/teampulse/teampulse/internal/trends"
	"github.com/teampulse/teampulse/internal/types"
)

// REPL is the interactive shell.
type REPL struct {
	store    storage.Storage
	clock    clock.Clock
	actor    string
	window   int
	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler

	calc     *metrics.Calculator
	trends   *trends.Engine
	predict  *predict.Engine
	alerting *alerting.Engine
}

// CommandHandler handles a specific command.
type CommandHandler func(args []string) error

// Config holds REPL configuration.
type Config struct {
	Store storage.Storage
	Clock clock.Clock
	Actor string
	// WindowDays is the metric window used by metrics and snapshot commands.
	WindowDays int
}

// New creates a new REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	actor := cfg.Actor
	if actor == "" {
		actor = "user"
	}
	window := cfg.WindowDays
	if window <= 0 {
		window = 30
	}

	r := &REPL{
		store:    cfg.Store,
		clock:    clk,
		actor:    actor,
		window:   window,
		commands: make(map[string]CommandHandler),
		calc:     metrics.NewCalculator(cfg.Store),
		trends:   trends.NewEngine(cfg.Store),
		predict:  predict.NewEngine(cfg.Store, clk),
		alerting: alerting.NewEngine(cfg.Store, clk, nil),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("teampulse> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		AutoComplete:      r.completer(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	command := parts[0]
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}
	return fmt.Errorf("unknown command %q, type 'help' for available commands", command)
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
	r.commands["projects"] = r.cmdProjects
	r.commands["metrics"] = r.cmdMetrics
	r.commands["trends"] = r.cmdTrends
	r.commands["snapshot"] = r.cmdSnapshot
	r.commands["predict"] = r.cmdPredict
	r.commands["monitor"] = r.cmdMonitor
	r.commands["alerts"] = r.cmdAlerts
	r.commands["ack"] = r.transition("ack", r.store.AcknowledgeAlert)
	r.commands["resolve"] = r.transition("resolve", r.store.ResolveAlert)
	r.commands["dismiss"] = r.transition("dismiss", r.store.DismissAlert)
}

func (r *REPL) completer() readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for name := range r.commands {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("TeamPulse Console"))
	fmt.Println("Team health analytics over standup data")
	fmt.Println()
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()
}

// resolveProject accepts a project name or a numeric ID.
func (r *REPL) resolveProject(ref string) (*types.Project, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return r.store.GetProject(r.ctx, id)
	}
	return r.store.GetProjectByName(r.ctx, ref)
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"projects", "List projects and team sizes"},
		{"metrics <project>", "Show the four health metrics and composite score"},
		{"trends <project> [metric]", "Show recorded trend history"},
		{"snapshot <project>", "Record today's metrics into the trend history"},
		{"predict <project>", "Generate predictive insights"},
		{"monitor [project]", "Run the early-warning checks"},
		{"alerts [project]", "List recent alerts"},
		{"ack <alert-id>", "Acknowledge an alert"},
		{"resolve <alert-id>", "Resolve an alert"},
		{"dismiss <alert-id>", "Dismiss an alert"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the console"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %-28s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Goodbye!\n", green("✓"))
	r.rl.Close()
	return io.EOF
}

func (r *REPL) transition(name string, fn func(ctx context.Context, id, actor string) error) CommandHandler {
	return func(args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <alert-id>", name)
		}
		if err := fn(r.ctx, args[0], r.actor); err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n", color.GreenString("✓"), name, args[0])
		return nil
	}
}
