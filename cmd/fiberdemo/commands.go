package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/fiber"
	"github.com/AnatoleLucet/fiber/host/memhost"
)

var (
	configPath string
	logLevel   string
	quiet      bool

	rootCmd = &cobra.Command{
		Use:   "fiberdemo",
		Short: "Drive the fiber reconciler against an in-memory host",
		Long: `fiberdemo renders a small todo application into an in-memory host,
applies a scripted series of updates and prints what the host was asked to do.`,
		SilenceUsage: true,
	}

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render the demo app and print the host mutations of each step",
		RunE:  runRender,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE:  runConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fiber.yaml", "configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	renderCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the final tree")

	rootCmd.AddCommand(renderCmd, configCmd)
}

func loadConfig() (fiber.Config, error) {
	cfg, err := fiber.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()

	return enc.Encode(cfg)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	return renderDemo(cmd.OutOrStdout(), cfg, logger)
}

type step struct {
	name string
	run  func(r *fiber.Root, ctl *controls)
}

var script = []step{
	{"add three todos", func(r *fiber.Root, ctl *controls) {
		r.FlushSync(func() {
			ctl.dispatch.Dispatch(action{kind: "add", text: "write reconciler"})
			ctl.dispatch.Dispatch(action{kind: "add", text: "write scheduler"})
			ctl.dispatch.Dispatch(action{kind: "add", text: "ship it"})
		})
	}},
	{"toggle the first todo", func(r *fiber.Root, ctl *controls) {
		r.FlushSync(func() {
			ctl.dispatch.Dispatch(action{kind: "toggle", id: 1})
		})
	}},
	{"reverse the list in a transition", func(r *fiber.Root, ctl *controls) {
		r.StartTransition(func() {
			ctl.dispatch.Dispatch(action{kind: "reverse"})
		})
	}},
	{"remove the second todo", func(r *fiber.Root, ctl *controls) {
		r.FlushSync(func() {
			ctl.dispatch.Dispatch(action{kind: "remove", id: 2})
		})
	}},
	{"switch the theme", func(r *fiber.Root, ctl *controls) {
		r.FlushSync(func() {
			ctl.dispatch.Dispatch(action{kind: "theme", text: "dark"})
		})
	}},
}

func renderDemo(out io.Writer, cfg fiber.Config, logger *slog.Logger) error {
	clock := fiber.NewFakeClock()
	loop := fiber.NewManualLoop(clock)
	scheduler := fiber.NewScheduler(loop,
		fiber.WithClock(clock),
		fiber.WithSchedulerConfig(cfg.Scheduler),
	)

	host := memhost.New(memhost.WithLogger(logger))
	container := memhost.NewContainer()
	root := fiber.NewRoot(container, host, scheduler,
		fiber.WithConfig(cfg),
		fiber.WithLogger(logger),
	)

	ctl := &controls{}

	steps := append([]step{{"mount", func(r *fiber.Root, ctl *controls) {
		r.Render(fiber.H(todoApp, fiber.Props{"controls": ctl}))
	}}}, script...)

	for _, s := range steps {
		host.Reset()
		s.run(root, ctl)
		loop.Drain()

		if !ctl.ready {
			return fmt.Errorf("step %q: app is not mounted", s.name)
		}
		if quiet {
			continue
		}

		fmt.Fprintf(out, "== %s\n", s.name)
		for _, entry := range host.Log() {
			fmt.Fprintf(out, "  %s\n", entry)
		}
	}

	fmt.Fprintf(out, "== final tree\n%s", container.String())
	return nil
}
