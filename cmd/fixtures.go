package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"testwright/internal/fixture"
	"testwright/internal/formatting"
	"testwright/pkg/logging"
)

type fixturesOptions struct {
	commonOptions
	session    string
	initialize bool
}

func newFixturesCmd() *cobra.Command {
	o := &fixturesOptions{}
	cmd := &cobra.Command{
		Use:   "fixtures [PATH]",
		Short: "Show the shared fixtures a suite allocates",
		Long: `Constructs the tests of the suite at PATH and lists the shared fixtures
held by the registry together with their scope, state and consumer count.

With --initialize every test's fixtures are initialized first, in test order,
the way an execution session would do it before running test bodies.
Afterwards the session is drained: every test is finished and all fixtures are
disposed. Test bodies are never run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return o.run(cmd, path)
		},
	}
	o.bind(cmd)
	cmd.Flags().StringVar(&o.session, "session", "", "Session id owning per-session fixtures (default random)")
	cmd.Flags().BoolVar(&o.initialize, "initialize", false, "Initialize fixtures before listing them")
	return cmd
}

func (o *fixturesOptions) run(cmd *cobra.Command, path string) error {
	s, err := o.load(cmd)
	if err != nil {
		return err
	}
	if o.session != "" {
		s.config.SessionID = o.session
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := runDiscovery(ctx, s, path)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	tracker := fixture.NewTracker(d.registry, d.builder.SessionID())
	for _, def := range d.result.Tests {
		if err := tracker.Register(def.Usage()); err != nil {
			return err
		}
	}

	var errs []error
	if o.initialize {
		for _, def := range d.result.Tests {
			if err := tracker.Begin(ctx, def.Usage()); err != nil {
				errs = append(errs, fmt.Errorf("test %s: %w", def.DisplayName, err))
			}
		}
	}

	if err := s.formatter().FormatFixtures(formatting.NewFixtureEntries(d.registry.Snapshot())); err != nil {
		return err
	}

	for _, def := range d.result.Tests {
		if err := tracker.Finish(ctx, def.Usage()); err != nil {
			errs = append(errs, fmt.Errorf("test %s: %w", def.DisplayName, err))
		}
	}
	if err := tracker.End(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		logging.Error("Fixtures", err, "Fixture lifecycle reported errors")
		return err
	}
	return nil
}
