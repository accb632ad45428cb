package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"testwright/internal/builder"
	"testwright/internal/config"
	"testwright/internal/fixture"
	"testwright/internal/formatting"
	"testwright/internal/suite"
	"testwright/internal/watch"
	"testwright/pkg/logging"
)

// DiscoveryFailedError is returned when discovery produced failures and the
// configuration asks for a failing exit code.
type DiscoveryFailedError struct {
	Failures int
}

func (e *DiscoveryFailedError) Error() string {
	return fmt.Sprintf("discovery produced %d failures", e.Failures)
}

type discoverOptions struct {
	commonOptions
	parallel int
	session  string
	watch    bool
	save     string
}

func newDiscoverCmd() *cobra.Command {
	o := &discoverOptions{}
	cmd := &cobra.Command{
		Use:   "discover [PATH]",
		Short: "Construct and list the tests of a suite",
		Long: `Loads the suite files at PATH (a file or a directory, default ".") and
constructs every test: data sources are resolved, generic type arguments are
inferred and shared fixtures are allocated. Construction failures are reported
per method and never stop discovery of other methods.

Examples:
  testwright discover ./suites
  testwright discover calculator.yaml -o json
  testwright discover ./suites --watch
  testwright discover ./suites --save nightly`,
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
	cmd.Flags().IntVarP(&o.parallel, "parallel", "p", 0, "Methods constructed concurrently (default from config, 0 means GOMAXPROCS)")
	cmd.Flags().StringVar(&o.session, "session", "", "Session id owning per-session fixtures (default random)")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "Re-run discovery whenever suite files change")
	cmd.Flags().StringVar(&o.save, "save", "", "Save the report under this name")
	return cmd
}

func (o *discoverOptions) run(cmd *cobra.Command, path string) error {
	s, err := o.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		s.config.Parallelism = o.parallel
	}
	if o.session != "" {
		s.config.SessionID = o.session
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !o.watch {
		return o.discoverOnce(ctx, s, path)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := o.discoverOnce(ctx, s, path); err != nil {
		reportWatchError(s, err)
	}
	w := watch.New([]string{path}, s.config.WatchDebounce, suite.IsSuiteFile)
	return w.Run(ctx, func(ctx context.Context, c watch.Change) {
		logging.Info("Discover", "Suite changed (%d files), rediscovering", len(c.Files))
		if err := o.discoverOnce(ctx, s, path); err != nil {
			reportWatchError(s, err)
		}
	})
}

func reportWatchError(s *settings, err error) {
	fmt.Fprintln(s.errOut, text.FgRed.Sprint(err.Error()))
}

func (o *discoverOptions) discoverOnce(ctx context.Context, s *settings, path string) error {
	d, err := runDiscovery(ctx, s, path)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	if err := s.formatter().FormatReport(d.report); err != nil {
		return err
	}
	if o.save != "" {
		if err := saveReport(s.storage(), o.save, d.report); err != nil {
			return err
		}
		if !s.quiet {
			fmt.Fprintf(s.errOut, "Saved report %q\n", o.save)
		}
	}
	if d.report.Summary.Failures > 0 && s.config.FailOnDiscoveryError {
		return &DiscoveryFailedError{Failures: d.report.Summary.Failures}
	}
	return nil
}

// discovery is the outcome of loading and building one suite.
type discovery struct {
	suite    *suite.Suite
	builder  *builder.Builder
	registry *fixture.Registry
	result   *builder.Result
	report   *formatting.Report
}

// close disposes every fixture allocated during construction.
func (d *discovery) close(ctx context.Context) {
	if err := d.registry.Close(ctx); err != nil {
		logging.Warn("Discover", "Disposing fixtures failed: %v", err)
	}
}

// runDiscovery loads the suite at path and constructs its tests.
func runDiscovery(ctx context.Context, s *settings, path string) (*discovery, error) {
	st, err := suite.Load(path)
	if err != nil {
		return nil, err
	}

	var sp *spinner.Spinner
	if !s.quiet {
		sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Writer = s.errOut
		sp.Suffix = fmt.Sprintf(" Constructing tests from %d methods...", len(st.Methods))
		sp.Start()
	}

	registry := fixture.NewRegistry()
	b := builder.New(builder.Options{
		Registry:    registry,
		SessionID:   s.config.SessionID,
		Parallelism: s.config.Parallelism,
	})
	res, err := b.Build(ctx, st.Methods)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		_ = registry.Close(context.Background())
		return nil, err
	}

	return &discovery{
		suite:    st,
		builder:  b,
		registry: registry,
		result:   res,
		report:   formatting.NewReport(b.SessionID(), len(st.Methods), res),
	}, nil
}

func saveReport(storage *config.Storage, name string, report *formatting.Report) error {
	data, err := formatting.MarshalYAML(report)
	if err != nil {
		return err
	}
	path, err := storage.Save(config.ReportsDir, name, data)
	if err != nil {
		return fmt.Errorf("saving report %q: %w", name, err)
	}
	logging.Debug("Discover", "Saved report to %s", path)
	return nil
}
