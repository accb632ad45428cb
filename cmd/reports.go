package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"testwright/internal/config"
	"testwright/internal/formatting"
)

func newReportsCmd() *cobra.Command {
	o := &commonOptions{}
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage saved discovery reports",
		Long: `Discovery reports saved with 'testwright discover --save NAME' are stored
as YAML files in the reports/ subdirectory of the configuration directory.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.load(cmd)
			if err != nil {
				return err
			}
			names, err := s.storage().List(config.ReportsDir)
			if err != nil {
				return err
			}
			if len(names) == 0 && !s.quiet {
				fmt.Fprintln(s.out, "No saved reports.")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(s.out, name)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.load(cmd)
			if err != nil {
				return err
			}
			data, err := s.storage().Load(config.ReportsDir, args[0])
			if err != nil {
				return reportError(args[0], err)
			}
			report, err := formatting.UnmarshalReport(data)
			if err != nil {
				return fmt.Errorf("report %q: %w", args[0], err)
			}
			return s.formatter().FormatReport(report)
		},
	}

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.load(cmd)
			if err != nil {
				return err
			}
			if err := s.storage().Delete(config.ReportsDir, args[0]); err != nil {
				return reportError(args[0], err)
			}
			if !s.quiet {
				fmt.Fprintf(s.out, "Deleted report %q\n", args[0])
			}
			return nil
		},
	}

	for _, sub := range []*cobra.Command{list, show, del} {
		o.bind(sub)
		cmd.AddCommand(sub)
	}
	return cmd
}

func reportError(name string, err error) error {
	if errors.Is(err, config.ErrNotFound) {
		return fmt.Errorf("report %q does not exist", name)
	}
	return err
}
