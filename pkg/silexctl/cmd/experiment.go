package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opensilex/silexctl/pkg/silexctl/client"
	"github.com/opensilex/silexctl/pkg/silexctl/output"
)

func NewExperimentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "experiment",
		Aliases: []string{"experiments", "expt"},
		Short:   "Browse experiments",
	}
	cmd.AddCommand(
		newExperimentListCommand(),
		newExperimentGetCommand(),
	)
	return cmd
}

func newExperimentListCommand() *cobra.Command {
	var name string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			api, err := rt.apiClient(cmd.Context())
			if err != nil {
				return err
			}
			if pageSize == 0 {
				pageSize = rt.PageSize()
			}
			experiments, _, err := api.Experiments().List(cmd.Context(), client.ListOptions{
				Name:     name,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteExperimentTable(rt.Writer(), experiments)
				return nil
			}
			return output.WriteObject(rt.Writer(), format, experiments)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filter by name pattern")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size")

	return cmd
}

func newExperimentGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <uri>",
		Short: "Show one experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			api, err := rt.apiClient(cmd.Context())
			if err != nil {
				return err
			}
			experiment, err := api.Experiments().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteObject(rt.Writer(), format, experiment)
		},
	}
}
