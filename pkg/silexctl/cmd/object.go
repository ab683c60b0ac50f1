package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opensilex/silexctl/pkg/silexctl/client"
	"github.com/opensilex/silexctl/pkg/silexctl/output"
)

func NewObjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "object",
		Aliases: []string{"objects", "so"},
		Short:   "Browse scientific objects",
	}
	cmd.AddCommand(
		newObjectListCommand(),
		newObjectGetCommand(),
	)
	return cmd
}

func newObjectListCommand() *cobra.Command {
	var experiment, name string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scientific objects",
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
			objects, _, err := api.ScientificObjects().List(cmd.Context(), client.ScientificObjectListOptions{
				Experiment: experiment,
				ListOptions: client.ListOptions{
					Name:     name,
					Page:     page,
					PageSize: pageSize,
				},
			})
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(rt.OutputFormat())
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				output.WriteScientificObjectTable(rt.Writer(), objects)
				return nil
			}
			return output.WriteObject(rt.Writer(), format, objects)
		},
	}

	cmd.Flags().StringVar(&experiment, "experiment", "", "Restrict to one experiment URI")
	cmd.Flags().StringVar(&name, "name", "", "Filter by name pattern")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size")

	return cmd
}

func newObjectGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <uri>",
		Short: "Show one scientific object",
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
			object, err := api.ScientificObjects().Get(cmd.Context(), args[0])
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
			return output.WriteObject(rt.Writer(), format, object)
		},
	}
}
