package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opensilex/silexctl/pkg/silexctl/client"
	"github.com/opensilex/silexctl/pkg/silexctl/output"
)

func NewDataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Import and search observations",
	}
	cmd.AddCommand(
		newDataAddCommand(),
		newDataSearchCommand(),
	)
	return cmd
}

func newDataAddCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Import observations from a JSON file",
		Long:  "Import observations from a JSON file containing an array of records with target, variable, date, and value fields.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var observations []client.Observation
			if err := json.Unmarshal(content, &observations); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			api, err := rt.apiClient(cmd.Context())
			if err != nil {
				return err
			}
			created, err := api.Data().Add(cmd.Context(), observations)
			if err != nil {
				// Earlier batches may already be committed server-side.
				if len(created) > 0 {
					_, _ = fmt.Fprintf(rt.Writer(), "Imported %d of %d observations before failure\n", len(created), len(observations))
				}
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Imported %d observations\n", len(created))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the observations JSON file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newDataSearchCommand() *cobra.Command {
	var target, variable, startDate, endDate string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search observations",
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
			observations, _, err := api.Data().Search(cmd.Context(), client.DataSearchOptions{
				Target:    target,
				Variable:  variable,
				StartDate: startDate,
				EndDate:   endDate,
				ListOptions: client.ListOptions{
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
				format = output.FormatJSON
			}
			return output.WriteObject(rt.Writer(), format, observations)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Scientific object URI")
	cmd.Flags().StringVar(&variable, "variable", "", "Variable URI")
	cmd.Flags().StringVar(&startDate, "start", "", "Earliest observation date (RFC3339)")
	cmd.Flags().StringVar(&endDate, "end", "", "Latest observation date (RFC3339)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size")

	return cmd
}
