package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/swoopdl/swoop/internal/output"
	"github.com/swoopdl/swoop/internal/scheduler"
	"github.com/swoopdl/swoop/internal/utils"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download a YAML list of URLs",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := utils.ReadDownloadList(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Cannot read download list: %v", err))
				os.Exit(1)
			}
			output.PrintInfo(fmt.Sprintf("Loaded %d downloads from %s", len(entries), args[0]))
			jobs := make([]utils.SwoopJob, 0, len(entries))
			for _, entry := range entries {
				jobType := entry.Type
				if jobType == "" {
					jobType = utils.DetermineDownloadType(entry.URL)
				}
				jobs = append(jobs, utils.SwoopJob{
					JobType:          jobType,
					URL:              entry.URL,
					OutputPath:       entry.OutputPath,
					Config:           downloadConfigFromFlags(),
					HTTPClientConfig: globalHTTPConfig,
					Metadata:         make(map[string]any),
				})
			}
			if err := scheduler.Run(jobs, workers); err != nil {
				output.PrintError("One or more downloads failed")
				os.Exit(1)
			}
			output.PrintSuccess("All downloads complete")
		},
	}
	return cmd
}
