package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/swoopdl/swoop/internal/output"
	"github.com/swoopdl/swoop/internal/scheduler"
	"github.com/swoopdl/swoop/internal/utils"
)

func newHTTPCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "http [URL] [--output OUTPUT_PATH]",
		Short: "Download file via HTTP/HTTPS",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job := utils.SwoopJob{
				JobType:          "http",
				URL:              args[0],
				OutputPath:       outputPath,
				Config:           downloadConfigFromFlags(),
				HTTPClientConfig: globalHTTPConfig,
				Metadata:         make(map[string]any),
			}
			if err := scheduler.Run([]utils.SwoopJob{job}, 1); err != nil {
				output.PrintError("Download failed")
				os.Exit(1)
			}
			output.PrintSuccess("Download complete")
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	return cmd
}
