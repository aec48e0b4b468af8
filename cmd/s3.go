package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/swoopdl/swoop/internal/output"
	"github.com/swoopdl/swoop/internal/scheduler"
	"github.com/swoopdl/swoop/internal/utils"
)

func newS3Cmd() *cobra.Command {
	var outputPath string
	var profile string

	cmd := &cobra.Command{
		Use:   "s3 [s3://BUCKET/KEY] [--output OUTPUT_PATH]",
		Short: "Download object from S3 (uses AWS_PROFILE or --profile)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			job := utils.SwoopJob{
				JobType:    "s3",
				URL:        args[0],
				OutputPath: outputPath,
				Config:     downloadConfigFromFlags(),
				Metadata:   map[string]any{"profile": profile},
			}
			if err := scheduler.Run([]utils.SwoopJob{job}, 1); err != nil {
				output.PrintError("Download failed")
				os.Exit(1)
			}
			output.PrintSuccess("Download complete")
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile to use")
	return cmd
}
