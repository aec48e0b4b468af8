package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/swoopdl/swoop/internal/output"
	"github.com/swoopdl/swoop/internal/utils"
)

var (
	connections   int
	workers       int
	maxRetries    int
	segmentSize   int64
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	logFile       string
	debug         bool
)

var globalHTTPConfig utils.HTTPClientConfig

var SwoopVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "swoop",
	Short:   "Swoop is a fast segmented download manager",
	Version: SwoopVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				output.PrintWarning(fmt.Sprintf("Cannot open log file %s, logging to stderr", logFile))
			} else {
				utils.SetLogOutput(f)
			}
		}
		if userAgent == "randomize" {
			userAgent = utils.GetRandomUserAgent()
		}
		// Lift auth embedded in the proxy URL into explicit credentials.
		parsedProxy, err := u.Parse(proxyURL)
		if err != nil && proxyURL != "" {
			output.PrintWarning(fmt.Sprintf("Ignoring unparseable proxy URL %s", proxyURL))
			proxyURL = ""
		} else if err == nil && parsedProxy.User != nil && proxyUsername == "" {
			proxyUsername = parsedProxy.User.Username()
			if password, set := parsedProxy.User.Password(); set {
				proxyPassword = password
			}
			parsedProxy.User = nil
			proxyURL = parsedProxy.String()
		}
		globalHTTPConfig = utils.HTTPClientConfig{
			Timeout:       timeout,
			KATimeout:     kaTimeout,
			ProxyURL:      proxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     userAgent,
			Headers:       utils.ParseHeaderArgs(headers),
		}
	},
}

// downloadConfigFromFlags builds the per-download configuration shared by
// all subcommands.
func downloadConfigFromFlags() utils.DownloadConfig {
	cfg := utils.NewDownloadConfig()
	if maxRetries > 0 {
		cfg.MaxRetries = maxRetries
	}
	cfg.MaxConcurrentDownloads = connections
	if segmentSize > 0 {
		cfg.SegmentSize = segmentSize
	}
	return cfg
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&connections, "connections", "c", 32, "Max concurrent segment batches per download (<=0 downloads every segment concurrently)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "Number of downloads to run in parallel")
	rootCmd.PersistentFlags().IntVarP(&maxRetries, "retries", "r", 3, "Retry attempts per download")
	rootCmd.PersistentFlags().Int64VarP(&segmentSize, "segment-size", "s", 0, "Fixed segment size in bytes (0 uses size-tiered planning)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser UA)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to a file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newHTTPCmd())
	rootCmd.AddCommand(newS3Cmd())
	rootCmd.AddCommand(newBatchCmd())
}
