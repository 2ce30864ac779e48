package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string

	// serve flags
	httpAddr  string
	graphPath string
	eventsDir string
	watch     bool
	noEvents  bool

	// build flags
	vocabPath  string
	outputPath string
	minLength  int
	maxLength  int
	crossLen   bool

	rootCmd = &cobra.Command{
		Use:   "graphword",
		Short: "Build and serve the one-letter word graph",
		Long: `graphword builds a directed, weighted graph linking words that differ
by exactly one letter, and serves path, cluster and degree queries over HTTP.`,
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve graph queries over HTTP",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the word graph from a vocabulary file",
		RunE:  runBuild, // Defined in cmd_build.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the graphword version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("graphword", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration file")

	serveCmd.Flags().StringVar(&httpAddr, "http-addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&graphPath, "graph", "", "Canonical edge-list file (overrides graph.path)")
	serveCmd.Flags().StringVar(&eventsDir, "events-dir", "", "Event log directory (overrides events.dir)")
	serveCmd.Flags().BoolVar(&watch, "watch", false, "Reload the graph when the canonical file changes")
	serveCmd.Flags().BoolVar(&noEvents, "no-events", false, "Disable the request event log")

	buildCmd.Flags().StringVar(&vocabPath, "vocabulary", "", "Vocabulary file (overrides builder.vocabulary_path)")
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output edge-list file (overrides builder.output_path)")
	buildCmd.Flags().IntVar(&minLength, "min-length", 0, "Shortest word length considered")
	buildCmd.Flags().IntVar(&maxLength, "max-length", 0, "Longest word length considered")
	buildCmd.Flags().BoolVar(&crossLen, "cross-length", false, "Also compare words with the prefix of longer words")

	rootCmd.AddCommand(serveCmd, buildCmd, versionCmd)
}
