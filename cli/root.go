package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-armonia/logging"
)

// RootOptions holds the global flags
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats are the accepted values of --format
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the armonia command tree
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "armonia",
		Short: "Harmonic field analysis",
		Long: `Derive the chords implied by a stream of sounding tones and score
candidate chord shapes by their interval profile.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			// logs go to stderr so they never mix with command output
			logger := logging.NewLogger(cmd.ErrOrStderr(), cmd.ErrOrStderr())
			if opts.Verbose {
				logger.SetLevel(logging.DebugLevel)
			} else {
				logger.SetLevel(logging.WarnLevel)
			}
			logging.SetGlobalLogger(logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewRankCommand(opts))

	return cmd
}

// Execute runs the root command with os.Args
func Execute() {
	cobra.CheckErr(NewRootCommand().Execute())
}
