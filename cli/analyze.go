package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
	"github.com/RyanBlaney/sonido-armonia/analysis"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/midi"
)

type analyzeOptions struct {
	configPath string
	scale      string
	maxTones   int
	full       bool
	strong     bool
	step       int64
	decide     int
	section    int
	keyProfile string
}

// AnalyzeResult is the output of the analyze command
type AnalyzeResult struct {
	File      string               `json:"file"`
	SessionID string               `json:"session_id"`
	Scale     harmony.PitchSet     `json:"scale"`
	Key       *harmony.KeyEstimate `json:"key,omitempty"`
	Ticks     int                  `json:"ticks"`
	Decisions []analysis.Decision  `json:"decisions"`
}

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file.mid>",
		Short: "Print the chords a MIDI file implies",
		Long: `Feed a Standard MIDI File through a harmonic field, one tick per --step
MIDI ticks, and print the structure read out every --decide ticks.
With --scale auto the scale mask is the key estimated from the whole file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "analysis config file (YAML)")
	cmd.Flags().StringVarP(&opts.scale, "scale", "s", "C major", `scale mask, e.g. "A minor", "chromatic" or "auto"`)
	cmd.Flags().IntVar(&opts.maxTones, "max-tones", 0, "tones per structure (default from config)")
	cmd.Flags().BoolVar(&opts.full, "full", false, "pick tones one by one with consonance bonuses (full harmonization)")
	cmd.Flags().BoolVar(&opts.strong, "strong", false, "strong impulse propagation")
	cmd.Flags().Int64Var(&opts.step, "step", 0, "MIDI ticks per field tick (default one sixteenth)")
	cmd.Flags().IntVar(&opts.decide, "decide", 0, "field ticks per decision (default from config)")
	cmd.Flags().IntVar(&opts.section, "section", 0, "field ticks per section reset (default from config)")
	cmd.Flags().StringVar(&opts.keyProfile, "key-profile", string(harmony.KrumhanslProfile), "key weights for --scale auto (krumhansl, temperley)")

	return cmd
}

func loadAnalysisConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.DefaultAnalysisConfig(), nil
	}
	return config.Load(path)
}

func runAnalyze(rootOpts *RootOptions, opts *analyzeOptions, path string, cmd *cobra.Command) error {
	cfg, err := loadAnalysisConfig(opts.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("max-tones") {
		cfg.Session.MaxTones = opts.maxTones
	}
	if flags.Changed("full") {
		cfg.Session.FullHarmonization = opts.full
	}
	if flags.Changed("strong") {
		cfg.Field.StrongImpulse = opts.strong
	}
	if flags.Changed("decide") {
		cfg.Session.DecisionTicks = opts.decide
	}
	if flags.Changed("section") {
		cfg.Session.SectionTicks = opts.section
	}

	ticks, err := midi.ReadTicks(path, opts.step)
	if err != nil {
		return err
	}

	var key *harmony.KeyEstimate
	var scale harmony.PitchSet
	if strings.EqualFold(strings.TrimSpace(opts.scale), "auto") {
		profile, err := harmony.ParseKeyProfile(opts.keyProfile)
		if err != nil {
			return err
		}
		est, err := harmony.EstimateKey(ticks, profile)
		if err != nil {
			return fmt.Errorf("cannot estimate key of %s: %w", path, err)
		}
		key, scale = &est, est.Scale()
	} else if scale, err = harmony.ParseScale(opts.scale); err != nil {
		return err
	}

	session, err := analysis.NewSession(harmony.DefaultSystem(), cfg, scale)
	if err != nil {
		return err
	}
	decisions, err := session.Run(ticks)
	if err != nil {
		return err
	}
	result := AnalyzeResult{
		File:      path,
		SessionID: session.ID(),
		Scale:     scale,
		Key:       key,
		Ticks:     len(ticks),
		Decisions: decisions,
	}

	return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(result, func(w io.Writer) error {
		if key != nil {
			if _, err := fmt.Fprintf(w, "key %s (clarity %.3f)\n", key.Key, key.Clarity); err != nil {
				return err
			}
		}
		for _, d := range result.Decisions {
			if _, err := fmt.Fprintf(w, "%5d-%-5d %s\n", d.Start, d.End, d.Structure); err != nil {
				return err
			}
		}
		return nil
	})
}
