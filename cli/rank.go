package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
	"github.com/RyanBlaney/sonido-armonia/algorithms/intervals"
)

type rankOptions struct {
	configPath string
	catalog    string
	previous   string
	target     []float64
	like       string
	weight     float64
}

// RankResult is the output of the rank command
type RankResult struct {
	Previous   harmony.PitchSet      `json:"previous"`
	Target     intervals.Properties  `json:"target"`
	Candidates []intervals.Candidate `json:"candidates"`
}

// NewRankCommand creates the rank command
func NewRankCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank <shape>...",
		Short: "Rank candidate chord shapes against a target profile",
		Long: `Rank candidate chord shapes by the distance between their interval profile
and a target. The target is given either as four numbers
(continuity, impulse, potential, consonance) or as the profile of a model shape.
With --previous, the move from that shape counts toward each candidate's profile.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "analysis config file (YAML)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "interval catalog file (YAML)")
	cmd.Flags().StringVarP(&opts.previous, "previous", "p", "", "shape the candidates follow")
	cmd.Flags().Float64SliceVarP(&opts.target, "target", "t", nil, "target continuity,impulse,potential,consonance")
	cmd.Flags().StringVar(&opts.like, "like", "", "use the formal profile of this shape as target")
	cmd.Flags().Float64Var(&opts.weight, "weight", 0, "relation weight 0-1 (default from config)")
	cmd.MarkFlagsMutuallyExclusive("target", "like")
	cmd.MarkFlagsOneRequired("target", "like")

	return cmd
}

func runRank(rootOpts *RootOptions, opts *rankOptions, args []string, cmd *cobra.Command) error {
	cfg, err := loadAnalysisConfig(opts.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("weight") {
		cfg.Selection.RelationWeight = opts.weight
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	sys, err := loadSystem(opts.catalog)
	if err != nil {
		return err
	}

	var target intervals.Properties
	if opts.like != "" {
		model, err := harmony.ParsePitchSet(sys.Order(), opts.like)
		if err != nil {
			return err
		}
		agg, err := intervals.New(sys, intervals.Formal(model))
		if err != nil {
			return err
		}
		if target, err = agg.FormalProperties(intervals.DefaultConsonance); err != nil {
			return err
		}
	} else {
		if len(opts.target) != 4 {
			return fmt.Errorf("--target needs 4 values (continuity,impulse,potential,consonance), got %d", len(opts.target))
		}
		target = intervals.Properties{
			Continuity: opts.target[0],
			Impulse:    opts.target[1],
			Potential:  opts.target[2],
			Consonance: opts.target[3],
		}
	}

	previous := harmony.NewPitchSet(sys.Order())
	if opts.previous != "" {
		if previous, err = harmony.ParsePitchSet(sys.Order(), opts.previous); err != nil {
			return err
		}
	}

	candidates := make([]harmony.PitchSet, 0, len(args))
	for _, arg := range args {
		shape, err := harmony.ParsePitchSet(sys.Order(), arg)
		if err != nil {
			return err
		}
		candidates = append(candidates, shape)
	}

	selector := intervals.NewSelector(sys, target, cfg.Selection,
		intervals.WithNaming(harmony.NewSpectralClassifier(sys.Order())))
	ranked, err := selector.Rank(previous, candidates)
	if err != nil {
		return err
	}

	result := RankResult{Previous: previous, Target: target, Candidates: ranked}
	return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(result, func(w io.Writer) error {
		for i, c := range ranked {
			if _, err := fmt.Fprintf(w, "%2d. %-12s %-10s distance=%.3f\n", i+1, c.Shape, c.Shortcut, c.Distance); err != nil {
				return err
			}
		}
		return nil
	})
}
