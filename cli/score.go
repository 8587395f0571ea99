package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
	"github.com/RyanBlaney/sonido-armonia/algorithms/intervals"
)

type scoreOptions struct {
	catalogPath string
}

// ShapeScore holds the aggregate properties of one shape
type ShapeScore struct {
	Shape    harmony.PitchSet      `json:"shape"`
	Name     string                `json:"name,omitempty"`
	Formal   intervals.Properties  `json:"formal"`
	Real     intervals.Properties  `json:"real"`
	Relation *intervals.Properties `json:"relation,omitempty"`
	Next     *harmony.PitchSet     `json:"next,omitempty"`
}

// NewScoreCommand creates the score command
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score <shape> [next-shape]",
		Short: "Print the interval profile of a chord shape",
		Long: `Print the formal and real interval properties of a chord shape such as
"0,4,7" or "C E G". With a second shape, also print the properties of the
move from the first shape to the second.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(rootOpts, opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "interval catalog file (YAML); its order sets the ring size")

	return cmd
}

func loadSystem(catalogPath string) (*harmony.System, error) {
	if catalogPath == "" {
		return harmony.DefaultSystem(), nil
	}
	catalog, err := harmony.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return harmony.NewSystem(catalog.Order, catalog)
}

func runScore(rootOpts *RootOptions, opts *scoreOptions, args []string, cmd *cobra.Command) error {
	sys, err := loadSystem(opts.catalogPath)
	if err != nil {
		return err
	}

	shape, err := harmony.ParsePitchSet(sys.Order(), args[0])
	if err != nil {
		return err
	}
	result, err := scoreShape(sys, shape)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		next, err := harmony.ParsePitchSet(sys.Order(), args[1])
		if err != nil {
			return err
		}
		rel, err := intervals.New(sys, intervals.Relation(shape, next))
		if err != nil {
			return err
		}
		props, err := rel.FormalProperties(intervals.DefaultConsonance)
		if err != nil {
			return err
		}
		result.Next = &next
		result.Relation = &props
	}

	return newFormatter(rootOpts, cmd.OutOrStdout()).Emit(result, func(w io.Writer) error {
		fmt.Fprintf(w, "shape    %s %s\n", result.Shape, result.Name)
		writeProperties(w, "formal", result.Formal)
		writeProperties(w, "real", result.Real)
		if result.Relation != nil {
			fmt.Fprintf(w, "next     %s\n", *result.Next)
			writeProperties(w, "relation", *result.Relation)
		}
		return nil
	})
}

func scoreShape(sys *harmony.System, shape harmony.PitchSet) (ShapeScore, error) {
	out := ShapeScore{
		Shape: shape,
		Name:  harmony.NewSpectralClassifier(sys.Order()).Shortcut(shape),
	}

	formal, err := intervals.New(sys, intervals.Formal(shape))
	if err != nil {
		return ShapeScore{}, err
	}
	if out.Formal, err = formal.FormalProperties(intervals.DefaultConsonance); err != nil {
		return ShapeScore{}, err
	}

	// the shape sounded as one tone per class
	sounding, err := intervals.New(sys, intervals.Real(harmony.Tones(shape.Elements()...)))
	if err != nil {
		return ShapeScore{}, err
	}
	if out.Real, err = sounding.RealProperties(intervals.DefaultConsonance); err != nil {
		return ShapeScore{}, err
	}
	return out, nil
}

func writeProperties(w io.Writer, label string, p intervals.Properties) {
	fmt.Fprintf(w, "%-8s continuity=%.3f impulse=%.3f potential=%.3f consonance=%.3f\n",
		label, p.Continuity, p.Impulse, p.Potential, p.Consonance)
}
