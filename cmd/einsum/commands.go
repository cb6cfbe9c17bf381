package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/einsum/einsum"
	"github.com/born-ml/einsum/internal/serialization"
	"github.com/born-ml/einsum/tensor"
)

// runOptions holds the flags shared by classify and run.
type runOptions struct {
	dims        map[string]int
	configPath  string
	cPrefactor  float64
	abPrefactor float64
	inputs      string // SafeTensors file holding "A" and "B"
	save        string // SafeTensors file receiving A, B and C

	loaded map[string]*tensor.Dense[float64]
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "einsum",
		Short:         "Classify and evaluate two-operand tensor contractions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(), newClassifyCmd(), newRunCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "einsum %s\n", version)
		},
	}
}

func newClassifyCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "classify EQUATION",
		Short: "Print the algorithm a contraction would use",
		Example: `  einsum classify "ik=ij,jk" --dims i=3,j=4,k=5
  einsum classify "ij,jk->ik" --dims i=3,j=4,k=5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.engine(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req, err := opts.request(args[0])
			if err != nil {
				return err
			}
			algo, err := einsum.Classify(e, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), algo)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run EQUATION",
		Short: "Evaluate a contraction on A and B filled with 1..n",
		Long: `Run builds A and B from the given label extents, fills each with
1, 2, ..., n in row-major order, evaluates

    C = c-prefactor*C + ab-prefactor * A*B

with C starting at zero, and prints the algorithm and C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.engine(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req, err := opts.request(args[0])
			if err != nil {
				return err
			}
			algo, err := einsum.Contract(e, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			c := tensor.Materialize[float64](req.C)
			fmt.Fprintf(out, "algorithm: %s\n", algo)
			fmt.Fprintf(out, "C%v: %v\n", c.Shape(), c.Values())

			if opts.save != "" {
				err := serialization.WriteFile(opts.save, map[string]tensor.Operand[float64]{
					"A": req.A, "B": req.B, "C": req.C,
				}, map[string]string{"equation": args[0], "algorithm": algo.String()})
				if err != nil {
					return fmt.Errorf("save: %w", err)
				}
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().Float64Var(&opts.abPrefactor, "ab-prefactor", 1, "prefactor of A*B")
	cmd.Flags().Float64Var(&opts.cPrefactor, "c-prefactor", 0, "prefactor of the existing C")
	cmd.Flags().StringVar(&opts.inputs, "inputs", "", "SafeTensors file with F64 tensors A and B")
	cmd.Flags().StringVar(&opts.save, "save", "", "write A, B and C to this SafeTensors file")
	return cmd
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringToIntVar(&o.dims, "dims", nil, "label extents, e.g. i=3,j=4")
	cmd.Flags().StringVar(&o.configPath, "config", "", "YAML configuration file")
}

func (o *runOptions) engine(logOut io.Writer) (*einsum.Engine, error) {
	cfg, err := einsum.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	return einsum.NewEngine(cfg, einsum.WithLogger(cfg.Logging.NewLogger(logOut)))
}

func (o *runOptions) request(eq string) (einsum.Request[float64], error) {
	ci, ai, bi, err := einsum.ParseEquation(eq)
	if err != nil {
		return einsum.Request[float64]{}, err
	}

	if o.inputs != "" {
		if err := o.dimsFromInputs(ai, bi); err != nil {
			return einsum.Request[float64]{}, err
		}
	}

	c, err := o.operand(ci, false)
	if err != nil {
		return einsum.Request[float64]{}, err
	}
	var a, b tensor.Operand[float64]
	if o.inputs != "" {
		a, b = o.loaded["A"], o.loaded["B"]
	} else {
		if a, err = o.operand(ai, true); err != nil {
			return einsum.Request[float64]{}, err
		}
		if b, err = o.operand(bi, true); err != nil {
			return einsum.Request[float64]{}, err
		}
	}

	return einsum.Request[float64]{
		CPrefactor:  o.cPrefactor,
		CIndices:    ci,
		C:           c,
		ABPrefactor: o.abPrefactor,
		AIndices:    ai,
		A:           a,
		BIndices:    bi,
		B:           b,
	}, nil
}

// dimsFromInputs loads A and B and records the extents their shapes give to
// each label. Extents passed with --dims take precedence.
func (o *runOptions) dimsFromInputs(ai, bi einsum.Labels) error {
	loaded, _, err := serialization.ReadFile[float64](o.inputs)
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	if o.dims == nil {
		o.dims = make(map[string]int)
	}
	for _, op := range []struct {
		name   string
		labels einsum.Labels
	}{{"A", ai}, {"B", bi}} {
		t, ok := loaded[op.name]
		if !ok {
			return fmt.Errorf("inputs: %s has no tensor %q", o.inputs, op.name)
		}
		if t.Rank() != len(op.labels) {
			return fmt.Errorf("inputs: %s has rank %d but the equation gives it %d labels",
				op.name, t.Rank(), len(op.labels))
		}
		for i, l := range op.labels {
			if _, set := o.dims[string(l)]; !set {
				o.dims[string(l)] = t.Dim(i)
			}
		}
	}
	o.loaded = loaded
	return nil
}

// operand allocates a tensor shaped by the extents of labels, optionally
// filled with 1..n.
func (o *runOptions) operand(labels einsum.Labels, fill bool) (*tensor.Dense[float64], error) {
	shape := make(tensor.Shape, len(labels))
	for i, l := range labels {
		n, ok := o.dims[string(l)]
		if !ok {
			return nil, fmt.Errorf("no extent for label %q; pass --dims %s=N", l, l)
		}
		shape[i] = n
	}

	if len(shape) == 0 {
		if fill {
			return tensor.ScalarOf(1.0), nil
		}
		return tensor.ScalarOf(0.0), nil
	}

	t, err := tensor.New[float64](shape)
	if err != nil {
		return nil, err
	}
	if fill {
		buf := t.Buffer()
		for i := range buf {
			buf[i] = float64(i + 1)
		}
	}
	return t, nil
}
