package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/jsonata-lang/jsonata"
	"github.com/jsonata-lang/jsonata/internal/cli/ui"
	"github.com/jsonata-lang/jsonata/runtime/value"
)

type evalOptions struct {
	compact  bool
	yamlIn   bool
	vars     []string
	maxDepth int
	timeout  time.Duration
}

func evalCmd() *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <expression> [input-file]",
		Short: "Evaluate an expression against a JSON document",
		Long: `Evaluate a JSONata expression against a document read from a file or
stdin. With no input file and nothing on stdin the expression is
evaluated with no input.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&opts.compact, "compact", false, "compact (single-line) output")
	cmd.Flags().BoolVar(&opts.yamlIn, "yaml", false, "input document is YAML")
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "pre-bind a variable as name=value (repeatable)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum evaluator recursion depth (0 = unlimited)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "evaluation time limit (0 = unlimited)")

	return cmd
}

func runEval(cmd *cobra.Command, args []string, opts *evalOptions) error {
	expression := args[0]

	input, err := readInput(args, opts)
	if err != nil {
		return err
	}

	expr, jerr := jsonata.New(expression)
	if jerr != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.FormatError(ui.ErrorOptions{Expression: expression, Err: jerr}))
		return errors.New("expression did not parse")
	}

	for _, binding := range opts.vars {
		name, raw, ok := strings.Cut(binding, "=")
		if !ok {
			return errors.Errorf("invalid --var %q, expected name=value", binding)
		}
		v, err := value.FromGo(expr.Arena(), coerceVar(raw))
		if err != nil {
			return errors.Wrapf(err, "invalid --var %q", binding)
		}
		expr.AssignVar(name, v)
	}

	result, evalErr := expr.EvaluateTimeboxed(input, opts.maxDepth, opts.timeout)
	if evalErr != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.FormatError(ui.ErrorOptions{Expression: expression, Err: evalErr}))
		return errors.New("evaluation failed")
	}

	out := value.Serialize(result, !opts.compact)
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// readInput loads the document from the named file or stdin, converting
// YAML to JSON when requested
func readInput(args []string, opts *evalOptions) (string, error) {
	var raw []byte
	var err error

	switch {
	case len(args) > 1:
		raw, err = os.ReadFile(args[1])
		if err != nil {
			return "", errors.Wrap(err, "failed to read input file")
		}
	default:
		stat, statErr := os.Stdin.Stat()
		if statErr != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil // interactive terminal: no input document
		}
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read stdin")
		}
	}

	if len(raw) == 0 {
		return "", nil
	}

	if opts.yamlIn {
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return "", errors.Wrap(err, "failed to parse YAML input")
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return "", errors.Wrap(err, "failed to convert YAML input")
		}
		return string(converted), nil
	}

	return string(raw), nil
}

// coerceVar interprets a --var value: JSON-looking text is kept
// structured, numbers and booleans convert, everything else is a string
func coerceVar(raw string) interface{} {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"') {
		var doc interface{}
		if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
			return doc
		}
	}
	if n, err := cast.ToFloat64E(trimmed); err == nil {
		return n
	}
	if b, err := cast.ToBoolE(trimmed); err == nil {
		return b
	}
	return raw
}
