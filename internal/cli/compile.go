package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/compiler"
	"github.com/roach88/pytch/internal/value"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled class table.
type CompilationResult struct {
	Classes []ClassInfo `json:"classes"`
}

// ClassInfo is the serialized form of one compiled class.
type ClassInfo struct {
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Costumes  []MediaInfo  `json:"costumes,omitempty"`
	Backdrops []MediaInfo  `json:"backdrops,omitempty"`
	Sounds    []MediaInfo  `json:"sounds,omitempty"`
	Vars      value.Record `json:"vars,omitempty"`
}

// MediaInfo describes a costume, backdrop or sound. Width and Height are
// set for costumes only.
type MediaInfo struct {
	Name   string  `json:"name"`
	Asset  string  `json:"asset"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <manifest-dir>",
		Short: "Compile CUE manifests to a class table",
		Long: `Compile the sprite and stage declarations in a directory of CUE files
and print the resulting class table. With --output the table is also
written as JSON.

The manifests must pass validation; see "pytch validate".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, err := LoadManifests(dir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			if loadErr.Pos.IsValid() {
				return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Error())
			}
			return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	if errs := compiler.Validate(loadResult.Manifest); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	result := &CompilationResult{}
	for _, c := range loadResult.Manifest.Classes() {
		formatter.VerboseLog("Compiled %s: %s", c.Kind, c.Name)
		result.Classes = append(result.Classes, describeClass(c))
	}

	if opts.Output != "" {
		if err := writeClassTable(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func describeClass(c *actor.Class) ClassInfo {
	info := ClassInfo{Name: c.Name, Kind: c.Kind.String()}
	for _, co := range c.Costumes {
		info.Costumes = append(info.Costumes, MediaInfo{Name: co.Name, Asset: co.AssetPath, Width: co.Width, Height: co.Height})
	}
	for _, b := range c.Backdrops {
		info.Backdrops = append(info.Backdrops, MediaInfo{Name: b.Name, Asset: b.AssetPath})
	}
	for _, s := range c.Sounds {
		info.Sounds = append(info.Sounds, MediaInfo{Name: s.Name, Asset: s.AssetPath})
	}
	if len(c.Vars) > 0 {
		info.Vars = c.Vars
	}
	return info
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d class(es)\n\n", len(result.Classes))
	for _, c := range result.Classes {
		switch c.Kind {
		case actor.KindStage.String():
			fmt.Fprintf(formatter.Writer, "  %s (stage): %d backdrop(s), %d sound(s)\n", c.Name, len(c.Backdrops), len(c.Sounds))
		default:
			fmt.Fprintf(formatter.Writer, "  %s (sprite): %d costume(s), %d sound(s), %d var(s)\n",
				c.Name, len(c.Costumes), len(c.Sounds), len(c.Vars))
		}
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote class table to %s\n", outputFile)
	}
	return nil
}

// writeClassTable writes the class table as indented JSON.
func writeClassTable(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling class table: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
