// Package cli provides presentation helpers for the kws command-line tool.
//
// This package includes:
//   - Output formatting (text, YAML, JSON, raw)
//   - Styled rendering of classification reports
//   - Labels file loading
//   - The ~/.kws directory layout
//
// Example usage:
//
//	styles := cli.NewStyles(cli.DefaultTheme)
//	fmt.Print(cli.RenderResults(report, styles))
//
//	cli.Output(report, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
