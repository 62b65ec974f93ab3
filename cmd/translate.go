/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/tablotran/internal/driver"
	"github.com/valpere/tablotran/internal/sheet"
	"github.com/valpere/tablotran/internal/validator"
)

var (
	inputFile  string
	outputFile string

	sourceCol string
	destCol   string
	startRow  int

	gatewayName string
	gatewayURL  string
	gatewayKey  string
	modelName   string
	temperature float64

	noValidate  bool
	showJournal bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate one spreadsheet column from English to French",
	Long: `Translate an English column of an xlsx workbook to French, cell by cell,
using a local language model. Only the first sheet is used; the header row
(everything above --start-row) is left as-is, and rows with an empty source
cell keep an empty destination cell.

Numeric cells, symbol-only cells, and vowel-less tokens (acronyms, codes)
are copied to the destination without a model call.

Press Ctrl-C to stop a run; rows translated so far are still written to
the output file.

Example:
  tablotran translate -i catalog.xlsx
  tablotran translate -i catalog.xlsx -o out.xlsx --source-col D --dest-col E --start-row 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}
		for _, col := range []string{sourceCol, destCol} {
			if err := sheet.ValidateColumn(col); err != nil {
				return err
			}
		}
		if startRow < 1 {
			return fmt.Errorf("start row must be 1 or greater")
		}

		gw, err := buildGateway(
			viper.GetString("gateway.name"),
			viper.GetString("gateway.url"),
			viper.GetString("gateway.api_key"),
			viper.GetString("gateway.model"),
		)
		if err != nil {
			return err
		}

		doc, err := sheet.Open(inputFile)
		if err != nil {
			return err
		}
		defer doc.Close()

		var val *validator.Validator
		if !noValidate {
			val = validator.New()
		}

		run := driver.New(gw, val)
		fmt.Fprintf(os.Stderr, "Run %s: %s sheet %q, column %s -> %s from row %d (%s)\n",
			run.ID, inputFile, doc.Sheet(), sourceCol, destCol, startRow, gw.Name())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		go func() {
			if _, ok := <-sigCh; ok {
				fmt.Fprintln(os.Stderr, "Stop requested, interrupting generation...")
				run.Stop()
			}
		}()

		execErr := run.Execute(ctx, doc, driver.Options{
			SourceCol:   sourceCol,
			DestCol:     destCol,
			StartRow:    startRow,
			Temperature: viper.GetFloat64("gateway.temperature"),
		})

		switch {
		case execErr == nil:
		case errors.Is(execErr, driver.ErrStopped):
			fmt.Fprintln(os.Stderr, "Run stopped; writing rows completed so far")
		case run.Cells() > 0:
			fmt.Fprintf(os.Stderr, "Run aborted: %v\n", execErr)
			fmt.Fprintln(os.Stderr, "Writing rows completed before the failure")
		default:
			return execErr
		}

		if err := doc.SaveAs(outputFile); err != nil {
			return err
		}

		current, total := run.Progress()
		fmt.Printf("Wrote %s: %d cells translated, state %s (row %d of %d)\n",
			outputFile, run.Cells(), run.State(), current, total)

		if showJournal {
			printJournal(run.Journal())
		}

		// A hard gateway failure still fails the command, after the
		// partial output is on disk.
		if execErr != nil && !errors.Is(execErr, driver.ErrStopped) {
			return execErr
		}
		return nil
	},
}

func printJournal(records []driver.Record) {
	if len(records) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tSOURCE\tTRANSLATION")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.Seq, snippet(r.Source), snippet(r.Output))
	}
	w.Flush()
}

func snippet(s string) string {
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input xlsx workbook (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", sheet.DefaultOutputName, "Output xlsx workbook")
	translateCmd.Flags().StringVar(&sourceCol, "source-col", "B", "Source column letter")
	translateCmd.Flags().StringVar(&destCol, "dest-col", "C", "Destination column letter")
	translateCmd.Flags().IntVar(&startRow, "start-row", 2, "First data row, 1-indexed (2 skips a header row)")

	translateCmd.Flags().StringVar(&gatewayName, "gateway", "ollama", "Inference backend: ollama or openai")
	translateCmd.Flags().StringVar(&gatewayURL, "url", "", "Backend base URL (default http://localhost:11434 for ollama)")
	translateCmd.Flags().StringVar(&gatewayKey, "api-key", "", "API key for OpenAI-compatible local servers")
	translateCmd.Flags().StringVar(&modelName, "model", "", "Model name (default llama3.2 for ollama)")
	translateCmd.Flags().Float64Var(&temperature, "temperature", driver.DefaultTemperature, "Sampling temperature")

	translateCmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip language validation of translated cells")
	translateCmd.Flags().BoolVar(&showJournal, "journal", false, "Print the most recent translations after the run")

	viper.BindPFlag("gateway.name", translateCmd.Flags().Lookup("gateway"))
	viper.BindPFlag("gateway.url", translateCmd.Flags().Lookup("url"))
	viper.BindPFlag("gateway.api_key", translateCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("gateway.model", translateCmd.Flags().Lookup("model"))
	viper.BindPFlag("gateway.temperature", translateCmd.Flags().Lookup("temperature"))

	translateCmd.MarkFlagRequired("input")
}
