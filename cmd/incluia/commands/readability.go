package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/cmd/incluia/ui"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/readability"
)

func newReadabilityCommand(a *app) *cobra.Command {
	var text, textFile string

	cmd := &cobra.Command{
		Use:   "readability",
		Short: "Report readability metrics of a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if textFile != "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return domain.IOError("read text file", err)
				}
				text = strings.TrimSpace(text + "\n\n" + string(data))
			}
			if strings.TrimSpace(text) == "" {
				return domain.NoContentError("provide --text or --text-file")
			}

			outcome := readability.New(a.cfg.Readability.MinTokens).Evaluate(text)
			ui.Section("Legibilidade")
			if outcome.Report == nil {
				ui.Warning("%s", insufficientMessage(outcome.Err))
				return nil
			}
			ui.Table(metricRows(outcome.Report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "text to analyze")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read the text from a file")
	return cmd
}

func metricRows(r *domain.ReadabilityReport) [][]string {
	rows := [][]string{{"Métrica", "Valor", "Nível"}}
	for _, m := range []struct {
		name   string
		metric domain.Metric
	}{
		{"Facilidade de leitura", r.ReadingEase},
		{"Nível escolar (Flesch-Kincaid)", r.GradeLevel},
		{"Índice SMOG", r.SMOGGrade},
		{"Diversidade lexical", r.LexicalDiversity},
	} {
		rows = append(rows, []string{m.name, fmt.Sprintf("%.2f", m.metric.Value), m.metric.Band.Label()})
	}
	return rows
}

// printReadabilityComparison shows the original and adapted metrics side by side.
func printReadabilityComparison(original, adapted domain.ReadabilityOutcome) {
	if original.Report == nil && adapted.Report == nil {
		ui.Warning("%s", insufficientMessage(adapted.Err))
		return
	}

	rows := [][]string{{"Métrica", "Original", "Adaptado"}}
	names := []string{"Facilidade de leitura", "Nível escolar (Flesch-Kincaid)", "Índice SMOG", "Diversidade lexical"}
	orig := metricColumn(original.Report)
	adap := metricColumn(adapted.Report)
	for i, name := range names {
		rows = append(rows, []string{name, orig[i], adap[i]})
	}
	ui.Table(rows)

	if original.Report == nil {
		ui.Info("Original: %s", insufficientMessage(original.Err))
	}
	if adapted.Report == nil {
		ui.Info("Adaptado: %s", insufficientMessage(adapted.Err))
	}
}

func metricColumn(r *domain.ReadabilityReport) []string {
	if r == nil {
		return []string{"-", "-", "-", "-"}
	}
	out := make([]string, 0, 4)
	for _, m := range []domain.Metric{r.ReadingEase, r.GradeLevel, r.SMOGGrade, r.LexicalDiversity} {
		out = append(out, fmt.Sprintf("%.2f (%s)", m.Value, m.Band.Label()))
	}
	return out
}

func insufficientMessage(err error) string {
	if err == nil {
		return "readability not available"
	}
	if domain.IsType(err, domain.ErrorTypeInsufficientText) {
		return "text too short for a reliable readability analysis; provide a longer passage"
	}
	return err.Error()
}
