package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/cmd/incluia/ui"
	"github.com/incluia/assessment-adapter/internal/prompt"
)

func newNeedsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "needs",
		Short: "List the supported need categories and quick suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.Section("Categorias")
			rows := [][]string{{"Slug", "Nome curto", "Categoria"}}
			for _, n := range prompt.AllNeeds() {
				rows = append(rows, []string{n.Slug(), prompt.AdaptationFlow.Guidelines.Profile(n).ShortName, n.Label()})
			}
			ui.Table(rows)

			ui.Section("Sugestões (adapt)")
			ui.Message("%s", strings.Join(prompt.AdaptationFlow.Suggestions, "\n"))
			ui.Section("Sugestões (illustrate)")
			ui.Message("%s", strings.Join(prompt.IllustrationFlow.Suggestions, "\n"))
			return nil
		},
	}
}
