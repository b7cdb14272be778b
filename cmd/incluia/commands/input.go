package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/internal/adapt"
	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/prompt"
)

// inputFlags are shared by adapt and illustrate.
type inputFlags struct {
	text         string
	textFile     string
	file         string
	need         string
	instructions string
	suggestions  []string
}

func (f *inputFlags) register(cmd *cobra.Command, suggestions []string) {
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "assessment text to adapt")
	cmd.Flags().StringVar(&f.textFile, "text-file", "", "read the assessment text from a file")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "document to upload (PDF or DOCX)")
	cmd.Flags().StringVarP(&f.need, "need", "n", "", "need category slug or short name (see 'incluia needs')")
	cmd.Flags().StringVarP(&f.instructions, "instructions", "i", "", "extra instructions for this student")
	cmd.Flags().StringSliceVar(&f.suggestions, "suggest", nil,
		fmt.Sprintf("append a quick suggestion to the instructions (%s)", strings.Join(suggestions, "; ")))
}

// build turns the flags into a pipeline input.
func (f *inputFlags) build() (adapt.Input, error) {
	in := adapt.Input{
		Need: prompt.ParseNeedCategory(f.need),
		Text: f.text,
	}

	instructions := f.instructions
	for _, s := range f.suggestions {
		instructions = prompt.AppendSuggestion(instructions, s)
	}
	in.Instructions = instructions

	if f.textFile != "" {
		data, err := os.ReadFile(f.textFile)
		if err != nil {
			return in, domain.IOError("read text file", err)
		}
		in.Text = strings.TrimSpace(strings.Join([]string{in.Text, string(data)}, "\n\n"))
	}

	if f.file != "" {
		doc, err := readDocument(f.file)
		if err != nil {
			return in, err
		}
		in.Document = doc
	}
	return in, nil
}

func readDocument(path string) (*domain.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.IOError("read document", err)
	}
	mt, ok := domain.MediaTypeFromExtension(filepath.Ext(path))
	if !ok {
		mt = domain.MediaType("application/octet-stream")
	}
	return &domain.SourceDocument{Name: filepath.Base(path), MediaType: mt, Data: data}, nil
}
