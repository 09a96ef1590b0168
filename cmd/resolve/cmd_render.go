package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resolution-backend/internal/assembly"
	"resolution-backend/internal/entities"
	"resolution-backend/internal/resolutions"
	"resolution-backend/internal/sequence"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir  string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "render TEMPLATE VALUES",
		Short: "Validate, number and render a resolution",
		Long: `Runs the full assembly pipeline. The register file is advanced and
saved for every identifier minted. With --preview nothing is numbered.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, store, err := loadInputs(args[0], args[1])
			if err != nil {
				return err
			}
			seed, err := entities.LoadFile(opts.entitiesFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			seq := sequence.NewService(ctx, sequence.NewFileStore(opts.registerPath))
			asm := assembly.New(seq, entities.NewMemoryRepo(seed...))

			var doc assembly.Document
			if preview {
				doc, err = asm.Preview(ctx, tpl, store)
			} else {
				doc, err = asm.Generate(ctx, tpl, store)
			}
			if err != nil {
				if msgs, ok := assembly.AsValidation(err); ok {
					printMessages(cmd, msgs)
				}
				return err
			}

			content := resolutions.Markdown(doc)
			if outDir == "" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, doc.FileName)
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write the document into this directory instead of stdout")
	cmd.Flags().BoolVar(&preview, "preview", false, "render without minting a resolution id")
	return cmd
}
