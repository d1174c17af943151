package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"framemedian/pkg/frameio"
	"framemedian/pkg/similarity"
)

func newCompareCommand() *cobra.Command {
	var samples int

	cmd := &cobra.Command{
		Use:   "compare <imageA> <imageB>",
		Short: "Print the similarity score used to synchronize clips",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples < 0 {
				return fmt.Errorf("samples must not be negative")
			}
			a, err := frameio.ReadFrame(args[0])
			if err != nil {
				return err
			}
			b, err := frameio.ReadFrame(args[1])
			if err != nil {
				return err
			}
			if a.Format != b.Format || a.Width != b.Width || a.Height != b.Height {
				return fmt.Errorf("images differ in format: %s %dx%d vs %s %dx%d",
					a.Format.Name, a.Width, a.Height, b.Format.Name, b.Width, b.Height)
			}

			score := similarity.Compare(a, b, samples)
			fmt.Fprintf(cmd.OutOrStdout(), "%f\n", score)
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 4096, "Pixels compared; 0 compares all")
	return cmd
}
