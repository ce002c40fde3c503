package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/remiblancher/capikey/pkg/blob"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <bits>",
	Short: "Show blob region offsets for a key size",
	Long: `Print the offset and length of every region of a key blob
for the given modulus bit length.

Examples:
  capikey layout 1024`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	bits, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid bit length %q", args[0])
	}
	l, err := blob.NewLayout(bits)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bit length:   %d\n", l.BitLength())
	fmt.Fprintf(out, "Public size:  %d\n", l.Size(false))
	fmt.Fprintf(out, "Private size: %d\n\n", l.Size(true))
	printRegions(cmd, l, l.Size(true))
	return nil
}

// printRegions lists the regions of l that end within size bytes.
func printRegions(cmd *cobra.Command, l *blob.Layout, size int) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tOFFSET\tLENGTH")
	for _, r := range l.Regions() {
		if r.End() > size {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", r.Name, r.Offset, r.Length)
	}
	_ = w.Flush()
}
