package cli

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdatlas/pkg/psdb"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect <file.bin>",
		Short: "Show the regions stored in a PSDB binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := psdb.ReadFile(args[0])
			if err != nil {
				return err
			}
			if interactive {
				_, err := tea.NewProgram(newRegionBrowser(args[0], f), tea.WithAltScreen()).Run()
				return err
			}
			printInspect(args[0], f)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse regions interactively")
	return cmd
}

func printInspect(path string, f *psdb.File) {
	size := "?"
	if info, err := os.Stat(path); err == nil {
		size = fmt.Sprintf("%d bytes", info.Size())
	}

	fmt.Println(StyleTitle.Render(path))
	printKeyValue("Magic", psdb.Magic)
	printKeyValue("Version", strconv.FormatUint(uint64(f.Version), 10))
	printKeyValue("Regions", strconv.Itoa(len(f.Entries)))
	printKeyValue("Size", size)

	if len(f.Entries) == 0 {
		printWarning("no regions")
		return
	}
	printNewline()
	fmt.Println(regionTable(f.Entries, -1).Render())
}

// regionTable renders entries as a bordered table. The row at index
// selected is highlighted; pass -1 for none.
func regionTable(entries []psdb.Entry, selected int) *table.Table {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Name,
			fmt.Sprintf("%g,%g", e.X, e.Y),
			fmt.Sprintf("%gx%g", e.W, e.H),
			fmt.Sprintf("%.4f,%.4f", e.U1, e.V1),
			fmt.Sprintf("%.4f,%.4f", e.U2, e.V2),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("Name", "Source", "Size", "UV min", "UV max").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return styleTableHeader
			case row == selected:
				return listSelectedStyle
			case col == 0:
				return listNormalStyle
			default:
				return listDimStyle
			}
		})
}
