// Package main provides a small CLI for driving a gridsheet Sheet from a
// script of edit operations, mainly useful for demos and debugging.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	gridsheet "github.com/javajack/gridsheet"
)

var (
	rows int
	cols int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridsheet [script]",
		Short: "Apply spreadsheet edit operations from a script",
		Long: `gridsheet reads edit operations (one per line) from a script file or stdin,
applies them to an in-memory sheet with full undo/redo, and prints the grid.

Operations:
  set <cell> <value>        write a value        set B2 42
  formula <cell> <expr>     attach a formula     formula C1 A1+B2*2
  clear <region>            clear a region       clear A1:C3
  merge <region>            merge cells          merge A1:B2
  unmerge <cell>            remove a merge       unmerge A1
  inscol|rmcol <idx> [n]    insert/remove cols   rmcol 2
  insrow|rmrow <idx> [n]    insert/remove rows   insrow 0 3
  undo | redo | calc | show`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	rootCmd.Flags().IntVar(&rows, "rows", 100, "Number of sheet rows")
	rootCmd.Flags().IntVar(&cols, "cols", 26, "Number of sheet columns")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	in := io.Reader(os.Stdin)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	sheet := gridsheet.NewSheet(gridsheet.WithDimensions(rows, cols))

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := apply(cmd.OutOrStdout(), sheet, line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func apply(out io.Writer, sheet *gridsheet.Sheet, line string) error {
	fields := strings.Fields(line)
	op, args := fields[0], fields[1:]

	switch op {
	case "undo":
		report(out, "undo", sheet.Undo())
		return nil
	case "redo":
		report(out, "redo", sheet.Redo())
		return nil
	case "calc":
		sheet.Recalculate()
		return nil
	case "show":
		show(out, sheet)
		return nil
	}

	name, attrs, err := translate(op, args)
	if err != nil {
		return err
	}
	ok, err := sheet.ExecuteNamed(name, attrs)
	if err != nil {
		return err
	}
	report(out, op, ok)
	return nil
}

// translate maps a script line onto a registry command name and attributes.
func translate(op string, args []string) (string, map[string]string, error) {
	switch op {
	case "set":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: set <cell> <value>")
		}
		return "setValue", map[string]string{"cell": args[0], "value": strings.Join(args[1:], " ")}, nil
	case "formula":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: formula <cell> <expr>")
		}
		return "setFormula", map[string]string{"cell": args[0], "formula": strings.Join(args[1:], " ")}, nil
	case "clear":
		if len(args) != 1 {
			return "", nil, fmt.Errorf("usage: clear <region>")
		}
		return "clearRegion", map[string]string{"region": args[0]}, nil
	case "merge":
		if len(args) != 1 {
			return "", nil, fmt.Errorf("usage: merge <region>")
		}
		return "merge", map[string]string{"region": args[0]}, nil
	case "unmerge":
		if len(args) != 1 {
			return "", nil, fmt.Errorf("usage: unmerge <cell>")
		}
		return "unmerge", map[string]string{"cell": args[0]}, nil
	case "inscol", "rmcol", "insrow", "rmrow":
		if len(args) < 1 {
			return "", nil, fmt.Errorf("usage: %s <index> [count]", op)
		}
		attrs := map[string]string{"index": args[0]}
		if len(args) > 1 {
			attrs["count"] = args[1]
		}
		names := map[string]string{
			"inscol": "insertColumn",
			"rmcol":  "removeColumn",
			"insrow": "insertRow",
			"rmrow":  "removeRow",
		}
		return names[op], attrs, nil
	default:
		return "", nil, fmt.Errorf("unknown operation %q", op)
	}
}

func report(out io.Writer, op string, ok bool) {
	if !ok {
		fmt.Fprintf(out, "%s: no-op\n", op)
	}
}

// show prints the occupied bounding box of the sheet.
func show(out io.Writer, sheet *gridsheet.Sheet) {
	sheet.Recalculate()
	all := gridsheet.NewRegion(
		gridsheet.NewCellRef(0, 0),
		gridsheet.NewCellRef(sheet.NumRows()-1, sheet.NumCols()-1),
	)
	maxRow, maxCol := -1, -1
	for ref := range sheet.Store().NonEmptyCells(all) {
		if ref.Row > maxRow {
			maxRow = ref.Row
		}
		if ref.Col > maxCol {
			maxCol = ref.Col
		}
	}
	if maxRow < 0 {
		fmt.Fprintln(out, "(empty)")
		return
	}
	for row := 0; row <= maxRow; row++ {
		cells := make([]string, maxCol+1)
		for col := 0; col <= maxCol; col++ {
			text, _ := sheet.CellValueAt(row, col).Text()
			cells[col] = text
		}
		fmt.Fprintln(out, strings.Join(cells, "\t"))
	}
}
