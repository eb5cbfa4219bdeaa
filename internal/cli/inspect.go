package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bubblechart/pkg/tree"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var leaves bool

	cmd := &cobra.Command{
		Use:               "inspect [file]",
		Short:             "Print tree statistics and validation problems",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], leaves)
		},
	}

	cmd.Flags().BoolVar(&leaves, "leaves", false, "list every leaf")
	return cmd
}

func runInspect(ctx context.Context, input string, showLeaves bool) error {
	root, err := tree.ImportJSON(input)
	if err != nil {
		return err
	}

	leaves := tree.Leaves(root)
	fmt.Println(StyleTitle.Render(root.Name))
	printKeyValue("Nodes", strconv.Itoa(tree.Count(root)))
	printKeyValue("Leaves", strconv.Itoa(len(leaves)))
	printKeyValue("Depth", strconv.Itoa(tree.Depth(root)))
	printKeyValue("Total", strconv.FormatFloat(tree.TotalWeight(root), 'g', -1, 64))

	if showLeaves {
		printNewline()
		fmt.Println(leafTable(leaves))
	}

	problems := tree.Validate(root)
	printNewline()
	if len(problems) == 0 {
		printSuccess("No problems found")
		return nil
	}
	for _, p := range problems {
		printWarning("%v", p)
	}
	printDetail("Lookups use the first node with a given name")
	return nil
}

// leafTable renders leaves with a swatch in their own color.
func leafTable(leaves []*tree.Node) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("NAME", "VALUE", "COLOR")

	for _, n := range leaves {
		t.Row(n.Name, strconv.FormatFloat(n.Weight, 'g', -1, 64), swatch(n.Color))
	}
	return t.String()
}
