package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/coredeck/coredeck/internal/client"
	"github.com/coredeck/coredeck/internal/codec"
)

func newIconsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "icons",
		Aliases: []string{"icon"},
		Short:   "Manage saved icons",
	}
	cmd.AddCommand(newIconsAddCmd())
	cmd.AddCommand(newIconsListCmd())
	cmd.AddCommand(newIconsShowCmd())
	cmd.AddCommand(newIconsExportCmd())
	cmd.AddCommand(newIconsRemoveCmd())
	return cmd
}

func newIconsAddCmd() *cobra.Command {
	var (
		size   int
		border int
		filter string
	)
	cmd := &cobra.Command{
		Use:   "add <name> <file>",
		Short: "Normalize an image and save it under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			req := client.CreateIconRequest{
				Name:  args[0],
				Image: codec.DataURI(codec.Sniff(data), data),
			}
			if cmd.Flags().Changed("size") {
				req.FinalSize = &size
			}
			if cmd.Flags().Changed("border") {
				req.Border = &border
			}
			req.Filter = filter

			ic, err := c.CreateIcon(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "icon %s saved (%s)\n", ic.Name, ic.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 0, "output size in pixels (default from daemon)")
	cmd.Flags().IntVar(&border, "border", 0, "transparent border in pixels (default from daemon)")
	cmd.Flags().StringVar(&filter, "filter", "", "resampling filter (default from daemon)")
	return cmd
}

func newIconsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved icons",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			return listIcons(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}
}

// iconLister is the part of the client "icons list" needs.
type iconLister interface {
	ListIcons(ctx context.Context) ([]client.Icon, error)
}

func listIcons(ctx context.Context, w io.Writer, c iconLister) error {
	icons, err := c.ListIcons(ctx)
	if err != nil {
		return err
	}
	if len(icons) == 0 {
		fmt.Fprintln(w, "No icons")
		return nil
	}
	return printIcons(w, icons)
}

func printIcons(w io.Writer, icons []client.Icon) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off, BetweenRows: tw.Off},
				Lines:      tw.Lines{ShowHeaderLine: tw.Off},
			},
		})),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
	)
	table.Header("Name", "ID", "Source", "Size", "Content", "Created")

	for _, ic := range icons {
		content := "passthrough"
		if ic.Box != nil {
			content = ic.Box.String()
		}
		err := table.Append([]string{
			ic.Name,
			ic.ID,
			fmt.Sprintf("%dx%d %s", ic.SourceWidth, ic.SourceHeight, ic.SourceType),
			strconv.Itoa(ic.FinalSize),
			content,
			humanize.Time(ic.CreatedAt),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func newIconsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|id>",
		Short: "Show icon details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ic, err := c.GetIcon(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", ic.Name)
			fmt.Fprintf(out, "ID:         %s\n", ic.ID)
			fmt.Fprintf(out, "Source:     %dx%d %s\n", ic.SourceWidth, ic.SourceHeight, ic.SourceType)
			fmt.Fprintf(out, "Size:       %dpx (border %dpx)\n", ic.FinalSize, ic.Border)
			if ic.Filter != "" {
				fmt.Fprintf(out, "Filter:     %s\n", ic.Filter)
			}
			if ic.Box != nil {
				fmt.Fprintf(out, "Content:    %s (%dx%d)\n", ic.Box, ic.Box.Width(), ic.Box.Height())
			} else {
				fmt.Fprintln(out, "Content:    none visible, stored unchanged")
			}
			fmt.Fprintf(out, "Created:    %s (%s)\n", ic.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(ic.CreatedAt))
			return nil
		},
	}
}

func newIconsExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <name|id> <file>",
		Short: "Write a saved icon to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if format == "" && filepath.Ext(args[1]) != "" {
				if f, err := outputFormat("", args[1]); err == nil {
					format = f
				}
			}
			data, mediaType, err := c.IconImage(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %s)\n", args[1], mediaType, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "png or ico (default from file extension)")
	return cmd
}

func newIconsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name|id>...",
		Aliases: []string{"delete"},
		Short:   "Delete saved icons",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := c.DeleteIcon(cmd.Context(), name); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "icon %s deleted\n", name)
			}
			return nil
		},
	}
}
