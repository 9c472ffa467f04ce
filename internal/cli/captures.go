package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCapturesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "captures",
		Short: "List stored captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := attachStore(cmd, flags)
			if err != nil {
				return err
			}
			defer store.Detach()

			captures, err := store.Captures(cmd.Context())
			if err != nil {
				return storeError("list captures", err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, captures)
			}
			if len(captures) == 0 {
				fmt.Fprintln(out, "no captures")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tFRAMES\tCREATED")
			for _, c := range captures {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.ID, c.Name, c.FrameCount, c.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import frames from a JSONL file as a new capture",
		Long:  "Import reads one JSON frame record per line. Malformed lines are skipped\nand counted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := attachStore(cmd, flags)
			if err != nil {
				return err
			}
			defer store.Detach()

			if name == "" {
				name = args[0]
			}
			capture, skipped, err := store.ImportFramesJSONL(cmd.Context(), args[0], name)
			if err != nil {
				return userError("import %s: %s", args[0], err)
			}

			out := cmd.OutOrStdout()
			if flags.jsonMode {
				return printJSON(out, map[string]any{
					"capture": capture,
					"skipped": skipped,
				})
			}
			fmt.Fprintf(out, "imported %d frames into %s", capture.FrameCount, capture.ID)
			if skipped > 0 {
				fmt.Fprintf(out, " (%d malformed lines skipped)", skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "capture name (default: the file path)")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export CAPTURE_ID",
		Short: "Export a capture's frames as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return userError("--out is required")
			}
			store, _, err := attachStore(cmd, flags)
			if err != nil {
				return err
			}
			defer store.Detach()

			n, err := store.ExportFramesJSONL(cmd.Context(), args[0], outPath)
			if err != nil {
				return storeError("export frames", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d frames to %s\n", n, outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output JSONL file")
	return cmd
}

func newEventsCmd(flags *rootFlags) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "events CAPTURE_ID",
		Short: "Show the events journaled for a capture",
		Long:  "Print journaled events, or write them to a JSONL file with --out.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := attachStore(cmd, flags)
			if err != nil {
				return err
			}
			defer store.Detach()

			out := cmd.OutOrStdout()
			if outPath != "" {
				n, err := store.ExportEventsJSONL(cmd.Context(), args[0], outPath)
				if err != nil {
					return storeError("export events", err)
				}
				fmt.Fprintf(out, "exported %d events to %s\n", n, outPath)
				return nil
			}

			events, err := store.Events(cmd.Context(), args[0])
			if err != nil {
				return storeError("list events", err)
			}
			if flags.jsonMode {
				return printJSON(out, events)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FRAME\tKIND\tSUBJECT\tDETAIL")
			for _, e := range events {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", e.FrameIndex, e.Kind, e.SubjectID, string(e.Detail))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "write events to a JSONL file instead of stdout")
	return cmd
}
