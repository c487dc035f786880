package cmd

import (
	"strings"

	"github.com/samsaffron/streamdown/internal/render"
	"github.com/spf13/cobra"
)

// RenderFlags holds the flags shared by commands that render Markdown.
// Each command creates its own instance with its own variables.
type RenderFlags struct {
	Renderer    string
	Width       int
	NoComplete  bool
	CompleteAll bool
	DebugLog    bool
}

// AddRendererFlag adds the --renderer/-r flag with completion
func AddRendererFlag(cmd *cobra.Command, dest *string) {
	cmd.Flags().StringVarP(dest, "renderer", "r", "", "Renderer: "+strings.Join(render.Names(), ", ")+" (overrides config)")
	if err := cmd.RegisterFlagCompletionFunc("renderer", RendererFlagCompletion); err != nil {
		panic("failed to register renderer completion: " + err.Error())
	}
}

// AddWidthFlag adds the --width/-w flag
func AddWidthFlag(cmd *cobra.Command, dest *int) {
	cmd.Flags().IntVarP(dest, "width", "w", 0, "Wrap width (default: config, then terminal width)")
}

// AddCompletionFlags adds --no-complete and --complete-all
func AddCompletionFlags(cmd *cobra.Command, noComplete, completeAll *bool) {
	cmd.Flags().BoolVar(noComplete, "no-complete", false, "Render the growing block without closing open markers")
	cmd.Flags().BoolVar(completeAll, "complete-all", false, "Close open markers in every block, not just the last")
}

// AddDebugLogFlag adds the --debug-log flag
func AddDebugLogFlag(cmd *cobra.Command, dest *bool) {
	cmd.Flags().BoolVar(dest, "debug-log", false, "Record every stream update to a debug log")
}

// AddRenderFlags adds every flag in RenderFlags
func AddRenderFlags(cmd *cobra.Command, f *RenderFlags) {
	AddRendererFlag(cmd, &f.Renderer)
	AddWidthFlag(cmd, &f.Width)
	AddCompletionFlags(cmd, &f.NoComplete, &f.CompleteAll)
	AddDebugLogFlag(cmd, &f.DebugLog)
}

// RendererFlagCompletion completes renderer names
func RendererFlagCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, name := range render.Names() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
