package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/samsaffron/streamdown/internal/config"
	"github.com/samsaffron/streamdown/internal/render"
	"github.com/samsaffron/streamdown/internal/theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage streamdown configuration",
	Long: `View or edit your streamdown configuration.

Examples:
  streamdown config                          # show effective config
  streamdown config edit                     # edit in $EDITOR
  streamdown config set renderer terminal    # change one value
  streamdown config get theme.preset
  streamdown config completion zsh           # shell completions`,
	RunE: configShow, // Default to show
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file in $EDITOR",
	RunE:  configEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration file path",
	RunE:  configPath,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long:  `Reset the configuration file to default values. This will overwrite any existing configuration.`,
	RunE:  configReset,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value while preserving comments. The result is
validated before it is written.

Examples:
  streamdown config set renderer glamour
  streamdown config set width 100
  streamdown config set theme.code_text "#fe8019"
  streamdown config set simulate.delay 30ms`,
	Args:              cobra.ExactArgs(2),
	RunE:              configSet,
	ValidArgsFunction: configSetCompletion,
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	RunE:              configGet,
	ValidArgsFunction: configSetCompletion,
}

var configCompletionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion script",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:      configCompletion,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configCompletionCmd)
}

func configShow(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if config.Exists() {
		fmt.Fprintf(out, "# %s\n\n", configPath)
	} else {
		fmt.Fprintf(out, "# No config file (using defaults)\n")
		fmt.Fprintf(out, "# Create one with: streamdown config edit\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	out.Write(data)
	fmt.Fprintf(out, "\n# debug logs: %s\n", cfg.DebugLogDir())

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return nil
}

func configEdit(cmd *cobra.Command, args []string) error {
	configPath, err := ensureConfigFile()
	if err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	return editorCmd.Run()
}

// ensureConfigFile writes the commented default config unless a file exists.
func ensureConfigFile() (string, error) {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(defaultConfigContent()), 0644); err != nil {
			return "", fmt.Errorf("failed to create config file: %w", err)
		}
	}
	return configPath, nil
}

func configPath(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func configReset(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfigContent()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config reset to defaults: %s\n", configPath)
	return nil
}

func defaultConfigContent() string {
	return `# streamdown configuration
# Run 'streamdown config edit' to modify

# glamour | terminal | html | plain | raw
renderer: glamour

# Wrap width; 0 follows the terminal
width: 0

# glamour style name (dark, light, dracula, ...); empty derives one from theme
# style: dark

# Close open emphasis, code spans and math in the block still being written
parse_incomplete: true

# Also close markers in finished blocks
complete_all: false

theme:
  preset: dark
  # Colours are ANSI numbers (0-255) or hex codes (#RRGGBB)
  # text: "#ebdbb2"
  # primary: "#b8bb26"
  # secondary: "#83a598"
  # muted: "#928374"
  # code_text: "#fe8019"
  # link_text: "#83a598"

# Pacing for render --simulate and view
simulate:
  chunk_size: 3
  delay: 16ms

debug_log:
  enabled: false
  # dir: ~/.local/share/streamdown/debug
  max_age_days: 7
`
}

// configSet sets a configuration value while preserving comments
func configSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	configPath, err := ensureConfigFile()
	if err != nil {
		return err
	}
	original, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	updated, err := setConfigValue(original, key, value)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, updated, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Put the old file back if the new value does not load
	cfg, err := config.LoadFrom(filepath.Dir(configPath))
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if restoreErr := os.WriteFile(configPath, original, 0644); restoreErr != nil {
			return fmt.Errorf("%w (and failed to restore config: %v)", err, restoreErr)
		}
		return fmt.Errorf("%s = %s rejected: %w", key, value, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
	return nil
}

// setConfigValue returns data with the dotted key set to value. Comments
// and key order are kept; missing mappings are created.
func setConfigValue(data []byte, key, value string) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root is not a mapping")
	}

	node := root.Content[0]
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := mappingValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, child)
		} else if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode, LineComment: child.LineComment}
		}
		node = child
	}

	last := parts[len(parts)-1]
	if v := mappingValue(node, last); v != nil {
		// Keep comments attached to the old value
		v.Kind, v.Tag, v.Value, v.Style, v.Content = yaml.ScalarNode, "", value, 0, nil
	} else {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: last},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// configGet prints a value of the effective config, file or default.
func configGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	value, err := getConfigValue(cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func getConfigValue(cfg *config.Config, key string) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return "", err
	}
	node := root.Content[0]
	for _, part := range strings.Split(key, ".") {
		node = mappingValue(node, part)
		if node == nil {
			// Unset optional keys are empty strings
			if isConfigKey(key) {
				return "", nil
			}
			return "", fmt.Errorf("unknown key: %s", key)
		}
	}
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%s is a section, not a value", key)
	}
	return node.Value, nil
}

// configKeys lists every settable key.
var configKeys = []string{
	"renderer",
	"width",
	"style",
	"parse_incomplete",
	"complete_all",
	"theme.preset",
	"theme.text",
	"theme.background",
	"theme.primary",
	"theme.secondary",
	"theme.muted",
	"theme.border",
	"theme.code_background",
	"theme.code_text",
	"theme.link_text",
	"theme.quote_border",
	"theme.quote_text",
	"theme.emphasis",
	"simulate.chunk_size",
	"simulate.delay",
	"debug_log.enabled",
	"debug_log.dir",
	"debug_log.max_age_days",
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// configSetCompletion completes keys, then values for keys with a fixed set
func configSetCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var candidates []string
	switch {
	case len(args) == 0:
		candidates = configKeys
	case len(args) == 1 && cmd.Name() == "set":
		switch args[0] {
		case "renderer":
			candidates = render.Names()
		case "theme.preset":
			candidates = theme.PresetNames()
		case "parse_incomplete", "complete_all", "debug_log.enabled":
			candidates = []string{"true", "false"}
		}
	}
	var completions []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			completions = append(completions, c)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func configCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(out)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}
