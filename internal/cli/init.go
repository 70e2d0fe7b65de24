// init.go implements the "charchat init" command with optional --guided flag.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charchat/charchat/internal/config"
	"github.com/charchat/charchat/internal/log"
)

func newInitCmd() *cobra.Command {
	var guided, force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write .charchat/config.yaml with defaults",
		Long: `Create the .charchat/ directory in the current directory with a
config.yaml holding the default API URL, timeout and context size.
Use --guided to answer prompts for each value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			return runInit(cmd, dir, guided, force)
		},
	}

	cmd.Flags().BoolVar(&guided, "guided", false, "Interactive prompts for configuration values")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config without asking")
	return cmd
}

func runInit(cmd *cobra.Command, dir string, guided, force bool) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	path := filepath.Join(config.Dir(dir), "config.yaml")
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintln(out, "Warning: .charchat/config.yaml already exists.")
		if !confirm(in, out, "Overwrite?") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if guided {
		guidedOverrides(in, out, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := config.WriteConfig(dir, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := ensureGitignore(dir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set up .gitignore: %v\n", err)
	}

	fmt.Fprintln(out, "charchat initialized")
	fmt.Fprintf(out, "  API URL:      %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  Timeout:      %ds\n", cfg.API.TimeoutSeconds)
	fmt.Fprintf(out, "  Context size: %d messages\n", cfg.Chat.MaxContextMessages)
	fmt.Fprintln(out, "Configuration written to .charchat/config.yaml")
	return nil
}

// guidedOverrides prompts for each setting; an empty answer keeps the default.
func guidedOverrides(in *bufio.Reader, out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "--- Guided Configuration ---")

	if v := prompt(in, out, "API URL", cfg.API.BaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := prompt(in, out, "Timeout seconds", strconv.Itoa(cfg.API.TimeoutSeconds)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSeconds = n
		} else {
			fmt.Fprintf(out, "Ignoring %q: not a number\n", v)
		}
	}
	if v := prompt(in, out, "Context messages", strconv.Itoa(cfg.Chat.MaxContextMessages)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxContextMessages = n
		} else {
			fmt.Fprintf(out, "Ignoring %q: not a number\n", v)
		}
	}

	fmt.Fprintln(out, "--- End Guided Configuration ---")
	fmt.Fprintln(out)
}

func prompt(in *bufio.Reader, out io.Writer, label, def string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, def)
	answer, err := in.ReadString('\n')
	if err != nil && answer == "" {
		return ""
	}
	return strings.TrimSpace(answer)
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := in.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

// ensureGitignore appends the runtime files that should never be committed,
// skipping entries already present.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	requiredEntries := []string{
		".env",
		".charchat/" + log.FileName,
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by charchat init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
