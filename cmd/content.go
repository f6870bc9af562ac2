package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/content"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and check content packs",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a content pack override (default: the configured pack)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Content.Path
		if len(args) == 1 {
			path = args[0]
		}

		pack, err := content.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.ValidatePool(len(pack.Questions)); err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}

		name := path
		if name == "" {
			name = "built-in pack"
		}
		fmt.Printf("%s: ok (%d questions, %d shop items, %d badges, %d prize tiers)\n",
			name, len(pack.Questions), len(pack.ShopItems), len(pack.Badges), len(pack.Prizes.Tiers))
		return nil
	},
}

var contentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the built-in content pack as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stdout.Write(content.DefaultYAML())
		return err
	},
}

func init() {
	contentCmd.AddCommand(contentValidateCmd)
	contentCmd.AddCommand(contentExportCmd)
}
