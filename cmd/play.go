package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Skip the lobby and start a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		free, _ := cmd.Flags().GetBool("free")
		return runApp(cmd, launch{autoStart: true, free: free})
	},
}

func init() {
	playCmd.Flags().Bool("free", false, "Use today's free run instead of a ticket")
}
