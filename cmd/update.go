package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skiquiz/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update skiquiz to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if selfupdate.IsDevBuild(version) {
			fmt.Println("This is a development build. Install a release build to self-update.")
			return nil
		}
		checkOnly, _ := cmd.Flags().GetBool("check")

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		checker := selfupdate.NewChecker(selfupdate.WithTimeout(2 * time.Minute))

		if checkOnly {
			res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
			if err != nil {
				return err
			}
			if !res.UpdateAvailable {
				fmt.Printf("skiquiz %s is the latest release.\n", res.CurrentVersion)
				return nil
			}
			fmt.Printf("skiquiz %s is available (you have %s): %s\n", res.LatestVersion, res.CurrentVersion, res.ReleaseURL)
			return nil
		}

		err := checker.Update(ctx, &selfupdate.UpdateInput{CurrentVersion: version},
			func(p selfupdate.UpdateProgress) { fmt.Println(p.Message) })
		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Println("Already on the latest release.")
			return nil
		case os.IsPermission(err):
			return fmt.Errorf("%w\n\nTry running: sudo skiquiz update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only check whether a newer release exists")
}
