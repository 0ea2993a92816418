package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/salacoste/rafctl/internal/render"
	"github.com/salacoste/rafctl/internal/tail"
	"github.com/salacoste/rafctl/internal/transcript"
)

func watchCmd() *cobra.Command {
	var (
		profileFlag string
		sessionPath string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the most recent session live",
		Long:  "Tails the newest session transcript and prints activity as it happens: user turns, tool invocations with their targets, and tool failures. Stop with Ctrl-C.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sessionPath
			if path == "" {
				root, err := transcriptsRoot(profileFlag)
				if err != nil {
					return err
				}
				path, err = transcript.MostRecentSession(root)
				if err != nil {
					return fmt.Errorf("find session under %s: %w", root, err)
				}
			}

			render.Info(format, "watching "+path)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine := tail.New(path, printEvent)
			return engine.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Watch this profile's newest session")
	cmd.Flags().StringVarP(&sessionPath, "file", "f", "", "Watch a specific transcript file")

	return cmd
}

func printEvent(ev tail.Event) {
	stamp := ev.Timestamp.Local().Format("15:04:05")
	switch ev.Type {
	case tail.EventUserMessage:
		fmt.Printf("%s  user message\n", stamp)
	case tail.EventToolUse:
		if ev.Target != "" {
			fmt.Printf("%s  %s: %s\n", stamp, ev.ToolName, ev.Target)
		} else {
			fmt.Printf("%s  %s\n", stamp, ev.ToolName)
		}
	case tail.EventToolError:
		render.Error(format, fmt.Sprintf("%s  tool failed", stamp))
	}
}
