package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"localmind/internal/manager"
)

var (
	chatPersona      string
	chatInstructions string
	chatShowStats    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Load the model and answer one message on stdout",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatPersona, "persona", "", "persona name (config default when empty)")
	chatCmd.Flags().StringVar(&chatInstructions, "instructions", "", "persona instructions")
	chatCmd.Flags().BoolVar(&chatShowStats, "stats", false, "print generation metadata to stderr")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Logging, nil)
	eng, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}
	sched := newScheduler(cfg.Scheduler, log)
	mcfg, err := managerConfig(cfg, eng, sched, nil, log)
	if err != nil {
		return err
	}
	mgr := manager.NewWithConfig(mcfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() {
		_ = mgr.Close(context.Background())
		_ = sched.Dispose(context.Background())
	}()

	if err := mgr.Initialize(ctx); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	persona := manager.Persona{Name: chatPersona, Instructions: chatInstructions}
	res, err := mgr.SendMessageStream(ctx, strings.Join(args, " "), persona, nil, func(tok string) error {
		_, err := fmt.Fprint(out, tok)
		return err
	})
	fmt.Fprintln(out)
	if err != nil {
		if manager.IsCancelled(err) {
			return nil
		}
		return err
	}
	if chatShowStats {
		md := res.Metadata
		fmt.Fprintf(cmd.ErrOrStderr(), "model=%s threads=%d input=%d output=%d duration=%s tok/s=%.1f\n",
			md.ModelID, md.Threads, md.InputTokens, md.OutputTokens, md.Duration, md.TokensPerSecond)
	}
	return nil
}
