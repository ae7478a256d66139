package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"localmind/internal/manager"
	"localmind/internal/registry"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the engine, bundled asset and extracted model are usable",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkReport struct {
	manager.SanityReport
	Assets []registry.Asset `json:"assets"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
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
	defer func() { _ = sched.Dispose(cmd.Context()) }()
	mcfg, err := managerConfig(cfg, eng, sched, nil, log)
	if err != nil {
		return err
	}
	report := checkReport{SanityReport: manager.NewWithConfig(mcfg).SanityCheck()}
	report.Assets, err = registry.Scan(mcfg.Assets)
	if err != nil {
		log.Warn().Err(err).Str("assets_dir", cfg.AssetsDir).Msg("scan assets")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	if _, ok := registry.Lookup(report.Assets, cfg.ModelAsset); !ok {
		names := make([]string, 0, len(report.Assets))
		for _, a := range report.Assets {
			names = append(names, a.Name)
		}
		return fmt.Errorf("model asset %q not found in %s (available: %s)", cfg.ModelAsset, cfg.AssetsDir, strings.Join(names, ", "))
	}
	return nil
}
