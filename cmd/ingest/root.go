package main

import (
	"errors"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/hildam/funeral-claim-go/entity/conf"
	"github.com/hildam/funeral-claim-go/repo/kb"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	policyDir  string
	persistDir string
}

// newRootCmd 不带子命令时执行 build
func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "ingest",
		Short:        "Build the DWP policy knowledge base from the policy documents directory",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", conf.ConfigPath(), "config file")
	root.PersistentFlags().StringVar(&opts.policyDir, "policy-dir", "", "override rag.policy_dir")
	root.PersistentFlags().StringVar(&opts.persistDir, "persist-dir", "", "override rag.persist_dir")

	root.AddCommand(
		&cobra.Command{
			Use:   "build",
			Short: "Rebuild the knowledge base into a new generation and switch to it",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBuild(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current generation and its chunk count",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStatus(cmd, opts)
			},
		},
	)
	return root
}

// loadConfig 读取配置并初始化日志，命令行参数覆盖目录
func loadConfig(opts *options) (*conf.AppConfig, error) {
	_ = godotenv.Load()

	cfg, err := conf.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.policyDir != "" {
		cfg.RAG.PolicyDir = opts.policyDir
	}
	if opts.persistDir != "" {
		cfg.RAG.PersistDir = opts.persistDir
	}
	if err = slog.InitFile(cfg.Setting.LogFile, slog.WithLevel(cfg.Setting.LogLevel), slog.WithColor(false)); err != nil {
		return nil, fmt.Errorf("init log: %w", err)
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	generation, err := kb.NewBuilderFromConfig(cfg).Build(cmd.Context())
	if err != nil {
		slog.Error("runBuild failed, err = %+v", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "built %s from %s into %s\n", generation, cfg.RAG.PolicyDir, cfg.RAG.PersistDir)
	return nil
}

func runStatus(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	store := kb.NewStoreFromConfig(cfg)
	if err = store.Load(cmd.Context()); errors.Is(err, kb.ErrNotLoaded) {
		fmt.Fprintln(cmd.OutOrStdout(), "not loaded")
		return nil
	} else if err != nil {
		return err
	}
	h := store.Current()
	fmt.Fprintf(cmd.OutOrStdout(), "generation %s, %d chunks\n", h.Generation(), h.DocumentCount())
	return nil
}
