package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"appbinhub/internal/appimage"
	"appbinhub/internal/catalog"
	"appbinhub/internal/convert"
	"appbinhub/internal/deps"
	"appbinhub/internal/discovery"
	"appbinhub/internal/fetch"
	"appbinhub/internal/logging"
	"appbinhub/internal/pkgbuild"
	"appbinhub/internal/services"
	"appbinhub/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipDiscovery bool
	var skipConvert bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover new releases and convert pending applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()

			catalogStore := catalog.NewStore(cfg.CatalogPath(), cfg.LockPath())
			if err := catalogStore.Acquire(); err != nil {
				return err
			}
			defer func() {
				if err := catalogStore.Release(); err != nil {
					logger.Warn("lock release failed", logging.Error(err))
				}
			}()

			cat, err := catalogStore.Load()
			if err != nil {
				return err
			}

			fetcher := fetch.New(fetch.Options{
				UserAgent:       cfg.Network.UserAgent,
				RequestTimeout:  time.Duration(cfg.Network.RequestTimeout) * time.Second,
				DownloadTimeout: time.Duration(cfg.Network.DownloadTimeout) * time.Second,
				MaxRetries:      cfg.Network.MaxRetries,
				RetryDelay:      time.Duration(cfg.Network.RetryDelay) * time.Second,
				MinBundleBytes:  cfg.Validation.MinBundleBytes,
				MaxBundleBytes:  cfg.Validation.MaxBundleBytes,
			}, logger)

			if !skipDiscovery {
				reconciler := catalog.NewReconciler(logger)

				githubWatcher := discovery.NewGitHub(cfg.GitHubToken(), cfg.GitHub.RateLimitThreshold, logger)
				githubRecords, err := githubWatcher.Discover(runCtx, cfg.Sources.GitHub)
				if err != nil {
					return fmt.Errorf("github discovery: %w", err)
				}

				directWatcher := discovery.NewDirect(fetcher, logger)
				directRecords, err := directWatcher.Discover(runCtx, cfg.Sources.Direct)
				if err != nil {
					return fmt.Errorf("direct discovery: %w", err)
				}

				merge := reconciler.Merge(cat, append(githubRecords, directRecords...))
				logger.Info("catalog reconciled",
					logging.Int("added", merge.Added),
					logging.Int("reset", merge.Reset),
					logging.Int("unchanged", merge.Unchanged))
			}

			tally := convert.Tally{}
			if !skipConvert {
				probeTimeout := time.Duration(cfg.Tools.ProbeTimeout) * time.Second
				caps := deps.Check(runCtx, deps.DefaultRequirements(), probeTimeout)

				runner := services.ExecRunner{}
				extractor := appimage.NewExtractor(runner, caps,
					time.Duration(cfg.Tools.ExtractTimeout)*time.Second, logger)
				builders := pkgbuild.NewBuilders(runner, caps, pkgbuild.Options{
					BuildTimeout:    time.Duration(cfg.Tools.BuildTimeout) * time.Second,
					ValidateTimeout: time.Duration(cfg.Tools.ValidateTimeout) * time.Second,
				}, logger)
				artifactStore := store.New(cfg.Paths.StoreDir, cfg.Paths.StagingDir, logger)

				manager := convert.New(fetcher, extractor, builders, artifactStore, cfg.Paths.StagingDir, logger)
				tally = manager.ConvertPending(runCtx, cat)
			}

			if err := catalogStore.Save(cat); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d applications in catalog, %d converted, %d failed\n",
				len(cat.Applications), tally.Succeeded, tally.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipDiscovery, "skip-discovery", false, "Convert pending applications without querying sources")
	cmd.Flags().BoolVar(&skipConvert, "skip-convert", false, "Discover and reconcile without converting")
	return cmd
}
