// Command launcherd is the script-launcher core's daemon entrypoint. It
// parses flags with the standard library, wires up the subsystems, and
// blocks on an OS signal.
//
// Out of scope here: hotkey registration, GPU UI rendering,
// login-item registration, update checks — this entrypoint wires the
// core only, the parts this module actually implements.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/scriptkit/launchercore/pkg/clipboard"
	"github.com/scriptkit/launchercore/pkg/config"
	"github.com/scriptkit/launchercore/pkg/dbworker"
	"github.com/scriptkit/launchercore/pkg/frecency"
	"github.com/scriptkit/launchercore/pkg/kitfs"
	"github.com/scriptkit/launchercore/pkg/menucache"
	"github.com/scriptkit/launchercore/pkg/scheduler"
	"github.com/scriptkit/launchercore/pkg/scriptindex"
	"github.com/scriptkit/launchercore/pkg/session"
	"github.com/scriptkit/launchercore/pkg/shortcut"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable debug logging")
	scriptKitHome := flag.String("home", "", "override ~/.scriptkit")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	layout, err := kitfs.DefaultLayout()
	if err != nil {
		log.Error().Err(err).Msg("launcherd: could not resolve home directory")
		os.Exit(1)
	}
	if *scriptKitHome != "" {
		layout.ScriptKitHome = *scriptKitHome
	}
	if err := layout.EnsureDirs(); err != nil {
		log.Error().Err(err).Msg("launcherd: could not create ~/.scriptkit tree")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	discoverer := session.NewDiscoverer()

	cfg := config.DefaultConfig()
	if execPath, resolveErr := discoverer.Resolve("bun", false); resolveErr == nil {
		loaded, loadErr := config.Load(ctx, layout.ConfigPath(), config.ExecTranspiler(execPath), log.With().Str("component", "config").Logger())
		if loadErr == nil {
			cfg = loaded
		}
	}

	clipboardWorker, err := dbworker.Open(layout.ClipboardHistoryDB(), clipboard.Migrations, log.With().Str("db", "clipboard-history").Logger())
	if err != nil {
		log.Error().Err(err).Msg("launcherd: clipboard db open failed")
		os.Exit(1)
	}
	defer clipboardWorker.Close()

	blobs, err := clipboard.NewBlobStore(layout.BlobsDir())
	if err != nil {
		log.Error().Err(err).Msg("launcherd: blob store init failed")
		os.Exit(1)
	}
	clipboardStore := clipboard.NewStore(clipboardWorker, blobs, cfg.RetentionDays)

	menuWorker, err := dbworker.Open(layout.MenuCacheDB(), append(menucache.Migrations, frecency.Migrations...), log.With().Str("db", "menu-cache").Logger())
	if err != nil {
		log.Error().Err(err).Msg("launcherd: menu-cache db open failed")
		os.Exit(1)
	}
	defer menuWorker.Close()
	frecencyStore := frecency.NewStore(menuWorker, cfg.FrecencyHalfLife, func() int64 { return time.Now().UnixMilli() })

	schedWorker, err := dbworker.Open(layout.DBPath("scheduler"), scheduler.Migrations, log.With().Str("db", "scheduler").Logger())
	if err != nil {
		log.Error().Err(err).Msg("launcherd: scheduler db open failed")
		os.Exit(1)
	}
	defer schedWorker.Close()

	idx := scriptindex.New(log.With().Str("component", "scriptindex").Logger())
	if err := idx.SetLoader(scriptindex.KindScript, func() ([]scriptindex.Item, error) { return scriptindex.LoadScripts(layout) }); err != nil {
		log.Warn().Err(err).Msg("launcherd: initial script load failed")
	}
	if err := idx.SetLoader(scriptindex.KindScriptlet, func() ([]scriptindex.Item, error) { return scriptindex.LoadScriptlets(layout) }); err != nil {
		log.Warn().Err(err).Msg("launcherd: initial scriptlet load failed")
	}
	if err := idx.SetLoader(scriptindex.KindAgent, func() ([]scriptindex.Item, error) { return scriptindex.LoadAgents(layout) }); err != nil {
		log.Warn().Err(err).Msg("launcherd: initial agent load failed")
	}
	defer idx.Close()

	if kits, kitsErr := layout.Kits(); kitsErr != nil {
		log.Warn().Err(kitsErr).Msg("launcherd: could not list kits for live reload")
	} else {
		for _, kit := range kits {
			for dir, kind := range map[string]scriptindex.ItemKind{
				layout.ScriptsDir(kit):    scriptindex.KindScript,
				layout.ScriptletsDir(kit): scriptindex.KindScriptlet,
				layout.AgentsDir(kit):     scriptindex.KindAgent,
			} {
				if watchErr := idx.WatchDir(dir, kind); watchErr != nil {
					log.Warn().Err(watchErr).Str("dir", dir).Msg("launcherd: could not watch kit directory")
				}
			}
		}
	}

	shortcuts := shortcut.NewRegistry()
	if parseErrs, loadErr := shortcut.LoadOverrides(layout.ShortcutsPath(), shortcuts); loadErr != nil {
		log.Warn().Err(loadErr).Msg("launcherd: shortcut overrides load failed")
	} else {
		for _, perr := range parseErrs {
			log.Warn().Err(perr).Msg("launcherd: skipped malformed shortcut override")
		}
	}

	sched := scheduler.NewService(scheduler.NewStore(schedWorker), scheduler.Deps{
		Log: log.With().Str("component", "scheduler").Logger(),
		Run: func(job scheduler.Job, triggerArg string) error {
			err := session.RunHeadless(ctx, discoverer, job.ScriptPath, triggerArg, log)
			if err == nil {
				if touchErr := frecencyStore.Touch(ctx, job.ScriptPath); touchErr != nil {
					log.Warn().Err(touchErr).Str("script", job.ScriptPath).Msg("launcherd: frecency touch failed")
				}
			}
			return err
		},
	})
	if err := sched.Start(ctx); err != nil {
		log.Error().Err(err).Msg("launcherd: scheduler start failed")
		os.Exit(1)
	}
	defer sched.Stop()

	log.Info().
		Str("home", layout.ScriptKitHome).
		Int("scripts", len(idx.ByKind(scriptindex.KindScript))).
		Int("scriptlets", len(idx.ByKind(scriptindex.KindScriptlet))).
		Int("agents", len(idx.ByKind(scriptindex.KindAgent))).
		Int("bindings", len(shortcuts.All())).
		Msg("launcherd: ready")

	maintainer := clipboard.NewMaintainer(clipboardStore, blobs, cfg.RetentionDays, int64(cfg.MaxTextContentLen),
		log.With().Str("component", "clipboard-maintainer").Logger())
	go maintainer.Run(ctx)

	<-ctx.Done()
	log.Info().Msg("launcherd: shutting down")
}
