package main

import (
	"context"
	"log/slog"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/wg-agent/internal"
	"github.com/h44z/wg-agent/internal/adapters"
	"github.com/h44z/wg-agent/internal/app/api/core"
	handlersV1 "github.com/h44z/wg-agent/internal/app/api/v1/handlers"
	modelsV1 "github.com/h44z/wg-agent/internal/app/api/v1/models"
	"github.com/h44z/wg-agent/internal/app/audit"
	"github.com/h44z/wg-agent/internal/app/configfile"
	"github.com/h44z/wg-agent/internal/app/platform"
	"github.com/h44z/wg-agent/internal/app/wireguard"
	"github.com/h44z/wg-agent/internal/config"
)

// main starts the wg-agent service.
func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	slog.Info("Starting WireGuard agent...", "version", internal.Version)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)
	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogPretty, cfg.Advanced.LogJson)

	cfg.LogStartupValues()

	metricsServer := adapters.NewMetricsServer(cfg)

	runner := adapters.NewExecRunner(
		adapters.WithSudo(cfg.Backend.UseSudo),
		adapters.WithTimeout(cfg.Backend.CommandTimeout),
		adapters.WithObserver(metricsServer),
	)

	files, err := adapters.NewFileSystemRepository(cfg.Backend.ConfigDir)
	internal.AssertNoError(err)

	var links wireguard.LinkDriver
	switch cfg.Backend.LinkDriver {
	case config.LinkDriverNetlink:
		links = adapters.NewNetlinkDriver()
	default:
		links = wireguard.NewIpLinkDriver(cfg.Backend.IpBinary, runner)
	}

	strategy, err := platform.Select(cfg, runner, links, files)
	internal.AssertNoError(err)
	slog.Debug("selected platform strategy", "platform", strategy.Name())

	if err := platform.NewPreflight(cfg.Backend, strategy.Name()).Run(); err != nil {
		slog.Error("preflight check failed", "error", err)
		os.Exit(1)
	}

	renderer, err := configfile.NewRenderer()
	internal.AssertNoError(err)

	queueSize := 100
	eventBus := evbus.New(queueSize)

	rawDb, err := adapters.NewDatabase(cfg.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewSqlRepository(rawDb)
	internal.AssertNoError(err)

	_, err = audit.NewAuditRecorder(cfg, eventBus, database)
	internal.AssertNoError(err)
	auditManager := audit.NewManager(database)

	keys := wireguard.NewKeyManager(cfg.Backend.WgBinary, cfg.Backend.NativeKeys, runner, strategy)
	wgManager := wireguard.NewWireGuardManager(cfg, eventBus, runner, links, strategy, files, keys)
	provisioner := wireguard.NewProvisioner(cfg, eventBus, wgManager, renderer)

	statisticsCollector := wireguard.NewStatisticsCollector(cfg, wgManager, metricsServer)
	statisticsCollector.StartBackgroundJobs(ctx)

	go metricsServer.Run(ctx)

	validate := validator.New(validator.WithRequiredStructEnabled())
	internal.AssertNoError(modelsV1.RegisterValidations(validate))
	apiV1 := handlersV1.NewRestApi(
		handlersV1.NewShowEndpoint(wgManager),
		handlersV1.NewKeyEndpoint(keys, validate),
		handlersV1.NewInterfaceEndpoint(wgManager, validate),
		handlersV1.NewProvisioningEndpoint(provisioner, validate),
		handlersV1.NewAuditEndpoint(auditManager),
	)

	webSrv, err := core.NewServer(cfg, apiV1)
	internal.AssertNoError(err)

	go webSrv.Run(ctx, cfg.Web.ListeningAddress)

	slog.Info("Application startup complete")

	// wait until context gets cancelled
	<-ctx.Done()

	slog.Info("Stopping WireGuard agent")
}
