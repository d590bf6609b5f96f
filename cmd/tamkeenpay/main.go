package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamkeenorg/tamkeenpay/config"
	"github.com/tamkeenorg/tamkeenpay/internal/api"
	"github.com/tamkeenorg/tamkeenpay/internal/app"
	"github.com/tamkeenorg/tamkeenpay/internal/gateway"
	"github.com/tamkeenorg/tamkeenpay/internal/lock"
	"github.com/tamkeenorg/tamkeenpay/internal/mailer"
	"github.com/tamkeenorg/tamkeenpay/internal/payment"
	"github.com/tamkeenorg/tamkeenpay/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configFile = flag.String("c", "tamkeenpay.yml", "config file")
	initDb     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	showVer    = flag.Bool("v", false, "show version")
)

var version = "dev"

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("tamkeenpay", version)
		return
	}

	cfg := config.LoadConfig(*configFile)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	db := application.DB()
	locker := lock.NewRedisLocker(application.Redis())
	checkoutGateway := gateway.NewIyzicoGateway(cfg.Iyzico)

	service := payment.NewService(
		payment.NewGormProductRepository(db),
		payment.NewGormPaymentRepository(db),
		payment.NewGormSessionRepository(db),
		checkoutGateway,
		locker,
		application.Bus(),
		"", // gateway operating currency, TRY by default
	)

	if application.GetSettingsBoolValue("mail", "enabled") {
		adminEmail := application.GetSettingsStringValue("mail", "admin_email")
		notifier, err := mailer.New(cfg.Smtp, adminEmail)
		if err != nil {
			zap.S().Fatalf("mailer init failed: %v", err)
		}
		defer notifier.Close()
		if err := notifier.Subscribe(application.Bus()); err != nil {
			zap.S().Fatalf("mailer subscribe failed: %v", err)
		}
	}

	webserver.Init(cfg, db)
	api.Init(service)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		application.StartBackgroundJobs()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return webserver.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server exited: %v", err)
		os.Exit(1)
	}
}
