package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/jaminalder/codex-pyramid-solitaire/internal/app"
	"github.com/jaminalder/codex-pyramid-solitaire/internal/config"
	"github.com/jaminalder/codex-pyramid-solitaire/internal/web"
)

var flagAddr = flag.String("addr", "", "Address to listen on (overrides PYRAMID_ADDR)")

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		klog.Fatalf("load config: %v", err)
	}
	if *flagAddr != "" {
		cfg.Addr = *flagAddr
	}

	svc := app.NewService()
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewServer(svc, cfg.MaxRedeals),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			klog.Errorf("shutdown: %v", err)
		}
	}()

	klog.Infof("pyramid solitaire listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		klog.Fatalf("serve: %v", err)
	}
	klog.Infof("server stopped")
}
