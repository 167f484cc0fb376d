package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/forPelevin/brollplan/internal/httpapi"
	"github.com/forPelevin/brollplan/internal/ports/adapters/openai"
	"github.com/forPelevin/brollplan/internal/usecase"
)

func runServe(cmd *cobra.Command) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	prov := providersFromEnv()
	if err := openai.ValidateBaseURL(prov.OpenAIBaseURL, prov.OpenAIAllowedHosts); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	configured := strings.TrimSpace(prov.OpenAIAPIKey) != ""
	if !configured {
		log.Warn("OPENAI_API_KEY not set; /generate will refuse requests")
	}

	if getenvDefault("LOG_MODE", "dev") == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Generator:        usecase.New(prov.Deps(log)),
		OpenAIConfigured: configured,
		Log:              log,
		AllowOrigins:     splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
	})

	port := getenvDefault("PORT", "8000")
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 15 * time.Minute,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
