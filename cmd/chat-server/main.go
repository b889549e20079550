// cmd/chat-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awsclient "pk-market-chat/internal/common/aws"
	"pk-market-chat/internal/common/camunda"
	"pk-market-chat/internal/common/config"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/observability"
	"pk-market-chat/internal/server"
	chatrouter "pk-market-chat/internal/workers/ai-conversation/chat-router"
	domainquery "pk-market-chat/internal/workers/ai-conversation/domain-query"
	llmcompletion "pk-market-chat/internal/workers/ai-conversation/llm-completion"
	emailsend "pk-market-chat/internal/workers/communication/email-send"
	emailsummary "pk-market-chat/internal/workers/communication/email-summary"
	pdftranscript "pk-market-chat/internal/workers/communication/pdf-transcript"
	summarynotify "pk-market-chat/internal/workers/communication/summary-notify"
	economicnews "pk-market-chat/internal/workers/context-fetch/economic-news"
	marketsummary "pk-market-chat/internal/workers/context-fetch/market-summary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chat server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Context fetchers & completion ---
	completer, err := llmcompletion.NewClient(llmConfig(cfg), log)
	if err != nil {
		zapLog.Fatal("completion client init failed", zap.Error(err))
	}
	news := economicnews.NewHandler(newsConfig(cfg), log)
	if cfg.APIs.News.APIKey == "" {
		zapLog.Warn("NEWSAPI_KEY not set, economy answers will run without news context")
	}
	market := marketsummary.NewScraper(marketConfig(cfg), log)

	// --- Email summary ---
	mailCfg := emailConfig(cfg)
	if err := mailCfg.Validate(); err != nil {
		zapLog.Warn("email delivery is not fully configured, summaries will fail to send", zap.Error(err))
	}
	sender, err := emailsend.NewSender(ctx, mailCfg, log)
	if err != nil {
		zapLog.Fatal("email sender init failed", zap.Error(err))
	}

	var notifier emailsummary.Notifier
	if sns := cfg.Notifications.SNS; sns.Enabled {
		client, err := awsclient.NewSNSClient(ctx, sns.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		notifier = summarynotify.NewSNSNotifier(sns.TopicARN, client, log)
		zapLog.Info("summary dispatch events enabled", zap.String("topic", sns.TopicARN))
	}

	composer := emailsummary.NewComposer(
		&emailsummary.Config{AttachmentsDir: cfg.Email.AttachmentsDir},
		completer,
		pdftranscript.NewRenderer(log),
		sender,
		notifier,
		log,
	)

	router := chatrouter.NewRouter(
		domainquery.NewStockHandler(market, completer, log),
		domainquery.NewEconomyHandler(news, completer, log),
		composer,
		obs,
		log,
	)

	// --- Optional Zeebe worker ---
	checks := map[string]server.ReadyCheck{}
	var zeebe *camunda.Client
	var chatWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")
		checks["zeebe"] = zeebe.HealthCheck

		jobTimeout := config.GetDuration(cfg.Camunda.Timeout)
		chatWorker = camunda.NewWorker(
			zeebe.GetClient(),
			chatrouter.TaskType,
			cfg.Camunda.MaxJobsActive,
			jobTimeout,
			chatrouter.NewJobHandler(router, jobTimeout, log),
			zapLog,
		)
		chatWorker.Start()
	}

	// --- HTTP API ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:    config.GetDuration(cfg.Server.WriteTimeout),
		ShutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
	}, router, checks, log)

	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if chatWorker != nil {
		chatWorker.Stop(shutdownCtx)
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Chat server stopped gracefully")
}

func llmConfig(cfg *config.Config) *llmcompletion.Config {
	c := cfg.APIs.LLM
	return &llmcompletion.Config{
		BaseURL:        c.BaseURL,
		APIKey:         c.APIKey,
		Model:          c.Model,
		Temperature:    c.Temperature,
		MaxTokens:      c.MaxTokens,
		EmailMaxTokens: c.EmailMaxTokens,
		Timeout:        config.GetDuration(c.Timeout),
	}
}

func newsConfig(cfg *config.Config) *economicnews.Config {
	c := cfg.APIs.News
	return &economicnews.Config{
		BaseURL:    c.BaseURL,
		APIKey:     c.APIKey,
		Query:      c.Query,
		Language:   c.Language,
		SortBy:     c.SortBy,
		WindowDays: c.WindowDays,
		PageSize:   c.PageSize,
		Timeout:    config.GetDuration(c.Timeout),
	}
}

func marketConfig(cfg *config.Config) *marketsummary.Config {
	c := cfg.APIs.Market
	return &marketsummary.Config{
		URL:       c.URL,
		UserAgent: c.UserAgent,
		Timeout:   config.GetDuration(c.Timeout),
	}
}

func emailConfig(cfg *config.Config) *emailsend.Config {
	c := cfg.Email
	return &emailsend.Config{
		Provider:     c.Provider,
		FromEmail:    c.FromEmail,
		Timeout:      config.GetDuration(c.Timeout),
		SMTPHost:     c.SMTP.Host,
		SMTPPort:     c.SMTP.Port,
		SMTPUsername: c.SMTP.Username,
		SMTPPassword: c.SMTP.Password,
		UseTLS:       c.SMTP.UseTLS,
		SESRegion:    c.SES.Region,
	}
}
