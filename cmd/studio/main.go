package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"aiInterview/internal/auth"
	"aiInterview/internal/chat"
	"aiInterview/internal/client"
	"aiInterview/internal/config"
	"aiInterview/internal/draft"
	"aiInterview/internal/editor"
	"aiInterview/internal/notify"
	"aiInterview/internal/preview"
)

func main() {
	var (
		email    = flag.String("email", os.Getenv("STUDIO_EMAIL"), "登录邮箱（可选，默认读 STUDIO_EMAIL）")
		password = flag.String("password", os.Getenv("STUDIO_PASSWORD"), "登录密码（可选，默认读 STUDIO_PASSWORD）")
		resumeID = flag.Int64("resume", 0, "启动时打开的简历 ID（可选）")
	)
	flag.Parse()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("studio bootstrapped with api=%s ws=%s preview_port=%d",
		cfg.API.BaseURL, cfg.Chat.WSBaseURL, cfg.Preview.Port)

	drafts, err := draft.Open(cfg.Draft.Path)
	if err != nil {
		log.Fatalf("open draft store: %v", err)
	}

	var session *auth.Session
	api := client.New(cfg.API.BaseURL, cfg.API.Timeout(), func() string {
		if session == nil {
			return ""
		}
		return session.AccessToken()
	}, logger)
	session = auth.NewSession(api, logger)

	ctx := context.Background()
	if *email != "" {
		if err := session.Login(ctx, client.LoginData{Email: *email, Password: *password}); err != nil {
			log.Fatalf("login: %v", err)
		}
		log.Printf("signed in as %s", *email)
	}

	editorStore := editor.NewStore(api, drafts, logger)
	if *resumeID > 0 {
		if err := editorStore.Load(ctx, *resumeID); err != nil {
			log.Fatalf("load resume %d: %v", *resumeID, err)
		}
		log.Printf("resume %d loaded, template %s", *resumeID, editorStore.TemplateID())
	}

	if session.Authenticated() {
		profile, err := session.Profile(ctx)
		if err != nil {
			logger.Warn("profile unavailable", slog.Any("error", err))
		} else {
			chatStore := chat.NewStore(api, chat.NewDialer(), cfg.Chat.WSBaseURL,
				session.AccessToken, profile.ID, logger)
			if err := chatStore.FetchConversations(ctx); err == nil {
				log.Printf("%d conversations", len(chatStore.Conversations()))
			}
			defer chatStore.Disconnect()

			notifyStore := notify.NewStore(api, 20, logger)
			if err := notifyStore.Fetch(ctx); err == nil {
				log.Printf("%d unread notifications", notifyStore.UnreadCount())
			}
		}
	}

	router := preview.NewRouter(logger)
	preview.RegisterRoutes(router, editorStore, drafts)

	address := fmt.Sprintf(":%d", cfg.Preview.Port)
	log.Printf("preview listening on %s", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start preview server: %v", err)
	}
}
