// File: meetsync/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meetsync/client"
	"meetsync/config"
	"meetsync/services/meeting"
	"meetsync/services/session"
	"meetsync/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	token := config.AppConfig.AuthToken
	if token == "" {
		logger.Sugar().Fatal("main: AUTH_TOKEN is required")
	}

	user, err := utils.IdentityFromToken(token)
	if err != nil {
		logger.Sugar().Fatalf("main: cannot resolve identity from token: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(config.AppConfig.APIBaseURL, token, config.AppConfig.APIRatePerMin)
	if err := api.CheckToken(ctx); err != nil {
		logger.Sugar().Fatalf("main: token rejected by backend: %v", err)
	}

	sess := session.New(user)
	defer sess.Close()

	// Initial bulk fetch; push events reconcile from here on.
	meetings, err := api.UserMeetings(ctx)
	if err != nil {
		logger.Sugar().Fatalf("main: initial meeting fetch failed: %v", err)
	}
	for i := range meetings {
		sess.Insert(&meetings[i])
	}

	sub := client.Subscribe(
		config.AppConfig.WSURL,
		token,
		time.Duration(config.AppConfig.ReconnectDelayMS)*time.Millisecond,
		time.Duration(config.AppConfig.HeartbeatIntervalMS)*time.Millisecond,
		logger,
	)
	if !sess.AttachSubscription(sub) {
		sub.Close()
	}

	reconciler := session.NewReconciler(sess, logger)
	go reconciler.Run(ctx, sub.Messages())

	svc := &meeting.DefaultService{
		API:     api,
		Session: sess,
		Logger:  logger,
		Cutoff:  config.AppConfig.WorkdayEnd,
	}

	logger.Info("session ready",
		zap.String("session", sess.ID()),
		zap.Int64("userId", user.ID),
		zap.String("username", user.Username),
		zap.Int("meetings", sess.Len()),
	)

	runShell(ctx, sess, svc, api)
	logger.Info("shutting down", zap.String("session", sess.ID()))
}
