package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ocr-web/api/internal/config"
	"ocr-web/api/internal/handle"
	"ocr-web/api/internal/httpserver"
	"ocr-web/api/internal/mistral"
	"ocr-web/api/internal/settings"
	"ocr-web/api/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ocr-web",
	Short: "ocr-web — browser front-end for the Mistral OCR API",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	files, err := store.New(cfg.UploadDir)
	if err != nil {
		return err
	}

	factory := func(apiKey string) *mistral.Client {
		return mistral.New(apiKey,
			mistral.WithBase(cfg.APIBase),
			mistral.WithModel(cfg.OCRModel),
			mistral.WithPolling(cfg.PollRetries, cfg.PollDelay),
		)
	}
	svc, err := settings.New(cfg.SettingsFile, factory)
	if err != nil {
		return err
	}

	h := handle.New(svc, files, cfg.MaxUploadMB)
	r := httpserver.NewRouter(h)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{
		"addr":       addr,
		"upload_dir": cfg.UploadDir,
		"model":      cfg.OCRModel,
	}).Info("ocr-web listening")
	return r.Run(addr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
