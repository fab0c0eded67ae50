package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modex/frontend/internal/client"
	"github.com/modex/frontend/internal/config"
	"github.com/modex/frontend/internal/header"
	"github.com/modex/frontend/internal/logging"
	"github.com/modex/frontend/internal/models"
	"github.com/modex/frontend/internal/tui"
	"github.com/modex/frontend/internal/upload"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configFlag := flag.String("config", "", "Path to the XML or YAML configuration file")
	list := flag.Bool("list", false, "Print the files known to the backend and exit")
	uploadPath := flag.String("upload", "", "Upload a local file and exit")
	version := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *version {
		fmt.Printf("modex-header %s (built %s)\n", Version, BuildTime)
		return
	}

	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := *configFlag
	if configPath == "" {
		configPath = filepath.Join(exeDir, "modex-header.config")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	interactive := !*list && *uploadPath == ""

	// The terminal belongs to the TUI, so logs go to a file
	if interactive && cfg.Advanced.LogFile == "" {
		cfg.Advanced.LogFile = filepath.Join(exeDir, "modex-header.log")
	}
	logger, logCloser, err := logging.New(cfg.Advanced, os.Stderr)
	if err != nil {
		fmt.Printf("Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	api, err := client.New(client.Options{
		EndpointBase: cfg.Backend.EndpointBase,
		FilesPath:    cfg.Backend.FilesPath,
		UploadPath:   cfg.Backend.UploadPath,
		Timeout:      cfg.GetRequestTimeout(),
		LogRequests:  cfg.Advanced.EnableRequestLogging,
		Logger:       logger,
	})
	if err != nil {
		fmt.Printf("Failed to initialize client: %v\n", err)
		os.Exit(1)
	}

	accept := cfg.GetAcceptedExtensions()
	uploadMgr := upload.NewManager(api, accept, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background job cleanup
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := uploadMgr.CleanupOldJobs(cfg.GetJobRetention()); n > 0 {
					logger.WithField("removed", n).Debug("upload jobs cleaned up")
				}
			}
		}
	}()

	opts := header.Options{
		Subject:  cfg.Picker.Subject,
		Accept:   accept,
		Lister:   api,
		Uploader: uploadMgr,
		Ordering: cfg.GetOrdering(),
		Logger:   logger,
	}

	var code int
	if interactive {
		printBanner(configPath, api, cfg)
		code = runInteractive(opts, cfg)
	} else {
		code = runCommand(ctx, opts, *list, *uploadPath)
	}

	if active := uploadMgr.ActiveJobs(); len(active) > 0 {
		names := make([]string, 0, len(active))
		for _, job := range active {
			names = append(names, job.FileName)
		}
		logger.WithField("files", strings.Join(names, ", ")).Warn("exiting with uploads still in progress")
	}

	cancel()
	logCloser.Close()
	os.Exit(code)
}

func runInteractive(opts header.Options, cfg *config.AppConfig) int {
	view := tui.New(tui.Options{
		Accept:         opts.Accept,
		StartDirectory: cfg.Picker.StartDirectory,
	})
	opts.OnFileSelect = view.SelectFile
	opts.Dialog = view
	opts.Notifier = view
	view.Attach(header.New(opts))

	if err := tui.Run(view); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runCommand runs the header once without a terminal UI: the selection is
// printed instead of rendered and alerts go to stderr.
func runCommand(ctx context.Context, opts header.Options, list bool, path string) int {
	var selected string
	opts.OnFileSelect = func(name string) { selected = name }
	opts.Notifier = header.WriterNotifier{W: os.Stderr}
	h := header.New(opts)
	h.SetSelected(selected)

	if path != "" {
		file, err := models.NewLocalFile(path)
		if err != nil {
			h.HandleUploadError(filepath.Base(path), err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := h.HandleFileUpload(ctx, file); err != nil {
			fmt.Fprintln(os.Stderr, h.Snapshot().Error)
			return 1
		}
		h.SetSelected(selected)
		fmt.Printf("%s subido\n", file.Name)
		if !list {
			return 0
		}
	}

	if err := h.FetchFileList(ctx); err != nil {
		fmt.Fprintln(os.Stderr, h.Snapshot().Error)
		return 1
	}
	for _, name := range h.Snapshot().Files {
		marker := "  "
		if name == selected {
			marker = "* "
		}
		fmt.Println(marker + name)
	}
	return 0
}

func printBanner(configPath string, api *client.Client, cfg *config.AppConfig) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Modex File Header                               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Files:     %-46s║\n", api.FilesURL())
	fmt.Printf("║  Upload:    %-46s║\n", api.UploadURL())
	fmt.Printf("║  Log File:  %-46s║\n", cfg.Advanced.LogFile)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
