package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/marga/uploader-devserver/internal/banner"
	"github.com/marga/uploader-devserver/internal/logging"
	"github.com/marga/uploader-devserver/internal/system"
	"github.com/marga/uploader-devserver/internal/web"
)

const envStdioLog = "UPLOADER_STDIO_LOG"

const (
	exitOK        = 0
	exitServeFail = 1
	exitConfig    = 2
)

func main() {
	ctx := shutdownContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	os.Exit(run(ctx, os.Args[1:], nil, nil))
}

// shutdownContext is cancelled by the first of sigs. Signal handling is then
// reset, so a second Ctrl-C during the drain kills the process.
func shutdownContext(parent context.Context, sigs ...os.Signal) context.Context {
	ctx, stop := signal.NotifyContext(parent, sigs...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}

// run starts the server and blocks until ctx is done. nil writers mean the
// process stdout/stderr, looked up after any -stdio-log redirect.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	earlyErr := stderr
	if earlyErr == nil {
		earlyErr = os.Stderr
	}

	// A missing .env is normal; anything else is worth a warning.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(earlyErr, "warning: .env:", err)
	}

	flags := flag.NewFlagSet("uploader-devserver", flag.ContinueOnError)
	flags.SetOutput(earlyErr)
	port := flags.Int("port", web.DefaultPort, "http listen port; also configurable via "+web.EnvPort)
	host := flags.String("host", "", "listen host, empty for all interfaces; also configurable via "+web.EnvHost)
	dir := flags.String("dir", "", "directory to serve (default: the executable's directory); also configurable via "+web.EnvDir)
	dirListing := flags.Bool("dir-listing", true, "list directories without index.html instead of answering 403; also configurable via "+web.EnvDirListing)
	configPath := flags.String("config", "", "optional YAML config file; also configurable via "+web.EnvConfigFile)
	logLevel := flags.String("log-level", "info", "debug | info | warn | error; also configurable via "+web.EnvLogLevel)
	logFormat := flags.String("log-format", "text", "text | json; also configurable via "+web.EnvLogFormat)
	showQR := flags.Bool("qr", false, "print a QR code of the LAN address; also configurable via "+web.EnvShowQR)
	shutdownTimeout := flags.Duration("shutdown-timeout", web.DefaultShutdownTimeout, "how long stop waits for in-flight requests, 0 waits for all of them; also configurable via "+web.EnvShutdownTimeout)
	stdioLog := flags.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Fprintln(earlyErr, "stdio log redirect error:", err)
		}
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cfg, err := web.LoadServerConfig(web.DefaultBaseDir(), *configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return exitConfig
	}

	// Flags given explicitly win over file and environment.
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "dir":
			cfg.BaseDir = *dir
		case "dir-listing":
			cfg.DirListing = *dirListing
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "qr":
			cfg.ShowQR = *showQR
		case "shutdown-timeout":
			cfg.ShutdownTimeout = *shutdownTimeout
		}
	})

	cfg, err = cfg.Resolve()
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return exitConfig
	}

	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return exitConfig
	}

	server := web.NewHTTPServer(cfg, logger)
	if err := server.Start(ctx); err != nil {
		fmt.Fprintln(stderr, "server start error:", err)
		var bindErr *web.BindError
		if errors.As(err, &bindErr) && bindErr.Hint() != "" {
			fmt.Fprintln(stderr, "hint:", bindErr.Hint())
		}
		return exitServeFail
	}

	info := banner.Info{URL: server.URL(), BaseDir: cfg.BaseDir}
	if cfg.ShowQR {
		info.QRURL = lanURL(cfg, server.Addr(), logger)
	}
	if err := banner.Write(stdout, info); err != nil {
		logger.Errorf("main", "banner: %v", err)
	}

	code := exitOK
	select {
	case <-ctx.Done():
	case <-server.Done():
		logger.Errorf("main", "server exited unexpectedly")
		code = exitServeFail
	}

	start := time.Now()
	if err := server.Stop(); err != nil {
		logger.Errorf("main", "stop: %v", err)
	}
	logger.Debugf("main", "shutdown took %v", time.Since(start))

	_ = banner.WriteStopped(stdout)
	return code
}

// lanURL is the address other devices on the network can reach. Empty when
// the server is bound to a specific host or no LAN address exists.
func lanURL(cfg web.ServerConfig, boundAddr string, logger logging.Logger) string {
	switch cfg.Host {
	case "", "0.0.0.0", "::":
	default:
		return ""
	}
	_, port, err := net.SplitHostPort(boundAddr)
	if err != nil {
		return ""
	}
	ip, err := system.LANIPv4()
	if err != nil {
		logger.Errorf("main", "qr code skipped: %v", err)
		return ""
	}
	return "http://" + net.JoinHostPort(ip, port)
}
