// Command easelpack inspects, exports, and imports easel template packages.
//
// Usage:
//
//	easelpack info <package.zip>
//	easelpack export <template.json> <package.zip>
//	easelpack import <package.zip> <dest-dir>
//	easelpack proof <package.zip> <out.pdf>
//
// Configuration comes from the environment (optionally via .env):
// EASEL_LOG_LEVEL, EASEL_LOG_FORMAT, EASEL_ASSET_DIR.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inklock/easel"
	"github.com/inklock/easel/raster"
)

type config struct {
	LogLevel  string
	LogFormat string
	AssetDir  string
}

func loadConfig() config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EASEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("ASSET_DIR", "assets")

	return config{
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		AssetDir:  v.GetString("ASSET_DIR"),
	}
}

func newLogger(cfg config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	}
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return zapCfg.Build()
}

func main() {
	cfg := loadConfig()
	logr, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var cmdErr error
	switch os.Args[1] {
	case "info":
		cmdErr = runInfo(os.Args[2:])
	case "export":
		cmdErr = runExport(os.Args[2:], logr)
	case "import":
		cmdErr = runImport(os.Args[2:], cfg, logr)
	case "proof":
		cmdErr = runProof(os.Args[2:], logr)
	default:
		usage()
		os.Exit(2)
	}
	if cmdErr != nil {
		if errors.Is(cmdErr, easel.ErrNotTemplatePackage) {
			logr.Error("not a template package", zap.Error(cmdErr))
		} else {
			logr.Error("command failed", zap.Error(cmdErr))
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: easelpack <info|export|import|proof> ...")
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: easelpack info <package.zip>")
	}
	m, err := easel.ReadPackageManifest(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("package:   %s\n", args[0])
	fmt.Printf("template:  %s\n", m.TemplateName)
	fmt.Printf("version:   %d\n", m.PackageVersion)
	fmt.Printf("exported:  %s\n", m.ExportedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("items:     %d\n", m.ItemCount)
	fmt.Printf("assets:    %d\n", m.AssetCount)
	return nil
}

func runExport(args []string, logr *zap.Logger) error {
	if len(args) != 2 {
		return errors.New("usage: easelpack export <template.json> <package.zip>")
	}
	doc, err := easel.ReadTemplateFile(args[0])
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	return easel.ExportPackage(doc, name, args[1], easel.ExportOptions{Logger: logr})
}

func runImport(args []string, cfg config, logr *zap.Logger) error {
	if len(args) != 2 {
		return errors.New("usage: easelpack import <package.zip> <dest-dir>")
	}
	destDir := args[1]
	doc, err := easel.ImportPackage(args[0], filepath.Join(destDir, cfg.AssetDir), easel.ImportOptions{Logger: logr})
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return easel.WriteTemplateFile(doc, name, filepath.Join(destDir, "template.json"))
}

func runProof(args []string, logr *zap.Logger) error {
	if len(args) != 2 {
		return errors.New("usage: easelpack proof <package.zip> <out.pdf>")
	}
	tmpAssets, err := os.MkdirTemp("", "easelpack-assets-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpAssets)

	doc, err := easel.ImportPackage(args[0], tmpAssets, easel.ImportOptions{Logger: logr})
	if err != nil {
		return err
	}
	r := raster.New()
	r.Log = logr
	m, err := easel.ReadPackageManifest(args[0])
	if err != nil {
		return err
	}
	pdfBytes, err := r.Proof(doc, m.TemplateName)
	if err != nil {
		return err
	}
	return os.WriteFile(args[1], pdfBytes, 0o644)
}
