package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultConfigPath          = "~/.config/setupdialog/config.toml"
	defaultButtonText          = "Please Wait"
	defaultCompleteButtonText  = "Close"
	defaultProgressText        = "Preparing..."
	defaultCloseGraceMillis    = 500
	defaultJournalPath         = "~/.local/share/setupdialog/journal.db"
	defaultLogDir              = "~/.local/share/setupdialog/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultCommandFileName     = "dialog.log"
	defaultUnixDialogBinary    = "/usr/local/bin/dialog"
	defaultWindowsDialogBinary = `C:\Program Files\Dialog\dialog.exe`
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dialog: Dialog{
			Binary:              DefaultDialogBinary(),
			ButtonText:          defaultButtonText,
			CompleteButtonText:  defaultCompleteButtonText,
			DefaultProgressText: defaultProgressText,
			CloseGraceMillis:    defaultCloseGraceMillis,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}

// DefaultDialogBinary returns the conventional install location of the dialog tool.
func DefaultDialogBinary() string {
	if runtime.GOOS == "windows" {
		if base := strings.TrimSpace(os.Getenv("ProgramFiles")); base != "" {
			return filepath.Join(base, "Dialog", "dialog.exe")
		}
		return defaultWindowsDialogBinary
	}
	return defaultUnixDialogBinary
}

// DefaultCommandFile returns the command file inside the platform's shared
// application-data directory.
func DefaultCommandFile() string {
	switch runtime.GOOS {
	case "windows":
		base := strings.TrimSpace(os.Getenv("ProgramData"))
		if base == "" {
			base = `C:\ProgramData`
		}
		return filepath.Join(base, "setupdialog", defaultCommandFileName)
	case "darwin":
		return filepath.Join("/var/tmp", defaultCommandFileName)
	default:
		return filepath.Join("/var/tmp", "setupdialog", defaultCommandFileName)
	}
}
