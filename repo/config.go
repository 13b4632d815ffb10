package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/harborline/checkoutd/version"
	"github.com/jessevdk/go-flags"
	"github.com/natefinch/lumberjack"
	"github.com/op/go-logging"
)

const (
	defaultConfigFilename = "checkoutd.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "checkoutd.log"
	defaultGatewayAddr    = "127.0.0.1:4102"
)

var (
	// DefaultHomeDir is the default data directory.
	DefaultHomeDir    = AppDataDir("checkoutd", false)
	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)

	fileLogFormat   = logging.MustStringFormatter(`%{time:2006-01-02T15:04:05} [%{level}] [%{module}] %{message}`)
	stdoutLogFormat = logging.MustStringFormatter(`%{color:reset}%{color}%{time:15:04:05.000} [%{level}] [%{module}] %{message}`)
)

// Config defines the configuration options for checkoutd.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	ShowVersion       bool     `short:"v" long:"version" description:"Display version information and exit"`
	ConfigFile        string   `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir           string   `short:"d" long:"datadir" description:"Directory to store data"`
	LogDir            string   `long:"logdir" description:"Directory to log output."`
	LogLevel          string   `short:"l" long:"loglevel" description:"set the logging level [debug, info, notice, warning, error, critical]" default:"info"`
	GatewayAddr       string   `long:"gatewayaddr" description:"Override the default gateway address with the provided value"`
	NoCors            bool     `long:"nocors" description:"Disable CORS headers on the gateway"`
	APIUsername       string   `long:"apiusername" description:"Username for the API basic authentication"`
	APIPassword       string   `long:"apipassword" description:"Password (sha256 hex) for the API basic authentication"`
	APICookie         string   `long:"apicookie" description:"Authentication cookie value for the API"`
	CheckoutAPIURL    string   `long:"checkoutapi" description:"URL of the checkout backend API"`
	CheckoutToken     string   `long:"checkouttoken" description:"Access token for the checkout backend API"`
	ProviderAPIURL    string   `long:"providerapi" description:"URL of the payment provider API"`
	ProviderAPIKey    string   `long:"providerkey" description:"Secret key for the payment provider API"`
	StoreName         string   `long:"storename" description:"Label for the wallet sheet's total line" default:"checkoutd"`
	Country           string   `long:"country" description:"Merchant country code" default:"US"`
	Locale            string   `long:"locale" description:"Storefront locale" default:"en-US"`
	ShippingCountries []string `long:"shippingcountry" description:"Allowed shipping countries for a locale, formatted locale:CC,CC. May be specified multiple times."`
}

// LoadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func LoadConfig() (*Config, error) {
	cfg := Config{
		DataDir:     DefaultHomeDir,
		ConfigFile:  defaultConfigFile,
		LogDir:      defaultLogDir,
		GatewayAddr: defaultGatewayAddr,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := preParser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil, err
		}
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.String())
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default|flags.IgnoreUnknown)
	if preCfg.ConfigFile != "" {
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			if _, ok := err.(*os.PathError); !ok {
				fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n", err)
				fmt.Fprintln(os.Stderr, usageMessage)
				return nil, err
			}
		}
	}

	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	if cfg.LogDir == defaultLogDir && cfg.DataDir != DefaultHomeDir {
		cfg.LogDir = filepath.Join(cfg.DataDir, defaultLogDirname)
	}

	setupLogging(cfg.LogDir, cfg.LogLevel)

	return &cfg, nil
}

// ParseShippingCountries expands the config's locale:CC,CC entries into a
// map of locale to allowed country codes.
func ParseShippingCountries(entries []string) map[string][]string {
	countries := make(map[string][]string)
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			continue
		}
		locale := strings.TrimSpace(parts[0])
		for _, cc := range strings.Split(parts[1], ",") {
			cc = strings.ToUpper(strings.TrimSpace(cc))
			if cc != "" {
				countries[locale] = append(countries[locale], cc)
			}
		}
	}
	return countries
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(pth string) string {
	if strings.HasPrefix(pth, "~") {
		homeDir := filepath.Dir(DefaultHomeDir)
		pth = strings.Replace(pth, "~", homeDir, 1)
	}
	return filepath.Clean(os.ExpandEnv(pth))
}

// AppDataDir returns an operating system specific data directory for the
// named application.
func AppDataDir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}
	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := strings.ToUpper(string(appName[0])) + appName[1:]
	appNameLower := strings.ToLower(string(appName[0])) + appName[1:]

	homeDir := os.Getenv("HOME")
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}
	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library", "Application Support", appNameUpper)
		}
	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}
	return "."
}

func setupLogging(logDir, logLevel string) {
	backendStdout := logging.NewLogBackend(os.Stdout, "", 0)
	backendStdoutFormatter := logging.NewBackendFormatter(backendStdout, stdoutLogFormat)

	if logDir != "" {
		rotator := &lumberjack.Logger{
			Filename:   path.Join(logDir, defaultLogFilename),
			MaxSize:    10, // Megabytes
			MaxBackups: 3,
			MaxAge:     30, // Days
		}

		backendFile := logging.NewLogBackend(rotator, "", 0)
		backendFileFormatter := logging.NewBackendFormatter(backendFile, fileLogFormat)
		logging.SetBackend(backendStdoutFormatter, backendFileFormatter)
	} else {
		logging.SetBackend(backendStdoutFormatter)
	}

	var level logging.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = logging.DEBUG
	case "info":
		level = logging.INFO
	case "notice":
		level = logging.NOTICE
	case "warning":
		level = logging.WARNING
	case "error":
		level = logging.ERROR
	case "critical":
		level = logging.CRITICAL
	default:
		level = logging.INFO
	}
	logging.SetLevel(level, "")
}
