package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// Flags holds the values of every configuration flag registered by
// [BindFlags]. Values stay zero unless the user sets them, so merging them
// never clobbers lower-priority layers.
type Flags struct {
	jsonConfigPath string
	deviceName     string
	logFile        string
	logLevel       string

	databaseDSN string

	remoteBackend  string
	remoteAddress  string
	remoteToken    string
	requestTimeout time.Duration
	remoteDir      string
	remotePrefix   string

	syncMode      string
	syncThreshold int
	syncDebounce  time.Duration
	batchSize     int

	pullInterval time.Duration

	serverAddress NetAddress
	serverDir     string
	serverToken   string
}

// BindFlags registers all configuration flags on fs.
//
// Flags:
//
//	-c/--config json file path with configs
//	--device device label used in logs
//	--log-file client log file path
//	--log-level log level (debug, info, warn, error)
//	-d/--db local SQLite database path
//	--remote remote backend (http or fs)
//	--remote-address HTTP blob service address
//	--remote-token HTTP blob service bearer token
//	--request-timeout HTTP request timeout (e.g. "30s")
//	--remote-dir directory of the fs backend
//	--remote-prefix key prefix on the remote
//	--sync-mode manual, instant or threshold
//	--sync-threshold mutations per push in threshold mode
//	--sync-debounce quiet period before an automatic push
//	--batch-size assets transferred concurrently
//	--pull-interval background pull period (0 disables)
//	-a blob server listen address host:port
//	--blob-dir blob server storage directory
//	--blob-token blob server bearer token
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := new(Flags)

	fs.StringVarP(&f.jsonConfigPath, "config", "c", "", "JSON config file path")
	fs.StringVar(&f.deviceName, "device", "", "Device label used in logs")
	fs.StringVar(&f.logFile, "log-file", "", "Client log file path")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	fs.StringVarP(&f.databaseDSN, "db", "d", "", "Local SQLite database path")

	fs.StringVar(&f.remoteBackend, "remote", "", "Remote backend (http or fs)")
	fs.StringVar(&f.remoteAddress, "remote-address", "", "HTTP blob service address")
	fs.StringVar(&f.remoteToken, "remote-token", "", "HTTP blob service bearer token")
	fs.DurationVar(&f.requestTimeout, "request-timeout", 0, "HTTP request timeout (e.g. 30s)")
	fs.StringVar(&f.remoteDir, "remote-dir", "", "Directory of the fs backend")
	fs.StringVar(&f.remotePrefix, "remote-prefix", "", "Key prefix on the remote")

	fs.StringVar(&f.syncMode, "sync-mode", "", "Sync mode: manual, instant or threshold")
	fs.IntVar(&f.syncThreshold, "sync-threshold", 0, "Mutations per push in threshold mode")
	fs.DurationVar(&f.syncDebounce, "sync-debounce", 0, "Quiet period before an automatic push")
	fs.IntVar(&f.batchSize, "batch-size", 0, "Assets transferred concurrently")

	fs.DurationVar(&f.pullInterval, "pull-interval", 0, "Background pull period (0 disables)")

	fs.VarP(&f.serverAddress, "address", "a", "Blob server listen address host:port")
	fs.StringVar(&f.serverDir, "blob-dir", "", "Blob server storage directory")
	fs.StringVar(&f.serverToken, "blob-token", "", "Blob server bearer token")

	return f
}

func (f *Flags) structuredConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			DeviceName: f.deviceName,
			LogFile:    f.logFile,
			LogLevel:   f.logLevel,
		},
		Storage: Storage{
			DB: DB{DSN: f.databaseDSN},
		},
		Remote: Remote{
			Backend:        f.remoteBackend,
			HTTPAddress:    f.remoteAddress,
			Token:          f.remoteToken,
			RequestTimeout: f.requestTimeout,
			Dir:            f.remoteDir,
			Prefix:         f.remotePrefix,
		},
		Sync: Sync{
			Mode:      f.syncMode,
			Threshold: f.syncThreshold,
			Debounce:  f.syncDebounce,
			BatchSize: f.batchSize,
		},
		Workers: Workers{
			PullInterval: f.pullInterval,
		},
		BlobServer: BlobServer{
			HTTPAddress: f.serverAddress.String(),
			Dir:         f.serverDir,
			Token:       f.serverToken,
		},
		JSONFilePath: f.jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when neither part is set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
