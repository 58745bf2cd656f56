// Command assetcached runs the asset cache daemon: a tiered cache in
// front of a remote asset origin, exposed over HTTP.
//
// Configuration comes from an optional TOML file plus flags. A minimal
// config file looks like
//
//	CacheDir = "/var/cache/assets"
//	MaxDiskBytes = 1073741824
//	SweepInterval = "60s"
//	Origin = "https://assets.example.org"
//	PortNumber = "14500"
//
// The origin may also be an S3 location, "s3://bucket/prefix", in which
// case the usual AWS credential chain applies.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	raven "github.com/getsentry/raven-go"

	"github.com/openworld/assetcache/cache"
	"github.com/openworld/assetcache/fetch"
	"github.com/openworld/assetcache/server"
)

type config struct {
	CacheDir      string
	MaxDiskBytes  int64
	SweepInterval duration
	Origin        string
	PortNumber    string
	PProfPort     string
	SentryDSN     string
}

func main() {
	var configFile = flag.String("config-file", "", "location of the configuration file")
	var showVersion = flag.Bool("version", false, "Display the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("assetcached version %s\n", server.Version)
		return
	}

	// the defaults
	config := config{
		CacheDir:   ".",
		PortNumber: "14500",
	}
	if *configFile != "" {
		log.Printf("Reading config file %s", *configFile)
		if _, err := toml.DecodeFile(*configFile, &config); err != nil {
			log.Fatal(err)
		}
	}
	if config.SentryDSN != "" {
		raven.SetDSN(config.SentryDSN)
	}

	fetcher, err := fetch.ParseOrigin(config.Origin)
	if err != nil {
		log.Fatal(err)
	}

	c, err := cache.New(cache.Config{
		CacheDir:      config.CacheDir,
		MaxDiskBytes:  config.MaxDiskBytes,
		SweepInterval: config.SweepInterval.Duration,
		Fetcher:       fetcher,
		Events:        logSink{},
	})
	if err != nil {
		// bad cache directory or similar. not worth retrying.
		log.Fatal(err)
	}

	s := &server.Server{
		PortNumber: config.PortNumber,
		PProfPort:  config.PProfPort,
		Cache:      c,
	}
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Received signal, stopping")
		s.Stop()
	}()
	if err := s.Run(); err != nil {
		log.Fatal(err)
	}
}

// duration lets the config file use strings like "90s" or "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// logSink writes load events to the process log.
type logSink struct{}

func (logSink) Emit(e cache.Event) {
	switch ev := e.(type) {
	case cache.AssetLoaded:
		log.Println("loaded", ev.ID, ev.Kind)
	case cache.AssetLoadFailed:
		log.Println("load failed", ev.ID, ev.Reason)
	}
}
