package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powchain/app/services/node/handlers"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/ardanlabs/powchain/foundation/blockchain/worker"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/logger"
	"github.com/ardanlabs/powchain/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:5000"`
		}
		State struct {
			MinerName      string        `conf:"default:miner1"`
			GenesisPath    string        `conf:"help:file with the chain parameters (defaults when empty)"`
			EnforceBalance bool          `conf:"default:true"`
			AcceptSHA1Sigs bool          `conf:"default:false,help:also accept signatures made over SHA-1 of the SHA-256 digest"`
			AutoMine       bool          `conf:"default:true"`
			KnownPeers     []string      `conf:"help:peers used on top of the discovered ones"`
			MiningInterval time.Duration `conf:"default:20s"`
			SyncInterval   time.Duration `conf:"default:20s"`
			PeerTimeout    time.Duration `conf:"default:3s"`
		}
		Discovery struct {
			Enabled       bool          `conf:"default:true"`
			Host          string        `conf:"help:IPv4 address of this node (derived from the hostname when empty)"`
			PortStart     int           `conf:"default:5000"`
			PortEnd       int           `conf:"default:5003"`
			IPOffsetStart int           `conf:"default:0"`
			IPOffsetEnd   int           `conf:"default:1"`
			ProbeTimeout  time.Duration `conf:"default:1s"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/wallets/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Miner Wallet Support

	// The miner wallet is where the rewards for mined blocks are paid. A new
	// wallet is created the first time the node runs with this miner name.
	minerWallet, err := loadMinerWallet(cfg.NameService.Folder, cfg.State.MinerName)
	if err != nil {
		return fmt.Errorf("unable to load miner wallet: %w", err)
	}
	log.Infow("startup", "status", "miner wallet", "name", cfg.State.MinerName, "address", minerWallet.Address())

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for wallet addresses.
	// The names come from the file names in the wallet folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load wallet name service: %w", err)
	}

	// Logging the wallets for documentation in the logs.
	for address, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "address", address)
	}

	// =========================================================================
	// Blockchain Support

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	// Peers know this node by its address on the network and the port of
	// the private API.
	_, privatePort, err := net.SplitHostPort(cfg.Web.PrivateHost)
	if err != nil {
		return fmt.Errorf("parsing private host: %w", err)
	}
	port, err := strconv.Atoi(privatePort)
	if err != nil {
		return fmt.Errorf("parsing private port: %w", err)
	}

	nodeIP := cfg.Discovery.Host
	if nodeIP == "" {
		nodeIP = peer.LocalHost()
	}
	host := net.JoinHostPort(nodeIP, privatePort)

	// A peer set is a collection of known nodes in the network so transactions
	// and blocks can be shared.
	peerSet := peer.NewPeerSet()
	for _, pr := range cfg.State.KnownPeers {
		peerSet.Add(peer.New(pr))
	}

	var discovery *peer.DiscoveryConfig
	if cfg.Discovery.Enabled {
		discovery = &peer.DiscoveryConfig{
			Host:          nodeIP,
			Port:          port,
			PortStart:     cfg.Discovery.PortStart,
			PortEnd:       cfg.Discovery.PortEnd,
			IPOffsetStart: cfg.Discovery.IPOffsetStart,
			IPOffsetEnd:   cfg.Discovery.IPOffsetEnd,
			Timeout:       cfg.Discovery.ProbeTimeout,
		}
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. The viewer messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		const websocketPrefix = "viewer:"

		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		if strings.HasPrefix(s, websocketPrefix) {
			evts.Send(s)
		}
	}

	// The state value represents the blockchain node and manages the chain
	// and the pool and provides an API for application support.
	st, err := state.New(state.Config{
		MinerAddress:   minerWallet.Address(),
		Host:           host,
		Genesis:        gen,
		EnforceBalance: cfg.State.EnforceBalance,
		AcceptSHA1Sigs: cfg.State.AcceptSHA1Sigs,
		KnownPeers:     peerSet,
		Discovery:      discovery,
		PeerTimeout:    cfg.State.PeerTimeout,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the different workflows such as mining,
	// transaction peer sharing, and neighbour sync. The worker will register
	// itself with the state.
	worker.Run(st, ev, worker.Config{
		MiningInterval: cfg.State.MiningInterval,
		SyncInterval:   cfg.State.SyncInterval,
		AutoMine:       cfg.State.AutoMine,
	})

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing private node API support")

	// Construct the mux for the private API calls.
	privateMux := handlers.PrivateMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
	})

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      privateMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPri := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPri()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// loadMinerWallet loads the key file for the miner, creating it the first
// time the miner name is used.
func loadMinerWallet(folder string, name string) (*wallet.Wallet, error) {
	path := filepath.Join(folder, name+wallet.KeyExt)

	w, err := wallet.Load(path)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("creating wallet folder: %w", err)
	}

	if w, err = wallet.New(); err != nil {
		return nil, err
	}

	if err := w.Save(path); err != nil {
		return nil, err
	}

	return w, nil
}
